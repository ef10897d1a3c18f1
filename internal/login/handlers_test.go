package login

import (
	"context"
	stdnet "net"
	"testing"
	"time"

	"github.com/gridgate/server/internal/config"
	gnet "github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/persist"
	"github.com/gridgate/server/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	rows    map[string]*persist.AccountRow
	created []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]*persist.AccountRow)}
}

func (f *fakeStore) Load(_ context.Context, name string) (*persist.AccountRow, error) {
	return f.rows[name], nil
}

func (f *fakeStore) Create(_ context.Context, name, rawPassword string) (*persist.AccountRow, error) {
	row := &persist.AccountRow{Name: name, PasswordHash: "plain:" + rawPassword}
	f.rows[name] = row
	f.created = append(f.created, name)
	return row, nil
}

func (f *fakeStore) TouchLastLogin(context.Context, string) error { return nil }

func (f *fakeStore) ValidatePassword(hash, rawPassword string) bool {
	return hash == "plain:"+rawPassword
}

type fakeSender struct {
	ids      []uint16
	payloads [][]byte
}

func (f *fakeSender) Send(id uint16, payload []byte) {
	f.ids = append(f.ids, id)
	f.payloads = append(f.payloads, payload)
}

func newTestServer(store AccountStore, out frameSender, autoCreate bool) *Server {
	cfg := config.Defaults()
	cfg.Login.AutoCreateAccounts = autoCreate
	return newServer(cfg, zap.NewNop(), store, out)
}

func newTestSession(t *testing.T, id uint64) (*gnet.Session, stdnet.Conn) {
	t.Helper()
	serverSide, clientSide := stdnet.Pipe()
	sess := gnet.NewSession(serverSide, id, 16, 16, time.Second, zap.NewNop())
	sess.Start()
	t.Cleanup(func() {
		sess.Close()
		clientSide.Close()
	})
	return sess, clientSide
}

func readFrame(t *testing.T, conn stdnet.Conn) gnet.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	frame, err := gnet.ReadFrame(conn)
	require.NoError(t, err)
	return frame
}

func TestNormalizeAccountID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", "bob", "bob", true},
		{"trimmed", "  bob  ", "bob", true},
		{"fullwidth folds to ascii", "ｂｏｂ", "bob", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeAccountID(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticateExistingAccount(t *testing.T) {
	store := newFakeStore()
	store.rows["bob"] = &persist.AccountRow{Name: "bob", PasswordHash: "plain:secret"}
	s := newTestServer(store, &fakeSender{}, false)
	sess, _ := newTestSession(t, 1)

	require.True(t, s.authenticate(sess, "bob", "secret"))
	assert.Equal(t, "bob", sess.AccountID())
	assert.Same(t, sess, s.lookupAccount("bob"))
}

func TestAuthenticateBadPassword(t *testing.T) {
	store := newFakeStore()
	store.rows["bob"] = &persist.AccountRow{Name: "bob", PasswordHash: "plain:secret"}
	s := newTestServer(store, &fakeSender{}, false)
	sess, _ := newTestSession(t, 1)

	require.False(t, s.authenticate(sess, "bob", "wrong"))
	assert.Empty(t, sess.AccountID())
	assert.Nil(t, s.lookupAccount("bob"))
}

func TestAuthenticateAutoCreate(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store, &fakeSender{}, true)
	sess, _ := newTestSession(t, 1)

	require.True(t, s.authenticate(sess, "newbie", "pw"))
	assert.Equal(t, []string{"newbie"}, store.created)
	assert.Equal(t, "newbie", sess.AccountID())
}

func TestAuthenticateUnknownWithoutAutoCreate(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeSender{}, false)
	sess, _ := newTestSession(t, 1)

	assert.False(t, s.authenticate(sess, "ghost", "pw"))
}

func TestAuthenticateBannedAccount(t *testing.T) {
	store := newFakeStore()
	store.rows["bob"] = &persist.AccountRow{Name: "bob", PasswordHash: "plain:secret", Banned: true}
	s := newTestServer(store, &fakeSender{}, false)
	sess, _ := newTestSession(t, 1)

	assert.False(t, s.authenticate(sess, "bob", "secret"))
}

func TestAuthenticateDuplicateLogin(t *testing.T) {
	store := newFakeStore()
	store.rows["bob"] = &persist.AccountRow{Name: "bob", PasswordHash: "plain:secret"}
	s := newTestServer(store, &fakeSender{}, false)
	first, _ := newTestSession(t, 1)
	second, _ := newTestSession(t, 2)

	require.True(t, s.authenticate(first, "bob", "secret"))
	assert.False(t, s.authenticate(second, "bob", "secret"))

	// Once the first session releases the account, login works again.
	s.releaseSession(first)
	assert.True(t, s.authenticate(second, "bob", "secret"))
}

func TestHandleLoginReqSendsResult(t *testing.T) {
	store := newFakeStore()
	store.rows["bob"] = &persist.AccountRow{Name: "bob", PasswordHash: "plain:secret"}
	s := newTestServer(store, &fakeSender{}, false)
	sess, client := newTestSession(t, 1)

	req := &protocol.LoginReq{ID: "bob", Password: "secret"}
	s.handleLoginReq(sess, req.MarshalPacket(), 0)

	frame := readFrame(t, client)
	require.Equal(t, protocol.PktLoginClientLoginRes, frame.ID)

	var res protocol.LoginRes
	require.NoError(t, res.UnmarshalPacket(frame.Payload))
	assert.True(t, res.Success)
}

func TestWorldSelectRequiresAuth(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeSender{}, false)
	sess, client := newTestSession(t, 1)

	req := &protocol.WorldSelectReq{WorldID: 1}
	s.handleWorldSelectReq(sess, req.MarshalPacket(), 0)

	frame := readFrame(t, client)
	require.Equal(t, protocol.PktLoginClientWorldSelectRes, frame.ID)

	var res protocol.WorldSelectRes
	require.NoError(t, res.UnmarshalPacket(frame.Payload))
	assert.False(t, res.Success)
}

func TestWorldSelectForwardsToWorld(t *testing.T) {
	store := newFakeStore()
	store.rows["bob"] = &persist.AccountRow{Name: "bob", PasswordHash: "plain:secret"}
	out := &fakeSender{}
	s := newTestServer(store, out, false)
	sess, _ := newTestSession(t, 1)
	require.True(t, s.authenticate(sess, "bob", "secret"))

	req := &protocol.WorldSelectReq{WorldID: 7}
	s.handleWorldSelectReq(sess, req.MarshalPacket(), 0)

	require.Len(t, out.ids, 1)
	assert.Equal(t, protocol.PktLoginWorldSelectReq, out.ids[0])

	var fwd protocol.LoginWorldSelectReq
	require.NoError(t, fwd.UnmarshalPacket(out.payloads[0]))
	assert.Equal(t, "bob", fwd.AccountID)
	assert.Equal(t, int32(7), fwd.WorldID)
}

func TestWorldSelectResRoutedToSession(t *testing.T) {
	store := newFakeStore()
	store.rows["bob"] = &persist.AccountRow{Name: "bob", PasswordHash: "plain:secret"}
	s := newTestServer(store, &fakeSender{}, false)
	sess, client := newTestSession(t, 1)
	require.True(t, s.authenticate(sess, "bob", "secret"))

	res := &protocol.WorldLoginSelectRes{
		AccountID:    "bob",
		Success:      true,
		GatewayIP:    "10.0.0.5",
		GatewayPort:  8888,
		SessionToken: "tok-123",
	}
	s.handleWorldSelectRes(nil, res.MarshalPacket(), 0)

	frame := readFrame(t, client)
	require.Equal(t, protocol.PktLoginClientWorldSelectRes, frame.ID)

	var out protocol.WorldSelectRes
	require.NoError(t, out.UnmarshalPacket(frame.Payload))
	assert.True(t, out.Success)
	assert.Equal(t, "10.0.0.5", out.GatewayIP)
	assert.Equal(t, uint16(8888), out.GatewayPort)
	assert.Equal(t, "tok-123", out.SessionToken)
}
