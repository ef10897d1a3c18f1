package world

import (
	stdnet "net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gridgate/server/internal/config"
	gnet "github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWorld() *Server {
	cfg := config.Defaults()
	cfg.World.Gateways = []config.GatewayEndpoint{
		{WorldID: 1, IP: "10.0.0.5", Port: 8888},
		{WorldID: 2, IP: "10.0.0.6", Port: 8889},
	}
	return newServer(cfg, zap.NewNop())
}

func newTestSession(t *testing.T) (*gnet.Session, stdnet.Conn) {
	t.Helper()
	serverSide, clientSide := stdnet.Pipe()
	sess := gnet.NewSession(serverSide, 1, 16, 16, time.Second, zap.NewNop())
	sess.Start()
	t.Cleanup(func() {
		sess.Close()
		clientSide.Close()
	})
	return sess, clientSide
}

func selectWorld(t *testing.T, s *Server, sess *gnet.Session, conn stdnet.Conn, account string, worldID int32) protocol.WorldLoginSelectRes {
	t.Helper()
	req := &protocol.LoginWorldSelectReq{AccountID: account, WorldID: worldID}
	s.handleWorldSelect(sess, req.MarshalPacket(), 0)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	frame, err := gnet.ReadFrame(conn)
	require.NoError(t, err)
	require.Equal(t, protocol.PktWorldLoginSelectRes, frame.ID)

	var res protocol.WorldLoginSelectRes
	require.NoError(t, res.UnmarshalPacket(frame.Payload))
	return res
}

func TestWorldSelectKnownWorld(t *testing.T) {
	s := newTestWorld()
	sess, conn := newTestSession(t)

	res := selectWorld(t, s, sess, conn, "bob", 2)

	assert.True(t, res.Success)
	assert.Equal(t, "bob", res.AccountID)
	assert.Equal(t, "10.0.0.6", res.GatewayIP)
	assert.Equal(t, uint16(8889), res.GatewayPort)

	// The minted token must be a parseable uuid.
	_, err := uuid.Parse(res.SessionToken)
	assert.NoError(t, err)
}

func TestWorldSelectUnknownWorld(t *testing.T) {
	s := newTestWorld()
	sess, conn := newTestSession(t)

	res := selectWorld(t, s, sess, conn, "bob", 99)

	assert.False(t, res.Success)
	assert.Equal(t, "bob", res.AccountID)
	assert.Empty(t, res.SessionToken)
}

func TestWorldSelectMintsFreshTokens(t *testing.T) {
	s := newTestWorld()
	sess, conn := newTestSession(t)

	first := selectWorld(t, s, sess, conn, "bob", 1)
	second := selectWorld(t, s, sess, conn, "bob", 1)

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.NotEqual(t, first.SessionToken, second.SessionToken)
}
