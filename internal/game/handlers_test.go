package game

import (
	stdnet "net"
	"testing"
	"time"

	"github.com/gridgate/server/internal/config"
	gnet "github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/nav"
	"github.com/gridgate/server/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGameServer() *Server {
	state := newTestState()
	return newServer(config.Defaults(), zap.NewNop(), state, nav.BakeDummy(1000, 1000), nil)
}

func newTestSession(t *testing.T) (*gnet.Session, stdnet.Conn) {
	t.Helper()
	serverSide, clientSide := stdnet.Pipe()
	sess := gnet.NewSession(serverSide, 1, 64, 64, time.Second, zap.NewNop())
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

func moveReq(account string, x, z, yaw float32) []byte {
	req := &protocol.GatewayGameMoveReq{AccountID: account, X: x, Z: z, Yaw: yaw}
	return req.MarshalPacket()
}

func TestMoveReqCreatesPlayerLazily(t *testing.T) {
	s := newTestGameServer()
	sess, conn := newTestSession(t)

	s.handleMoveReq(sess, moveReq("bob", 10, 20, 90), 0)

	p := s.state.Player("bob")
	require.NotNil(t, p)
	assert.Equal(t, uint64(1), p.UID)
	assert.Equal(t, float32(10), p.X)
	assert.Equal(t, float32(20), p.Z)

	// The mover is inside its own AOI and receives the broadcast.
	frame := readFrame(t, conn)
	require.Equal(t, protocol.PktGameGatewayMoveRes, frame.ID)

	var res protocol.GameGatewayMoveRes
	require.NoError(t, res.UnmarshalPacket(frame.Payload))
	assert.Equal(t, "bob", res.AccountID)
	assert.Equal(t, []string{"bob"}, res.TargetAccountIDs)
}

func TestMoveReqUpdatesExistingPlayer(t *testing.T) {
	s := newTestGameServer()
	sess, conn := newTestSession(t)

	s.handleMoveReq(sess, moveReq("bob", 10, 20, 0), 0)
	readFrame(t, conn)
	s.handleMoveReq(sess, moveReq("bob", 12, 22, 45), 0)

	p := s.state.Player("bob")
	require.NotNil(t, p)
	assert.Equal(t, uint64(1), p.UID) // same player, no re-admission
	assert.Equal(t, float32(12), p.X)
	assert.Equal(t, float32(45), p.Yaw)

	frame := readFrame(t, conn)
	var res protocol.GameGatewayMoveRes
	require.NoError(t, res.UnmarshalPacket(frame.Payload))
	assert.Equal(t, float32(12), res.X)
}

func TestMoveBroadcastReachesNearbyPlayers(t *testing.T) {
	s := newTestGameServer()
	sess, conn := newTestSession(t)

	s.handleMoveReq(sess, moveReq("alice", 100, 100, 0), 0)
	readFrame(t, conn)
	s.handleMoveReq(sess, moveReq("bob", 110, 100, 0), 0)

	// Both ride the same gateway connection, so one frame names both.
	frame := readFrame(t, conn)
	var res protocol.GameGatewayMoveRes
	require.NoError(t, res.UnmarshalPacket(frame.Payload))
	assert.Equal(t, "bob", res.AccountID)
	assert.ElementsMatch(t, []string{"alice", "bob"}, res.TargetAccountIDs)
}

func TestLeaveReqIsIdempotent(t *testing.T) {
	s := newTestGameServer()
	sess, conn := newTestSession(t)

	s.handleMoveReq(sess, moveReq("bob", 10, 20, 0), 0)
	readFrame(t, conn)

	leave := &protocol.GatewayGameLeaveReq{AccountID: "bob"}
	s.handleLeaveReq(sess, leave.MarshalPacket(), 0)
	assert.Nil(t, s.state.Player("bob"))

	// A second leave, or one for an account that never joined, is a no-op.
	s.handleLeaveReq(sess, leave.MarshalPacket(), 0)
	ghost := &protocol.GatewayGameLeaveReq{AccountID: "ghost"}
	s.handleLeaveReq(sess, ghost.MarshalPacket(), 0)
}

func TestAttackReqRoutesByUIDPartition(t *testing.T) {
	s := newTestGameServer()
	sess, conn := newTestSession(t)

	s.handleMoveReq(sess, moveReq("bob", 100, 100, 0), 0)
	readFrame(t, conn)
	m := NewMonster(MonsterUIDBase, testTemplate(), 101, 100)
	s.state.AddMonster(m)

	req := &protocol.GatewayGameAttackReq{AccountID: "bob", TargetUID: m.UID}
	s.handleAttackReq(sess, req.MarshalPacket(), 0)

	assert.Equal(t, int32(41), m.HP)

	frame := readFrame(t, conn)
	require.Equal(t, protocol.PktGameGatewayAttackRes, frame.ID)
}

func TestAttackReqIgnoresUnknownAttackerAndTarget(t *testing.T) {
	s := newTestGameServer()
	sess, conn := newTestSession(t)

	// Attacker not in simulation.
	req := &protocol.GatewayGameAttackReq{AccountID: "ghost", TargetUID: MonsterUIDBase}
	s.handleAttackReq(sess, req.MarshalPacket(), 0)

	// Known attacker, unknown monster uid.
	s.handleMoveReq(sess, moveReq("bob", 100, 100, 0), 0)
	readFrame(t, conn)
	req = &protocol.GatewayGameAttackReq{AccountID: "bob", TargetUID: MonsterUIDBase + 42}
	s.handleAttackReq(sess, req.MarshalPacket(), 0)

	// Self-attack through the player partition.
	req = &protocol.GatewayGameAttackReq{AccountID: "bob", TargetUID: 1}
	s.handleAttackReq(sess, req.MarshalPacket(), 0)
	assert.Equal(t, playerMaxHP, s.state.Player("bob").HP)
}

func TestInputSystemHonoursBudget(t *testing.T) {
	s := newTestGameServer()
	sess, conn := newTestSession(t)
	s.gateways[sess.ID] = sess

	go func() {
		for i := 0; i < 5; i++ {
			gnet.WriteFrame(conn, protocol.PktGatewayGameMoveReq, moveReq("bob", float32(10+i), 20, 0))
		}
	}()

	// Wait for the session reader to queue everything.
	require.Eventually(t, func() bool { return len(sess.InQueue) == 5 },
		time.Second, 5*time.Millisecond)

	in := newInputSystem(s, 3)
	in.Update(tick)
	assert.Len(t, sess.InQueue, 2)

	in.Update(tick)
	assert.Empty(t, sess.InQueue)
	assert.Equal(t, float32(14), s.state.Player("bob").X)
}
