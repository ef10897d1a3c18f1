package gateway

import (
	"github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/protocol"
	"go.uber.org/zap"
)

func (s *Server) registerHandlers() {
	s.clientMux.MustRegister(protocol.PktClientGatewayConnectReq, s.handleConnectReq)
	s.clientMux.MustRegister(protocol.PktClientServerHeartbeat, s.handleHeartbeat)
	s.clientMux.MustRegister(protocol.PktClientGatewayChatReq, s.handleChatReq)
	s.clientMux.MustRegister(protocol.PktClientGatewayMoveReq, s.handleMoveReq)
	s.clientMux.MustRegister(protocol.PktClientGatewayAttackReq, s.handleAttackReq)

	s.gameMux.MustRegister(protocol.PktGameGatewayMoveRes, s.handleGameMoveRes)
	s.gameMux.MustRegister(protocol.PktGameGatewayAttackRes, s.handleGameAttackRes)
}

// handleConnectReq admits a client that presents the token World minted for
// it. The token is opaque here; a non-empty token plus a free account slot
// is sufficient.
func (s *Server) handleConnectReq(sess *net.Session, payload []byte, _ uint16) {
	var req protocol.ConnectReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed connect request", zap.Error(err))
		sess.Close()
		return
	}

	ok := sess.AccountID() == "" &&
		req.AccountID != "" &&
		req.SessionToken != "" &&
		s.store.Bind(req.AccountID, sess)
	if ok {
		sess.SetAccountID(req.AccountID)
		s.log.Info("client connected",
			zap.String("account", req.AccountID),
			zap.String("ip", sess.IP),
		)
	} else {
		s.log.Info("connect rejected", zap.String("account", req.AccountID))
	}

	res := &protocol.ConnectRes{Success: ok}
	sess.Send(protocol.PktGatewayClientConnectRes, res.MarshalPacket())
}

func (s *Server) handleHeartbeat(sess *net.Session, _ []byte, _ uint16) {
	s.log.Debug("heartbeat", zap.Uint64("session", sess.ID))
}

// handleChatReq broadcasts world-wide chat to every connected client,
// including the sender.
func (s *Server) handleChatReq(sess *net.Session, payload []byte, _ uint16) {
	accountID := sess.AccountID()
	if accountID == "" {
		return
	}

	var req protocol.ChatReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed chat request", zap.String("account", accountID), zap.Error(err))
		return
	}

	res := &protocol.ChatRes{AccountID: accountID, Msg: req.Msg}
	data := res.MarshalPacket()
	s.store.Each(func(_ string, target *net.Session) {
		target.Send(protocol.PktGatewayClientChatRes, data)
	})
}

// handleMoveReq forwards a movement request to Game, stamped with the
// session's account id so the simulation knows who moved.
func (s *Server) handleMoveReq(sess *net.Session, payload []byte, _ uint16) {
	accountID := sess.AccountID()
	if accountID == "" {
		return
	}

	var req protocol.MoveReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed move request", zap.String("account", accountID), zap.Error(err))
		return
	}

	fwd := &protocol.GatewayGameMoveReq{
		AccountID: accountID,
		X:         req.X,
		Y:         req.Y,
		Z:         req.Z,
		Yaw:       req.Yaw,
	}
	s.gameOut.Send(protocol.PktGatewayGameMoveReq, fwd.MarshalPacket())
}

func (s *Server) handleAttackReq(sess *net.Session, payload []byte, _ uint16) {
	accountID := sess.AccountID()
	if accountID == "" {
		return
	}

	var req protocol.AttackReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed attack request", zap.String("account", accountID), zap.Error(err))
		return
	}

	fwd := &protocol.GatewayGameAttackReq{AccountID: accountID, TargetUID: req.TargetUID}
	s.gameOut.Send(protocol.PktGatewayGameAttackReq, fwd.MarshalPacket())
}

// handleGameMoveRes fans a movement event out to the recipients Game named.
// A target that disconnected in flight is skipped silently.
func (s *Server) handleGameMoveRes(_ *net.Link, payload []byte, _ uint16) {
	var res protocol.GameGatewayMoveRes
	if err := res.UnmarshalPacket(payload); err != nil {
		s.log.Error("malformed move broadcast from game", zap.Error(err))
		return
	}

	out := &protocol.MoveRes{
		AccountID: res.AccountID,
		X:         res.X,
		Y:         res.Y,
		Z:         res.Z,
		Yaw:       res.Yaw,
	}
	data := out.MarshalPacket()
	for _, target := range res.TargetAccountIDs {
		if sess := s.store.Get(target); sess != nil {
			sess.Send(protocol.PktGatewayClientMoveRes, data)
		}
	}
}

func (s *Server) handleGameAttackRes(_ *net.Link, payload []byte, _ uint16) {
	var res protocol.GameGatewayAttackRes
	if err := res.UnmarshalPacket(payload); err != nil {
		s.log.Error("malformed attack broadcast from game", zap.Error(err))
		return
	}

	out := &protocol.AttackRes{
		AttackerUID:     res.AttackerUID,
		TargetAccountID: res.TargetAccountID,
		Damage:          res.Damage,
		TargetRemainHP:  res.TargetRemainHP,
	}
	data := out.MarshalPacket()
	for _, target := range res.TargetAccountIDs {
		if sess := s.store.Get(target); sess != nil {
			sess.Send(protocol.PktGatewayClientAttackRes, data)
		}
	}
}
