package game

import (
	"github.com/gridgate/server/internal/core/event"
	"github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/protocol"
	"go.uber.org/zap"
)

func (s *Server) registerHandlers() {
	s.mux.MustRegister(protocol.PktGatewayGameMoveReq, s.handleMoveReq)
	s.mux.MustRegister(protocol.PktGatewayGameLeaveReq, s.handleLeaveReq)
	s.mux.MustRegister(protocol.PktGatewayGameAttackReq, s.handleAttackReq)
}

// handleMoveReq applies a movement update. The first move from an unknown
// account creates the player: the gateway already authenticated it, so its
// first movement is its entrance into the simulation.
func (s *Server) handleMoveReq(sess *net.Session, payload []byte, _ uint16) {
	var req protocol.GatewayGameMoveReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed move request", zap.Error(err))
		return
	}

	p := s.state.Player(req.AccountID)
	if p == nil {
		var err error
		p, err = s.state.AddPlayer(req.AccountID, sess, req.X, req.Y, req.Z, req.Yaw)
		if err != nil {
			s.log.Error("cannot admit player",
				zap.String("account", req.AccountID), zap.Error(err))
			return
		}
		s.log.Info("player joined",
			zap.String("account", p.AccountID),
			zap.Uint64("uid", p.UID),
		)
	} else {
		s.state.MovePlayer(p, req.X, req.Y, req.Z, req.Yaw)
	}

	broadcastMove(p.AccountID, p.X, p.Y, p.Z, p.Yaw, s.state.NearbyPlayers(p.X, p.Z))
}

// handleLeaveReq removes a player. Gateways send it on every disconnect,
// including for accounts that never moved, so an unknown account is fine.
func (s *Server) handleLeaveReq(_ *net.Session, payload []byte, _ uint16) {
	var req protocol.GatewayGameLeaveReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed leave request", zap.Error(err))
		return
	}

	if p := s.state.RemovePlayer(req.AccountID); p != nil {
		event.Emit(s.bus, PlayerLeft{AccountID: p.AccountID})
		s.log.Info("player left", zap.String("account", p.AccountID))
	}
}

// handleAttackReq resolves a player's attack. The uid partition picks the
// target table: monster uids start at MonsterUIDBase, player uids below.
func (s *Server) handleAttackReq(_ *net.Session, payload []byte, _ uint16) {
	var req protocol.GatewayGameAttackReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed attack request", zap.Error(err))
		return
	}

	attacker := s.state.Player(req.AccountID)
	if attacker == nil {
		s.log.Debug("attack from account not in simulation",
			zap.String("account", req.AccountID))
		return
	}

	if req.TargetUID >= MonsterUIDBase {
		if m := s.state.Monster(req.TargetUID); m != nil {
			s.combat.PlayerAttackMonster(attacker, m)
		}
		return
	}

	target := s.state.PlayerByUID(req.TargetUID)
	if target == nil || target == attacker {
		return
	}
	s.combat.PlayerAttackPlayer(attacker, target)
}
