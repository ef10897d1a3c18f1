package login

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/protocol"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

var errWorldLinkDown = errors.New("login: world link closed")

const (
	maxAccountLen = 32
	storeTimeout  = 5 * time.Second
)

func (s *Server) registerHandlers() {
	s.clientMux.MustRegister(protocol.PktClientLoginLoginReq, s.handleLoginReq)
	s.clientMux.MustRegister(protocol.PktClientServerHeartbeat, s.handleHeartbeat)
	s.clientMux.MustRegister(protocol.PktClientLoginWorldSelectReq, s.handleWorldSelectReq)

	s.worldMux.MustRegister(protocol.PktWorldLoginSelectRes, s.handleWorldSelectRes)
}

// normalizeAccountID canonicalises a client-supplied account id. NFKC folds
// visually equivalent sequences to one form so "admin" cannot be shadowed by
// a compatibility variant of itself.
func normalizeAccountID(raw string) (string, bool) {
	id := norm.NFKC.String(strings.TrimSpace(raw))
	if id == "" || !utf8.ValidString(id) || utf8.RuneCountInString(id) > maxAccountLen {
		return "", false
	}
	return id, true
}

func (s *Server) handleLoginReq(sess *net.Session, payload []byte, _ uint16) {
	var req protocol.LoginReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed login request", zap.Error(err))
		sess.Close()
		return
	}

	res := &protocol.LoginRes{Success: s.authenticate(sess, req.ID, req.Password)}
	sess.Send(protocol.PktLoginClientLoginRes, res.MarshalPacket())
	if !res.Success {
		return
	}
	s.log.Info("account logged in",
		zap.String("account", sess.AccountID()),
		zap.String("ip", sess.IP),
	)
}

func (s *Server) authenticate(sess *net.Session, rawID, password string) bool {
	if sess.AccountID() != "" {
		// Already authenticated on this connection.
		return false
	}

	accountID, ok := normalizeAccountID(rawID)
	if !ok {
		s.log.Warn("rejected invalid account id", zap.String("ip", sess.IP))
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	row, err := s.store.Load(ctx, accountID)
	if err != nil {
		s.log.Error("account lookup failed", zap.String("account", accountID), zap.Error(err))
		return false
	}

	switch {
	case row == nil && s.cfg.Login.AutoCreateAccounts:
		row, err = s.store.Create(ctx, accountID, password)
		if err != nil {
			s.log.Error("account auto-create failed", zap.String("account", accountID), zap.Error(err))
			return false
		}
		s.log.Info("account auto-created", zap.String("account", accountID))
	case row == nil:
		s.log.Info("login for unknown account", zap.String("account", accountID))
		return false
	case row.Banned:
		s.log.Warn("login for banned account", zap.String("account", accountID))
		return false
	case !s.store.ValidatePassword(row.PasswordHash, password):
		s.log.Info("bad password", zap.String("account", accountID))
		return false
	default:
		if err := s.store.TouchLastLogin(ctx, accountID); err != nil {
			s.log.Warn("failed to stamp last login", zap.String("account", accountID), zap.Error(err))
		}
	}

	if !s.bindAccount(accountID, sess) {
		s.log.Info("duplicate login rejected", zap.String("account", accountID))
		return false
	}
	sess.SetAccountID(accountID)
	return true
}

func (s *Server) handleHeartbeat(sess *net.Session, _ []byte, _ uint16) {
	s.log.Debug("heartbeat", zap.Uint64("session", sess.ID))
}

// handleWorldSelectReq relays the client's world choice to the World
// process. The response comes back asynchronously on the World link and is
// routed to the session by account id.
func (s *Server) handleWorldSelectReq(sess *net.Session, payload []byte, _ uint16) {
	accountID := sess.AccountID()
	if accountID == "" {
		res := &protocol.WorldSelectRes{Success: false}
		sess.Send(protocol.PktLoginClientWorldSelectRes, res.MarshalPacket())
		return
	}

	var req protocol.WorldSelectReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed world select", zap.String("account", accountID), zap.Error(err))
		sess.Close()
		return
	}

	fwd := &protocol.LoginWorldSelectReq{AccountID: accountID, WorldID: req.WorldID}
	s.worldOut.Send(protocol.PktLoginWorldSelectReq, fwd.MarshalPacket())
}

func (s *Server) handleWorldSelectRes(_ *net.Link, payload []byte, _ uint16) {
	var res protocol.WorldLoginSelectRes
	if err := res.UnmarshalPacket(payload); err != nil {
		s.log.Error("malformed world select response", zap.Error(err))
		return
	}

	sess := s.lookupAccount(res.AccountID)
	if sess == nil {
		// Client disconnected while the request was in flight.
		s.log.Debug("world select response for offline account",
			zap.String("account", res.AccountID))
		return
	}

	out := &protocol.WorldSelectRes{
		Success:      res.Success,
		GatewayIP:    res.GatewayIP,
		GatewayPort:  res.GatewayPort,
		SessionToken: res.SessionToken,
	}
	sess.Send(protocol.PktLoginClientWorldSelectRes, out.MarshalPacket())
}
