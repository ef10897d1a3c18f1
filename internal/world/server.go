// Package world implements the world directory process. Login servers
// connect to it over the server protocol; for each world selection it picks
// the gateway serving that world and mints a one-time session token the
// gateway will accept.
package world

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridgate/server/internal/config"
	"github.com/gridgate/server/internal/dispatch"
	"github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/protocol"
	"go.uber.org/zap"
)

// Server is the world directory process.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	srv *net.Server
	mux *dispatch.Dispatcher[*net.Session]

	gateways map[int32]config.GatewayEndpoint
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	srv, err := net.NewServer(cfg.World.BindAddress,
		cfg.Network.InQueueSize, cfg.Network.OutQueueSize, cfg.Network.WriteTimeout.Std(), log)
	if err != nil {
		return nil, err
	}

	s := newServer(cfg, log)
	s.srv = srv
	return s, nil
}

func newServer(cfg *config.Config, log *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		mux:      dispatch.NewDispatcher[*net.Session](log),
		gateways: make(map[int32]config.GatewayEndpoint, len(cfg.World.Gateways)),
	}
	for _, gw := range cfg.World.Gateways {
		s.gateways[gw.WorldID] = gw
	}
	s.mux.MustRegister(protocol.PktLoginWorldSelectReq, s.handleWorldSelect)
	return s
}

// Run blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("world server listening",
		zap.String("bind", s.cfg.World.BindAddress),
		zap.Int("gateways", len(s.gateways)),
	)

	go s.srv.AcceptLoop()

	for {
		select {
		case <-ctx.Done():
			s.srv.Shutdown()
			return nil
		case sess := <-s.srv.NewSessions():
			go s.sessionLoop(sess)
		}
	}
}

// sessionLoop drains one login server's input queue.
func (s *Server) sessionLoop(sess *net.Session) {
	for {
		select {
		case frame := <-sess.InQueue:
			s.mux.Dispatch(sess, frame.ID, frame.Payload, uint16(len(frame.Payload)))
		case <-sess.Done():
			s.log.Info("login server disconnected", zap.Uint64("session", sess.ID))
			return
		}
	}
}

// handleWorldSelect resolves the world id to a gateway endpoint. An unknown
// world id is answered with success=false rather than dropped, so the login
// server can fail the client promptly.
func (s *Server) handleWorldSelect(sess *net.Session, payload []byte, _ uint16) {
	var req protocol.LoginWorldSelectReq
	if err := req.UnmarshalPacket(payload); err != nil {
		s.log.Warn("malformed world select", zap.Error(err))
		sess.Close()
		return
	}

	res := &protocol.WorldLoginSelectRes{AccountID: req.AccountID}

	if gw, ok := s.gateways[req.WorldID]; ok {
		res.Success = true
		res.GatewayIP = gw.IP
		res.GatewayPort = gw.Port
		res.SessionToken = uuid.NewString()
		s.log.Info("world selected",
			zap.String("account", req.AccountID),
			zap.Int32("world", req.WorldID),
			zap.String("gateway", gw.IP),
		)
	} else {
		s.log.Info("unknown world requested",
			zap.String("account", req.AccountID),
			zap.Int32("world", req.WorldID),
		)
	}

	sess.Send(protocol.PktWorldLoginSelectRes, res.MarshalPacket())
}
