// Package gateway implements the client-facing relay process. It validates
// session tokens minted by World, keeps the account-to-session table, and
// shuttles packets between clients and the Game process. The Game side is
// authoritative: gateway never inspects simulation state, it only routes.
package gateway

import (
	"context"
	"errors"

	"github.com/gridgate/server/internal/config"
	"github.com/gridgate/server/internal/dispatch"
	"github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/protocol"
	"go.uber.org/zap"
)

var errGameLinkDown = errors.New("gateway: game link closed")

// frameSender is the outbound side of the Game link.
type frameSender interface {
	Send(id uint16, payload []byte)
}

// Server is the gateway process.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	srv     *net.Server
	game    *net.Link
	gameOut frameSender

	store *SessionStore

	clientMux *dispatch.Dispatcher[*net.Session]
	gameMux   *dispatch.Dispatcher[*net.Link]
}

// New binds the client listener. game must already be connected; without
// its Game peer the gateway has nothing to route to and must not boot.
func New(cfg *config.Config, log *zap.Logger, game *net.Link) (*Server, error) {
	srv, err := net.NewServer(cfg.Gateway.BindAddress,
		cfg.Network.InQueueSize, cfg.Network.OutQueueSize, cfg.Network.WriteTimeout.Std(), log)
	if err != nil {
		return nil, err
	}

	s := newServer(cfg, log, game)
	s.srv = srv
	s.game = game
	return s, nil
}

func newServer(cfg *config.Config, log *zap.Logger, gameOut frameSender) *Server {
	s := &Server{
		cfg:       cfg,
		log:       log,
		gameOut:   gameOut,
		store:     NewSessionStore(),
		clientMux: dispatch.NewDispatcher[*net.Session](log),
		gameMux:   dispatch.NewDispatcher[*net.Link](log),
	}
	s.registerHandlers()
	return s
}

// Run blocks until ctx is cancelled or the Game link dies.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("gateway listening",
		zap.String("bind", s.cfg.Gateway.BindAddress),
		zap.String("game", s.cfg.Gateway.GameAddress),
	)

	go s.srv.AcceptLoop()
	go s.gameLoop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-s.game.Done():
			s.shutdown()
			return errGameLinkDown
		case sess := <-s.srv.NewSessions():
			go s.sessionLoop(sess)
		}
	}
}

func (s *Server) shutdown() {
	s.srv.Shutdown()
	s.game.Close()
	s.store.Each(func(_ string, sess *net.Session) {
		sess.Close()
	})
}

// sessionLoop drains one client session. On disconnect the Game process is
// told to remove the player, whether or not it ever saw one.
func (s *Server) sessionLoop(sess *net.Session) {
	defer s.dropSession(sess)

	for {
		select {
		case frame := <-sess.InQueue:
			s.clientMux.Dispatch(sess, frame.ID, frame.Payload, uint16(len(frame.Payload)))
		case <-sess.Done():
			return
		}
	}
}

func (s *Server) dropSession(sess *net.Session) {
	accountID := sess.AccountID()
	if accountID == "" {
		return
	}
	if !s.store.Remove(accountID, sess) {
		return
	}

	leave := &protocol.GatewayGameLeaveReq{AccountID: accountID}
	s.gameOut.Send(protocol.PktGatewayGameLeaveReq, leave.MarshalPacket())
	s.log.Info("client disconnected", zap.String("account", accountID))
}

// gameLoop drains the Game link's input queue.
func (s *Server) gameLoop() {
	for {
		select {
		case frame := <-s.game.InQueue:
			s.gameMux.Dispatch(s.game, frame.ID, frame.Payload, uint16(len(frame.Payload)))
		case <-s.game.Done():
			return
		}
	}
}
