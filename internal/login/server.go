// Package login implements the account-facing login process. It
// authenticates clients against the account store, gates duplicate logins,
// and brokers world selection with the World process over a persistent
// server link.
package login

import (
	"context"
	"sync"

	"github.com/gridgate/server/internal/config"
	"github.com/gridgate/server/internal/dispatch"
	"github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/persist"
	"go.uber.org/zap"
)

// AccountStore is the credential backend. *persist.AccountRepo is the
// production implementation.
type AccountStore interface {
	Load(ctx context.Context, name string) (*persist.AccountRow, error)
	Create(ctx context.Context, name, rawPassword string) (*persist.AccountRow, error)
	TouchLastLogin(ctx context.Context, name string) error
	ValidatePassword(hash string, rawPassword string) bool
}

// frameSender is the outbound side of the World link.
type frameSender interface {
	Send(id uint16, payload []byte)
}

// Server is the login process.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	srv      *net.Server
	world    *net.Link
	worldOut frameSender

	store AccountStore

	clientMux *dispatch.Dispatcher[*net.Session]
	worldMux  *dispatch.Dispatcher[*net.Link]

	mu     sync.Mutex
	online map[string]*net.Session // account id -> owning session
}

// New binds the client listener and wires the packet tables. world must
// already be connected; a login server without its World peer cannot serve
// world selection and should not boot.
func New(cfg *config.Config, log *zap.Logger, store AccountStore, world *net.Link) (*Server, error) {
	srv, err := net.NewServer(cfg.Login.BindAddress,
		cfg.Network.InQueueSize, cfg.Network.OutQueueSize, cfg.Network.WriteTimeout.Std(), log)
	if err != nil {
		return nil, err
	}

	s := newServer(cfg, log, store, world)
	s.srv = srv
	s.world = world
	return s, nil
}

// newServer wires everything except the sockets.
func newServer(cfg *config.Config, log *zap.Logger, store AccountStore, worldOut frameSender) *Server {
	s := &Server{
		cfg:       cfg,
		log:       log,
		worldOut:  worldOut,
		store:     store,
		clientMux: dispatch.NewDispatcher[*net.Session](log),
		worldMux:  dispatch.NewDispatcher[*net.Link](log),
		online:    make(map[string]*net.Session),
	}
	s.registerHandlers()
	return s
}

// Run blocks until ctx is cancelled or the World link dies.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("login server listening",
		zap.String("bind", s.cfg.Login.BindAddress),
		zap.String("world", s.cfg.Login.WorldAddress),
	)

	go s.srv.AcceptLoop()
	go s.worldLoop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-s.world.Done():
			s.shutdown()
			return errWorldLinkDown
		case sess := <-s.srv.NewSessions():
			go s.sessionLoop(sess)
		}
	}
}

func (s *Server) shutdown() {
	s.srv.Shutdown()
	s.world.Close()

	s.mu.Lock()
	for _, sess := range s.online {
		sess.Close()
	}
	s.mu.Unlock()
}

// sessionLoop drains one client session's input queue.
func (s *Server) sessionLoop(sess *net.Session) {
	defer s.releaseSession(sess)

	for {
		select {
		case frame := <-sess.InQueue:
			s.clientMux.Dispatch(sess, frame.ID, frame.Payload, uint16(len(frame.Payload)))
		case <-sess.Done():
			return
		}
	}
}

// worldLoop drains the World link's input queue.
func (s *Server) worldLoop() {
	for {
		select {
		case frame := <-s.world.InQueue:
			s.worldMux.Dispatch(s.world, frame.ID, frame.Payload, uint16(len(frame.Payload)))
		case <-s.world.Done():
			return
		}
	}
}

// bindAccount claims an account id for a session. Returns false when the
// account is already online somewhere else.
func (s *Server) bindAccount(accountID string, sess *net.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.online[accountID]; taken {
		return false
	}
	s.online[accountID] = sess
	return true
}

// lookupAccount returns the session currently holding accountID, or nil.
func (s *Server) lookupAccount(accountID string) *net.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[accountID]
}

// releaseSession frees the session's account on disconnect so the player
// can log in again.
func (s *Server) releaseSession(sess *net.Session) {
	acct := sess.AccountID()
	if acct == "" {
		return
	}
	s.mu.Lock()
	if s.online[acct] == sess {
		delete(s.online, acct)
	}
	s.mu.Unlock()
	s.log.Info("account logged out", zap.String("account", acct))
}
