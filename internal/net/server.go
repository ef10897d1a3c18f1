package net

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server accepts TCP connections and creates Sessions. New sessions reach
// the owning process via the NewSessions channel; session death is observed
// through each session's Done channel.
type Server struct {
	listener     net.Listener
	nextID       atomic.Uint64
	newConns     chan *Session
	inSize       int
	outSize      int
	writeTimeout time.Duration
	log          *zap.Logger
	closeCh      chan struct{}
}

func NewServer(bindAddr string, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener:     ln,
		newConns:     make(chan *Session, 64),
		inSize:       inSize,
		outSize:      outSize,
		writeTimeout: writeTimeout,
		log:          log,
		closeCh:      make(chan struct{}),
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine. It accepts connections, creates
// sessions, and pushes them onto the newConns channel.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.inSize, s.outSize, s.writeTimeout, s.log)
		sess.Start()

		s.log.Info("peer connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("connection queue full, rejecting new session")
			sess.Close()
		}
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
