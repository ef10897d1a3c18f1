package net

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Session represents a single accepted TCP connection. Network I/O runs in
// dedicated goroutines; the owning process consumes decoded frames from
// InQueue and never touches the socket directly. All sends go through
// OutQueue so concurrent handlers cannot interleave frames on the wire.
type Session struct {
	ID   uint64
	conn net.Conn

	InQueue  chan Frame  // consumer reads decoded frames from here
	OutQueue chan []byte // writer goroutine reads encoded frames from here

	IP        string
	accountID atomic.Value // string; set once the peer identifies itself

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	writeTimeout time.Duration

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan Frame, inSize),
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		closeCh:      make(chan struct{}),
		writeTimeout: writeTimeout,
		log:          log.With(zap.Uint64("session", id)),
	}
	return s
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// SetAccountID records the authenticated identity for this connection.
func (s *Session) SetAccountID(id string) {
	s.accountID.Store(id)
}

// AccountID returns the identity set by SetAccountID, or "".
func (s *Session) AccountID() string {
	v, _ := s.accountID.Load().(string)
	return v
}

// Send encodes and enqueues a frame for the writer goroutine. Non-blocking:
// a full OutQueue means the peer cannot keep up, and the session is dropped
// rather than letting backpressure reach the caller.
func (s *Session) Send(id uint16, payload []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- EncodeFrame(id, payload):
	default:
		s.log.Warn("output queue full, dropping slow session")
		s.Close()
	}
}

// Close shuts the session down. Safe to call from any goroutine, any number
// of times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session shuts down.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readLoop reads frames from the TCP connection and pushes them onto
// InQueue. A malformed header (ErrFrameBounds) terminates the connection
// silently, per the framing contract.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		frame, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		// Block until the consumer has space. The readLoop goroutine is
		// per-session, so this only stalls this one client and preserves
		// strict per-socket FIFO delivery.
		select {
		case s.InQueue <- frame:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop drains OutQueue to the TCP connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if s.writeTimeout > 0 {
				s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if _, err := s.conn.Write(data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
