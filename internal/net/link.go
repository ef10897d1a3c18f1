package net

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Link is a persistent outbound server-to-server connection (Gateway→Game,
// Login→World). Same I/O discipline as Session: a read loop feeds InQueue,
// a write loop drains OutQueue, sends are serialised through the queue.
//
// There is no reconnect: a process that loses its upstream has nothing
// useful left to do, so the owner watches Done and shuts down.
type Link struct {
	conn net.Conn

	InQueue  chan Frame
	OutQueue chan []byte

	RemoteAddr string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	writeTimeout time.Duration

	log *zap.Logger
}

// Dial connects to addr and starts the link's I/O goroutines. A dial
// failure is returned to the caller; at boot that is a fatal diagnostic.
func Dial(addr string, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) (*Link, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	l := &Link{
		conn:         conn,
		InQueue:      make(chan Frame, inSize),
		OutQueue:     make(chan []byte, outSize),
		RemoteAddr:   addr,
		closeCh:      make(chan struct{}),
		writeTimeout: writeTimeout,
		log:          log.With(zap.String("link", addr)),
	}
	go l.readLoop()
	go l.writeLoop()
	return l, nil
}

// Send encodes and enqueues a frame. Blocks when the queue is full: an S2S
// peer that stops draining is a fatal condition anyway, and dropping frames
// here would silently lose simulation events.
func (l *Link) Send(id uint16, payload []byte) {
	if l.closed.Load() {
		return
	}
	select {
	case l.OutQueue <- EncodeFrame(id, payload):
	case <-l.closeCh:
	}
}

// Close shuts the link down.
func (l *Link) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.closeCh)
		l.conn.Close()
	})
}

func (l *Link) IsClosed() bool {
	return l.closed.Load()
}

// Done is closed when the link goes down, whether locally or by the peer.
func (l *Link) Done() <-chan struct{} {
	return l.closeCh
}

func (l *Link) readLoop() {
	defer l.Close()

	for {
		frame, err := ReadFrame(l.conn)
		if err != nil {
			if !l.closed.Load() {
				l.log.Error("s2s link read failed", zap.Error(err))
			}
			return
		}
		select {
		case l.InQueue <- frame:
		case <-l.closeCh:
			return
		}
	}
}

func (l *Link) writeLoop() {
	defer l.Close()

	for {
		select {
		case data := <-l.OutQueue:
			if l.writeTimeout > 0 {
				l.conn.SetWriteDeadline(time.Now().Add(l.writeTimeout))
			}
			if _, err := l.conn.Write(data); err != nil {
				if !l.closed.Load() {
					l.log.Error("s2s link write failed", zap.Error(err))
				}
				return
			}
		case <-l.closeCh:
			return
		}
	}
}
