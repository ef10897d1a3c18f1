// Package dispatch routes framed packets to handlers by id in O(1).
// A flat slot table indexed by packet id replaces switch/map dispatch:
// cache-friendly, no hashing, and registration of an unknown id is a
// startup-time error rather than a runtime surprise.
package dispatch

import (
	"fmt"

	"github.com/gridgate/server/internal/protocol"
	"go.uber.org/zap"
)

// HandlerFunc is the callback signature for packet handlers. The payload is
// the frame body without the 4-byte header.
type HandlerFunc[S any] func(sess S, payload []byte, size uint16)

// Dispatcher owns a fixed-size handler table for one peer class. Each
// process holds one dispatcher per peer class (e.g. Gateway has a
// client-facing one and a Game-facing one).
type Dispatcher[S any] struct {
	handlers []HandlerFunc[S]
	log      *zap.Logger
}

func NewDispatcher[S any](log *zap.Logger) *Dispatcher[S] {
	return &Dispatcher[S]{
		handlers: make([]HandlerFunc[S], protocol.MaxPacketID),
		log:      log,
	}
}

// Register assigns a handler to a packet id. The upper sentinel and anything
// beyond it is reserved and rejected.
func (d *Dispatcher[S]) Register(id uint16, fn HandlerFunc[S]) error {
	if id >= protocol.MaxPacketID {
		return fmt.Errorf("dispatch: packet id %d exceeds table size %d", id, protocol.MaxPacketID)
	}
	d.handlers[id] = fn
	return nil
}

// MustRegister is Register for init-time wiring, where a bad id is a bug.
func (d *Dispatcher[S]) MustRegister(id uint16, fn HandlerFunc[S]) {
	if err := d.Register(id, fn); err != nil {
		panic(err)
	}
}

// Dispatch looks up the slot for id and invokes it. Returns false when the
// id is out of range or no handler is registered; the caller keeps reading.
func (d *Dispatcher[S]) Dispatch(sess S, id uint16, payload []byte, size uint16) bool {
	if id >= protocol.MaxPacketID || d.handlers[id] == nil {
		d.log.Warn("unhandled packet id",
			zap.Uint16("id", id),
			zap.Uint16("size", size),
		)
		return false
	}
	d.safeCall(d.handlers[id], sess, id, payload, size)
	return true
}

// safeCall executes a handler with panic recovery so a single bad packet
// cannot take down the process.
func (d *Dispatcher[S]) safeCall(fn HandlerFunc[S], sess S, id uint16, payload []byte, size uint16) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("handler panic recovered",
				zap.Uint16("id", id),
				zap.Any("panic", rec),
			)
		}
	}()
	fn(sess, payload, size)
}
