package game

import (
	"time"

	"github.com/gridgate/server/internal/core/system"
	"github.com/gridgate/server/internal/net"
)

// inputSystem drains gateway packet queues at tick start. Each connection
// gets a per-tick budget so one flooding gateway cannot starve the loop;
// whatever is left over waits in the queue for the next tick.
type inputSystem struct {
	srv    *Server
	budget int
}

func newInputSystem(srv *Server, budget int) *inputSystem {
	return &inputSystem{srv: srv, budget: budget}
}

func (s *inputSystem) Phase() system.Phase { return system.PhaseInput }

func (s *inputSystem) Update(time.Duration) {
	for _, sess := range s.srv.gateways {
		s.drain(sess)
	}
}

func (s *inputSystem) drain(sess *net.Session) {
	for n := 0; n < s.budget; n++ {
		select {
		case frame := <-sess.InQueue:
			s.srv.mux.Dispatch(sess, frame.ID, frame.Payload, uint16(len(frame.Payload)))
		default:
			return
		}
	}
}
