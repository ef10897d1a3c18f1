package game

import (
	"time"

	"github.com/gridgate/server/internal/core/event"
	"github.com/gridgate/server/internal/core/system"
)

// PlayerLeft is emitted when a player is removed from the simulation,
// whether by a leave request or a gateway failure.
type PlayerLeft struct {
	AccountID string
}

// eventSystem delivers last tick's events before anything else runs.
type eventSystem struct {
	bus *event.Bus
}

func (s *eventSystem) Phase() system.Phase { return system.PhaseEvents }

func (s *eventSystem) Update(time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
