package game

import (
	"time"

	"github.com/gridgate/server/internal/core/system"
)

// syncSystem periodically pushes monster positions to nearby players.
// Monster movement is otherwise invisible to clients: only the sync
// broadcast and combat packets carry it off the server.
type syncSystem struct {
	state    *State
	interval time.Duration
	elapsed  time.Duration
}

func newSyncSystem(state *State, interval time.Duration) *syncSystem {
	return &syncSystem{state: state, interval: interval}
}

func (s *syncSystem) Phase() system.Phase { return system.PhaseOutput }

func (s *syncSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0

	for _, m := range s.state.monsters {
		if dist(m.lastSyncX, m.lastSyncZ, m.X, m.Z) <= moveEpsilon {
			continue
		}
		m.lastSyncX, m.lastSyncZ = m.X, m.Z
		if witnesses := s.state.NearbyPlayers(m.X, m.Z); len(witnesses) > 0 {
			broadcastMove(monsterAccountID(m.UID), m.X, 0, m.Z, m.Yaw, witnesses)
		}
	}
}
