package game

import (
	"time"

	"github.com/gridgate/server/internal/core/event"
	"github.com/gridgate/server/internal/core/system"
	"github.com/gridgate/server/internal/nav"
	"go.uber.org/zap"
)

// aiSystem drives every monster's state machine once per tick.
//
// IDLE    scan for a player within aggro range
// CHASE   close on the target along a navmesh path
// ATTACK  swing on cooldown while the target stays in reach
// RETURN  walk home, then heal to full and go idle
type aiSystem struct {
	state  *State
	mesh   *nav.Mesh
	combat *Combat
	log    *zap.Logger
}

func newAISystem(state *State, mesh *nav.Mesh, combat *Combat, bus *event.Bus, log *zap.Logger) *aiSystem {
	s := &aiSystem{state: state, mesh: mesh, combat: combat, log: log}
	event.Subscribe(bus, s.onPlayerLeft)
	return s
}

func (s *aiSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *aiSystem) Update(dt time.Duration) {
	for _, m := range s.state.monsters {
		s.step(m, dt)
		s.state.IndexMonster(m)
	}
}

// onPlayerLeft drops the departed player as a target. Delivered at tick
// start, before this tick's FSM steps.
func (s *aiSystem) onPlayerLeft(ev PlayerLeft) {
	for _, m := range s.state.monsters {
		if m.TargetAccount == ev.AccountID {
			startReturn(m, s.mesh)
		}
	}
}

func (s *aiSystem) step(m *Monster, dt time.Duration) {
	switch m.State {
	case MonsterIdle:
		s.scanForTarget(m)
	case MonsterChase:
		s.chase(m, dt)
	case MonsterAttack:
		s.attack(m, dt)
	case MonsterReturn:
		s.returnHome(m, dt)
	}
}

// scanForTarget picks the closest player within aggro range.
func (s *aiSystem) scanForTarget(m *Monster) {
	var best *Player
	var bestD float32
	for _, p := range s.state.NearbyPlayers(m.X, m.Z) {
		d := dist(m.X, m.Z, p.X, p.Z)
		if d > m.AggroRange {
			continue
		}
		if best == nil || d < bestD {
			best, bestD = p, d
		}
	}
	if best != nil {
		startChase(m, best, s.mesh)
		s.log.Debug("monster aggro",
			zap.Uint64("uid", m.UID),
			zap.String("target", best.AccountID),
		)
	}
}

func (s *aiSystem) chase(m *Monster, dt time.Duration) {
	target := s.state.Player(m.TargetAccount)
	if target == nil {
		startReturn(m, s.mesh)
		return
	}

	d := dist(m.X, m.Z, target.X, target.Z)
	if d > giveUpDist {
		startReturn(m, s.mesh)
		return
	}
	if d <= m.AttackRange {
		m.State = MonsterAttack
		return
	}

	// Replan only once the target has drifted off the path's goal.
	if dist(m.pathGoal.X, m.pathGoal.Z, target.X, target.Z) > pathReplanEps {
		planPath(m, s.mesh, target.X, target.Z)
	}
	followPath(m, dt)
}

func (s *aiSystem) attack(m *Monster, dt time.Duration) {
	target := s.state.Player(m.TargetAccount)
	if target == nil {
		startReturn(m, s.mesh)
		return
	}

	if dist(m.X, m.Z, target.X, target.Z) > m.AttackRange {
		m.State = MonsterChase
		planPath(m, s.mesh, target.X, target.Z)
		return
	}

	m.cooldownLeft -= dt
	if m.cooldownLeft <= 0 {
		m.cooldownLeft += m.Cooldown
		s.combat.MonsterAttackPlayer(m, target)
	}
}

func (s *aiSystem) returnHome(m *Monster, dt time.Duration) {
	followPath(m, dt)
	if dist(m.X, m.Z, m.SpawnX, m.SpawnZ) <= arrivalEps {
		m.X, m.Z = m.SpawnX, m.SpawnZ
		m.State = MonsterIdle
		m.HP = m.MaxHP
		m.path = nil
		m.pathIndex = 0
	}
}
