package game

import (
	"math"
	"strconv"
	"time"

	"github.com/gridgate/server/internal/data"
	"github.com/gridgate/server/internal/nav"
)

// MonsterState is the AI state machine position.
type MonsterState int

const (
	MonsterIdle MonsterState = iota
	MonsterChase
	MonsterAttack
	MonsterReturn
)

func (s MonsterState) String() string {
	switch s {
	case MonsterIdle:
		return "IDLE"
	case MonsterChase:
		return "CHASE"
	case MonsterAttack:
		return "ATTACK"
	case MonsterReturn:
		return "RETURN"
	default:
		return "UNKNOWN"
	}
}

// FSM tuning shared by every monster.
const (
	arrivalEps    = 0.1 // waypoint considered reached
	pathReplanEps = 0.1 // target drift before the path is replanned
	giveUpDist    = 5.0 // chase abandoned beyond this distance
)

// Monster is one simulated monster. Monsters share the zone grid with
// players; the uid partition keeps the two apart in AOI queries.
type Monster struct {
	UID        uint64
	TemplateID int32
	Name       string

	X, Z float32
	Yaw  float32

	SpawnX, SpawnZ float32

	HP, MaxHP int32
	Attack    int32
	Defense   int32
	Level     int32

	Speed       float32
	AggroRange  float32
	AttackRange float32
	Cooldown    time.Duration

	State         MonsterState
	TargetAccount string

	path      []nav.Vec2
	pathIndex int
	pathGoal  nav.Vec2

	cooldownLeft time.Duration

	lastSyncX, lastSyncZ float32

	// Last position indexed in the zone grid, same bookkeeping as Player.
	zoneX, zoneZ float32
}

// NewMonster instantiates a template at a spawn position.
func NewMonster(uid uint64, tmpl *data.MonsterTemplate, x, z float32) *Monster {
	return &Monster{
		UID:         uid,
		TemplateID:  tmpl.ID,
		Name:        tmpl.Name,
		X:           x,
		Z:           z,
		SpawnX:      x,
		SpawnZ:      z,
		HP:          tmpl.HP,
		MaxHP:       tmpl.HP,
		Attack:      tmpl.Attack,
		Defense:     tmpl.Defense,
		Level:       tmpl.Level,
		Speed:       tmpl.Speed,
		AggroRange:  tmpl.AggroRange,
		AttackRange: tmpl.AttackRange,
		Cooldown:    time.Duration(tmpl.AttackCooldownMs) * time.Millisecond,
		State:       MonsterIdle,
		lastSyncX:   x,
		lastSyncZ:   z,
	}
}

// monsterAccountID is the synthetic account id monsters move under, so the
// client-facing movement packet needs no separate monster schema.
func monsterAccountID(uid uint64) string {
	return "MONSTER_" + strconv.FormatUint(uid, 10)
}

// planPath charts a course to a goal and resets path progress.
func planPath(m *Monster, mesh *nav.Mesh, gx, gz float32) {
	m.path = mesh.FindPath(nav.Vec2{X: m.X, Z: m.Z}, nav.Vec2{X: gx, Z: gz})
	m.pathIndex = 0
	m.pathGoal = nav.Vec2{X: gx, Z: gz}
}

// startChase locks onto a target. Cooldown is cleared so the first swing
// after closing in lands immediately.
func startChase(m *Monster, target *Player, mesh *nav.Mesh) {
	m.State = MonsterChase
	m.TargetAccount = target.AccountID
	m.cooldownLeft = 0
	planPath(m, mesh, target.X, target.Z)
}

// startReturn sends the monster home and drops its target.
func startReturn(m *Monster, mesh *nav.Mesh) {
	m.State = MonsterReturn
	m.TargetAccount = ""
	planPath(m, mesh, m.SpawnX, m.SpawnZ)
}

// followPath advances the monster along its path by up to Speed*dt world
// units, consuming as many waypoints as the budget covers. Waypoints
// already within arrivalEps are skipped without spending budget.
func followPath(m *Monster, dt time.Duration) {
	budget := m.Speed * float32(dt.Seconds())
	for budget > 0 && m.pathIndex < len(m.path) {
		wp := m.path[m.pathIndex]
		dx := wp.X - m.X
		dz := wp.Z - m.Z
		d := dist(m.X, m.Z, wp.X, wp.Z)
		if d <= arrivalEps {
			m.pathIndex++
			continue
		}
		m.Yaw = float32(math.Atan2(float64(dz), float64(dx)) * 180 / math.Pi)
		if d <= budget {
			m.X, m.Z = wp.X, wp.Z
			budget -= d
			m.pathIndex++
			continue
		}
		m.X += dx / d * budget
		m.Z += dz / d * budget
		budget = 0
	}
}
