package game

import (
	"errors"
	"math"
)

// MonsterUIDBase splits the uid space: players allocate below it, monsters
// at and above it. A packet's target uid alone tells which table to hit.
const MonsterUIDBase uint64 = 10000

// moveEpsilon is the smallest displacement worth a zone update.
const moveEpsilon = 0.05

// Starting stats for a freshly joined player.
const (
	playerMaxHP   int32 = 100
	playerAttack  int32 = 10
	playerDefense int32 = 5
	playerLevel   int32 = 1
)

// sender is the outbound half of a gateway connection. *net.Session in
// production, a capture fake in tests.
type sender interface {
	Send(id uint16, payload []byte)
}

// Player is one simulated player.
type Player struct {
	AccountID string
	UID       uint64

	X, Y, Z float32
	Yaw     float32

	HP, MaxHP int32
	Attack    int32
	Defense   int32
	Level     int32

	Out sender

	// Last position indexed in the zone grid. Kept separate from X/Z so a
	// run of sub-epsilon moves cannot desync the grid.
	zoneX, zoneZ float32
}

var errUIDExhausted = errors.New("game: player uid space exhausted")

// State owns every simulation table. Single-writer: only the game loop
// goroutine touches it.
type State struct {
	zone *Zone

	players      map[string]*Player
	playersByUID map[uint64]*Player
	monsters     map[uint64]*Monster

	nextUID uint64
}

func NewState(zone *Zone) *State {
	return &State{
		zone:         zone,
		players:      make(map[string]*Player),
		playersByUID: make(map[uint64]*Player),
		monsters:     make(map[uint64]*Monster),
		nextUID:      1,
	}
}

// AddPlayer creates a player at the given position and enters it into the
// zone grid.
func (st *State) AddPlayer(accountID string, out sender, x, y, z, yaw float32) (*Player, error) {
	if _, exists := st.players[accountID]; exists {
		return nil, errors.New("game: account already in simulation")
	}
	if st.nextUID >= MonsterUIDBase {
		return nil, errUIDExhausted
	}

	p := &Player{
		AccountID: accountID,
		UID:       st.nextUID,
		X:         x, Y: y, Z: z,
		Yaw:     yaw,
		HP:      playerMaxHP,
		MaxHP:   playerMaxHP,
		Attack:  playerAttack,
		Defense: playerDefense,
		Level:   playerLevel,
		Out:     out,
		zoneX:   x,
		zoneZ:   z,
	}
	st.nextUID++

	st.players[accountID] = p
	st.playersByUID[p.UID] = p
	st.zone.Enter(p.UID, x, z)
	return p, nil
}

// RemovePlayer takes a player out of the simulation. Returns nil when the
// account is not present, making repeated leave requests harmless.
func (st *State) RemovePlayer(accountID string) *Player {
	p := st.players[accountID]
	if p == nil {
		return nil
	}
	delete(st.players, accountID)
	delete(st.playersByUID, p.UID)
	st.zone.Leave(p.UID, p.zoneX, p.zoneZ)
	return p
}

// MovePlayer applies a position update. The zone grid is only touched when
// the displacement since the last indexed position exceeds moveEpsilon, and
// an out-of-bounds destination keeps the player in its last valid sector.
func (st *State) MovePlayer(p *Player, x, y, z, yaw float32) {
	p.X, p.Y, p.Z = x, y, z
	p.Yaw = yaw
	if dist(p.zoneX, p.zoneZ, x, z) <= moveEpsilon {
		return
	}
	if !st.zone.Contains(x, z) {
		return
	}
	st.zone.Move(p.UID, p.zoneX, p.zoneZ, x, z)
	p.zoneX, p.zoneZ = x, z
}

func (st *State) Player(accountID string) *Player {
	return st.players[accountID]
}

func (st *State) PlayerByUID(uid uint64) *Player {
	return st.playersByUID[uid]
}

// AddMonster enters a monster into the simulation and the sector grid.
// Sectors hold players and monsters intermixed; the uid partition tells
// them apart at lookup time.
func (st *State) AddMonster(m *Monster) {
	st.monsters[m.UID] = m
	st.zone.Enter(m.UID, m.X, m.Z)
	m.zoneX, m.zoneZ = m.X, m.Z
}

// IndexMonster re-indexes a monster after it moved, under the same epsilon
// and bounds rules as players.
func (st *State) IndexMonster(m *Monster) {
	if dist(m.zoneX, m.zoneZ, m.X, m.Z) <= moveEpsilon {
		return
	}
	if !st.zone.Contains(m.X, m.Z) {
		return
	}
	st.zone.Move(m.UID, m.zoneX, m.zoneZ, m.X, m.Z)
	m.zoneX, m.zoneZ = m.X, m.Z
}

func (st *State) Monster(uid uint64) *Monster {
	return st.monsters[uid]
}

// NearbyPlayers returns every player in the 3x3 sector neighbourhood of a
// position, the AOI set for broadcasts and aggro scans.
func (st *State) NearbyPlayers(x, z float32) []*Player {
	uids := st.zone.Nearby(x, z)
	players := make([]*Player, 0, len(uids))
	for _, uid := range uids {
		if uid >= MonsterUIDBase {
			continue
		}
		if p := st.playersByUID[uid]; p != nil {
			players = append(players, p)
		}
	}
	return players
}

func dist(x1, z1, x2, z2 float32) float32 {
	dx := float64(x2 - x1)
	dz := float64(z2 - z1)
	return float32(math.Sqrt(dx*dx + dz*dz))
}
