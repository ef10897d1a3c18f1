package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	ids      []uint16
	payloads [][]byte
}

func (f *fakeSender) Send(id uint16, payload []byte) {
	f.ids = append(f.ids, id)
	f.payloads = append(f.payloads, payload)
}

func newTestState() *State {
	return NewState(NewZone(1000, 1000, 50))
}

func TestAddPlayerAllocatesSequentialUIDs(t *testing.T) {
	st := newTestState()

	a, err := st.AddPlayer("alice", &fakeSender{}, 10, 0, 10, 0)
	require.NoError(t, err)
	b, err := st.AddPlayer("bob", &fakeSender{}, 20, 0, 20, 0)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), a.UID)
	assert.Equal(t, uint64(2), b.UID)
	assert.Less(t, b.UID, MonsterUIDBase)

	assert.Same(t, a, st.Player("alice"))
	assert.Same(t, a, st.PlayerByUID(1))
	assert.Equal(t, playerMaxHP, a.HP)
}

func TestAddPlayerRejectsDuplicate(t *testing.T) {
	st := newTestState()
	_, err := st.AddPlayer("alice", &fakeSender{}, 0, 0, 0, 0)
	require.NoError(t, err)

	_, err = st.AddPlayer("alice", &fakeSender{}, 0, 0, 0, 0)
	assert.Error(t, err)
}

func TestAddPlayerExhaustsBelowMonsterBase(t *testing.T) {
	st := newTestState()
	st.nextUID = MonsterUIDBase - 1

	last, err := st.AddPlayer("last", &fakeSender{}, 0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, MonsterUIDBase-1, last.UID)

	_, err = st.AddPlayer("overflow", &fakeSender{}, 0, 0, 0, 0)
	assert.ErrorIs(t, err, errUIDExhausted)
}

func TestRemovePlayerIsIdempotent(t *testing.T) {
	st := newTestState()
	p, err := st.AddPlayer("alice", &fakeSender{}, 100, 0, 100, 0)
	require.NoError(t, err)

	assert.Same(t, p, st.RemovePlayer("alice"))
	assert.Nil(t, st.RemovePlayer("alice"))
	assert.Nil(t, st.Player("alice"))
	assert.Empty(t, st.NearbyPlayers(100, 100))
}

func TestMovePlayerSkipsZoneUpdateBelowEpsilon(t *testing.T) {
	st := newTestState()
	p, err := st.AddPlayer("alice", &fakeSender{}, 100, 0, 100, 0)
	require.NoError(t, err)

	st.MovePlayer(p, 100.01, 0, 100.01, 45)
	assert.Equal(t, float32(100.01), p.X)
	assert.Equal(t, float32(45), p.Yaw)
	assert.Equal(t, float32(100), p.zoneX)

	// Many sub-epsilon moves still cannot desync the grid: displacement is
	// measured against the last indexed position, not the previous packet.
	for i := 0; i < 100; i++ {
		st.MovePlayer(p, p.X+0.04, 0, p.Z, 0)
	}
	assert.InDelta(t, p.X, p.zoneX, moveEpsilon)

	found := st.NearbyPlayers(p.X, p.Z)
	require.Len(t, found, 1)
	assert.Same(t, p, found[0])
}

func TestMovePlayerOutOfBoundsKeepsLastSector(t *testing.T) {
	st := newTestState()
	p, err := st.AddPlayer("alice", &fakeSender{}, 100, 0, 100, 0)
	require.NoError(t, err)

	st.MovePlayer(p, -40, 0, 100, 0)
	assert.Equal(t, float32(-40), p.X)
	assert.Equal(t, float32(100), p.zoneX)

	found := st.NearbyPlayers(100, 100)
	require.Len(t, found, 1)
	assert.Same(t, p, found[0])
}

func TestMonstersShareTheSectorGrid(t *testing.T) {
	st := newTestState()
	m := NewMonster(MonsterUIDBase, testTemplate(), 100, 100)
	st.AddMonster(m)
	p, err := st.AddPlayer("alice", &fakeSender{}, 110, 0, 110, 0)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint64{p.UID, m.UID}, st.zone.Nearby(100, 100))

	// Monsters never surface through the player-side AOI query.
	near := st.NearbyPlayers(100, 100)
	require.Len(t, near, 1)
	assert.Same(t, p, near[0])
}

func TestIndexMonsterTracksMovement(t *testing.T) {
	st := newTestState()
	m := NewMonster(MonsterUIDBase, testTemplate(), 100, 100)
	st.AddMonster(m)

	m.X, m.Z = 700, 700
	st.IndexMonster(m)

	assert.Empty(t, st.zone.Nearby(100, 100))
	assert.Equal(t, []uint64{m.UID}, st.zone.Nearby(700, 700))
}

func TestNearbyPlayersFiltersBySector(t *testing.T) {
	st := newTestState()
	for i, pos := range []float32{100, 130, 700} {
		_, err := st.AddPlayer(fmt.Sprintf("p%d", i), &fakeSender{}, pos, 0, pos, 0)
		require.NoError(t, err)
	}

	near := st.NearbyPlayers(100, 100)
	require.Len(t, near, 2)
}
