package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoneEnterNearby(t *testing.T) {
	z := NewZone(1000, 1000, 50)
	z.Enter(1, 100, 100)
	z.Enter(2, 120, 110) // adjacent sector
	z.Enter(3, 700, 700) // far away

	nearby := z.Nearby(100, 100)
	assert.ElementsMatch(t, []uint64{1, 2}, nearby)
}

func TestZoneLeave(t *testing.T) {
	z := NewZone(1000, 1000, 50)
	z.Enter(1, 100, 100)
	z.Leave(1, 100, 100)

	assert.Empty(t, z.Nearby(100, 100))
}

func TestZoneMoveAcrossSectors(t *testing.T) {
	z := NewZone(1000, 1000, 50)
	z.Enter(1, 10, 10)
	z.Move(1, 10, 10, 700, 700)

	assert.Empty(t, z.Nearby(10, 10))
	assert.Equal(t, []uint64{1}, z.Nearby(700, 700))
}

func TestZoneMoveWithinSectorKeepsEntity(t *testing.T) {
	z := NewZone(1000, 1000, 50)
	z.Enter(1, 10, 10)
	z.Move(1, 10, 10, 20, 20)

	assert.Equal(t, []uint64{1}, z.Nearby(20, 20))
}

func TestZoneOutOfBoundsEnterIsIgnored(t *testing.T) {
	z := NewZone(1000, 1000, 50)
	z.Enter(1, -50, -50)
	z.Enter(2, 2000, 500)

	// Nothing lands in the border sectors and OOB queries see nothing.
	assert.Empty(t, z.Nearby(10, 10))
	assert.Empty(t, z.Nearby(999, 500))
	assert.Nil(t, z.Nearby(-50, -50))
}

func TestZoneMoveOutOfBoundsKeepsLastSector(t *testing.T) {
	z := NewZone(1000, 1000, 50)
	z.Enter(2, 10, 10)
	z.Move(2, 10, 10, 1500, 1500)

	assert.Equal(t, []uint64{2}, z.Nearby(10, 10))
}

func TestZoneBoundsAreHalfOpen(t *testing.T) {
	z := NewZone(1000, 1000, 50)
	z.Enter(1, 0, 0)
	z.Enter(2, 1000, 999) // x == width is already outside

	assert.Equal(t, []uint64{1}, z.Nearby(0, 0))
	assert.Empty(t, z.Nearby(999, 999))
}

func TestZoneNearbyCoversThreeByThree(t *testing.T) {
	z := NewZone(1000, 1000, 50)
	z.Enter(1, 125, 125) // centre sector (2,2)
	z.Enter(2, 75, 75)   // sector (1,1)
	z.Enter(3, 160, 160) // sector (3,3)
	z.Enter(4, 225, 125) // sector (4,2), outside the neighbourhood

	assert.ElementsMatch(t, []uint64{1, 2, 3}, z.Nearby(125, 125))
}
