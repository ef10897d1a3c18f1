package game

// Zone is a sector grid over the walkable plane, indexing players and
// monsters alike. World bounds are half-open: [0,width) x [0,height).
// Accessed only from the game loop goroutine, so no locks.
type Zone struct {
	sectorSize    float32
	width, height float32
	cols, rows    int
	sectors       []map[uint64]struct{}
}

// NewZone builds a grid covering width by height world units, partitioned
// into square sectors.
func NewZone(width, height, sectorSize int) *Zone {
	cols := (width + sectorSize - 1) / sectorSize
	rows := (height + sectorSize - 1) / sectorSize
	return &Zone{
		sectorSize: float32(sectorSize),
		width:      float32(width),
		height:     float32(height),
		cols:       cols,
		rows:       rows,
		sectors:    make([]map[uint64]struct{}, cols*rows),
	}
}

// Contains reports whether a position lies inside the world bounds.
func (z *Zone) Contains(x, zz float32) bool {
	return x >= 0 && x < z.width && zz >= 0 && zz < z.height
}

// cell maps an in-bounds position to sector coordinates. Out-of-bounds
// positions report ok=false and every grid operation treats them as a
// no-op rather than clamping into a border sector.
func (z *Zone) cell(x, zz float32) (cx, cz int, ok bool) {
	if !z.Contains(x, zz) {
		return 0, 0, false
	}
	return int(x / z.sectorSize), int(zz / z.sectorSize), true
}

func (z *Zone) index(x, zz float32) (int, bool) {
	cx, cz, ok := z.cell(x, zz)
	if !ok {
		return 0, false
	}
	return cz*z.cols + cx, true
}

// Enter places an entity into the grid. Out-of-bounds positions are not
// indexed.
func (z *Zone) Enter(uid uint64, x, zz float32) {
	i, ok := z.index(x, zz)
	if !ok {
		return
	}
	if z.sectors[i] == nil {
		z.sectors[i] = make(map[uint64]struct{})
	}
	z.sectors[i][uid] = struct{}{}
}

// Leave removes an entity from the grid.
func (z *Zone) Leave(uid uint64, x, zz float32) {
	i, ok := z.index(x, zz)
	if !ok {
		return
	}
	if z.sectors[i] != nil {
		delete(z.sectors[i], uid)
	}
}

// Move updates an entity's sector when its position changes. A move to an
// out-of-bounds position is ignored, leaving the entity in its last valid
// sector.
func (z *Zone) Move(uid uint64, oldX, oldZ, newX, newZ float32) {
	newI, ok := z.index(newX, newZ)
	if !ok {
		return
	}
	oldI, ok := z.index(oldX, oldZ)
	if !ok {
		// Never indexed before; this is the first valid position.
		z.Enter(uid, newX, newZ)
		return
	}
	if oldI == newI {
		return
	}
	z.Leave(uid, oldX, oldZ)
	z.Enter(uid, newX, newZ)
}

// Nearby returns all entity uids in the 3x3 sector neighbourhood around a
// position, or nil when the position is outside the world. Callers do
// fine-grained distance filtering.
func (z *Zone) Nearby(x, zz float32) []uint64 {
	cx, cz, ok := z.cell(x, zz)
	if !ok {
		return nil
	}
	var result []uint64
	for dz := -1; dz <= 1; dz++ {
		nz := cz + dz
		if nz < 0 || nz >= z.rows {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			nx := cx + dx
			if nx < 0 || nx >= z.cols {
				continue
			}
			for uid := range z.sectors[nz*z.cols+nx] {
				result = append(result, uid)
			}
		}
	}
	return result
}
