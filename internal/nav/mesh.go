// Package nav loads baked navigation meshes and answers path queries for
// the simulation. The on-disk format is the tiled MSET binary produced by
// the bake tool.
package nav

import (
	"bytes"
	"container/heap"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
)

// MSET set layout, all fields little-endian:
//
//	i32  magic 'MSET'
//	i32  version (currently 1)
//	i32  numTiles
//	Params
//	numTiles * { u32 tileRef, i32 dataSize, u8[dataSize] tile data }
//
// A zero tileRef or dataSize ends the tile list early. Each tile data blob
// carries the walkable geometry:
//
//	u32  vertex count, then (f32 x, f32 z) per vertex
//	u32  polygon count, then u32 n plus n vertex indices per polygon
const (
	Magic   = 'M'<<24 | 'S'<<16 | 'E'<<8 | 'T'
	Version = 1
)

// Params is the navigation init block carried in the set header.
type Params struct {
	OrigX, OrigY, OrigZ   float32
	TileWidth, TileHeight float32
	MaxTiles, MaxPolys    int32
}

type setHeader struct {
	Magic    int32
	Version  int32
	NumTiles int32
	Params   Params
}

type tileHeader struct {
	TileRef  uint32
	DataSize int32
}

// Vec2 is a point on the walkable plane.
type Vec2 struct {
	X, Z float32
}

// Polygon is one convex walkable face, as indices into Mesh.Vertices.
type Polygon struct {
	Indices []uint32
}

// portal is a traversable shared edge between two polygons.
type portal struct {
	to   int
	a, b uint32
}

// Mesh is a loaded navigation mesh.
type Mesh struct {
	Params   Params
	Vertices []Vec2
	Polygons []Polygon

	links [][]portal
}

// NewMesh assembles a mesh from geometry and links its polygon graph.
func NewMesh(vertices []Vec2, polygons []Polygon, params Params) *Mesh {
	m := &Mesh{Params: params, Vertices: vertices, Polygons: polygons}
	m.buildLinks()
	return m
}

// Load reads and validates an MSET file.
func Load(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read navmesh %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses MSET bytes.
func Decode(data []byte) (*Mesh, error) {
	r := bytes.NewReader(data)

	var hdr setHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("navmesh set header: %w", err)
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("navmesh: bad magic %#x", hdr.Magic)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("navmesh: unsupported version %d", hdr.Version)
	}

	m := &Mesh{Params: hdr.Params}
	for i := int32(0); i < hdr.NumTiles; i++ {
		var th tileHeader
		if err := binary.Read(r, binary.LittleEndian, &th); err != nil {
			return nil, fmt.Errorf("navmesh tile %d header: %w", i, err)
		}
		if th.TileRef == 0 || th.DataSize <= 0 {
			break
		}
		blob := make([]byte, th.DataSize)
		if _, err := io.ReadFull(r, blob); err != nil {
			return nil, fmt.Errorf("navmesh tile %d data: %w", i, err)
		}
		if err := m.addTile(blob); err != nil {
			return nil, fmt.Errorf("navmesh tile %d: %w", i, err)
		}
	}

	m.buildLinks()
	return m, nil
}

// addTile decodes one tile's geometry into the mesh. Indices are
// tile-local on disk and rebased onto the shared vertex table here.
func (m *Mesh) addTile(blob []byte) error {
	r := bytes.NewReader(blob)
	base := uint32(len(m.Vertices))

	var vertCount uint32
	if err := binary.Read(r, binary.LittleEndian, &vertCount); err != nil {
		return fmt.Errorf("vertex count: %w", err)
	}
	verts := make([]Vec2, vertCount)
	for i := range verts {
		if err := binary.Read(r, binary.LittleEndian, &verts[i]); err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	m.Vertices = append(m.Vertices, verts...)

	var polyCount uint32
	if err := binary.Read(r, binary.LittleEndian, &polyCount); err != nil {
		return fmt.Errorf("polygon count: %w", err)
	}
	for i := uint32(0); i < polyCount; i++ {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("polygon %d: %w", i, err)
		}
		if n < 3 {
			return fmt.Errorf("polygon %d: degenerate (%d vertices)", i, n)
		}
		indices := make([]uint32, n)
		if err := binary.Read(r, binary.LittleEndian, indices); err != nil {
			return fmt.Errorf("polygon %d indices: %w", i, err)
		}
		for j, idx := range indices {
			if idx >= vertCount {
				return fmt.Errorf("polygon %d: index %d out of range", i, idx)
			}
			indices[j] = idx + base
		}
		m.Polygons = append(m.Polygons, Polygon{Indices: indices})
	}
	return nil
}

// buildLinks connects every pair of polygons that share an edge.
func (m *Mesh) buildLinks() {
	type edgeKey struct{ lo, hi uint32 }
	m.links = make([][]portal, len(m.Polygons))
	owner := make(map[edgeKey]int)
	for pi, p := range m.Polygons {
		n := len(p.Indices)
		for e := 0; e < n; e++ {
			a, b := p.Indices[e], p.Indices[(e+1)%n]
			key := edgeKey{lo: min(a, b), hi: max(a, b)}
			if qi, seen := owner[key]; seen {
				m.links[pi] = append(m.links[pi], portal{to: qi, a: a, b: b})
				m.links[qi] = append(m.links[qi], portal{to: pi, a: a, b: b})
			} else {
				owner[key] = pi
			}
		}
	}
}

// FindPath returns waypoints from start to end, routed through the portal
// midpoints of the polygon chain between the two positions. Off-mesh
// endpoints and unreachable goals degrade to the direct segment so callers
// always get a course instead of an empty path.
func (m *Mesh) FindPath(start, end Vec2) []Vec2 {
	sp := m.locate(start)
	ep := m.locate(end)
	if sp < 0 || ep < 0 || sp == ep {
		return []Vec2{start, end}
	}

	chain := m.route(sp, ep)
	if chain == nil {
		return []Vec2{start, end}
	}

	path := make([]Vec2, 0, len(chain)+1)
	path = append(path, start)
	for i := 0; i+1 < len(chain); i++ {
		path = append(path, m.portalMid(chain[i], chain[i+1]))
	}
	return append(path, end)
}

// locate returns the index of the polygon containing the point, or -1.
func (m *Mesh) locate(p Vec2) int {
	for i := range m.Polygons {
		if m.contains(i, p) {
			return i
		}
	}
	return -1
}

// contains tests one convex polygon, tolerating either winding. Points on
// an edge count as inside.
func (m *Mesh) contains(pi int, p Vec2) bool {
	idx := m.Polygons[pi].Indices
	var pos, neg bool
	for e := 0; e < len(idx); e++ {
		a := m.Vertices[idx[e]]
		b := m.Vertices[idx[(e+1)%len(idx)]]
		cross := (b.X-a.X)*(p.Z-a.Z) - (b.Z-a.Z)*(p.X-a.X)
		if cross > 0 {
			pos = true
		}
		if cross < 0 {
			neg = true
		}
	}
	return !(pos && neg)
}

func (m *Mesh) centroid(pi int) Vec2 {
	var c Vec2
	idx := m.Polygons[pi].Indices
	for _, i := range idx {
		c.X += m.Vertices[i].X
		c.Z += m.Vertices[i].Z
	}
	n := float32(len(idx))
	return Vec2{X: c.X / n, Z: c.Z / n}
}

func (m *Mesh) portalMid(from, to int) Vec2 {
	for _, l := range m.links[from] {
		if l.to == to {
			a, b := m.Vertices[l.a], m.Vertices[l.b]
			return Vec2{X: (a.X + b.X) / 2, Z: (a.Z + b.Z) / 2}
		}
	}
	return m.centroid(to)
}

type polyNode struct {
	poly int
	cost float32
}

type polyQueue []polyNode

func (q polyQueue) Len() int           { return len(q) }
func (q polyQueue) Less(i, j int) bool { return q[i].cost < q[j].cost }
func (q polyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *polyQueue) Push(x any)        { *q = append(*q, x.(polyNode)) }
func (q *polyQueue) Pop() any {
	old := *q
	n := len(old)
	v := old[n-1]
	*q = old[:n-1]
	return v
}

// route runs A* over the polygon graph, weighing edges by centroid
// distance. Returns the polygon chain from..to, or nil when disconnected.
func (m *Mesh) route(from, to int) []int {
	const unvisited = -2
	prev := make([]int, len(m.Polygons))
	gScore := make([]float32, len(m.Polygons))
	for i := range prev {
		prev[i] = unvisited
	}
	prev[from] = -1
	goal := m.centroid(to)

	q := &polyQueue{{poly: from, cost: vdist(m.centroid(from), goal)}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(polyNode).poly
		if cur == to {
			break
		}
		for _, l := range m.links[cur] {
			g := gScore[cur] + vdist(m.centroid(cur), m.centroid(l.to))
			if prev[l.to] != unvisited && g >= gScore[l.to] {
				continue
			}
			prev[l.to] = cur
			gScore[l.to] = g
			heap.Push(q, polyNode{poly: l.to, cost: g + vdist(m.centroid(l.to), goal)})
		}
	}

	if prev[to] == unvisited {
		return nil
	}
	var chain []int
	for p := to; p != -1; p = prev[p] {
		chain = append(chain, p)
	}
	slices.Reverse(chain)
	return chain
}

func vdist(a, b Vec2) float32 {
	dx := float64(b.X - a.X)
	dz := float64(b.Z - a.Z)
	return float32(math.Sqrt(dx*dx + dz*dz))
}
