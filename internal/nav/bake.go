package nav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Encode serialises a mesh as a single-tile MSET set.
func Encode(m *Mesh) []byte {
	var tile bytes.Buffer
	binary.Write(&tile, binary.LittleEndian, uint32(len(m.Vertices)))
	for _, v := range m.Vertices {
		binary.Write(&tile, binary.LittleEndian, v)
	}
	binary.Write(&tile, binary.LittleEndian, uint32(len(m.Polygons)))
	for _, p := range m.Polygons {
		binary.Write(&tile, binary.LittleEndian, uint32(len(p.Indices)))
		binary.Write(&tile, binary.LittleEndian, p.Indices)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, setHeader{
		Magic:    Magic,
		Version:  Version,
		NumTiles: 1,
		Params:   m.Params,
	})
	binary.Write(&buf, binary.LittleEndian, tileHeader{
		TileRef:  1,
		DataSize: int32(tile.Len()),
	})
	buf.Write(tile.Bytes())
	return buf.Bytes()
}

// BakeDummy builds a single-quad mesh covering a flat width by height
// plane, the everything-is-walkable fallback.
func BakeDummy(width, height float32) *Mesh {
	return NewMesh(
		[]Vec2{
			{X: 0, Z: 0},
			{X: width, Z: 0},
			{X: width, Z: height},
			{X: 0, Z: height},
		},
		[]Polygon{
			{Indices: []uint32{0, 1, 2, 3}},
		},
		Params{TileWidth: width, TileHeight: height, MaxTiles: 1, MaxPolys: 1},
	)
}

// BakeObstacleCourse builds the L-shaped test map: a 50x50 room with two
// 200-unit arms along the axes. The region past the inner corner is
// unwalkable, so a path between the arms has to bend through the room.
func BakeObstacleCourse() *Mesh {
	return NewMesh(
		[]Vec2{
			{X: 0, Z: 0}, {X: 50, Z: 0}, {X: 50, Z: 50}, {X: 0, Z: 50},
			{X: 250, Z: 0}, {X: 250, Z: 50}, {X: 50, Z: 250}, {X: 0, Z: 250},
		},
		[]Polygon{
			{Indices: []uint32{0, 1, 2, 3}},
			{Indices: []uint32{1, 4, 5, 2}},
			{Indices: []uint32{3, 2, 6, 7}},
		},
		Params{TileWidth: 50, TileHeight: 50, MaxTiles: 1, MaxPolys: 10},
	)
}

// Generate bakes the obstacle-course map to path unless a file already
// exists there.
func Generate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return WriteFile(path, BakeObstacleCourse())
}

// WriteFile bakes a mesh to disk.
func WriteFile(path string, m *Mesh) error {
	if err := os.WriteFile(path, Encode(m), 0o644); err != nil {
		return fmt.Errorf("write navmesh %s: %w", path, err)
	}
	return nil
}
