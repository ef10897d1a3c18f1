package nav

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObstacleCourseRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dummy_map.bin")
	baked := BakeObstacleCourse()
	require.NoError(t, WriteFile(path, baked))

	m, err := Load(path)
	require.NoError(t, err)

	require.Len(t, m.Vertices, 8)
	require.Len(t, m.Polygons, 3)
	assert.Equal(t, baked.Params, m.Params)
	assert.Equal(t, []uint32{0, 1, 2, 3}, m.Polygons[0].Indices)
	assert.Equal(t, Vec2{X: 250, Z: 50}, m.Vertices[5])
}

func TestGenerateSkipsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dummy_map.bin")
	require.NoError(t, WriteFile(path, BakeDummy(10, 10)))

	require.NoError(t, Generate(path))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Polygons, 1) // the flat plane was left untouched
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := Encode(BakeDummy(10, 10))
	data[0] = 'X'

	_, err := Decode(data)
	assert.ErrorContains(t, err, "bad magic")
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	data := Encode(BakeDummy(10, 10))
	data[4] = 99

	_, err := Decode(data)
	assert.ErrorContains(t, err, "unsupported version")
}

func TestDecodeRejectsOutOfRangeIndex(t *testing.T) {
	m := BakeDummy(10, 10)
	m.Polygons[0].Indices[3] = 42

	_, err := Decode(Encode(m))
	assert.ErrorContains(t, err, "out of range")
}

func TestDecodeRejectsTruncated(t *testing.T) {
	data := Encode(BakeDummy(10, 10))

	_, err := Decode(data[:len(data)-2])
	assert.Error(t, err)
}

func TestFindPathWithinOnePolygonIsStraight(t *testing.T) {
	m := BakeDummy(100, 100)

	path := m.FindPath(Vec2{X: 1, Z: 2}, Vec2{X: 50, Z: 60})
	require.Len(t, path, 2)
	assert.Equal(t, Vec2{X: 1, Z: 2}, path[0])
	assert.Equal(t, Vec2{X: 50, Z: 60}, path[1])
}

func TestFindPathRoutesThroughPortal(t *testing.T) {
	m := BakeObstacleCourse()

	// Room to east arm: one portal crossing at the shared edge midpoint.
	path := m.FindPath(Vec2{X: 40, Z: 40}, Vec2{X: 200, Z: 10})
	require.Len(t, path, 3)
	assert.Equal(t, Vec2{X: 50, Z: 25}, path[1])
}

func TestFindPathBendsBetweenArms(t *testing.T) {
	m := BakeObstacleCourse()

	// East arm to north arm crosses the room via both portals.
	path := m.FindPath(Vec2{X: 200, Z: 25}, Vec2{X: 25, Z: 200})
	require.Len(t, path, 4)
	assert.Equal(t, Vec2{X: 50, Z: 25}, path[1])
	assert.Equal(t, Vec2{X: 25, Z: 50}, path[2])
}

func TestFindPathDependsOnGeometry(t *testing.T) {
	course := BakeObstacleCourse()
	var empty Mesh

	start, end := Vec2{X: 40, Z: 40}, Vec2{X: 200, Z: 10}
	assert.NotEqual(t, (&empty).FindPath(start, end), course.FindPath(start, end))
}

func TestFindPathFallsBackOffMesh(t *testing.T) {
	m := BakeObstacleCourse()

	// (200,200) sits in the unwalkable notch past the inner corner.
	path := m.FindPath(Vec2{X: 40, Z: 40}, Vec2{X: 200, Z: 200})
	assert.Equal(t, []Vec2{{X: 40, Z: 40}, {X: 200, Z: 200}}, path)
}

func TestFindPathOnEmptyMeshIsStraight(t *testing.T) {
	var m Mesh

	path := m.FindPath(Vec2{X: 1, Z: 1}, Vec2{X: 2, Z: 2})
	assert.Equal(t, []Vec2{{X: 1, Z: 1}, {X: 2, Z: 2}}, path)
}
