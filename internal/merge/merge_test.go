package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreeWayNoChange(t *testing.T) {
	o := map[string]any{"k": 1.0}
	merged, conflict := ThreeWay(o, o, o)
	assert.False(t, conflict, "identical documents must not conflict")
	assert.Equal(t, 1.0, merged["k"])
}

func TestThreeWayOursChangedAlone(t *testing.T) {
	o := map[string]any{"k": 1.0}
	ours := map[string]any{"k": 2.0}
	theirs := map[string]any{"k": 1.0}
	merged, conflict := ThreeWay(o, ours, theirs)
	assert.False(t, conflict)
	assert.Equal(t, 2.0, merged["k"], "ours should win")
}

func TestThreeWayTheirsChangedAlone(t *testing.T) {
	o := map[string]any{"k": 1.0}
	ours := map[string]any{"k": 1.0}
	theirs := map[string]any{"k": 3.0}
	merged, conflict := ThreeWay(o, ours, theirs)
	assert.False(t, conflict)
	assert.Equal(t, 3.0, merged["k"], "theirs should win")
}

func TestThreeWayConflict(t *testing.T) {
	o := map[string]any{"k": 1.0}
	ours := map[string]any{"k": 2.0}
	theirs := map[string]any{"k": 3.0}
	merged, conflict := ThreeWay(o, ours, theirs)
	require.True(t, conflict)

	node, ok := merged["k"].(map[string]any)
	require.True(t, ok, "expected conflict node, got %#v", merged["k"])
	assert.Equal(t, ConflictMarker, node["conflict"])
	assert.Equal(t, 1.0, node["original"])
	assert.Equal(t, 2.0, node["ours"])
	assert.Equal(t, 3.0, node["theirs"])
}

func TestThreeWayRecursesIntoObjects(t *testing.T) {
	o := map[string]any{"sub": map[string]any{"a": 1.0, "b": 1.0}}
	ours := map[string]any{"sub": map[string]any{"a": 2.0, "b": 1.0}}
	theirs := map[string]any{"sub": map[string]any{"a": 1.0, "b": 9.0}}
	merged, conflict := ThreeWay(o, ours, theirs)
	require.False(t, conflict)

	sub := merged["sub"].(map[string]any)
	assert.Equal(t, 2.0, sub["a"])
	assert.Equal(t, 9.0, sub["b"])
}

func TestThreeWaySymmetricUpToConflictFields(t *testing.T) {
	o := map[string]any{"k": 1.0}
	a := map[string]any{"k": 2.0}
	b := map[string]any{"k": 3.0}
	m1, c1 := ThreeWay(o, a, b)
	m2, c2 := ThreeWay(o, b, a)
	assert.Equal(t, c1, c2, "conflict flag should be symmetric")

	n1 := m1["k"].(map[string]any)
	n2 := m2["k"].(map[string]any)
	assert.Equal(t, n1["original"], n2["original"])
	assert.Equal(t, n1["ours"], n2["theirs"], "ours/theirs should swap symmetrically")
	assert.Equal(t, n1["theirs"], n2["ours"])
}
