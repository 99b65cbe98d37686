package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfki-ric/xdbi/internal/xtype"
)

func doc(uri, classname string, properties, relations map[string]any) xtype.Document {
	return xtype.Document{
		"uri":       uri,
		"uuid":      xtype.HashURI(uri),
		"classname": classname,
		"properties": func() map[string]any {
			if properties == nil {
				return map[string]any{}
			}
			return properties
		}(),
		"relations": func() map[string]any {
			if relations == nil {
				return map[string]any{}
			}
			return relations
		}(),
	}
}

func edge(target string, policy xtype.DeletePolicy, forward bool) map[string]any {
	return map[string]any{
		"target":               target,
		"edge_properties":      map[string]any{},
		"delete_policy":        string(policy),
		"relation_dir_forward": forward,
	}
}

func softEdge(target string) map[string]any {
	return map[string]any{
		"target":          target,
		"edge_properties": map[string]any{},
	}
}

func TestAddSkipsMalformedModelWithoutFailingBatch(t *testing.T) {
	e := New(t.TempDir())
	malformed := xtype.Document{"properties": map[string]any{"x": 1.0}, "relations": map[string]any{}}
	ok, err := e.Add("g1", []xtype.Document{
		doc("a", "Thing", map[string]any{"x": 1.0}, nil),
		malformed,
		doc("b", "Thing", map[string]any{"x": 2.0}, nil),
	})
	require.NoError(t, err)
	assert.True(t, ok, "a malformed model is skipped-with-logging, not fatal to the batch")

	gotA, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	assert.NotNil(t, gotA)

	gotB, err := e.Load("g1", "b", "")
	require.NoError(t, err)
	assert.NotNil(t, gotB)
}

func TestUpdateSkipsMalformedModelWithoutFailingBatch(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Add("g1", []xtype.Document{doc("a", "Thing", map[string]any{"x": 1.0}, nil)})
	require.NoError(t, err)

	malformed := xtype.Document{"properties": map[string]any{"x": 1.0}, "relations": map[string]any{}}
	ok, err := e.Update("g1", []xtype.Document{
		doc("a", "Thing", map[string]any{"x": 9.0}, nil),
		malformed,
	})
	require.NoError(t, err)
	assert.True(t, ok, "a malformed model is skipped-with-logging, not fatal to the batch")

	got, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	assert.Equal(t, 9.0, got.Properties()["x"])
}

func TestAddCreatesNewEntity(t *testing.T) {
	e := New(t.TempDir())
	ok, err := e.Add("g1", []xtype.Document{doc("a", "Thing", map[string]any{"x": 1.0}, nil)})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.URI())
}

func TestAddMergeDoesNotOverwriteExisting(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Add("g1", []xtype.Document{doc("a", "Thing", map[string]any{"x": 1.0}, nil)})
	require.NoError(t, err)
	_, err = e.Add("g1", []xtype.Document{doc("a", "Thing", map[string]any{"x": 2.0, "y": 3.0}, nil)})
	require.NoError(t, err)

	got, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	props := got.Properties()
	assert.Equal(t, 1.0, props["x"], "existing value must not be overwritten")
	assert.Equal(t, 3.0, props["y"], "new key should be merged in")
}

func TestAddMergesEdgesWithoutDuplicatingTargets(t *testing.T) {
	e := New(t.TempDir())
	rel := map[string]any{"knows": []any{edge("b", xtype.DeleteTarget, true)}}
	_, err := e.Add("g1", []xtype.Document{doc("a", "Thing", nil, rel)})
	require.NoError(t, err)

	rel2 := map[string]any{"knows": []any{edge("b", xtype.DeleteTarget, true), edge("c", xtype.DeleteTarget, true)}}
	_, err = e.Add("g1", []xtype.Document{doc("a", "Thing", nil, rel2)})
	require.NoError(t, err)

	got, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	list := got.Relations()["knows"].([]any)
	assert.Len(t, list, 2, "expected distinct edges, no duplicate target")
}

func TestFindByProperties(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Add("g1", []xtype.Document{
		doc("a", "Thing", map[string]any{"color": "red"}, nil),
		doc("b", "Thing", map[string]any{"color": "blue"}, nil),
	})
	require.NoError(t, err)

	results, err := e.Find("g1", "Thing", map[string]any{"color": "red"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].URI())
}

func TestFindByURIDelegatesToLoad(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Add("g1", []xtype.Document{doc("a", "Thing", nil, nil)})
	require.NoError(t, err)

	results, err := e.Find("g1", "", map[string]any{"uri": "a"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestUpdateReplacesWholesale(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Add("g1", []xtype.Document{doc("a", "Thing", map[string]any{"x": 1.0, "y": 2.0}, nil)})
	require.NoError(t, err)
	_, err = e.Update("g1", []xtype.Document{doc("a", "Thing", map[string]any{"x": 9.0}, nil)})
	require.NoError(t, err)

	got, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	props := got.Properties()
	assert.Equal(t, 9.0, props["x"])
	assert.NotContains(t, props, "y", "wholesale replace should drop keys absent from the new model")
}

func TestUpdateCascadesDeleteTargetWhenEdgeDropped(t *testing.T) {
	e := New(t.TempDir())
	rel := map[string]any{"owns": []any{edge("b", xtype.DeleteTarget, true)}}
	_, err := e.Add("g1", []xtype.Document{
		doc("a", "Thing", nil, rel),
		doc("b", "Thing", nil, nil),
	})
	require.NoError(t, err)

	_, err = e.Update("g1", []xtype.Document{doc("a", "Thing", nil, map[string]any{"owns": []any{}})})
	require.NoError(t, err)

	got, err := e.Load("g1", "b", "")
	require.NoError(t, err)
	assert.Nil(t, got, "expected b to be cascade-deleted")
}

func TestRemoveCascadesDeleteTarget(t *testing.T) {
	e := New(t.TempDir())
	rel := map[string]any{"owns": []any{edge("b", xtype.DeleteTarget, true)}}
	_, err := e.Add("g1", []xtype.Document{
		doc("a", "Thing", nil, rel),
		doc("b", "Thing", nil, nil),
	})
	require.NoError(t, err)

	_, err = e.Remove("g1", "a")
	require.NoError(t, err)

	gotA, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	assert.Nil(t, gotA)

	gotB, err := e.Load("g1", "b", "")
	require.NoError(t, err)
	assert.Nil(t, gotB, "expected b cascade-removed")
}

func TestRemoveRepairsDanglingBackreference(t *testing.T) {
	e := New(t.TempDir())
	rel := map[string]any{"owns": []any{softEdge("b")}}
	_, err := e.Add("g1", []xtype.Document{
		doc("a", "Thing", nil, rel),
		doc("b", "Thing", nil, nil),
	})
	require.NoError(t, err)

	_, err = e.Remove("g1", "b")
	require.NoError(t, err)

	got, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	list := got.Relations()["owns"].([]any)
	assert.Empty(t, list, "expected dangling edge removed")
}

func TestClearRemovesAllEntitiesButKeepsGraph(t *testing.T) {
	e := New(t.TempDir())
	_, err := e.Add("g1", []xtype.Document{doc("a", "Thing", nil, nil)})
	require.NoError(t, err)

	ok, err := e.Clear("g1")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := e.Load("g1", "a", "")
	require.NoError(t, err)
	assert.Nil(t, got, "expected entity gone after clear")
}
