package xtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClassname(t *testing.T) {
	assert.Equal(t, "xrock-Component", NormalizeClassname("xrock:Component"))
}

func TestHashURIDeterministic(t *testing.T) {
	a := HashURI("http://example.org/u1")
	b := HashURI("http://example.org/u1")
	assert.Equal(t, a, b, "HashURI must be deterministic")

	c := HashURI("http://example.org/u2")
	assert.NotEqual(t, a, c, "HashURI collided for distinct URIs")
}

func TestPropertiesShapeSwitch(t *testing.T) {
	modern := Document{"uri": "u1", "properties": map[string]any{"a": 1.0}}
	assert.True(t, modern.HasProperties())
	assert.Contains(t, modern.Properties(), "a")

	flat := Document{"uri": "u1", "a": 1.0}
	assert.False(t, flat.HasProperties())
	assert.Contains(t, flat.Properties(), "uri", "flat Properties() is the whole document")
}

func TestEqualIgnoresKeyOrder(t *testing.T) {
	a := map[string]any{"x": 1.0, "y": 2.0}
	b := map[string]any{"y": 2.0, "x": 1.0}
	assert.True(t, Equal(a, b))
}

func TestEdgeRecognition(t *testing.T) {
	e := map[string]any{"target": "u2", "edge_properties": map[string]any{}}
	assert.True(t, IsEdge(e))

	notEdge := map[string]any{"target": "u2"}
	assert.False(t, IsEdge(notEdge), "edge missing edge_properties must not be recognized")
}
