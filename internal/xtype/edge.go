package xtype

// DeletePolicy is the cascade-delete directive carried by an edge.
type DeletePolicy string

const (
	DeleteTarget DeletePolicy = "DELETETARGET"
	DeleteSource DeletePolicy = "DELETESOURCE"
	DeleteBoth   DeletePolicy = "DELETEBOTH"
)

// Edge is an object appearing in a relation list. It is recognized as an
// edge (as opposed to opaque relation metadata) only when it carries both
// "target" and "edge_properties".
type Edge map[string]any

// IsEdge reports whether v is well-formed edge object: it has both
// "target" and "edge_properties". Objects lacking either are ignored by
// edge queries.
func IsEdge(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := m["target"]; !ok {
		return false
	}
	if _, ok := m["edge_properties"]; !ok {
		return false
	}
	return true
}

// Target returns the edge's target URI, or "" if missing/non-string.
func (e Edge) Target() string { return stringField(Document(e), "target") }

// Source returns the edge's synthesized source URI, or "" if absent.
func (e Edge) Source() string { return stringField(Document(e), "source") }

// Policy returns the edge's delete_policy and whether it was present.
func (e Edge) Policy() (DeletePolicy, bool) {
	v, ok := e["delete_policy"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return DeletePolicy(s), true
}

// Forward returns the edge's relation_dir_forward and whether it was
// present.
func (e Edge) Forward() (bool, bool) {
	v, ok := e["relation_dir_forward"]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	if !ok {
		return false, false
	}
	return b, true
}

// WithSource returns a copy of e with "source" set to uri, as injected by
// edge discovery. The stored document never carries a source field.
func WithSource(e map[string]any, uri string) Edge {
	out := make(Edge, len(e)+1)
	for k, v := range e {
		out[k] = v
	}
	out["source"] = uri
	return out
}

// RelationEdges walks a relation-name -> list value and returns the
// well-formed edges it contains, in order. Non-array values (flat-shape
// scalar properties sitting alongside relation lists) are skipped.
func RelationEdges(list any) []map[string]any {
	arr, ok := list.([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if !IsEdge(m) {
			continue
		}
		out = append(out, m)
	}
	return out
}
