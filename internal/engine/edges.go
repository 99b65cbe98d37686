package engine

import (
	"fmt"

	"github.com/dfki-ric/xdbi/internal/xtype"
)

// EdgeSet is relation-name -> edges, each with "source" injected by
// discovery (never stored on disk).
type EdgeSet map[string][]xtype.Edge

// EdgesFrom returns, for each uri in uris, its outgoing edges grouped by
// relation name.
func (e *Engine) EdgesFrom(graph string, uris []string) (map[string]EdgeSet, error) {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return nil, fmt.Errorf("engine: edgesFrom: %w", err)
	}
	defer unlock()
	return e.edgesFromLocked(graph, uris)
}

// EdgesTo returns, for each entity anywhere in graph holding an edge whose
// target is one of uris, that entity's uri mapped to the matching edges
// (grouped by relation name, "source" set to the holding entity's uri).
func (e *Engine) EdgesTo(graph string, uris []string) (map[string]EdgeSet, error) {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return nil, fmt.Errorf("engine: edgesTo: %w", err)
	}
	defer unlock()
	return e.edgesToLocked(graph, uris)
}

// RemoveEdgesTo scans every entity in graph and drops every edge whose
// target is one of uris from its relation lists, rewriting any document
// that actually changed. It repairs dangling references left behind by a
// delete that did not cascade to every holder.
func (e *Engine) RemoveEdgesTo(graph string, uris []string) error {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return fmt.Errorf("engine: removeEdgesTo: %w", err)
	}
	defer unlock()
	return e.removeEdgesToLocked(graph, uris)
}

func (e *Engine) edgesFromLocked(graph string, uris []string) (map[string]EdgeSet, error) {
	out := make(map[string]EdgeSet)
	for _, uri := range uris {
		doc, found, err := e.loadLocked(graph, uri, "")
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		for relName, v := range doc.Relations() {
			edges := xtype.RelationEdges(v)
			if len(edges) == 0 {
				continue
			}
			withSrc := make([]xtype.Edge, 0, len(edges))
			for _, edge := range edges {
				withSrc = append(withSrc, xtype.WithSource(edge, uri))
			}
			if out[uri] == nil {
				out[uri] = make(EdgeSet)
			}
			out[uri][relName] = withSrc
		}
	}
	return out, nil
}

func (e *Engine) edgesToLocked(graph string, uris []string) (map[string]EdgeSet, error) {
	targets := make(map[string]struct{}, len(uris))
	for _, u := range uris {
		targets[u] = struct{}{}
	}

	all, err := e.allEntitiesLocked(graph, "")
	if err != nil {
		return nil, err
	}

	out := make(map[string]EdgeSet)
	for holderURI, doc := range all {
		for relName, v := range doc.Relations() {
			for _, edge := range xtype.RelationEdges(v) {
				target, _ := edge["target"].(string)
				if _, match := targets[target]; !match {
					continue
				}
				if out[holderURI] == nil {
					out[holderURI] = make(EdgeSet)
				}
				out[holderURI][relName] = append(out[holderURI][relName], xtype.WithSource(edge, holderURI))
			}
		}
	}
	return out, nil
}

func (e *Engine) removeEdgesToLocked(graph string, uris []string) error {
	targets := make(map[string]struct{}, len(uris))
	for _, u := range uris {
		targets[u] = struct{}{}
	}

	all, err := e.allEntitiesLocked(graph, "")
	if err != nil {
		return err
	}

	for _, doc := range all {
		relations := doc.Relations()
		changed := false
		for relName, v := range relations {
			arr, ok := v.([]any)
			if !ok {
				continue
			}
			filtered := make([]any, 0, len(arr))
			relChanged := false
			for _, item := range arr {
				if m, ok := item.(map[string]any); ok && xtype.IsEdge(m) {
					target, _ := m["target"].(string)
					if _, drop := targets[target]; drop {
						relChanged = true
						continue
					}
				}
				filtered = append(filtered, item)
			}
			if relChanged {
				relations[relName] = filtered
				changed = true
			}
		}
		if changed {
			if err := e.storeLocked(graph, doc); err != nil {
				return err
			}
		}
	}
	return nil
}
