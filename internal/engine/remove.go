package engine

import (
	"fmt"

	"github.com/dfki-ric/xdbi/internal/xlog"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// Remove deletes uri and cascades to every entity its delete-policy-bearing
// edges say must go with it, in either traversal direction. It then
// repairs dangling references left behind in any surviving document. It
// returns false if any file failed to delete.
func (e *Engine) Remove(graph, uri string) (bool, error) {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return false, fmt.Errorf("engine: remove: %w", err)
	}
	defer unlock()
	return e.removeLocked(graph, uri)
}

func (e *Engine) removeLocked(graph, uri string) (bool, error) {
	toRemove := make(map[string]struct{})
	toVisit := []string{uri}

	for len(toVisit) > 0 {
		u := toVisit[0]
		toVisit = toVisit[1:]
		if _, done := toRemove[u]; done {
			continue
		}
		toRemove[u] = struct{}{}

		forward, err := e.edgesFromLocked(graph, []string{u})
		if err != nil {
			return false, err
		}
		for _, edges := range forward[u] {
			for _, edge := range edges {
				next, follow := cascadeFromSource(edge)
				if follow {
					toVisit = append(toVisit, next)
				}
			}
		}

		backward, err := e.edgesToLocked(graph, []string{u})
		if err != nil {
			return false, err
		}
		for holderURI, edges := range backward {
			for _, relEdges := range edges {
				for _, edge := range relEdges {
					if cascadeFromTarget(edge) {
						toVisit = append(toVisit, holderURI)
					}
				}
			}
		}
	}

	success := e.layout.RemoveFiles(graph, toRemove)

	removedURIs := make([]string, 0, len(toRemove))
	for u := range toRemove {
		removedURIs = append(removedURIs, u)
	}
	if err := e.removeEdgesToLocked(graph, removedURIs); err != nil {
		xlog.Error("engine: remove: repairing dangling edges: %v", err)
		success = false
	}

	return success, nil
}

// cascadeFromSource decides, for an outgoing edge held by the entity being
// removed, whether its target must also be removed.
func cascadeFromSource(edge xtype.Edge) (target string, follow bool) {
	policy, hasPolicy := edge.Policy()
	forward, hasForward := edge.Forward()
	if !hasPolicy || !hasForward {
		xlog.Debug("engine: remove: ignoring soft edge to %s", edge.Target())
		return "", false
	}
	target = edge.Target()
	switch {
	case policy == xtype.DeleteBoth:
		return target, true
	case forward && policy == xtype.DeleteTarget:
		return target, true
	case !forward && policy == xtype.DeleteSource:
		return target, true
	default:
		return "", false
	}
}

// cascadeFromTarget decides, for an incoming edge held by some other
// entity that points at the entity being removed, whether that holder
// must also be removed.
func cascadeFromTarget(edge xtype.Edge) bool {
	policy, hasPolicy := edge.Policy()
	forward, hasForward := edge.Forward()
	if !hasPolicy || !hasForward {
		xlog.Debug("engine: remove: ignoring soft edge from %s", edge.Source())
		return false
	}
	switch {
	case policy == xtype.DeleteBoth:
		return true
	case forward && policy == xtype.DeleteSource:
		return true
	case !forward && policy == xtype.DeleteTarget:
		return true
	default:
		return false
	}
}
