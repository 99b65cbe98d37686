package engine

import (
	"fmt"

	"github.com/dfki-ric/xdbi/internal/xlog"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// Update replaces each model's properties wholesale and its named
// relation lists: any property key the existing document has but the
// model does not is dropped, every relation list the model names replaces
// the stored list of that name, and relation lists the model does not
// name are kept unchanged. A model not yet present is stored as a create.
// Edges present before the update but missing after it are cascaded
// according to their delete_policy, exactly as in Remove. It returns
// false if any model failed to store or any cascade removal failed.
func (e *Engine) Update(graph string, models []xtype.Document) (bool, error) {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return false, fmt.Errorf("engine: update: %w", err)
	}
	defer unlock()
	return e.updateLocked(graph, models)
}

func (e *Engine) updateLocked(graph string, models []xtype.Document) (bool, error) {
	success := true
	toRemove := make(map[string]struct{})

	for _, model := range models {
		uri, classname := model.URI(), model.Classname()
		if uri == "" || classname == "" {
			xlog.Warn("engine: update: skipping model with missing uri/classname")
			continue
		}

		existing, found, err := e.loadLocked(graph, uri, classname)
		if err != nil {
			return false, err
		}

		var before EdgeSet
		if found {
			beforeAll, err := e.edgesFromLocked(graph, []string{uri})
			if err != nil {
				return false, err
			}
			before = beforeAll[uri]
		}

		var output xtype.Document
		if found {
			output = replaceInPlace(existing, model)
		} else {
			output = model.Clone()
		}

		if err := e.storeLocked(graph, output); err != nil {
			xlog.Error("engine: update: %v", err)
			success = false
			continue
		}

		if !found {
			continue
		}

		// Diff against the relation lists actually written to disk, not a
		// re-filtered edgesFrom() view: a relation updated to an empty
		// list must still be diffed, so presence of the key (even with
		// zero edges) is what decides whether it was "still specified".
		afterRelations := output.Relations()

		for relName, edges := range before {
			rawAfter, stillSpecified := afterRelations[relName]
			if !stillSpecified {
				// the updated model no longer mentions this relation at
				// all; nothing to diff against, so nothing cascades.
				continue
			}
			afterList := xtype.RelationEdges(rawAfter)
			for _, edge := range edges {
				if edgeSurvivesRaw(edge, afterList) {
					continue
				}
				for _, victim := range updateCascadeTargets(edge) {
					toRemove[victim] = struct{}{}
				}
			}
		}
	}

	for uri := range toRemove {
		ok, err := e.removeLocked(graph, uri)
		if err != nil {
			xlog.Error("engine: update: cascade remove %s: %v", uri, err)
			success = false
		} else if !ok {
			success = false
		}
	}

	return success, nil
}

func edgeSurvivesRaw(edge xtype.Edge, afterList []map[string]any) bool {
	target := edge.Target()
	for _, a := range afterList {
		if t, _ := a["target"].(string); t == target {
			return true
		}
	}
	return false
}

// replaceInPlace overlays model's properties and relations onto existing,
// dropping any existing property key the model does not specify and
// keeping any relation list the model does not name, preserving
// existing's shape (flat or modern).
func replaceInPlace(existing, model xtype.Document) xtype.Document {
	out := existing.Clone()
	inputProps := model.Properties()
	inputRels := model.Relations()

	if out.HasProperties() {
		props := out["properties"].(map[string]any)
		for k := range props {
			if _, keep := inputProps[k]; !keep {
				delete(props, k)
			}
		}
		for k, v := range inputProps {
			props[k] = v
		}
	} else {
		reserved := map[string]struct{}{"uri": {}, "uuid": {}, "classname": {}, "relations": {}}
		for k := range out {
			if _, skip := reserved[k]; skip {
				continue
			}
			if _, isRelList := out[k].([]any); isRelList {
				continue
			}
			if _, keep := inputProps[k]; !keep {
				delete(out, k)
			}
		}
		for k, v := range inputProps {
			out[k] = v
		}
	}

	if out.HasRelations() {
		rels := out["relations"].(map[string]any)
		for relName, v := range inputRels {
			if arr, ok := v.([]any); ok {
				rels[relName] = arr
			}
		}
	} else {
		for relName, v := range inputRels {
			if arr, ok := v.([]any); ok {
				out[relName] = arr
			}
		}
	}

	return out
}

// updateCascadeTargets mirrors Remove's cascade direction logic but is
// evaluated against an edge that disappeared across an update rather than
// one held by a document being deleted outright.
func updateCascadeTargets(edge xtype.Edge) []string {
	policy, hasPolicy := edge.Policy()
	forward, hasForward := edge.Forward()
	if !hasPolicy || !hasForward {
		xlog.Debug("engine: update: ignoring soft edge to %s", edge.Target())
		return nil
	}
	target, source := edge.Target(), edge.Source()
	if policy == xtype.DeleteBoth {
		return []string{target, source}
	}
	switch {
	case forward && policy == xtype.DeleteTarget:
		return []string{target}
	case forward && policy == xtype.DeleteSource:
		return []string{source}
	case !forward && policy == xtype.DeleteTarget:
		return []string{source}
	case !forward && policy == xtype.DeleteSource:
		return []string{target}
	default:
		return nil
	}
}
