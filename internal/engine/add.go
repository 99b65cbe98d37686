package engine

import (
	"fmt"

	"github.com/dfki-ric/xdbi/internal/xlog"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// Add merge-adds every model into graph: an entity absent from the store
// is created as-is; an entity already present is left untouched except
// for properties and relation edges the existing document does not
// already have. It returns false if any model failed to store.
func (e *Engine) Add(graph string, models []xtype.Document) (bool, error) {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return false, fmt.Errorf("engine: add: %w", err)
	}
	defer unlock()
	return e.addLocked(graph, models)
}

func (e *Engine) addLocked(graph string, models []xtype.Document) (bool, error) {
	success := true
	for _, model := range models {
		uri, classname := model.URI(), model.Classname()
		if uri == "" || classname == "" {
			xlog.Warn("engine: add: skipping model with missing uri/classname")
			continue
		}

		existing, found, err := e.loadLocked(graph, uri, classname)
		if err != nil {
			return false, err
		}

		var output xtype.Document
		if found {
			output = mergeAdd(existing, model)
		} else {
			output = model.Clone()
		}

		if err := e.storeLocked(graph, output); err != nil {
			xlog.Error("engine: add: %v", err)
			success = false
		}
	}
	return success, nil
}

// mergeAdd merges model's properties and relation edges into existing,
// never overwriting a property key or edge target existing already has.
// existing's shape (flat or modern) is preserved.
func mergeAdd(existing, model xtype.Document) xtype.Document {
	out := existing.Clone()

	if out.HasProperties() {
		props := out["properties"].(map[string]any)
		for k, v := range model.Properties() {
			if _, has := props[k]; !has {
				props[k] = v
			}
		}
	} else {
		for k, v := range model.Properties() {
			if _, has := out[k]; !has {
				out[k] = v
			}
		}
	}

	if out.HasRelations() {
		rels := out["relations"].(map[string]any)
		for relName, v := range model.Relations() {
			arr, ok := v.([]any)
			if !ok {
				continue
			}
			existingList, _ := rels[relName].([]any)
			rels[relName] = appendMissingEdges(existingList, arr)
		}
	} else {
		for relName, v := range model.Relations() {
			arr, ok := v.([]any)
			if !ok {
				continue
			}
			existingList, _ := out[relName].([]any)
			out[relName] = appendMissingEdges(existingList, arr)
		}
	}

	return out
}

// appendMissingEdges returns existingList with every well-formed edge from
// newEdges appended, skipping any whose target already appears.
func appendMissingEdges(existingList, newEdges []any) []any {
	targets := make(map[string]struct{}, len(existingList))
	for _, v := range existingList {
		if m, ok := v.(map[string]any); ok {
			if t, ok := m["target"].(string); ok {
				targets[t] = struct{}{}
			}
		}
	}
	out := existingList
	for _, v := range newEdges {
		m, ok := v.(map[string]any)
		if !ok || !xtype.IsEdge(m) {
			continue
		}
		target, _ := m["target"].(string)
		if _, has := targets[target]; has {
			continue
		}
		targets[target] = struct{}{}
		out = append(out, m)
	}
	return out
}
