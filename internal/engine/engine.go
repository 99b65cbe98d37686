// Package engine implements the storage engine: load, find, add (merge),
// update (replace with cascade), remove (cascading delete), clear, and
// the edge-discovery and dangling-reference-repair primitives. Every
// public operation is wrapped by the owning graph's advisory lock;
// unexported *Locked helpers assume the lock is already held and must
// never re-acquire it (see internal/graphlock).
package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dfki-ric/xdbi/internal/graphlock"
	"github.com/dfki-ric/xdbi/internal/layout"
	"github.com/dfki-ric/xdbi/internal/xlog"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// Engine is the local, filesystem-backed storage engine for one database
// root. A single Engine may serve any number of graphs; mutual exclusion
// between operations on the same graph is provided by its Locker.
type Engine struct {
	layout *layout.Layout
	lock   *graphlock.Locker
}

// New returns an Engine rooted at dbPath.
func New(dbPath string) *Engine {
	l := layout.New(dbPath)
	return &Engine{layout: l, lock: graphlock.New(l)}
}

// DbPath returns the root database path.
func (e *Engine) DbPath() string { return e.layout.DbPath() }

// Exists reports whether the database root directory is present, used by
// DB-interface readiness checks.
func (e *Engine) Exists() bool {
	fi, err := os.Stat(e.layout.DbPath())
	return err == nil && fi.IsDir()
}

// Load returns the entity with the given uri, restricted to classname if
// non-empty. It returns (nil, nil) if no matching, well-formed entity is
// found.
func (e *Engine) Load(graph, uri, classname string) (xtype.Document, error) {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return nil, fmt.Errorf("engine: load: %w", err)
	}
	defer unlock()
	doc, found, err := e.loadLocked(graph, uri, classname)
	if err != nil || !found {
		return nil, err
	}
	return doc, nil
}

// Find returns every entity of the optional class whose own properties
// equal-match every provided key/value, or (if properties carries "uri")
// the result of a Load by that uri: one element, or none if not found.
func (e *Engine) Find(graph, classname string, properties map[string]any) ([]xtype.Document, error) {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return nil, fmt.Errorf("engine: find: %w", err)
	}
	defer unlock()
	return e.findLocked(graph, classname, properties)
}

// Clear deletes every class directory in graph, leaving the graph
// directory and its lock sentinel in place.
func (e *Engine) Clear(graph string) (bool, error) {
	unlock, err := e.lock.Guard(graph)
	if err != nil {
		return false, fmt.Errorf("engine: clear: %w", err)
	}
	defer unlock()
	return e.layout.RemoveAllFiles(graph), nil
}

func (e *Engine) loadLocked(graph, uri, classname string) (xtype.Document, bool, error) {
	if uri == "" {
		return nil, false, nil
	}
	files, err := e.layout.ListFiles(graph, classname)
	if err != nil {
		return nil, false, fmt.Errorf("engine: list files: %w", err)
	}
	fname := e.layout.FileNameFor(uri)
	path, ok := files[fname]
	if !ok {
		return nil, false, nil
	}
	return loadAndCheckFile(path, fname, classname)
}

// allEntitiesLocked scans every file of the optional class and returns
// uri -> entity for every file that passes loadAndCheck.
func (e *Engine) allEntitiesLocked(graph, classname string) (map[string]xtype.Document, error) {
	files, err := e.layout.ListFiles(graph, classname)
	if err != nil {
		return nil, fmt.Errorf("engine: list files: %w", err)
	}
	out := make(map[string]xtype.Document, len(files))
	for fname, path := range files {
		doc, ok, err := loadAndCheckFile(path, fname, classname)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out[doc.URI()] = doc
	}
	return out, nil
}

func loadAndCheckFile(path, fname, classname string) (xtype.Document, bool, error) {
	xlog.Info("engine: loading from file %s ...", path)
	data, err := os.ReadFile(path)
	if err != nil {
		xlog.Error("engine: could not read %s: %v", path, err)
		return nil, false, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		xlog.Error("engine: could not parse %s: %v", path, err)
		return nil, false, nil
	}
	doc := xtype.Document(m)
	if doc.URI() == "" {
		xlog.Error("engine: %s has no uri", path)
		return nil, false, nil
	}
	if doc.UUID() == "" {
		xlog.Error("engine: %s has no uuid", path)
		return nil, false, nil
	}
	if doc.UUID() != fname {
		xlog.Error("engine: uuid %s != filename %s", doc.UUID(), fname)
		return nil, false, nil
	}
	if doc.Classname() == "" {
		xlog.Error("engine: %s has no classname", path)
		return nil, false, nil
	}
	if classname != "" && doc.Classname() != classname {
		xlog.Error("engine: classname %s != %s", doc.Classname(), classname)
		return nil, false, nil
	}
	return doc, true, nil
}

func (e *Engine) findLocked(graph, classname string, properties map[string]any) ([]xtype.Document, error) {
	xlog.Info("engine: finding %s with properties %v ...", classname, properties)
	if uriVal, ok := properties["uri"]; ok {
		uri, ok := uriVal.(string)
		if !ok {
			return []xtype.Document{}, nil
		}
		doc, found, err := e.loadLocked(graph, uri, classname)
		if err != nil {
			return nil, err
		}
		if !found {
			return []xtype.Document{}, nil
		}
		return []xtype.Document{doc}, nil
	}

	all, err := e.allEntitiesLocked(graph, classname)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(all))
	for uri := range all {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	results := make([]xtype.Document, 0, len(all))
	for _, uri := range uris {
		doc := all[uri]
		props := doc.Properties()
		matches := true
		for k, want := range properties {
			got, ok := props[k]
			if !ok || !xtype.Equal(got, want) {
				matches = false
				break
			}
		}
		if matches {
			results = append(results, doc)
		}
	}
	return results, nil
}

func (e *Engine) storeLocked(graph string, doc xtype.Document) error {
	uri := doc.URI()
	classname := doc.Classname()
	if uri == "" || classname == "" {
		return fmt.Errorf("engine: store: missing uri or classname")
	}
	xlog.Info("engine: storing xtype %s into graph %s", uri, graph)
	path, err := e.layout.FilePathFor(graph, classname, uri)
	if err != nil {
		return fmt.Errorf("engine: store: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("engine: store: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("engine: store: write %s: %w", path, err)
	}
	return nil
}
