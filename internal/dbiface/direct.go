package dbiface

import (
	"context"
	"sync"

	"github.com/dfki-ric/xdbi/internal/engine"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// Direct is the DbInterface variant backed directly by a local storage
// Engine. It is not safe for concurrent use by multiple goroutines against
// its mutable working-graph field; callers either serialize access or use
// one Direct per goroutine sharing the underlying Engine.
type Direct struct {
	engine *engine.Engine

	mu       sync.RWMutex
	graph    string
	readOnly bool
}

// NewDirect returns a Direct interface over dbPath. readOnly disables add,
// update, remove and clear.
func NewDirect(dbPath string, readOnly bool) *Direct {
	return &Direct{engine: engine.New(dbPath), readOnly: readOnly}
}

func (d *Direct) SetWorkingGraph(graph string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.graph = graph
}

func (d *Direct) WorkingGraph() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.graph
}

func (d *Direct) ReadOnly() bool { return d.readOnly }

// IsReady reports whether a working graph is set and the database root
// exists.
func (d *Direct) IsReady() bool {
	return d.WorkingGraph() != "" && d.engine.Exists()
}

// AbsoluteDbPath returns the canonical local database root path.
func (d *Direct) AbsoluteDbPath() string { return d.engine.DbPath() }

func (d *Direct) Load(_ context.Context, uri, classname string) (xtype.Document, error) {
	if !d.IsReady() {
		return nil, ErrNotReady
	}
	return d.engine.Load(d.WorkingGraph(), uri, classname)
}

func (d *Direct) Find(_ context.Context, classname string, properties map[string]any) ([]xtype.Document, error) {
	if !d.IsReady() {
		return nil, ErrNotReady
	}
	return d.engine.Find(d.WorkingGraph(), classname, properties)
}

func (d *Direct) URIs(ctx context.Context, classname string, properties map[string]any) ([]string, error) {
	docs, err := d.Find(ctx, classname, properties)
	if err != nil {
		return nil, err
	}
	return URIsFrom(docs), nil
}

func (d *Direct) Add(_ context.Context, models []xtype.Document) (bool, error) {
	if !d.IsReady() {
		return false, ErrNotReady
	}
	if d.readOnly {
		return false, ErrReadOnly
	}
	return d.engine.Add(d.WorkingGraph(), models)
}

func (d *Direct) Update(_ context.Context, models []xtype.Document) (bool, error) {
	if !d.IsReady() {
		return false, ErrNotReady
	}
	if d.readOnly {
		return false, ErrReadOnly
	}
	return d.engine.Update(d.WorkingGraph(), models)
}

func (d *Direct) Remove(_ context.Context, uri string) (bool, error) {
	if !d.IsReady() {
		return false, ErrNotReady
	}
	if d.readOnly {
		return false, ErrReadOnly
	}
	return d.engine.Remove(d.WorkingGraph(), uri)
}

func (d *Direct) Clear(_ context.Context) (bool, error) {
	if !d.IsReady() {
		return false, ErrNotReady
	}
	if d.readOnly {
		return false, ErrReadOnly
	}
	return d.engine.Clear(d.WorkingGraph())
}

var _ DbInterface = (*Direct)(nil)
