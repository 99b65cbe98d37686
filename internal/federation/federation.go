// Package federation composes one writable "main" DbInterface and N
// read-only "import" DbInterfaces into a single read surface, with
// declared-order lookup, URI-based deduplication, and write routing
// restricted to main.
package federation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dfki-ric/xdbi/internal/dbiface"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// Member names one import interface for per-server working-graph
// addressing via SetImportWorkingGraph / ImportWorkingGraph.
type Member struct {
	Name string
	dbiface.DbInterface
}

// Federated aggregates a main interface and an ordered list of import
// interfaces. The zero value is not usable; construct with New.
type Federated struct {
	main    dbiface.DbInterface
	imports []Member
}

// New returns a Federated interface. main may be nil, in which case every
// write operation is a no-op returning false, matching the "no writable
// member" case described by the spec. imports are consulted in the given
// order for load/find/uris; that declared order is the externally visible
// priority (earlier entries win ties), independent of how a particular
// backend happens to store duplicates.
func New(main dbiface.DbInterface, imports []Member) *Federated {
	named := make([]Member, len(imports))
	copy(named, imports)
	for i := range named {
		if named[i].Name == "" {
			named[i].Name = uuid.NewString()
		}
	}
	return &Federated{main: main, imports: named}
}

// SetWorkingGraph applies to the main interface.
func (f *Federated) SetWorkingGraph(graph string) {
	if f.main != nil {
		f.main.SetWorkingGraph(graph)
	}
}

// WorkingGraph returns the main interface's working graph.
func (f *Federated) WorkingGraph() string {
	if f.main == nil {
		return ""
	}
	return f.main.WorkingGraph()
}

// SetImportWorkingGraph sets the working graph of the named import
// member, returning an error if no member carries that name.
func (f *Federated) SetImportWorkingGraph(name, graph string) error {
	for _, m := range f.imports {
		if m.Name == name {
			m.SetWorkingGraph(graph)
			return nil
		}
	}
	return fmt.Errorf("federation: no import server named %q", name)
}

// ImportWorkingGraph returns the working graph of the named import
// member, returning an error if no member carries that name.
func (f *Federated) ImportWorkingGraph(name string) (string, error) {
	for _, m := range f.imports {
		if m.Name == name {
			return m.WorkingGraph(), nil
		}
	}
	return "", fmt.Errorf("federation: no import server named %q", name)
}

// ReadOnly is false whenever a writable main interface is configured.
func (f *Federated) ReadOnly() bool {
	return f.main == nil || f.main.ReadOnly()
}

// ImportReadOnly returns the named import member's own ReadOnly, as
// opposed to ReadOnly which reports on main only.
func (f *Federated) ImportReadOnly(name string) (bool, error) {
	for _, m := range f.imports {
		if m.Name == name {
			return m.ReadOnly(), nil
		}
	}
	return false, fmt.Errorf("federation: no import server named %q", name)
}

// AbsoluteDbPath delegates to the main interface.
func (f *Federated) AbsoluteDbPath() string {
	if f.main == nil {
		return ""
	}
	return f.main.AbsoluteDbPath()
}

// IsReady requires the main interface (if any) and every import member to
// be ready.
func (f *Federated) IsReady() bool {
	if f.main != nil && !f.main.IsReady() {
		return false
	}
	for _, m := range f.imports {
		if !m.IsReady() {
			return false
		}
	}
	return true
}

// Load consults the import members in declared order and returns the
// first non-empty match. No fallback to main is attempted.
func (f *Federated) Load(ctx context.Context, uri, classname string) (xtype.Document, error) {
	for _, m := range f.imports {
		doc, err := m.Load(ctx, uri, classname)
		if err != nil {
			return nil, fmt.Errorf("federation: load via %q: %w", m.Name, err)
		}
		if doc != nil {
			return doc, nil
		}
	}
	return nil, nil
}

// Find consults every import member in declared order, keeping the first
// occurrence of each URI (deduplication is by URI only, not content).
func (f *Federated) Find(ctx context.Context, classname string, properties map[string]any) ([]xtype.Document, error) {
	seen := make(map[string]struct{})
	var out []xtype.Document
	for _, m := range f.imports {
		docs, err := m.Find(ctx, classname, properties)
		if err != nil {
			return nil, fmt.Errorf("federation: find via %q: %w", m.Name, err)
		}
		for _, d := range docs {
			uri := d.URI()
			if _, dup := seen[uri]; dup {
				continue
			}
			seen[uri] = struct{}{}
			out = append(out, d)
		}
	}
	return out, nil
}

// FindResult pairs a matched entity with the member interface it came
// from, as returned by FindAll.
type FindResult struct {
	Document xtype.Document
	From     string
}

// FindAll is like Find but returns every match from every import member,
// tagged with its source, without deduplication.
func (f *Federated) FindAll(ctx context.Context, classname string, properties map[string]any) ([]FindResult, error) {
	var out []FindResult
	for _, m := range f.imports {
		docs, err := m.Find(ctx, classname, properties)
		if err != nil {
			return nil, fmt.Errorf("federation: findAll via %q: %w", m.Name, err)
		}
		for _, d := range docs {
			out = append(out, FindResult{Document: d, From: m.Name})
		}
	}
	return out, nil
}

// URIs returns the set union of identities matching classname/properties
// across every import member.
func (f *Federated) URIs(ctx context.Context, classname string, properties map[string]any) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range f.imports {
		uris, err := m.URIs(ctx, classname, properties)
		if err != nil {
			return nil, fmt.Errorf("federation: uris via %q: %w", m.Name, err)
		}
		for _, u := range uris {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out, nil
}

// Add routes to the main interface only; if none is configured it is a
// no-op returning false.
func (f *Federated) Add(ctx context.Context, models []xtype.Document) (bool, error) {
	if f.main == nil {
		return false, nil
	}
	return f.main.Add(ctx, models)
}

// Update routes to the main interface only; if none is configured it is a
// no-op returning false.
func (f *Federated) Update(ctx context.Context, models []xtype.Document) (bool, error) {
	if f.main == nil {
		return false, nil
	}
	return f.main.Update(ctx, models)
}

// Remove routes to the main interface only; if none is configured it is a
// no-op returning false.
func (f *Federated) Remove(ctx context.Context, uri string) (bool, error) {
	if f.main == nil {
		return false, nil
	}
	return f.main.Remove(ctx, uri)
}

// Clear routes to the main interface only; if none is configured it is a
// no-op returning false.
func (f *Federated) Clear(ctx context.Context) (bool, error) {
	if f.main == nil {
		return false, nil
	}
	return f.main.Clear(ctx)
}

var _ dbiface.DbInterface = (*Federated)(nil)
