package federation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfki-ric/xdbi/internal/dbiface"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// fakeMember is a minimal in-memory DbInterface used to exercise
// federation semantics without touching the filesystem.
type fakeMember struct {
	docs     map[string]xtype.Document
	graph    string
	readOnly bool
}

func newFakeMember(docs ...xtype.Document) *fakeMember {
	m := &fakeMember{docs: make(map[string]xtype.Document)}
	for _, d := range docs {
		m.docs[d.URI()] = d
	}
	return m
}

func (f *fakeMember) SetWorkingGraph(g string) { f.graph = g }
func (f *fakeMember) WorkingGraph() string     { return f.graph }
func (f *fakeMember) IsReady() bool            { return true }
func (f *fakeMember) ReadOnly() bool           { return f.readOnly }
func (f *fakeMember) AbsoluteDbPath() string   { return "fake" }
func (f *fakeMember) Load(_ context.Context, uri, _ string) (xtype.Document, error) {
	return f.docs[uri], nil
}
func (f *fakeMember) Find(_ context.Context, classname string, properties map[string]any) ([]xtype.Document, error) {
	var out []xtype.Document
	for _, d := range f.docs {
		if classname != "" && d.Classname() != classname {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
func (f *fakeMember) URIs(ctx context.Context, classname string, properties map[string]any) ([]string, error) {
	docs, _ := f.Find(ctx, classname, properties)
	return dbiface.URIsFrom(docs), nil
}
func (f *fakeMember) Add(_ context.Context, models []xtype.Document) (bool, error) {
	for _, m := range models {
		f.docs[m.URI()] = m
	}
	return true, nil
}
func (f *fakeMember) Update(ctx context.Context, models []xtype.Document) (bool, error) {
	return f.Add(ctx, models)
}
func (f *fakeMember) Remove(_ context.Context, uri string) (bool, error) {
	delete(f.docs, uri)
	return true, nil
}
func (f *fakeMember) Clear(_ context.Context) (bool, error) {
	f.docs = make(map[string]xtype.Document)
	return true, nil
}

var _ dbiface.DbInterface = (*fakeMember)(nil)

func mkDoc(uri, classname string) xtype.Document {
	return xtype.Document{"uri": uri, "uuid": xtype.HashURI(uri), "classname": classname, "properties": map[string]any{}, "relations": map[string]any{}}
}

func TestLoadFirstDeclaredMatchWins(t *testing.T) {
	a := newFakeMember(mkDoc("u1", "T"))
	b := newFakeMember(mkDoc("u1", "Other")) // also has u1, declared later
	f := New(nil, []Member{{Name: "a", DbInterface: a}, {Name: "b", DbInterface: b}})

	got, err := f.Load(context.Background(), "u1", "")
	require.NoError(t, err)
	require.NotNil(t, got, "expected match from a")
	assert.Equal(t, "T", got.Classname(), "first declared member must win")
}

func TestFindDedupesByURIFirstOccurrenceWins(t *testing.T) {
	fromA := mkDoc("u1", "T")
	fromA["properties"] = map[string]any{"from": "a"}
	fromB := mkDoc("u1", "T")
	fromB["properties"] = map[string]any{"from": "b"}
	a := newFakeMember(fromA)
	b := newFakeMember(fromB)
	f := New(nil, []Member{{Name: "a", DbInterface: a}, {Name: "b", DbInterface: b}})

	results, err := f.Find(context.Background(), "T", nil)
	require.NoError(t, err)
	require.Len(t, results, 1, "expected exactly one deduplicated result")
	assert.Equal(t, "a", results[0].Properties()["from"], "first declared member must win")
}

func TestURIsIsSetUnion(t *testing.T) {
	a := newFakeMember(mkDoc("u1", "T"))
	b := newFakeMember(mkDoc("u2", "T"))
	f := New(nil, []Member{{Name: "a", DbInterface: a}, {Name: "b", DbInterface: b}})

	uris, err := f.URIs(context.Background(), "T", nil)
	require.NoError(t, err)
	assert.Len(t, uris, 2, "expected union of 2 uris")
}

func TestWriteWithoutMainIsNoOp(t *testing.T) {
	f := New(nil, nil)
	ok, err := f.Add(context.Background(), []xtype.Document{mkDoc("u1", "T")})
	require.NoError(t, err)
	assert.False(t, ok, "expected no-op add to report false")
}

func TestWriteRoutesToMainOnly(t *testing.T) {
	main := newFakeMember()
	imp := newFakeMember()
	f := New(main, []Member{{Name: "imp", DbInterface: imp}})

	ok, err := f.Add(context.Background(), []xtype.Document{mkDoc("u1", "T")})
	require.NoError(t, err)
	assert.True(t, ok)

	_, has := imp.docs["u1"]
	assert.False(t, has, "write must not reach import members")

	_, has = main.docs["u1"]
	assert.True(t, has, "write must reach main")
}

func TestSetImportWorkingGraphByName(t *testing.T) {
	imp := newFakeMember()
	f := New(nil, []Member{{Name: "imp", DbInterface: imp}})
	require.NoError(t, f.SetImportWorkingGraph("imp", "g2"))

	g, err := f.ImportWorkingGraph("imp")
	require.NoError(t, err)
	assert.Equal(t, "g2", g)

	assert.Error(t, f.SetImportWorkingGraph("missing", "g3"), "expected error for unknown import name")
}
