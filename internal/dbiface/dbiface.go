// Package dbiface defines the abstract DB interface contract shared by
// the direct (local engine), remote (HTTP client) and federated variants,
// and implements the direct variant itself.
package dbiface

import (
	"context"
	"fmt"

	"github.com/dfki-ric/xdbi/internal/xtype"
)

// DbInterface is the capability set every variant (Direct, Remote,
// Federated) implements. Every operation implicitly targets the
// currently selected working graph.
type DbInterface interface {
	SetWorkingGraph(graph string)
	WorkingGraph() string
	IsReady() bool
	ReadOnly() bool
	AbsoluteDbPath() string

	Load(ctx context.Context, uri, classname string) (xtype.Document, error)
	Find(ctx context.Context, classname string, properties map[string]any) ([]xtype.Document, error)
	URIs(ctx context.Context, classname string, properties map[string]any) ([]string, error)
	Add(ctx context.Context, models []xtype.Document) (bool, error)
	Update(ctx context.Context, models []xtype.Document) (bool, error)
	Remove(ctx context.Context, uri string) (bool, error)
	Clear(ctx context.Context) (bool, error)
}

// ErrNotReady is returned when an operation is attempted before a working
// graph is set or the backing store is unreachable.
var ErrNotReady = fmt.Errorf("dbiface: interface is not ready")

// ErrReadOnly is returned when a mutating operation targets a read-only
// interface.
var ErrReadOnly = fmt.Errorf("dbiface: interface is read-only")

// URIsFrom projects a Find result down to its identity set, in the order
// Find returned them, used by the Direct and Remote variants' URIs().
func URIsFrom(docs []xtype.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.URI())
	}
	return out
}
