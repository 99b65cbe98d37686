// Package graphlock implements the per-graph advisory lock: an exclusive
// flock on a sentinel file within the graph's directory, created 0666 if
// absent. It is process-wide mutual exclusion for that graph and honored
// by any process touching the on-disk store, not just this one.
//
// Reentrance is NOT provided: a goroutine that already holds a graph's
// lock must not call Lock for the same graph again from the same
// process; every public engine operation takes the lock exactly once,
// and internal helpers assume it is already held.
package graphlock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/dfki-ric/xdbi/internal/layout"
)

// Locker acquires and releases the per-graph sentinel lock for one
// database root.
type Locker struct {
	layout *layout.Layout

	mu      sync.Mutex
	fileFor map[string]*os.File // graph -> open, flocked sentinel
}

// New returns a Locker for the database rooted at l.
func New(l *layout.Layout) *Locker {
	return &Locker{layout: l, fileFor: make(map[string]*os.File)}
}

// Lock blocks until it acquires the exclusive advisory lock for graph.
// Failure to acquire is fatal for the calling operation.
func (g *Locker) Lock(graph string) error {
	if graph == "" {
		return fmt.Errorf("graphlock: graph is empty")
	}
	path, err := g.layout.MutexFilePath(graph)
	if err != nil {
		return fmt.Errorf("graphlock: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("graphlock: mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o666)
	if err != nil {
		return fmt.Errorf("graphlock: open %s: %w", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return fmt.Errorf("graphlock: flock %s: %w", path, err)
	}

	g.mu.Lock()
	g.fileFor[graph] = f
	g.mu.Unlock()
	return nil
}

// Unlock releases the lock for graph. It is a no-op if graph was never
// locked by this Locker.
func (g *Locker) Unlock(graph string) {
	g.mu.Lock()
	f, ok := g.fileFor[graph]
	if ok {
		delete(g.fileFor, graph)
	}
	g.mu.Unlock()
	if !ok {
		return
	}
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	f.Close()
}

// Guard acquires the lock for graph and returns a function that releases
// it; callers defer the returned function so the lock is released on
// every exit path (including panics), mirroring the source's RAII guard.
func (g *Locker) Guard(graph string) (func(), error) {
	if err := g.Lock(graph); err != nil {
		return nil, err
	}
	return func() { g.Unlock(graph) }, nil
}
