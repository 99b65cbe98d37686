// Package layout implements the filesystem layout service: it maps
// (graph, class, uri) triples to paths on disk, enumerates graphs,
// classes and files, and removes files and class directories. One
// directory per class lets find(class, ...) avoid scanning unrelated
// classes; one file per entity lets external tools and the three-way
// merge reason about a single document without parsing a container.
package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dfki-ric/xdbi/internal/xlog"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// MutexFileName is the sentinel file name within a graph directory used
// for the per-graph advisory lock.
const MutexFileName = "mutex_file"

// Layout maps a root database path to graph/class/entity paths.
type Layout struct {
	dbPath string
}

// New returns a Layout rooted at dbPath. dbPath is created lazily by the
// Dir/Path helpers, not by New itself.
func New(dbPath string) *Layout {
	return &Layout{dbPath: dbPath}
}

// DbPath returns the root database path.
func (l *Layout) DbPath() string { return l.dbPath }

// GraphDir returns db_path/graph, creating it if absent.
func (l *Layout) GraphDir(graph string) (string, error) {
	p := filepath.Join(l.dbPath, graph)
	if err := mkdir(p); err != nil {
		return "", err
	}
	return p, nil
}

// ClassDir returns db_path/graph/<classname-normalized>, creating it and
// the graph directory if absent.
func (l *Layout) ClassDir(graph, classname string) (string, error) {
	gdir, err := l.GraphDir(graph)
	if err != nil {
		return "", err
	}
	p := filepath.Join(gdir, xtype.NormalizeClassname(classname))
	if err := mkdir(p); err != nil {
		return "", err
	}
	return p, nil
}

// FileNameFor returns the on-disk filename (== uuid field) for uri.
func (l *Layout) FileNameFor(uri string) string {
	return xtype.HashURI(uri)
}

// FilePathFor returns db_path/graph/<class>/<uuid(uri)>, creating parent
// directories as needed.
func (l *Layout) FilePathFor(graph, classname, uri string) (string, error) {
	cdir, err := l.ClassDir(graph, classname)
	if err != nil {
		return "", err
	}
	return filepath.Join(cdir, l.FileNameFor(uri)), nil
}

// MutexFilePath returns db_path/graph/mutex_file, creating the graph
// directory as needed.
func (l *Layout) MutexFilePath(graph string) (string, error) {
	gdir, err := l.GraphDir(graph)
	if err != nil {
		return "", err
	}
	return filepath.Join(gdir, MutexFileName), nil
}

// ListGraphs returns graph-name -> path for every directory directly
// under the database root.
func (l *Layout) ListGraphs() (map[string]string, error) {
	entries, err := os.ReadDir(l.dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("layout: list graphs: %w", err)
	}
	out := make(map[string]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		out[e.Name()] = filepath.Join(l.dbPath, e.Name())
	}
	return out, nil
}

// ListClasses returns normalized-classname -> path for every class
// directory within graph. Note the returned keys are the normalized
// (filesystem) form, which may differ from the caller's original
// classname if it contained ':'.
func (l *Layout) ListClasses(graph string) (map[string]string, error) {
	gdir := filepath.Join(l.dbPath, graph)
	entries, err := os.ReadDir(gdir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("layout: list classes: %w", err)
	}
	out := make(map[string]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		out[e.Name()] = filepath.Join(gdir, e.Name())
	}
	return out, nil
}

// ListFiles returns filename -> path for every regular file in graph,
// restricted to classname if non-empty (classname is normalized before
// comparison).
func (l *Layout) ListFiles(graph, classname string) (map[string]string, error) {
	classes, err := l.ListClasses(graph)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	normalized := xtype.NormalizeClassname(classname)
	for c, cpath := range classes {
		if classname != "" && c != normalized {
			continue
		}
		entries, err := os.ReadDir(cpath)
		if err != nil {
			xlog.Warn("layout: read class dir %s: %v", cpath, err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			out[e.Name()] = filepath.Join(cpath, e.Name())
		}
	}
	return out, nil
}

// RemoveFiles removes every on-disk file whose filename matches
// FileNameFor(uri) for uri in uris, scanning all classes of graph. It is
// best-effort: failures are logged and fold into the aggregate bool.
func (l *Layout) RemoveFiles(graph string, uris map[string]struct{}) bool {
	files, err := l.ListFiles(graph, "")
	if err != nil {
		xlog.Error("layout: remove files: list: %v", err)
		return false
	}
	success := true
	for uri := range uris {
		fname := l.FileNameFor(uri)
		path, ok := files[fname]
		if !ok {
			continue
		}
		xlog.Info("layout: removing %s ...", path)
		if err := os.Remove(path); err != nil {
			xlog.Error("layout: failed to remove %s: %v", path, err)
			success = false
			continue
		}
		delete(files, fname)
	}
	return success
}

// RemoveAllFiles deletes every class directory within graph, leaving the
// graph directory (and its lock sentinel) in place.
func (l *Layout) RemoveAllFiles(graph string) bool {
	classes, err := l.ListClasses(graph)
	if err != nil {
		xlog.Error("layout: remove all files: list classes: %v", err)
		return false
	}
	success := true
	for _, path := range classes {
		xlog.Info("layout: removing %s ...", path)
		if err := os.RemoveAll(path); err != nil {
			xlog.Error("layout: failed to remove %s: %v", path, err)
			success = false
		}
	}
	return success
}

func mkdir(path string) error {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("layout: mkdir %s: %w", path, err)
	}
	return nil
}
