// Package output renders quill's tree listings, search results and view
// state in the formats the CLI offers (pretty, plain, json, yaml).
//
// Formatters are looked up by name from a registry:
//
//	f, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := f.Format(&buf, report); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/quill/pkg/quill/search"
	"github.com/jamesainslie/quill/pkg/quill/state"
	"github.com/jamesainslie/quill/pkg/quill/tree"
)

// Item is a tree row with file details filled in by the caller.
type Item struct {
	tree.Node

	// Type is the display type name ("Markdown", "PNG Image", ...).
	// Empty for folders.
	Type string

	// Size is the file size in bytes, zero for folders.
	Size int64

	// Dirty marks files with unsaved changes.
	Dirty bool

	// Cursor marks the row under the navigation cursor.
	Cursor bool
}

// Summary counts what a listing contains.
type Summary struct {
	Files     int   `json:"files" yaml:"files"`
	Folders   int   `json:"folders" yaml:"folders"`
	TotalSize int64 `json:"total_size" yaml:"total_size"`
}

// Report is everything a command may print. Formatters render the sections
// that are set.
type Report struct {
	// Root is the notes directory.
	Root string

	// Tree is set by listing commands.
	Tree []Item

	// Query and Results are set by search.
	Query   string
	Results search.Results

	// State is set by state show.
	State *state.State
}

// Summarize counts the files, folders and bytes in r.Tree.
func (r *Report) Summarize() Summary {
	var s Summary
	for _, it := range r.Tree {
		if it.IsDir {
			s.Folders++
			continue
		}
		s.Files++
		s.TotalSize += it.Size
	}
	return s
}

// Formatter renders a Report.
type Formatter interface {
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry maps format names to formatter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces a formatter factory.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", name)
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the default registry's formats.
func Available() []string {
	return DefaultRegistry.Available()
}
