// Package tree turns the flat, slash-delimited keys of a store into the
// ordered, indented node list that a file-tree view renders line by line.
package tree

import (
	"slices"
	"strings"

	"github.com/jamesainslie/quill/pkg/quill/pathkey"
)

// Node is one row of the rendered tree.
type Node struct {
	// Identity
	Name string `json:"name"`
	Path string `json:"path"`

	// Depth is the number of folders above the node.
	Depth int `json:"depth"`

	// Type
	IsDir bool `json:"is_dir"`

	// UI state. Collapsed is only set on folders, Open only on files.
	Collapsed bool `json:"collapsed,omitempty"`
	Open      bool `json:"open,omitempty"`
}

// Source is what Rebuild needs from a store.
type Source interface {
	Keys() []string
	IsCollapsed(path string) bool
}

// Rebuild flattens the current keys and collapse state of src.
func Rebuild(src Source) []Node {
	return Flatten(src.Keys(), src.IsCollapsed)
}

// Flatten returns the tree rows for keys in sorted order. Each folder is
// emitted once, before its contents. The contents of a collapsed folder are
// left out entirely. Empty or whitespace-only keys are ignored.
//
// Flatten keeps no state between calls; it must be rerun whenever the keys
// or the collapse state change.
func Flatten(keys []string, isCollapsed func(string) bool) []Node {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)

	nodes := make([]Node, 0, len(sorted))
	seen := make(map[string]struct{}, len(sorted))

	for _, key := range sorted {
		if strings.TrimSpace(key) == "" {
			continue
		}
		segs := pathkey.Split(key)

		prefix := ""
		hidden := false
		for depth, seg := range segs[:len(segs)-1] {
			prefix = pathkey.Join(prefix, seg)
			if strings.TrimSpace(prefix) == "" {
				continue
			}
			collapsed := isCollapsed(prefix)
			if _, ok := seen[prefix]; !ok {
				seen[prefix] = struct{}{}
				nodes = append(nodes, Node{
					Name:      seg,
					Path:      prefix,
					Depth:     depth,
					IsDir:     true,
					Collapsed: collapsed,
				})
			}
			if collapsed {
				hidden = true
				break
			}
		}
		if hidden {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		nodes = append(nodes, Node{
			Name:  segs[len(segs)-1],
			Path:  key,
			Depth: len(segs) - 1,
		})
	}
	return nodes
}

// MarkOpen sets Open on the file node whose path is path and clears it on
// every other node.
func MarkOpen(nodes []Node, path string) {
	for i := range nodes {
		nodes[i].Open = !nodes[i].IsDir && nodes[i].Path == path
	}
}
