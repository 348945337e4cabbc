// Package entry defines the items held by a quill store. An entry is either
// a Text document, whose content is read lazily and may be edited, or an
// Image, which is only ever a path reference.
package entry

import (
	"errors"
	"fmt"
	"os"
)

// Kind discriminates entry variants.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Placeholder is returned in place of content that could not be read.
const Placeholder = "???"

var (
	// ErrUnreadable is returned when a text entry's backing file cannot be read.
	ErrUnreadable = errors.New("entry unreadable")

	// ErrNotText is returned when content is requested from a non-text entry.
	ErrNotText = errors.New("entry has no text content")
)

// Entry is the capability set shared by every variant.
type Entry interface {
	// IsDirty reports whether the entry has unsaved changes.
	IsDirty() bool
	// SetDirty sets the dirty flag.
	SetDirty(dirty bool)
	// Path is the backing filesystem path.
	Path() string
	// Kind returns the variant.
	Kind() Kind
	// Display describes the entry for logs and listings.
	Display() string
}

// Text is a document whose content is materialized on first access.
type Text struct {
	path    string
	content string
	loaded  bool
	dirty   bool
}

// NewText returns an unmaterialized, clean text entry backed by path.
func NewText(path string) *Text {
	return &Text{path: path}
}

// NewTextWithContent returns a materialized, dirty text entry.
func NewTextWithContent(path, content string) *Text {
	return &Text{path: path, content: content, loaded: true, dirty: true}
}

func (t *Text) IsDirty() bool       { return t.dirty }
func (t *Text) SetDirty(dirty bool) { t.dirty = dirty }
func (t *Text) Path() string        { return t.path }
func (t *Text) Kind() Kind          { return KindText }

// Display describes the entry for logs and listings.
func (t *Text) Display() string {
	state := "lazy"
	if t.loaded {
		state = fmt.Sprintf("%d bytes", len(t.content))
	}
	return fmt.Sprintf("text %s (%s)", t.path, state)
}

// Loaded reports whether the content has been read into memory.
func (t *Text) Loaded() bool { return t.loaded }

// Contents returns the entry's content, reading the backing file the first
// time. A failed read yields Placeholder and an error wrapping ErrUnreadable;
// nothing is cached, so the next call tries again.
func (t *Text) Contents() (string, error) {
	if t.loaded {
		return t.content, nil
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		return Placeholder, fmt.Errorf("%w: %s: %w", ErrUnreadable, t.path, err)
	}
	t.content = string(data)
	t.loaded = true
	return t.content, nil
}

// SetContents replaces the content and marks the entry dirty.
func (t *Text) SetContents(content string) {
	t.content = content
	t.loaded = true
	t.dirty = true
}

// Unload drops materialized content so the next Contents call rereads the
// backing file. Dirty entries keep their content.
func (t *Text) Unload() {
	if t.dirty {
		return
	}
	t.content = ""
	t.loaded = false
}

// Relocate changes the backing path.
func (t *Text) Relocate(path string) { t.path = path }

// Image references an image file; its content is never read.
type Image struct {
	path  string
	dirty bool
}

// NewImage returns a clean image entry backed by path.
func NewImage(path string) *Image {
	return &Image{path: path}
}

func (i *Image) IsDirty() bool       { return i.dirty }
func (i *Image) SetDirty(dirty bool) { i.dirty = dirty }
func (i *Image) Path() string        { return i.path }
func (i *Image) Kind() Kind          { return KindImage }

// Display describes the entry for logs and listings.
func (i *Image) Display() string {
	return "image " + i.path
}

// Relocate changes the backing path.
func (i *Image) Relocate(path string) { i.path = path }

// Ensure both variants implement Entry.
var (
	_ Entry = (*Text)(nil)
	_ Entry = (*Image)(nil)
)
