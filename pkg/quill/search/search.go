// Package search runs linear name and content searches over a store and
// keeps a wrap-around selection cursor over the results.
package search

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jamesainslie/quill/pkg/quill/logging"
)

// DefaultContext is the number of bytes shown either side of a match.
const DefaultContext = 8

// Ellipsis marks a snippet that was cut short.
const Ellipsis = "..."

// Flags selects what to search and how.
type Flags struct {
	MatchName     bool `json:"match_name"`
	MatchContents bool `json:"match_contents"`
	MatchCase     bool `json:"match_case"`
	UseRegex      bool `json:"use_regex"`
}

// Source is the read side of a store that Search needs.
type Source interface {
	Keys() []string
	Contents(key string) (string, error)
}

// Result is a single match.
type Result struct {
	Key string `json:"key"`

	// Snippet is set for content matches only.
	Snippet string `json:"snippet,omitempty"`

	Name     bool `json:"name"`
	Contents bool `json:"contents"`

	// Start and End are the byte range of the match in the content.
	// Both are zero for name matches.
	Start int `json:"start"`
	End   int `json:"end"`

	Selected bool `json:"selected"`
}

// Engine performs searches.
type Engine struct {
	// Context is the snippet context in bytes. Zero or less uses
	// DefaultContext.
	Context int

	logger *logging.Logger
}

// NewEngine returns an engine with the given snippet context.
func NewEngine(context int) *Engine {
	return &Engine{Context: context, logger: logging.Get("search")}
}

func (e *Engine) context() int {
	if e.Context <= 0 {
		return DefaultContext
	}
	return e.Context
}

func (e *Engine) log() *logging.Logger {
	if e.logger == nil {
		e.logger = logging.Get("search")
	}
	return e.logger
}

// Search matches query against the keys and/or contents of src, visiting
// keys in sorted order. For each key a content match comes before a name
// match. The first result is selected.
//
// Literal queries match as-is. Without MatchCase the match is
// case-insensitive, and offsets still refer to the original text. An
// invalid pattern matches nothing. Keys whose content cannot be read,
// including images, produce no content match.
func (e *Engine) Search(flags Flags, query string, src Source) Results {
	if query == "" {
		return nil
	}

	pattern := query
	if !flags.UseRegex {
		pattern = regexp.QuoteMeta(query)
	}
	if !flags.MatchCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		e.log().Debug("invalid pattern", "query", query, "error", err)
		return nil
	}

	keys := slices.Clone(src.Keys())
	slices.Sort(keys)

	var results Results
	for _, key := range keys {
		if flags.MatchContents {
			if r, ok := e.matchContents(re, key, src); ok {
				results = append(results, r)
			}
		}
		if flags.MatchName && re.MatchString(key) {
			results = append(results, Result{Key: key, Name: true})
		}
	}

	if len(results) > 0 {
		results[0].Selected = true
	}
	e.log().Debug("search", "query", query, "results", len(results))
	return results
}

func (e *Engine) matchContents(re *regexp.Regexp, key string, src Source) (Result, bool) {
	content, err := src.Contents(key)
	if err != nil {
		return Result{}, false
	}
	loc := re.FindStringIndex(content)
	if loc == nil {
		return Result{}, false
	}
	return Result{
		Key:      key,
		Snippet:  Snippet(content, loc[0], loc[1], e.context()),
		Contents: true,
		Start:    loc[0],
		End:      loc[1],
	}, true
}

// Snippet returns content[start:end] with up to context bytes either side,
// widened so no rune is split. Newlines become a literal `\n` and an
// ellipsis marks each side that was cut.
func Snippet(content string, start, end, context int) string {
	from := max(0, start-context)
	to := min(len(content), end+context)
	for from > 0 && !utf8.RuneStart(content[from]) {
		from--
	}
	for to < len(content) && !utf8.RuneStart(content[to]) {
		to++
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString(Ellipsis)
	}
	b.WriteString(strings.ReplaceAll(content[from:to], "\n", `\n`))
	if to < len(content) {
		b.WriteString(Ellipsis)
	}
	return b.String()
}
