package entry

import (
	"path/filepath"
	"strings"
)

// DefaultImageExtensions are the extensions treated as images when a store
// is configured to recognise them.
var DefaultImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// KindOf classifies path by extension. Extensions in imageExts (with or
// without the leading dot, any case) are images; everything else is text.
func KindOf(path string, imageExts []string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return KindText
	}
	for _, e := range imageExts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e == ext {
			return KindImage
		}
	}
	return KindText
}

// typeNames maps file extensions to human-readable type names.
var typeNames = map[string]string{
	".md":       "Markdown",
	".markdown": "Markdown",
	".txt":      "Text",
	".org":      "Org",
	".rst":      "reStructuredText",
	".adoc":     "AsciiDoc",
	".html":     "HTML",
	".htm":      "HTML",
	".json":     "JSON",
	".yaml":     "YAML",
	".yml":      "YAML",
	".toml":     "TOML",
	".csv":      "CSV",
	".go":       "Go",
	".py":       "Python",
	".js":       "JavaScript",
	".ts":       "TypeScript",
	".rs":       "Rust",
	".sh":       "Shell",
	".png":      "Image",
	".jpg":      "Image",
	".jpeg":     "Image",
	".gif":      "Image",
	".svg":      "Image",
	".webp":     "Image",
	".bmp":      "Image",
}

// TypeName returns a human-readable type for path based on its extension.
func TypeName(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := typeNames[ext]; ok {
		return name
	}
	return "File"
}
