// Package extract turns uploaded documents into plain text that can be fed
// to a prompt as context.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Unsupported is stored as content for file types with no extractor.
const Unsupported = "Texte non extrait pour ce type de fichier."

// Extractor reads the text of a file on disk.
type Extractor interface {
	Extract(path string) (string, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(path string) (string, error)

func (f ExtractorFunc) Extract(path string) (string, error) { return f(path) }

var registry = map[string]Extractor{
	".txt":  ExtractorFunc(Plain),
	".md":   ExtractorFunc(Markdown),
	".pdf":  ExtractorFunc(PDF),
	".epub": ExtractorFunc(PDF),
}

// Supported reports whether ext (with or without the dot) has an extractor.
func Supported(ext string) bool {
	_, ok := registry[normExt(ext)]
	return ok
}

// File extracts the text of path based on its extension. Unknown types
// yield Unsupported and no error.
func File(path string) (string, error) {
	ex, ok := registry[normExt(filepath.Ext(path))]
	if !ok {
		return Unsupported, nil
	}
	text, err := ex.Extract(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return strings.TrimSpace(text), nil
}

// Plain returns the file content unchanged.
func Plain(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func normExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
