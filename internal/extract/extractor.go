// Package extract builds API snapshots from source trees using per-language
// extractors.
package extract

import (
	"context"

	"github.com/everstacklabs/apidiff/internal/model"
)

// Extractor reads the exported declarations of one source file.
type Extractor interface {
	// Name returns the language name (e.g., "php").
	Name() string
	// Extensions lists the file extensions the extractor handles, with the dot.
	Extensions() []string
	// Extract parses content and returns the declarations it contains.
	// path is the slash-separated path relative to the source root and is
	// recorded as the declaring file of every element.
	Extract(ctx context.Context, path string, content []byte) (*model.Snapshot, error)
}

// ReadFunc returns the content of a walked file.
type ReadFunc func() ([]byte, error)

// WalkFunc is called for every regular file of a source.
type WalkFunc func(path string, read ReadFunc) error

// Walker enumerates the files of one codebase version.
type Walker interface {
	Walk(ctx context.Context, fn WalkFunc) error
}
