package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/everstacklabs/apidiff/internal/extract"
)

// Dir is a working tree on disk. Hidden directories are skipped.
type Dir struct {
	Root string
}

func (d *Dir) ID() string     { return "" }
func (d *Dir) String() string { return d.Root }

// Walk visits every regular file below Root with its slash-separated
// relative path.
func (d *Dir) Walk(ctx context.Context, fn extract.WalkFunc) error {
	return filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != d.Root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), func() ([]byte, error) { return os.ReadFile(path) })
	})
}
