package extract

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"sort"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/everstacklabs/apidiff/internal/model"
)

// DefaultIgnore skips vendored code and tests.
var DefaultIgnore = []string{"*/vendor/*", "*/tests/*", "*/test/*"}

// Builder turns a Walker into a snapshot.
type Builder struct {
	extractor Extractor
	ignore    []glob.Glob
	workers   int
}

// NewBuilder compiles the ignore patterns. Patterns are matched against the
// file path relative to the source root with a leading "/", and "*" also
// matches "/", so "*/vendor/*" skips every vendor directory.
func NewBuilder(e Extractor, ignore []string, workers int) (*Builder, error) {
	b := &Builder{extractor: e, workers: workers}
	if b.workers <= 0 {
		b.workers = 1
	}
	for _, p := range ignore {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", p, err)
		}
		b.ignore = append(b.ignore, g)
	}
	return b, nil
}

type sourceFile struct {
	path    string
	content []byte
}

// Build walks src, checksums every handled file and extracts its
// declarations. Files that fail to read or parse are logged and skipped.
// Elements are merged in path order, so the result does not depend on
// scheduling.
func (b *Builder) Build(ctx context.Context, src Walker) (*model.Snapshot, error) {
	var files []sourceFile
	err := src.Walk(ctx, func(p string, read ReadFunc) error {
		if !b.handles(p) {
			return nil
		}
		content, err := read()
		if err != nil {
			slog.Warn("skipping unreadable file", "path", p, "error", err)
			return nil
		}
		files = append(files, sourceFile{path: p, content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })

	parts := make([]*model.Snapshot, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part, err := b.extractor.Extract(gctx, f.path, f.content)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("skipping unparsable file", "path", f.path, "error", err)
				return nil
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := model.NewSnapshot()
	for i, f := range files {
		snap.AddFile(f.path, Checksum(f.content))
		if parts[i] != nil {
			snap.Merge(parts[i])
		}
	}
	slog.Debug("extraction finished", "extractor", b.extractor.Name(), "files", len(files), "elements", snap.Len())
	return snap, nil
}

func (b *Builder) handles(p string) bool {
	if !slices.Contains(b.extractor.Extensions(), path.Ext(p)) {
		return false
	}
	rooted := "/" + p
	for _, g := range b.ignore {
		if g.Match(rooted) {
			return false
		}
	}
	return true
}

// Checksum returns the hex MD5 digest of content.
func Checksum(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}
