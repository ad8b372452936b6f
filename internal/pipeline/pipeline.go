package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/everstacklabs/apidiff/internal/cache"
	"github.com/everstacklabs/apidiff/internal/config"
	"github.com/everstacklabs/apidiff/internal/diff"
	"github.com/everstacklabs/apidiff/internal/extract"
	"github.com/everstacklabs/apidiff/internal/model"
	"github.com/everstacklabs/apidiff/internal/semver"
	"github.com/everstacklabs/apidiff/internal/snapshot"
	"github.com/everstacklabs/apidiff/internal/source"
	"github.com/everstacklabs/apidiff/internal/validate"
)

// ExitCode constants for CLI.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitChanges = 2 // Changes detected (diff mode)
)

// DefaultVersion is used when the current version is "auto" and the
// repository has no release tags.
const DefaultVersion = "1.0.0"

// Pipeline orchestrates snapshot building, diffing and changelog output.
type Pipeline struct {
	cfg    *config.Config
	cache  *cache.FileCache
	stdout io.Writer
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache sets the snapshot cache. A nil cache disables caching.
func WithCache(c *cache.FileCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithStdout redirects dry-run output.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) { p.stdout = w }
}

// WithClock replaces time.Now for changelog dates.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a new Pipeline.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, stdout: os.Stdout, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of comparing two codebase versions.
type Result struct {
	Old, New           source.Source
	OldSnapshot        *model.Snapshot
	NewSnapshot        *model.Snapshot
	Changes            []model.Change
	FileChanges        []model.FileChange
	Summary            diff.Summary
	Severity           model.Severity
	CurrentVersion     string
	RecommendedVersion string
	// Skipped is set when nothing changed and empty changesets are disabled.
	// No output is written in that case.
	Skipped bool
}

// Analyze builds both snapshots and classifies the differences.
func (p *Pipeline) Analyze(ctx context.Context, oldArg, newArg string) (*Result, error) {
	oldSrc, err := source.Resolve(oldArg, p.cfg.Repo)
	if err != nil {
		return nil, fmt.Errorf("old source: %w", err)
	}
	newSrc, err := source.Resolve(newArg, p.cfg.Repo)
	if err != nil {
		return nil, fmt.Errorf("new source: %w", err)
	}

	current, err := p.currentVersion()
	if err != nil {
		return nil, err
	}

	r := &Result{Old: oldSrc, New: newSrc, CurrentVersion: current}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := p.Snapshot(gctx, oldSrc)
		if err != nil {
			return fmt.Errorf("building old snapshot: %w", err)
		}
		r.OldSnapshot = s
		return nil
	})
	g.Go(func() error {
		s, err := p.Snapshot(gctx, newSrc)
		if err != nil {
			return fmt.Errorf("building new snapshot: %w", err)
		}
		r.NewSnapshot = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logIssues(oldSrc, validate.ValidateSnapshot(r.OldSnapshot))
	logIssues(newSrc, validate.ValidateSnapshot(r.NewSnapshot))

	r.Changes = diff.Compute(r.OldSnapshot, r.NewSnapshot)
	r.FileChanges = diff.CompareFiles(r.OldSnapshot, r.NewSnapshot, r.Changes)
	r.Summary = diff.Summarize(r.Changes, r.FileChanges)

	strict := p.cfg.StrictSemver
	r.Severity = semver.Analyze(r.Changes, current, strict)
	r.RecommendedVersion = semver.RecommendedVersion(current, r.Changes, strict)

	switch {
	case len(r.Changes) == 0 && len(r.FileChanges) > 0:
		r.Severity = model.Patch
		r.RecommendedVersion = semver.Parse(current).Bump(model.Patch).String()
	case len(r.Changes) == 0 && p.cfg.NoEmptyChangeset:
		r.RecommendedVersion = current
		r.Skipped = true
	}

	slog.Info("analysis complete",
		"old", oldSrc,
		"new", newSrc,
		"added", r.Summary.Added,
		"modified", r.Summary.Modified,
		"removed", r.Summary.Removed,
		"files", r.Summary.Files,
		"severity", r.Severity,
		"current", current,
		"recommended", r.RecommendedVersion)

	return r, nil
}

// Snapshot returns the API snapshot of src, using the cache for sources with
// a stable identity.
func (p *Pipeline) Snapshot(ctx context.Context, src source.Source) (*model.Snapshot, error) {
	if f, ok := src.(*source.SnapshotFile); ok {
		return snapshot.Load(f.Path)
	}
	walker, ok := src.(extract.Walker)
	if !ok {
		return nil, fmt.Errorf("source %s cannot be walked", src)
	}

	key := ""
	if p.cache != nil && src.ID() != "" {
		key = cache.Key(src.ID(), p.cfg.Language, p.cfg.Ignore)
		if s, ok := p.cache.Get(key); ok {
			slog.Debug("snapshot cache hit", "source", src)
			return s, nil
		}
	}

	e, err := extract.Get(p.cfg.Language)
	if err != nil {
		return nil, err
	}
	b, err := extract.NewBuilder(e, p.cfg.Ignore, p.cfg.Workers)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s, err := b.Build(ctx, walker)
	if err != nil {
		return nil, err
	}
	slog.Info("snapshot built",
		"source", src,
		"elements", s.Len(),
		"files", len(s.Files),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if key != "" {
		if err := p.cache.Set(key, s); err != nil {
			slog.Warn("caching snapshot failed", "source", src, "error", err)
		}
	}
	return s, nil
}

func (p *Pipeline) currentVersion() (string, error) {
	if p.cfg.CurrentVersion != config.VersionAuto {
		return p.cfg.CurrentVersion, nil
	}
	v, err := source.LatestVersion(p.cfg.Repo)
	if errors.Is(err, source.ErrNoVersionTags) {
		slog.Warn("no release tags found, using default version", "version", DefaultVersion)
		return DefaultVersion, nil
	}
	if err != nil {
		return "", fmt.Errorf("detecting current version: %w", err)
	}
	slog.Info("current version from tags", "version", v)
	return v, nil
}

func logIssues(src source.Source, r *validate.Result) {
	for _, i := range r.Issues {
		slog.Warn("snapshot validation", "source", src, "issue", i.String())
	}
}
