package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/everstacklabs/apidiff/internal/changelog"
	"github.com/everstacklabs/apidiff/internal/config"
	"github.com/everstacklabs/apidiff/internal/source"
)

// Output is a rendered changelog and where it went.
type Output struct {
	Result *Result
	// Entry is the Markdown entry for the recommended version. It doubles as
	// the release pull request body.
	Entry string
	// Content is what was (or, on a dry run, would be) written.
	Content string
	// Path is the written file. Empty on dry runs and skipped results.
	Path string
}

// Generate analyzes two versions and writes the changelog.
func (p *Pipeline) Generate(ctx context.Context, oldArg, newArg string) (*Output, error) {
	r, err := p.Analyze(ctx, oldArg, newArg)
	if err != nil {
		return nil, err
	}

	out := &Output{Result: r}
	if r.Skipped {
		slog.Info("no changes detected, changelog left untouched", "version", r.RecommendedVersion)
		return out, nil
	}

	date := p.now().Format("2006-01-02")
	out.Entry = changelog.Entry(r.Changes, r.FileChanges, r.RecommendedVersion, date)

	path := p.OutputPath(r.New)
	switch p.cfg.Format {
	case config.FormatJSON:
		report := changelog.NewReport(r.CurrentVersion, r.RecommendedVersion, r.Severity, r.Changes, r.FileChanges)
		data, err := report.JSON()
		if err != nil {
			return nil, err
		}
		out.Content = string(data)
	default:
		existing, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading changelog: %w", err)
		}
		out.Content = changelog.Insert(string(existing), out.Entry)
	}

	if p.cfg.DryRun {
		if !p.cfg.Quiet {
			fmt.Fprint(p.stdout, dryRunContent(p.cfg.Format, out))
		}
		return out, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(out.Content), 0o644); err != nil {
		return nil, fmt.Errorf("writing changelog: %w", err)
	}
	out.Path = path
	slog.Info("changelog written", "path", path, "format", p.cfg.Format, "version", r.RecommendedVersion)
	return out, nil
}

// dryRunContent shows only the new entry for Markdown, the whole report for
// JSON.
func dryRunContent(format string, out *Output) string {
	if format == config.FormatJSON {
		return out.Content
	}
	return out.Entry
}

// OutputPath resolves the configured output file. Relative paths are taken
// from the new directory; for git and snapshot sources, from the working
// directory.
func (p *Pipeline) OutputPath(newSrc source.Source) string {
	if filepath.IsAbs(p.cfg.Output) {
		return p.cfg.Output
	}
	if d, ok := newSrc.(*source.Dir); ok {
		return filepath.Join(d.Root, p.cfg.Output)
	}
	return p.cfg.Output
}
