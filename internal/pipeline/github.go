package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"

	"github.com/everstacklabs/apidiff/internal/httpclient"
)

// ErrReleaseDisabled is returned by Release when releasing is not configured.
var ErrReleaseDisabled = errors.New("release disabled")

// ReleaseBranch returns the branch name for version.
func (p *Pipeline) ReleaseBranch(version string) string {
	return p.cfg.Release.BranchPrefix + version
}

// ReleaseTitle is the commit message and pull request title for version.
func ReleaseTitle(version string) string {
	return fmt.Sprintf("chore(release): v%s", version)
}

// Release commits the written changelog on a release branch, pushes it and
// opens a pull request. It returns the pull request number.
func (p *Pipeline) Release(ctx context.Context, out *Output) (int, error) {
	switch {
	case !p.cfg.Release.Enabled:
		return 0, ErrReleaseDisabled
	case p.cfg.GitHub.Token == "":
		return 0, fmt.Errorf("%w: no GitHub token", ErrReleaseDisabled)
	case out.Path == "":
		return 0, fmt.Errorf("%w: no changelog was written", ErrReleaseDisabled)
	}

	version := out.Result.RecommendedVersion
	branch := p.ReleaseBranch(version)
	title := ReleaseTitle(version)

	gitOps, err := OpenRepo(filepath.Dir(out.Path), p.cfg.GitHub.Token)
	if err != nil {
		return 0, err
	}
	if err := gitOps.CreateBranch(branch); err != nil {
		return 0, fmt.Errorf("creating branch: %w", err)
	}
	if err := gitOps.Add(out.Path); err != nil {
		return 0, fmt.Errorf("staging changelog: %w", err)
	}
	if _, err := gitOps.Commit(title, p.cfg.Release.AuthorName, p.cfg.Release.AuthorEmail); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	if err := gitOps.Push(ctx, branch); err != nil {
		return 0, fmt.Errorf("pushing: %w", err)
	}

	return p.createPR(ctx, branch, title, out.Entry)
}

// createPR opens the release pull request.
func (p *Pipeline) createPR(ctx context.Context, branch, title, body string) (int, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpclient.New(httpclient.WithRateLimit(5)))
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: p.cfg.GitHub.Token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	pr, _, err := client.PullRequests.Create(ctx, p.cfg.GitHub.Owner, p.cfg.GitHub.Repo, &github.NewPullRequest{
		Title: &title,
		Body:  &body,
		Head:  &branch,
		Base:  &p.cfg.GitHub.BaseBranch,
	})
	if err != nil {
		return 0, fmt.Errorf("creating PR: %w", err)
	}

	slog.Info("PR created",
		"number", pr.GetNumber(),
		"branch", branch,
		"url", pr.GetHTMLURL())

	return pr.GetNumber(), nil
}
