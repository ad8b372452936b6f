package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"golang.org/x/mod/semver"

	"github.com/everstacklabs/apidiff/internal/extract"
)

// ErrNoVersionTags is returned by LatestVersion when no tag is a release version.
var ErrNoVersionTags = errors.New("no semver tags")

// GitTree is the tree of a commit, optionally narrowed to a subdirectory.
type GitTree struct {
	rev    string
	subdir string
	commit *object.Commit
}

// OpenGitTree resolves rev (branch, tag, hash or expression such as HEAD~1)
// in the repository containing repoPath.
func OpenGitTree(repoPath, rev, subdir string) (*GitTree, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repo: %w", err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", ErrNotFound, rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}
	return &GitTree{rev: rev, subdir: strings.Trim(subdir, "/"), commit: commit}, nil
}

// Hash returns the resolved commit hash.
func (g *GitTree) Hash() string { return g.commit.Hash.String() }

func (g *GitTree) ID() string {
	return "git:" + g.Hash() + ":" + g.subdir
}

func (g *GitTree) String() string {
	if g.subdir == "" {
		return GitPrefix + g.rev
	}
	return GitPrefix + g.rev + ":" + g.subdir
}

// Walk visits every regular file of the tree.
func (g *GitTree) Walk(ctx context.Context, fn extract.WalkFunc) error {
	tree, err := g.commit.Tree()
	if err != nil {
		return fmt.Errorf("reading tree: %w", err)
	}
	if g.subdir != "" {
		if tree, err = tree.Tree(g.subdir); err != nil {
			return fmt.Errorf("%w: %s in %s", ErrNotFound, g.subdir, g.rev)
		}
	}

	return tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !f.Mode.IsFile() {
			return nil
		}
		return fn(f.Name, func() ([]byte, error) {
			contents, err := f.Contents()
			return []byte(contents), err
		})
	})
}

// LatestVersion returns the highest release tag of the repository containing
// repoPath, without its "v" prefix. Tags that are not valid SemVer, or that
// carry a pre-release suffix, are ignored.
func LatestVersion(repoPath string) (string, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening repo: %w", err)
	}
	tags, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("listing tags: %w", err)
	}

	best := ""
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		v := ref.Name().Short()
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		if !semver.IsValid(v) || semver.Prerelease(v) != "" {
			return nil
		}
		if best == "" || semver.Compare(v, best) > 0 {
			best = v
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if best == "" {
		return "", ErrNoVersionTags
	}
	// Canonical fills in missing components: v1.2 -> v1.2.0.
	return strings.TrimPrefix(semver.Canonical(best), "v"), nil
}
