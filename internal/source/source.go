// Package source resolves command-line arguments into the codebase versions
// that get compared: directories, git revisions and saved snapshot files.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when an argument names nothing usable.
var ErrNotFound = errors.New("source not found")

// GitPrefix marks a git revision argument: "git:<rev>" or "git:<rev>:<subdir>".
const GitPrefix = "git:"

// Source is one codebase version.
type Source interface {
	// ID is a stable content identity usable as a cache key. It is empty when
	// the content can change between runs.
	ID() string
	String() string
}

// SnapshotFile is a snapshot previously saved as YAML.
type SnapshotFile struct {
	Path string
}

func (s *SnapshotFile) ID() string     { return "" }
func (s *SnapshotFile) String() string { return s.Path }

// Resolve interprets arg. Git revisions are looked up in the repository
// containing repoPath.
func Resolve(arg, repoPath string) (Source, error) {
	if rest, ok := strings.CutPrefix(arg, GitPrefix); ok {
		rev, subdir, _ := strings.Cut(rest, ":")
		return OpenGitTree(repoPath, rev, subdir)
	}

	info, err := os.Stat(arg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, arg)
		}
		return nil, err
	}
	if info.IsDir() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		return &Dir{Root: abs}, nil
	}
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".yaml", ".yml":
		return &SnapshotFile{Path: arg}, nil
	}
	return nil, fmt.Errorf("%w: %s is neither a directory nor a snapshot file", ErrNotFound, arg)
}
