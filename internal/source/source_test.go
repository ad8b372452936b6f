package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/everstacklabs/apidiff/internal/extract"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type walked map[string]string

func walkAll(t *testing.T, src interface{ ID() string }) walked {
	t.Helper()
	out := walked{}
	fn := func(path string, read extract.ReadFunc) error {
		data, err := read()
		if err != nil {
			return err
		}
		out[path] = string(data)
		return nil
	}
	var err error
	switch s := src.(type) {
	case *Dir:
		err = s.Walk(context.Background(), fn)
	case *GitTree:
		err = s.Walk(context.Background(), fn)
	default:
		t.Fatalf("unexpected source %T", src)
	}
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return out
}

func TestDirWalkSkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/A.php", "a")
	writeFile(t, root, ".git/config", "x")
	writeFile(t, root, ".hidden/B.php", "b")
	writeFile(t, root, "README.md", "r")

	got := walkAll(t, &Dir{Root: root})
	var paths []string
	for p := range got {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if len(paths) != 2 || paths[0] != "README.md" || paths[1] != "src/A.php" {
		t.Errorf("unexpected paths %v", paths)
	}
	if got["src/A.php"] != "a" {
		t.Errorf("unexpected content %q", got["src/A.php"])
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "snap.yaml", "classes: []\n")
	writeFile(t, root, "notes.txt", "x")

	src, err := Resolve(root, ".")
	if err != nil {
		t.Fatalf("Resolve dir: %v", err)
	}
	if _, ok := src.(*Dir); !ok {
		t.Errorf("expected *Dir, got %T", src)
	}

	src, err = Resolve(filepath.Join(root, "snap.yaml"), ".")
	if err != nil {
		t.Fatalf("Resolve snapshot: %v", err)
	}
	if _, ok := src.(*SnapshotFile); !ok {
		t.Errorf("expected *SnapshotFile, got %T", src)
	}

	if _, err := Resolve(filepath.Join(root, "missing"), "."); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := Resolve(filepath.Join(root, "notes.txt"), "."); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for plain file, got %v", err)
	}
}

func commitAll(t *testing.T, repo *git.Repository, msg string) {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("."); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func tagHead(t *testing.T, repo *git.Repository, name string) {
	t.Helper()
	head, err := repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateTag(name, head.Hash(), nil); err != nil {
		t.Fatal(err)
	}
}

func TestGitTree(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, root, "src/A.php", "v1")
	commitAll(t, repo, "first")
	tagHead(t, repo, "v1.0.0")

	writeFile(t, root, "src/A.php", "v2")
	writeFile(t, root, "src/B.php", "new")
	commitAll(t, repo, "second")

	src, err := Resolve(GitPrefix+"v1.0.0", root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	tree := src.(*GitTree)
	files := walkAll(t, tree)
	if len(files) != 1 || files["src/A.php"] != "v1" {
		t.Errorf("unexpected files at v1.0.0: %v", files)
	}
	if tree.ID() == "" {
		t.Error("expected git tree to have a cache identity")
	}

	head, err := OpenGitTree(root, "HEAD", "src")
	if err != nil {
		t.Fatalf("OpenGitTree: %v", err)
	}
	files = walkAll(t, head)
	if len(files) != 2 || files["A.php"] != "v2" {
		t.Errorf("unexpected files at HEAD:src: %v", files)
	}
	if head.ID() == tree.ID() {
		t.Error("different commits must have different identities")
	}

	if _, err := OpenGitTree(root, "no-such-ref", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestVersion(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "a.php", "a")
	commitAll(t, repo, "first")

	if _, err := LatestVersion(root); !errors.Is(err, ErrNoVersionTags) {
		t.Errorf("expected ErrNoVersionTags, got %v", err)
	}

	for _, tag := range []string{"v1.2.0", "1.10.0", "v2.0.0-rc.1", "release-candidate", "v1.9.3"} {
		tagHead(t, repo, tag)
	}

	got, err := LatestVersion(root)
	if err != nil {
		t.Fatalf("LatestVersion: %v", err)
	}
	if got != "1.10.0" {
		t.Errorf("LatestVersion = %s, want 1.10.0", got)
	}
}
