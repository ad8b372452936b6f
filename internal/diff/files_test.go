package diff

import (
	"testing"

	"github.com/everstacklabs/apidiff/internal/model"
)

func TestCompareFiles(t *testing.T) {
	old := model.NewSnapshot()
	old.AddFile("src/B.php", "b1")
	old.AddFile("src/A.php", "a1")
	old.AddFile("src/Api.php", "x1")
	old.AddFile("src/Same.php", "s1")
	old.AddFile("src/Gone.php", "g1")

	new := model.NewSnapshot()
	new.AddFile("src/B.php", "b2")
	new.AddFile("src/A.php", "a2")
	new.AddFile("src/Api.php", "x2")
	new.AddFile("src/Same.php", "s1")
	new.AddFile("src/New.php", "n1")

	changes := []model.Change{{
		Type:     model.Added,
		Severity: model.Minor,
		Element:  &model.Function{Decl: model.Decl{Name: "f", File: "src/Api.php"}},
	}}

	files := CompareFiles(old, new, changes)
	if len(files) != 2 {
		t.Fatalf("expected 2 file changes, got %+v", files)
	}
	if files[0].Path != "src/A.php" || files[1].Path != "src/B.php" {
		t.Errorf("expected sorted A, B; got %s, %s", files[0].Path, files[1].Path)
	}
	if files[0].OldChecksum != "a1" || files[0].NewChecksum != "a2" {
		t.Errorf("unexpected checksums %+v", files[0])
	}
}

func TestCompareFilesUsesOldElementFile(t *testing.T) {
	old := model.NewSnapshot()
	old.AddFile("old.php", "1")
	new := model.NewSnapshot()
	new.AddFile("old.php", "2")

	changes := []model.Change{{
		Type:    model.Modified,
		Element: &model.Function{Decl: model.Decl{Name: "f", File: "moved.php"}},
		Old:     &model.Function{Decl: model.Decl{Name: "f", File: "old.php"}},
	}}
	if files := CompareFiles(old, new, changes); len(files) != 0 {
		t.Errorf("expected no file changes, got %+v", files)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Change{{Type: model.Added}, {Type: model.Removed}, {Type: model.Added}}, nil)
	if s.Added != 2 || s.Removed != 1 || s.Modified != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
	if !s.HasAPIChanges() {
		t.Error("expected API changes")
	}

	s = Summarize(nil, []model.FileChange{{Path: "a.php"}})
	if s.HasAPIChanges() || !s.HasChanges() {
		t.Errorf("expected file-only changes, got %+v", s)
	}
}
