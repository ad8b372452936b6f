package pipeline

import (
	"strings"
	"testing"

	"github.com/everstacklabs/apidiff/internal/diff"
	"github.com/everstacklabs/apidiff/internal/model"
	"github.com/everstacklabs/apidiff/internal/source"
)

func TestRenderSummary(t *testing.T) {
	fn := &model.Function{Decl: model.Decl{Name: "helper", Namespace: "Acme", File: "src/fn.php"}}
	changes := []model.Change{{
		Type:        model.Removed,
		Severity:    model.Major,
		Element:     fn,
		Description: "Removed function Acme\\helper",
	}}
	files := []model.FileChange{{Path: "src/Client.php", OldChecksum: "a", NewChecksum: "b"}}

	r := &Result{
		Old:                &source.Dir{Root: "/old"},
		New:                &source.Dir{Root: "/new"},
		Changes:            changes,
		FileChanges:        files,
		Summary:            diff.Summarize(changes, files),
		Severity:           model.Major,
		CurrentVersion:     "1.4.2",
		RecommendedVersion: "2.0.0",
	}

	out := RenderSummary(r)
	for _, want := range []string{
		"Comparing /old -> /new",
		"Recommended version: 2.0.0",
		"Found 2 changes (1 API, 1 internal)",
		`major   removed  Acme\helper`,
		"patch   internal src/Client.php",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryNoChanges(t *testing.T) {
	r := &Result{
		Old:                &source.Dir{Root: "/a"},
		New:                &source.Dir{Root: "/b"},
		Severity:           model.Patch,
		CurrentVersion:     "1.0.0",
		RecommendedVersion: "1.0.1",
	}
	if out := RenderSummary(r); !strings.Contains(out, "No API changes detected.") {
		t.Errorf("summary:\n%s", out)
	}
}
