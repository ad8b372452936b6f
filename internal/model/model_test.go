package model

import "testing"

func TestHasInternalTag(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{"empty", "", false},
		{"tag line", "/**\n * This is an internal class\n * @internal\n * @since 1.0.0\n */", true},
		{"no tag", "/**\n * This is a public class\n * @since 1.0.0\n */", false},
		{"word in prose", "/**\n * This class has internal logic but is not @internal\n * The word internal should not trigger the detection\n */", false},
		{"inline", "/** @internal This is inline */", true},
		{"inline closing", "/** @internal */", true},
		{"among tags", "/**\n * @author John Doe\n * @internal\n * @deprecated Will be removed in v2.0\n */", true},
		{"prefix of other tag", "/**\n * @internalApi\n */", false},
		{"tag with description", "/**\n * @internal used by the runtime only\n */", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasInternalTag(tt.doc); got != tt.want {
				t.Errorf("HasInternalTag(%q) = %v, want %v", tt.doc, got, tt.want)
			}
		})
	}
}

func TestFullyQualifiedName(t *testing.T) {
	c := NewClass(Decl{Name: "Foo", Namespace: `App\Service`})
	if got := c.FullyQualifiedName(); got != `App\Service\Foo` {
		t.Errorf("class FQN = %q", got)
	}

	m := &Method{Decl: c.Member("bar", "")}
	if got := m.FullyQualifiedName(); got != `App\Service\Foo::bar` {
		t.Errorf("method FQN = %q", got)
	}

	f := &Function{Decl: Decl{Name: "helper"}}
	if got := f.FullyQualifiedName(); got != "helper" {
		t.Errorf("global function FQN = %q, want no leading separator", got)
	}
}

func TestMemberInheritsContainerAttributes(t *testing.T) {
	i := NewInterface(Decl{Name: "Repo", Namespace: "App", File: "src/Repo.php"})
	d := i.Member("find", "/** @internal */")

	if d.Owner != "Repo" || d.Namespace != "App" || d.File != "src/Repo.php" {
		t.Errorf("unexpected member decl: %+v", d)
	}
	if !d.IsInternal() {
		t.Error("expected member doc comment to be kept")
	}
}

func TestSnapshotReplaceKeepsPosition(t *testing.T) {
	s := NewSnapshot()
	s.AddFunction(&Function{Decl: Decl{Name: "a"}})
	s.AddFunction(&Function{Decl: Decl{Name: "b"}})
	s.AddFunction(&Function{Decl: Decl{Name: "a", DocComment: "/** @internal */"}})

	if s.Functions.Len() != 2 {
		t.Fatalf("expected 2 functions, got %d", s.Functions.Len())
	}
	first := s.Functions.Oldest()
	if first.Key != "a" || !first.Value.IsInternal() {
		t.Errorf("expected replaced a in first position, got %s", first.Key)
	}
}

func TestSnapshotMerge(t *testing.T) {
	a := NewSnapshot()
	a.AddClass(NewClass(Decl{Name: "A"}))
	a.AddFile("a.php", "1")

	b := NewSnapshot()
	b.AddClass(NewClass(Decl{Name: "B"}))
	b.AddConstant(&Constant{Decl: Decl{Name: "C"}, Value: int64(1)})
	b.AddFile("b.php", "2")

	a.Merge(b)

	if a.Len() != 3 {
		t.Errorf("expected 3 elements, got %d", a.Len())
	}
	paths := a.Paths()
	if len(paths) != 2 || paths[0] != "a.php" || paths[1] != "b.php" {
		t.Errorf("unexpected paths %v", paths)
	}
	if a.Classes.Newest().Key != "B" {
		t.Errorf("expected B appended last")
	}
}

func TestSeverityOrdering(t *testing.T) {
	if Patch.Max(Minor) != Minor || Major.Max(Minor) != Major {
		t.Error("unexpected Max result")
	}
	if Severity("critical").Valid() {
		t.Error("unknown severity must not be valid")
	}
	if Severity("").Max(Patch) != Patch {
		t.Error("empty severity should lose to patch")
	}
}

func TestRequiredCount(t *testing.T) {
	s := Signature{Parameters: []Parameter{
		{Name: "a"},
		{Name: "b", HasDefault: true},
		{Name: "c"},
	}}
	if got := s.RequiredCount(); got != 2 {
		t.Errorf("RequiredCount = %d, want 2", got)
	}
}
