// Package validate checks snapshots for structural problems before they are
// compared.
package validate

import (
	"fmt"
	"strings"

	"github.com/everstacklabs/apidiff/internal/model"
)

// Severity classifies validation issues.
type Severity int

const (
	SeverityError   Severity = iota // Fails the validate command
	SeverityWarning                 // Logged, analysis continues
)

// Issue is a single validation problem.
type Issue struct {
	Severity Severity
	Element  string
	Field    string
	Message  string
}

func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s: %s", sev, i.Element, i.Field, i.Message)
}

// Result holds all validation issues.
type Result struct {
	Issues []Issue
}

// HasErrors reports whether any issue is an error.
func (r *Result) HasErrors() bool {
	return len(r.Errors()) > 0
}

// Errors returns only error-severity issues.
func (r *Result) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns only warning-severity issues.
func (r *Result) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r *Result) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

func (r *Result) add(sev Severity, element, field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{sev, element, field, fmt.Sprintf(format, args...)})
}

var knownVisibilities = map[model.Visibility]bool{
	model.Public:    true,
	model.Protected: true,
	model.Private:   true,
}

// ValidateSnapshot checks every element of s. Issues are reported in
// snapshot order.
func ValidateSnapshot(s *model.Snapshot) *Result {
	r := &Result{}
	for p := s.Classes.Oldest(); p != nil; p = p.Next() {
		checkName(r, p.Value)
		checkMembers(r, p.Value)
	}
	for p := s.Interfaces.Oldest(); p != nil; p = p.Next() {
		checkName(r, p.Value)
		checkMembers(r, p.Value)
	}
	for p := s.Functions.Oldest(); p != nil; p = p.Next() {
		checkName(r, p.Value)
		checkSignature(r, p.Value.FullyQualifiedName(), p.Value.Signature)
	}
	for p := s.Constants.Oldest(); p != nil; p = p.Next() {
		checkName(r, p.Value)
	}
	for _, path := range s.Paths() {
		if s.Files[path] == "" {
			r.add(SeverityWarning, path, "checksum", "file has no checksum")
		}
	}
	return r
}

func checkName(r *Result, e model.Element) {
	if e.Declaration().Name == "" {
		r.add(SeverityError, elementLabel(e), "name", "required field is empty")
	}
}

func checkMembers(r *Result, c model.Container) {
	owner := c.Declaration()
	ms := c.MemberSet()
	for p := ms.Methods.Oldest(); p != nil; p = p.Next() {
		m := p.Value
		checkName(r, m)
		checkOwner(r, owner, m)
		if !knownVisibilities[m.Visibility.Normalize()] {
			r.add(SeverityError, m.FullyQualifiedName(), "visibility", "unknown visibility %q", m.Visibility)
		}
		checkSignature(r, m.FullyQualifiedName(), m.Signature)
	}
	for p := ms.Constants.Oldest(); p != nil; p = p.Next() {
		checkName(r, p.Value)
		checkOwner(r, owner, p.Value)
	}
}

func checkOwner(r *Result, owner model.Decl, member model.Element) {
	d := member.Declaration()
	if d.Owner != owner.Name || d.Namespace != owner.Namespace {
		r.add(SeverityError, member.FullyQualifiedName(), "owner",
			"member belongs to %q, not %q", qualified(d.Namespace, d.Owner), owner.FullyQualifiedName())
	}
}

func checkSignature(r *Result, name string, sig model.Signature) {
	seen := make(map[string]bool, len(sig.Parameters))
	optional := false
	for i, p := range sig.Parameters {
		if p.Variadic && i != len(sig.Parameters)-1 {
			r.add(SeverityWarning, name, "parameters", "variadic parameter $%s is not last", p.Name)
		}
		if seen[p.Name] {
			r.add(SeverityWarning, name, "parameters", "duplicate parameter $%s", p.Name)
		}
		seen[p.Name] = true
		switch {
		case p.HasDefault || p.Variadic:
			optional = true
		case optional:
			r.add(SeverityWarning, name, "parameters", "required parameter $%s follows an optional one", p.Name)
		}
	}
}

func elementLabel(e model.Element) string {
	if fqn := e.FullyQualifiedName(); fqn != "" {
		return fqn
	}
	return fmt.Sprintf("<unnamed %s in %s>", e.Kind(), e.SourceFile())
}

func qualified(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + `\` + name
}

// FormatResult formats validation results for display.
func FormatResult(r *Result) string {
	if len(r.Issues) == 0 {
		return "Validation passed: no issues found."
	}

	var b strings.Builder
	if errs := r.Errors(); len(errs) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	if warns := r.Warnings(); len(warns) > 0 {
		fmt.Fprintf(&b, "Warnings (%d):\n", len(warns))
		for _, w := range warns {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	return b.String()
}
