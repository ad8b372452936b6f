package pipeline

import (
	"fmt"
	"strings"

	"github.com/everstacklabs/apidiff/internal/changelog"
)

// RenderSummary formats a Result for terminal output.
func RenderSummary(r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Comparing %s -> %s\n\n", r.Old, r.New)
	fmt.Fprintf(&b, "  Current version:     %s\n", r.CurrentVersion)
	fmt.Fprintf(&b, "  Recommended version: %s\n", r.RecommendedVersion)
	fmt.Fprintf(&b, "  Severity:            %s\n\n", r.Severity)

	if !r.Summary.HasChanges() {
		b.WriteString("No API changes detected.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Found %d changes (%d API, %d internal)\n",
		len(r.Changes)+len(r.FileChanges), len(r.Changes), len(r.FileChanges))
	for _, c := range r.Changes {
		if c.Element == nil {
			continue
		}
		fmt.Fprintf(&b, "  %-7s %-8s %s: %s\n", c.Severity, c.Type, c.Element.FullyQualifiedName(), changelog.Describe(c))
	}
	for _, f := range r.FileChanges {
		fmt.Fprintf(&b, "  %-7s %-8s %s\n", "patch", "internal", f.Path)
	}
	return b.String()
}
