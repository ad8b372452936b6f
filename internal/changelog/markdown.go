// Package changelog renders API changes as a Markdown changelog entry or a
// JSON report.
package changelog

import (
	"fmt"
	"strings"

	"github.com/everstacklabs/apidiff/internal/model"
)

const heading = "# Changelog"

// Markdown renders a complete changelog document holding a single entry.
func Markdown(changes []model.Change, files []model.FileChange, version, date string) string {
	return heading + "\n\n" + Entry(changes, files, version, date)
}

// Entry renders the "## [version] - date" block with its sections.
// Sections without content are omitted.
func Entry(changes []model.Change, files []model.FileChange, version, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## [%s] - %s\n\n", version, date)

	var added, modified, removed []model.Change
	for _, c := range changes {
		if c.Element == nil {
			continue
		}
		switch c.Type {
		case model.Added:
			added = append(added, c)
		case model.Modified:
			modified = append(modified, c)
		case model.Removed:
			removed = append(removed, c)
		}
	}

	if len(added)+len(modified)+len(removed) == 0 && len(files) == 0 {
		b.WriteString("### Changed\n\n- No API changes detected\n\n")
		return b.String()
	}

	writeSection(&b, "Added", added)
	writeSection(&b, "Changed", modified)
	writeSection(&b, "Removed", removed)

	if len(files) > 0 {
		b.WriteString("### Internal\n\n")
		for _, f := range files {
			fmt.Fprintf(&b, "- `%s`: internal changes without API impact\n", f.Path)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, changes []model.Change) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, c := range changes {
		b.WriteString(formatChange(c))
	}
	b.WriteString("\n")
}

func formatChange(c model.Change) string {
	marker := ""
	if c.Element.IsInternal() {
		marker = " *@internal*"
	}
	return fmt.Sprintf("- %s **%s** `%s`%s: %s\n",
		Badge(c.Severity), c.Element.Kind(), c.Element.FullyQualifiedName(), marker, Describe(c))
}

// Badge returns the severity marker used in list items.
func Badge(sev model.Severity) string {
	switch sev {
	case model.Major:
		return "🔴"
	case model.Minor:
		return "🟡"
	case model.Patch:
		return "🟢"
	}
	return "⚪"
}

// Insert places entry (as produced by Entry) under the first "# Changelog"
// heading of existing, above any older entries. Documents without the heading
// get one; an empty document becomes a fresh changelog.
func Insert(existing, entry string) string {
	if strings.TrimSpace(existing) == "" {
		return heading + "\n\n" + entry
	}

	start := headingOffset(existing)
	if start < 0 {
		return heading + "\n\n" + entry + existing
	}

	end := start + len(heading)
	if nl := strings.IndexByte(existing[end:], '\n'); nl >= 0 {
		end += nl + 1
	} else {
		end = len(existing)
	}
	rest := strings.TrimLeft(existing[end:], "\n")

	return existing[:end] + "\n" + entry + rest
}

// headingOffset returns the byte offset of the first line that is exactly the
// changelog heading, or -1.
func headingOffset(doc string) int {
	offset := 0
	for _, line := range strings.SplitAfter(doc, "\n") {
		if strings.TrimRight(line, " \t\r\n") == heading {
			return offset
		}
		offset += len(line)
	}
	return -1
}
