package changelog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/everstacklabs/apidiff/internal/model"
)

// Describe returns the human readable text of one change.
func Describe(c model.Change) string {
	kind := c.Element.Kind()
	switch c.Type {
	case model.Added:
		return fmt.Sprintf("New %s added", kind)
	case model.Removed:
		return fmt.Sprintf("%s removed", kind)
	case model.Modified:
		return describeModification(c)
	}
	return "Unknown change"
}

func describeModification(c model.Change) string {
	kind := c.Element.Kind()
	if c.Old == nil {
		return fmt.Sprintf("%s modified", kind)
	}

	var parts []string
	for _, d := range c.Details {
		if text := describeField(d); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s signature modified", kind)
	}
	return capitalize(strings.Join(parts, ", "))
}

func describeField(d model.FieldChange) string {
	switch d.Field {
	case model.FieldParameterCount:
		before, _ := d.OldValue.(int)
		after, _ := d.NewValue.(int)
		if after > before {
			return "added " + plural(after-before, "parameter")
		}
		return "removed " + plural(before-after, "parameter")
	case model.FieldParameterType:
		return fmt.Sprintf("parameter $%s type changed from %s to %s", d.Subject, typeName(d.OldValue), typeName(d.NewValue))
	case model.FieldParameterOptional:
		if isTrue(d.NewValue) {
			return fmt.Sprintf("parameter $%s became optional", d.Subject)
		}
		return fmt.Sprintf("parameter $%s became required", d.Subject)
	case model.FieldParameterByRef:
		if isTrue(d.NewValue) {
			return fmt.Sprintf("parameter $%s now passed by reference", d.Subject)
		}
		return fmt.Sprintf("parameter $%s no longer passed by reference", d.Subject)
	case model.FieldParameterVariadic:
		if isTrue(d.NewValue) {
			return fmt.Sprintf("parameter $%s became variadic", d.Subject)
		}
		return fmt.Sprintf("parameter $%s no longer variadic", d.Subject)
	case model.FieldReturnType:
		return fmt.Sprintf("return type changed from %s to %s", typeName(d.OldValue), typeName(d.NewValue))
	case model.FieldVisibility:
		return fmt.Sprintf("visibility changed from %v to %v", d.OldValue, d.NewValue)
	case model.FieldStatic, model.FieldAbstract, model.FieldFinal:
		if isTrue(d.NewValue) {
			return "became " + d.Field
		}
		return "no longer " + d.Field
	case model.FieldExtends:
		return describeExtends(d)
	case model.FieldImplements:
		return describeList("implements", d)
	case model.FieldValue:
		return fmt.Sprintf("value changed from %s to %s", formatValue(d.OldValue), formatValue(d.NewValue))
	case model.FieldInternal:
		if isTrue(d.NewValue) {
			return "marked as @internal"
		}
		return "no longer @internal"
	}
	return ""
}

func describeExtends(d model.FieldChange) string {
	before, oldIsString := d.OldValue.(string)
	after, _ := d.NewValue.(string)
	if !oldIsString {
		return describeList("extends", d)
	}
	switch {
	case before == "":
		return "now extends " + after
	case after == "":
		return "no longer extends " + before
	}
	return fmt.Sprintf("extends changed from %s to %s", before, after)
}

// describeList reports set additions and removals of a parent list.
// A pure reordering yields a generic phrase.
func describeList(verb string, d model.FieldChange) string {
	before, _ := d.OldValue.([]string)
	after, _ := d.NewValue.([]string)

	var parts []string
	if gained := missingFrom(after, before); len(gained) > 0 {
		parts = append(parts, fmt.Sprintf("now %s %s", verb, strings.Join(gained, ", ")))
	}
	if lost := missingFrom(before, after); len(lost) > 0 {
		parts = append(parts, fmt.Sprintf("no longer %s %s", verb, strings.Join(lost, ", ")))
	}
	if len(parts) == 0 {
		return verb + " order changed"
	}
	return strings.Join(parts, ", ")
}

// missingFrom returns the items of a that are not in b, in a's order.
func missingFrom(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		seen[s] = true
	}
	var out []string
	for _, s := range a {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func typeName(v any) string {
	if s, _ := v.(string); s != "" {
		return s
	}
	return "mixed"
}

func isTrue(v any) bool {
	b, _ := v.(bool)
	return b
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + val + "'"
	}
	return fmt.Sprint(v)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
