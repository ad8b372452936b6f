package php

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// constantValue evaluates literal constant initializers. Strings are
// unquoted, integers become int64 and floats float64. Constant references
// (true, null, PHP_EOL) keep their name. Arrays read as "array" and any other
// expression as "unknown".
func (w *walker) constantValue(n *sitter.Node) any {
	text := w.text(n)
	switch n.Type() {
	case "string":
		return unquoteSingle(text)
	case "encapsed_string":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			switch n.NamedChild(i).Type() {
			case "string_content", "string_value", "escape_sequence":
			default:
				// Interpolated.
				return "unknown"
			}
		}
		return unquoteDouble(text)
	case "integer":
		if v, err := strconv.ParseInt(text, 0, 64); err == nil {
			return v
		}
		return text
	case "float":
		if v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err == nil {
			return v
		}
		return text
	case "boolean", "null", "name", "qualified_name":
		return trimLeadingSlash(text)
	case "array_creation_expression":
		return "array"
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return w.constantValue(n.NamedChild(0))
		}
	}
	return "unknown"
}

func unquoteSingle(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.NewReplacer(`\\`, `\`, `\'`, `'`).Replace(s)
}

var doubleEscapes = strings.NewReplacer(
	`\\`, `\`,
	`\"`, `"`,
	`\$`, `$`,
	`\n`, "\n",
	`\t`, "\t",
	`\r`, "\r",
	`\v`, "\v",
	`\e`, "\x1b",
	`\f`, "\f",
	`\0`, "\x00",
)

func unquoteDouble(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return doubleEscapes.Replace(s)
}
