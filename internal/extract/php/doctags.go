package php

import "strings"

// docTags holds the types declared by @param and @return doc tags.
type docTags struct {
	params  map[string]string
	returns string
}

func parseDocTags(doc string) docTags {
	tags := docTags{params: make(map[string]string)}
	if doc == "" {
		return tags
	}

	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(strings.TrimLeft(line, "*"))

		switch {
		case hasTag(line, "@param"):
			typ, rest := readType(strings.TrimSpace(line[len("@param"):]))
			if strings.HasPrefix(typ, "$") {
				// "@param $name" without a type.
				continue
			}
			name, _ := readType(strings.TrimSpace(rest))
			name = strings.TrimPrefix(strings.TrimPrefix(name, "..."), "&")
			if strings.HasPrefix(name, "$") && typ != "" {
				tags.params[name[1:]] = typ
			}
		case hasTag(line, "@return"):
			if typ, _ := readType(strings.TrimSpace(line[len("@return"):])); typ != "" {
				tags.returns = typ
			}
		}
	}
	return tags
}

func hasTag(line, tag string) bool {
	if !strings.HasPrefix(line, tag) {
		return false
	}
	rest := line[len(tag):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// readType reads one whitespace-delimited token, treating whitespace inside
// <>, () and {} as part of the token so "array<int, string>" stays whole.
func readType(s string) (token, rest string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '{':
			depth++
		case '>', ')', '}':
			if depth > 0 {
				depth--
			}
		case ' ', '\t':
			if depth == 0 {
				return normalizeType(s[:i]), s[i:]
			}
		}
	}
	return normalizeType(s), ""
}
