package templates

import "regexp"

var tokenPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_.-]+)\}\}`)

// Render substitutes {{key}} tokens with their values. Tokens without a value
// pass through verbatim, so partially-filled templates stay renderable and a
// second render over the same values is a no-op.
func Render(content string, values map[string]string) string {
	if len(values) == 0 {
		return content
	}
	return tokenPattern.ReplaceAllStringFunc(content, func(tok string) string {
		key := tokenPattern.FindStringSubmatch(tok)[1]
		if v, ok := values[key]; ok {
			return v
		}
		return tok
	})
}

// Tokens returns the distinct placeholder names referenced in content, in
// first-appearance order.
func Tokens(content string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// UndeclaredTokens reports tokens referenced in content or subject that are
// missing from the declared placeholder list.
func UndeclaredTokens(t *Template) []string {
	declared := make(map[string]bool, len(t.Placeholders))
	for _, p := range t.Placeholders {
		declared[p] = true
	}
	var out []string
	for _, tok := range Tokens(t.Subject + " " + t.Content) {
		if !declared[tok] {
			out = append(out, tok)
		}
	}
	return out
}
