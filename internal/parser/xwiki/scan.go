package xwiki

import (
	"regexp"
	"strings"

	"github.com/conneroisu/wikicore/internal/params"
)

var macroID = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-.]*`)

// macroCall is a scanned "{{id params}}content{{/id}}" call.
type macroCall struct {
	id      string
	params  *params.Map
	content string
	end     int // offset just after the call
}

// scanMacro scans a macro call starting at s[i] == "{{". It returns false
// when s[i:] is not a well-formed call.
func scanMacro(s string, i int) (macroCall, bool) {
	if !strings.HasPrefix(s[i:], "{{") || strings.HasPrefix(s[i:], "{{{") {
		return macroCall{}, false
	}
	tagEnd, ok := scanTagEnd(s, i+2)
	if !ok {
		return macroCall{}, false
	}
	tag := s[i+2 : tagEnd]
	id := macroID.FindString(tag)
	if id == "" {
		return macroCall{}, false
	}
	rest := tag[len(id):]
	if rest != "" && !isSpace(rest[0]) && rest[0] != '/' {
		return macroCall{}, false
	}

	call := macroCall{id: id}
	if strings.HasSuffix(rest, "/") {
		call.params = ParseParameters(strings.TrimSuffix(rest, "/"))
		call.end = tagEnd + 2
		return call, true
	}
	call.params = ParseParameters(rest)

	contentStart := tagEnd + 2
	closeAt, closeEnd, ok := findMacroClose(s, contentStart, id)
	if !ok {
		return macroCall{}, false
	}
	call.content = s[contentStart:closeAt]
	call.end = closeEnd
	return call, true
}

// scanTagEnd returns the offset of the "}}" closing a macro start tag,
// ignoring "}}" inside quoted parameter values.
func scanTagEnd(s string, i int) (int, bool) {
	inQuote := false
	for i < len(s) {
		c := s[i]
		switch {
		case inQuote && c == '~':
			i += 2
			continue
		case c == '"':
			inQuote = !inQuote
		case !inQuote && c == '}' && i+1 < len(s) && s[i+1] == '}':
			return i, true
		case !inQuote && c == '{' && i+1 < len(s) && s[i+1] == '{':
			return 0, false
		}
		i++
	}
	return 0, false
}

// findMacroClose finds the "{{/id}}" matching an opened call, honouring
// nested calls of the same macro.
func findMacroClose(s string, i int, id string) (start, end int, ok bool) {
	open := "{{" + id
	closing := "{{/" + id + "}}"
	depth := 1
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], closing):
			depth--
			if depth == 0 {
				return i, i + len(closing), true
			}
			i += len(closing)
		case strings.HasPrefix(s[i:], open) && opensCall(s, i+len(open)):
			if tagEnd, ok := scanTagEnd(s, i+len(open)); ok && s[tagEnd-1] != '/' {
				depth++
				i = tagEnd + 2
			} else {
				i += len(open)
			}
		default:
			i++
		}
	}
	return 0, 0, false
}

func opensCall(s string, i int) bool {
	return i < len(s) && (s[i] == '}' || s[i] == '/' || isSpace(s[i]))
}

// scanVerbatim scans "{{{content}}}" starting at s[i]. The content ends at
// the last "}" run so that "{{{a}}}}" keeps "a}".
func scanVerbatim(s string, i int) (content string, end int, ok bool) {
	if !strings.HasPrefix(s[i:], "{{{") {
		return "", 0, false
	}
	rel := strings.Index(s[i+3:], "}}}")
	if rel < 0 {
		return "", 0, false
	}
	closeAt := i + 3 + rel
	for closeAt+3 < len(s) && s[closeAt+3] == '}' {
		closeAt++
	}
	return s[i+3 : closeAt], closeAt + 3, true
}

// scanLink scans "[[...]]" starting at s[i] and returns the inner text.
// Nested "[[" pairs and "{{...}}" content are skipped over.
func scanLink(s string, i int) (inner string, end int, ok bool) {
	if !strings.HasPrefix(s[i:], "[[") {
		return "", 0, false
	}
	depth := 0
	j := i
	for j < len(s)-1 {
		switch {
		case s[j] == '~':
			j += 2
			continue
		case s[j] == '[' && s[j+1] == '[':
			depth++
			j += 2
			continue
		case s[j] == ']' && s[j+1] == ']':
			depth--
			if depth == 0 {
				return s[i+2 : j], j + 2, true
			}
			j += 2
			continue
		case s[j] == '\n' && j+1 < len(s) && s[j+1] == '\n':
			return "", 0, false
		}
		j++
	}
	return "", 0, false
}

// splitUnescaped splits s at the first unescaped sep.
func splitUnescaped(s, sep string) (before, after string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '~':
			i++
		case strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case strings.HasPrefix(s[i:], "]]") && depth > 0:
			depth--
			i++
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			return s[:i], s[i+len(sep):], true
		}
	}
	return s, "", false
}

// splitLastUnescaped splits s at the last top-level unescaped sep.
func splitLastUnescaped(s, sep string) (before, after string, found bool) {
	at := -1
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '~':
			i++
		case strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case strings.HasPrefix(s[i:], "]]") && depth > 0:
			depth--
			i++
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			at = i
			i += len(sep) - 1
		}
	}
	if at < 0 {
		return s, "", false
	}
	return s[:at], s[at+len(sep):], true
}

// unescape removes "~" escapes.
func unescape(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '~' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
