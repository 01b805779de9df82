package xwiki

import (
	"strings"

	"github.com/conneroisu/wikicore/internal/params"
)

// ParseParameters parses `key="value" key2=value2` lists as found in macro
// calls, link parameters and (% %) blocks. Inside quoted values "~" escapes
// the next character.
func ParseParameters(s string) *params.Map {
	p := params.New()
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}

		keyStart := i
		for i < len(s) && s[i] != '=' && !isSpace(s[i]) && s[i] != '"' {
			i++
		}
		key := s[keyStart:i]

		if i >= len(s) || s[i] != '=' {
			// bare token without value
			if key == "" && i < len(s) && s[i] == '"' {
				_, i = readValue(s, i)
			}
			continue
		}
		i++ // '='

		var value string
		value, i = readValue(s, i)
		if key != "" {
			p.Set(key, value)
		}
	}
	return p
}

func readValue(s string, i int) (string, int) {
	if i < len(s) && s[i] == '"' {
		var sb strings.Builder
		i++
		for i < len(s) {
			c := s[i]
			if c == '~' && i+1 < len(s) {
				sb.WriteByte(s[i+1])
				i += 2
				continue
			}
			if c == '"' {
				i++
				break
			}
			sb.WriteByte(c)
			i++
		}
		return sb.String(), i
	}
	start := i
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	return s[start:i], i
}

// FormatParameters serialises p back into `key="value"` form.
func FormatParameters(p *params.Map) string {
	var parts []string
	p.Each(func(k, v string) {
		v = strings.ReplaceAll(v, "~", "~~")
		v = strings.ReplaceAll(v, `"`, `~"`)
		parts = append(parts, k+`="`+v+`"`)
	})
	return strings.Join(parts, " ")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
