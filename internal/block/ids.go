package block

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// IDGenerator produces unique anchor ids for headings, e.g. "HGettingStarted".
type IDGenerator struct {
	used map[string]int
}

// NewIDGenerator returns a generator with no ids reserved.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{used: make(map[string]int)}
}

// Reserve marks an existing id as taken.
func (g *IDGenerator) Reserve(id string) {
	g.used[id]++
}

// Generate returns prefix followed by the ASCII letters and digits of text,
// with diacritics stripped. Collisions get a numeric suffix.
func (g *IDGenerator) Generate(prefix, text string) string {
	id := prefix + Slug(text)
	if id == "" {
		id = "id"
	}
	n := g.used[id]
	g.used[id] = n + 1
	if n == 0 {
		return id
	}
	for {
		candidate := id + "-" + strconv.Itoa(n)
		if g.used[candidate] == 0 {
			g.used[candidate] = 1
			return candidate
		}
		n++
	}
}

// Slug keeps the ASCII letters and digits of text after removing accents.
func Slug(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, text)
	if err != nil {
		plain = text
	}
	var sb strings.Builder
	for _, r := range plain {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
