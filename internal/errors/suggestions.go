package errors

import (
	"sort"
	"strings"
)

// Suggest returns the candidates closest to name, nearest first. A
// candidate qualifies when its case-insensitive edit distance is at most a
// third of the name's length (minimum 2) or when one contains the other.
func Suggest(name string, candidates []string) []string {
	type scored struct {
		s string
		d int
	}
	lname := strings.ToLower(name)
	limit := max(2, len(name)/3)

	var hits []scored
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if lc == lname {
			continue
		}
		d := distance(lname, lc)
		if d <= limit || (lname != "" && (strings.Contains(lc, lname) || strings.Contains(lname, lc))) {
			hits = append(hits, scored{c, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].d != hits[j].d {
			return hits[i].d < hits[j].d
		}
		return hits[i].s < hits[j].s
	})

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.s
	}
	return out
}

// WithSuggestions attaches the candidates closest to name to e.
func (e *WikiError) WithSuggestions(name string, candidates []string) *WikiError {
	if s := Suggest(name, candidates); len(s) > 0 {
		e.WithContext("suggestions", s)
	}
	return e
}

// Suggestions returns the suggestions attached to err, if any.
func Suggestions(err error) []string {
	var we *WikiError
	if !As(err, &we) {
		return nil
	}
	s, _ := we.Context["suggestions"].([]string)
	return s
}

// FormatSuggestions renders suggestions as a "did you mean" line.
func FormatSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return "did you mean " + strings.Join(suggestions, ", ") + "?"
}

// distance is the Levenshtein distance between a and b.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
