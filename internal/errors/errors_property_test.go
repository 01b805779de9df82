//go:build property
// +build property

package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCollectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("concurrent additions are all kept", prop.ForAll(
		func(goroutines, perGoroutine int) bool {
			c := NewCollector()
			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				g := g
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perGoroutine; i++ {
						c.AddError(fmt.Sprintf("Space.Page%d", g), NewParseError(ErrCodeSyntax, fmt.Sprint(i), nil))
					}
				}()
			}
			wg.Wait()
			return c.Len() == goroutines*perGoroutine
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 50),
	))

	properties.Property("HasErrors matches Err", prop.ForAll(
		func(severities []int) bool {
			c := NewCollector()
			for _, s := range severities {
				c.Add(Diagnostic{Message: "m", Severity: Severity(s)})
			}
			return c.HasErrors() == (c.Err() != nil)
		},
		gen.SliceOf(gen.IntRange(int(SeverityInfo), int(SeverityFatal))),
	))

	properties.TestingRun(t)
}

func TestSuggestProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(3691)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("distance is symmetric", prop.ForAll(
		func(a, b string) bool {
			return distance(a, b) == distance(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("distance is bounded by the longer length", prop.ForAll(
		func(a, b string) bool {
			d := distance(a, b)
			return d >= 0 && d <= max(len(a), len(b))
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("suggestions come from the candidates", prop.ForAll(
		func(name string, candidates []string) bool {
			set := make(map[string]bool, len(candidates))
			for _, c := range candidates {
				set[c] = true
			}
			for _, s := range Suggest(name, candidates) {
				if !set[s] {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
