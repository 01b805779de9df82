//go:build property
// +build property

package query

import (
	"context"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTranslationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(7)
	properties := gopter.NewProperties(parameters)

	ident := gen.Identifier().SuchThat(func(s string) bool {
		return s != "" && !leading.MatchString(s) && !keywords[strings.ToLower(s)]
	})
	tr := NewTranslator(nil, nil)

	properties.Property("every object property gets one join", prop.ForAll(
		func(props []string) bool {
			var conds []string
			for _, p := range props {
				conds = append(conds, "o."+p+" = 1")
			}
			hql, err := tr.Translate(context.Background(), "from doc.object(A.B) as o where "+strings.Join(conds, " and "))
			if err != nil {
				return false
			}
			distinct := make(map[string]bool)
			for _, p := range props {
				if !objectColumns[p] {
					distinct[p] = true
				}
			}
			return strings.Count(hql, " as o_") == len(distinct) &&
				strings.Count(hql, ".id.id = o.id") == len(distinct)
		},
		gen.SliceOfN(4, ident),
	))

	properties.Property("bare where clauses keep their text", prop.ForAll(
		func(a, b string) bool {
			hql, err := tr.Translate(context.Background(), "where "+a+"."+b+" = 'v'")
			return err == nil && strings.HasSuffix(hql, " where "+a+"."+b+" = 'v'")
		},
		ident, ident,
	))

	properties.TestingRun(t)
}

var keywords = map[string]bool{
	"select": true, "distinct": true, "from": true, "where": true, "order": true, "group": true,
	"having": true, "by": true, "as": true, "and": true, "or": true, "not": true, "member": true,
	"of": true, "in": true, "is": true, "null": true, "like": true, "between": true, "escape": true,
	"exists": true, "asc": true, "desc": true, "all": true, "any": true, "some": true, "case": true,
	"when": true, "then": true, "else": true, "end": true,
}
