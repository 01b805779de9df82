package macro

import (
	"sort"

	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/model"
)

// Builtins returns the built-in macros. The include macro reads through
// loader; it is left out when loader is nil.
func Builtins(loader DocumentLoader, resolver *model.Resolver) []Macro {
	macros := []Macro{
		NewBox("info"),
		NewBox("warning"),
		NewBox("error"),
		NewBox("success"),
		Code{},
		HTML{},
		ID{},
		TOC{},
	}
	if loader != nil {
		macros = append(macros, NewInclude(loader, resolver))
	}
	return macros
}

// Register registers macros in m under role Macro, hinted by id.
func Register(m *component.Manager, macros ...Macro) error {
	for _, mc := range macros {
		if err := component.RegisterInstance[Macro](m, mc.Descriptor().ID, mc); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the macro registered under id.
func Lookup(r component.Resolver, id string) (Macro, error) {
	return component.Lookup[Macro](r, id)
}

// IDs returns the ids of every registered macro.
func IDs(r component.Resolver) []string {
	macros, err := component.LookupMap[Macro](r)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(macros))
	for id := range macros {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
