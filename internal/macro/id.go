package macro

import (
	"context"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/params"
)

// ID places an anchor.
type ID struct{}

func (ID) Descriptor() Descriptor {
	return Descriptor{
		ID:             "id",
		Name:           "Id",
		Description:    "Places an anchor that links can target.",
		Content:        ContentNone,
		SupportsInline: true,
		Parameters:     []ParameterDescriptor{{Name: "name", Required: true}},
	}
}

func (ID) Execute(_ context.Context, p *params.Map, _ string, _ *Context) ([]block.Block, error) {
	name, err := requiredParam("id", p, "name")
	if err != nil {
		return nil, err
	}
	return []block.Block{block.NewId(name)}, nil
}
