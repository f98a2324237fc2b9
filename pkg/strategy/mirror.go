package strategy

import (
	"context"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// Mirror names the submodule tag after the parent tag
func Mirror() Func {
	return func(ctx context.Context, input model.TagDerivation) (string, error) {
		if input.ParentTag == "" {
			return "", notApplicable("parent tag is empty", input)
		}
		if hasTag(input.ExistingTags, input.ParentTag) {
			return "", notApplicable("submodule already has the parent tag", input)
		}
		return input.ParentTag, nil
	}
}
