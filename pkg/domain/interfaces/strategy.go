package interfaces

import (
	"context"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// TagStrategy derives the name of the tag to create in a submodule repository.
// It returns an error tagged with types.ErrTagNoApplicableStrategy when no rule applies.
type TagStrategy interface {
	NextTag(ctx context.Context, input model.TagDerivation) (string, error)
}
