package strategy

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

var trailingNumber = regexp.MustCompile(`^(.*?)(\d+)$`)

// Counter increments the trailing number of the most recent submodule tag and keeps its
// zero padding: CSB.00.04.03.09 -> CSB.00.04.03.10
func Counter() Func {
	return func(ctx context.Context, input model.TagDerivation) (string, error) {
		if len(input.ExistingTags) == 0 {
			return "", notApplicable("submodule has no tag to count from", input)
		}

		latest := input.ExistingTags[0].Name
		m := trailingNumber.FindStringSubmatch(latest)
		if m == nil {
			return "", notApplicable("latest tag has no trailing number", input, goerr.V("latest", latest))
		}

		n, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return "", notApplicable("trailing number overflows", input, goerr.V("latest", latest))
		}
		next := m[1] + fmt.Sprintf("%0*d", len(m[2]), n+1)

		if hasTag(input.ExistingTags, next) {
			return "", notApplicable("next tag already exists", input, goerr.V("next", next))
		}
		return next, nil
	}
}
