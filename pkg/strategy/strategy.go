// Package strategy provides the tag derivation rules applied to changed submodules.
//
// None of them is a default: the operator selects one by name, or maps submodule
// names to strategies with a rule file.
package strategy

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

// Func adapts a function to interfaces.TagStrategy
type Func func(ctx context.Context, input model.TagDerivation) (string, error)

func (f Func) NextTag(ctx context.Context, input model.TagDerivation) (string, error) {
	return f(ctx, input)
}

var builtins = map[string]func() interfaces.TagStrategy{
	"mirror":       func() interfaces.TagStrategy { return Mirror() },
	"counter":      func() interfaces.TagStrategy { return Counter() },
	"semver-patch": func() interfaces.TagStrategy { return Semver(BumpPatch) },
	"semver-minor": func() interfaces.TagStrategy { return Semver(BumpMinor) },
	"semver-major": func() interfaces.TagStrategy { return Semver(BumpMajor) },
}

// Names returns the names of built-in strategies
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the built-in strategy called name
func New(name string) (interfaces.TagStrategy, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, goerr.New("unknown tag strategy",
			goerr.V("name", name),
			goerr.V("available", Names()),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	return build(), nil
}

func notApplicable(msg string, input model.TagDerivation, opts ...goerr.Option) error {
	opts = append(opts,
		goerr.V("submodule", input.Submodule),
		goerr.V("parent_tag", input.ParentTag),
		goerr.T(types.ErrTagNoApplicableStrategy),
	)
	return goerr.New(msg, opts...)
}

func hasTag(tags []model.TagRef, name string) bool {
	for _, t := range tags {
		if t.Name == name {
			return true
		}
	}
	return false
}
