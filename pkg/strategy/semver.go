package strategy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// Bump selects the semantic version component to increment
type Bump int

const (
	BumpPatch Bump = iota
	BumpMinor
	BumpMajor
)

// Semver bumps the highest semantic version among the submodule tags.
// Prereleases and tags that are not semantic versions are ignored; the "v" prefix of the
// highest tag is kept as is.
func Semver(bump Bump) Func {
	return func(ctx context.Context, input model.TagDerivation) (string, error) {
		var best, bestRaw string
		for _, t := range input.ExistingTags {
			v := canonical(t.Name)
			if v == "" || semver.Prerelease(v) != "" {
				continue
			}
			if best == "" || semver.Compare(v, best) > 0 {
				best, bestRaw = v, t.Name
			}
		}
		if best == "" {
			return "", notApplicable("submodule has no semantic version tag", input)
		}

		major, minor, patch := parts(best)
		switch bump {
		case BumpMajor:
			major, minor, patch = major+1, 0, 0
		case BumpMinor:
			minor, patch = minor+1, 0
		default:
			patch++
		}

		next := fmt.Sprintf("%d.%d.%d", major, minor, patch)
		if strings.HasPrefix(bestRaw, "v") {
			next = "v" + next
		}
		return next, nil
	}
}

func canonical(name string) string {
	v := name
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// parts splits a canonical "vX.Y.Z" version
func parts(v string) (int, int, int) {
	fields := strings.SplitN(strings.TrimPrefix(semver.Canonical(v), "v"), ".", 3)
	nums := make([]int, 3)
	for i, f := range fields {
		if idx := strings.IndexAny(f, "-+"); idx >= 0 {
			f = f[:idx]
		}
		nums[i], _ = strconv.Atoi(f)
	}
	return nums[0], nums[1], nums[2]
}
