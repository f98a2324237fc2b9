package strategy

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

// Rule maps submodule names matching a glob pattern to a built-in strategy
type Rule struct {
	Match    string `toml:"match" yaml:"match"`
	Strategy string `toml:"strategy" yaml:"strategy"`
}

// RuleFile is the content of a rule file
type RuleFile struct {
	Rules []Rule `toml:"rules" yaml:"rules"`
}

type compiledRule struct {
	Rule
	strategy interfaces.TagStrategy
}

// RuleSet applies the first rule whose pattern matches the submodule name
type RuleSet struct {
	rules []compiledRule
}

// NewRuleSet validates rules and resolves their strategies
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{}
	for i, r := range rules {
		if r.Match == "" {
			return nil, goerr.New("rule without match pattern", goerr.V("index", i), goerr.T(types.ErrTagInvalidConfig))
		}
		if _, err := path.Match(r.Match, ""); err != nil {
			return nil, goerr.Wrap(err, "invalid rule pattern", goerr.V("match", r.Match), goerr.T(types.ErrTagInvalidConfig))
		}
		s, err := New(r.Strategy)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid rule strategy", goerr.V("index", i), goerr.T(types.ErrTagInvalidConfig))
		}
		rs.rules = append(rs.rules, compiledRule{Rule: r, strategy: s})
	}
	return rs, nil
}

// LoadRuleFile reads a TOML (.toml) or YAML (.yaml, .yml) rule file
func LoadRuleFile(fpath string) (*RuleSet, error) {
	raw, err := os.ReadFile(filepath.Clean(fpath))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read rule file", goerr.V("path", fpath), goerr.T(types.ErrTagInvalidConfig))
	}

	var file RuleFile
	switch strings.ToLower(filepath.Ext(fpath)) {
	case ".toml":
		err = toml.Unmarshal(raw, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	default:
		return nil, goerr.New("unsupported rule file extension", goerr.V("path", fpath), goerr.T(types.ErrTagInvalidConfig))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse rule file", goerr.V("path", fpath), goerr.T(types.ErrTagInvalidConfig))
	}

	return NewRuleSet(file.Rules)
}

// NextTag implements interfaces.TagStrategy
func (rs *RuleSet) NextTag(ctx context.Context, input model.TagDerivation) (string, error) {
	for _, r := range rs.rules {
		if ok, _ := path.Match(r.Match, input.Submodule); ok {
			return r.strategy.NextTag(ctx, input)
		}
	}
	return "", notApplicable("no rule matches submodule", input)
}
