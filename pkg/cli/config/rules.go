package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/model"
	"github.com/m-mizutani/relpub/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Rules points to an optional TOML file overriding release selection rules
type Rules struct {
	Path string
}

// Flags returns CLI flags for rules configuration
func (c *Rules) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rules",
			Usage:       "TOML file with exclude_tags and asset patterns",
			Destination: &c.Path,
			Sources:     cli.EnvVars("RELPUB_RULES"),
		},
	}
}

// Load returns the selection rules. Sections missing in the file keep their
// default values.
func (c *Rules) Load() (*model.Rules, error) {
	rules := model.DefaultRules()
	if c.Path == "" {
		return rules, nil
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open rules file",
			goerr.V("path", c.Path), goerr.T(types.ErrTagConfig))
	}
	defer f.Close()

	var loaded model.Rules
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&loaded); err != nil {
		return nil, goerr.Wrap(err, "failed to decode rules file",
			goerr.V("path", c.Path), goerr.T(types.ErrTagConfig))
	}

	if loaded.ExcludeTags != nil {
		rules.ExcludeTags = loaded.ExcludeTags
	}
	for kind, rule := range loaded.Assets {
		if _, ok := rules.Assets[kind]; !ok {
			return nil, goerr.New("unknown asset kind in rules file",
				goerr.V("kind", kind), goerr.V("path", c.Path), goerr.T(types.ErrTagConfig))
		}
		if rule.ContentType == "" {
			rule.ContentType = rules.Assets[kind].ContentType
		}
		if rule.Pattern == "" {
			rule.Pattern = rules.Assets[kind].Pattern
		}
		rules.Assets[kind] = rule
	}

	return rules, nil
}
