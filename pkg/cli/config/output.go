package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Output is where manifest.json and latest.json are written
type Output struct {
	Dir string
}

// Flags returns CLI flags for output configuration
func (c *Output) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output-dir",
			Usage:       "Directory for manifest.json and latest.json",
			Value:       ".",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("RELPUB_OUTPUT_DIR"),
		},
	}
}

// Prepare creates the output directory if needed
func (c *Output) Prepare() error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create output directory",
			goerr.V("dir", c.Dir), goerr.T(types.ErrTagConfig))
	}
	return nil
}
