package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func cmdPublish() *cli.Command {
	var p pipeline

	return &cli.Command{
		Name:    "publish",
		Aliases: []string{"p"},
		Usage:   "Publish releases, descriptors and assets to object storage",
		Flags:   p.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := p.build(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			_, err = uc.Publish(ctx)
			return err
		},
	}
}
