package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/relpub/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdPlan() *cli.Command {
	var p pipeline

	return &cli.Command{
		Name:  "plan",
		Usage: "Show what publish would upload without writing anything",
		Flags: p.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := p.build(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			plan, err := uc.Plan(ctx)
			if err != nil {
				return err
			}

			printPlan(os.Stdout, plan)
			return nil
		},
	}
}

var (
	headerColor  = color.New(color.Bold)
	newColor     = color.New(color.FgGreen)
	existsColor  = color.New(color.FgYellow)
	skippedColor = color.New(color.FgRed)
)

func printPlan(w io.Writer, plan *model.Plan) {
	sel := plan.Selection

	headerColor.Fprintf(w, "Releases (%d)\n", len(sel.Releases))
	for _, r := range sel.Releases {
		marker := " "
		if sel.Latest != nil && sel.Latest.Name == r.Name {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %s\n", marker, r.Name)
	}
	for _, tag := range sel.Incomplete {
		skippedColor.Fprintf(w, " - %s (missing assets)\n", tag)
	}
	if sel.Latest == nil {
		skippedColor.Fprintln(w, "No latest release, latest.json would not be written")
	}

	fmt.Fprintln(w)
	headerColor.Fprintf(w, "Objects (%d)\n", len(plan.Entries))

	var created, replaced int
	for _, e := range plan.Entries {
		if e.Exists {
			replaced++
			existsColor.Fprintf(w, " ~ %s", e.Key)
		} else {
			created++
			newColor.Fprintf(w, " + %s", e.Key)
		}
		fmt.Fprintf(w, "  [%s] <- %s\n", e.ContentType, e.Source)
	}

	fmt.Fprintf(w, "\n%d to create, %d to replace\n", created, replaced)
}
