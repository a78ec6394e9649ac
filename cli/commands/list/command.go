// Package list implements the ls command: show the repositories of the cluster and their state.
package list

import (
	"github.com/urfave/cli/v2"

	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/store"
)

const CommandName = "ls"

func NewCommand(opts *options.RunOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "List the repositories of the cluster.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "names-only",
				Aliases: []string{"n"},
				Usage:   "Print one repository name per line, nothing else.",
			},
		},
		Action: func(ctx *cli.Context) error {
			return Run(opts, ctx.Bool("names-only"))
		},
	}
}

// Run lists the cluster to the command's writer.
func Run(opts *options.RunOptions, namesOnly bool) error {
	root, err := store.OpenRoot(opts)
	if err != nil {
		return err
	}

	return store.List(opts.Writer, opts, root, namesOnly)
}
