// Package undeploy implements the undeploy command: retract materialized content from alias
// directories.
package undeploy

import (
	"github.com/urfave/cli/v2"

	"github.com/gitcluster/gitcluster/cli/commands/deploy"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/repository"
	"github.com/gitcluster/gitcluster/util"
)

const CommandName = "undeploy"

func NewCommand(opts *options.RunOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Undeploy repositories from their alias directories.",
		ArgsUsage: "<pattern>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "only",
				Aliases: []string{"o"},
				Usage:   "Do not undeploy dependencies of the selected nodes.",
			},
			&cli.BoolFlag{
				Name:    "excluded-only",
				Aliases: []string{"e"},
				Usage:   "Retract only the excluded files, keep the plain deployment.",
			},
		},
		Action: func(ctx *cli.Context) error {
			action := repository.ActionUndeploy
			if ctx.Bool("excluded-only") {
				action = repository.ActionUndeployExcludes
			}

			// Undeployment walks the same selection logic as deployment, only the action differs.
			return deploy.Run(opts, util.CleanPatternList(ctx.Args().Slice()), action, ctx.Bool("only"))
		},
	}
}
