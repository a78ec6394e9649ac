// Package deploy implements the deploy command: materialize bare-alias repositories onto their
// alias directories.
package deploy

import (
	"github.com/urfave/cli/v2"

	"github.com/gitcluster/gitcluster/cli/commands"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/repository"
	"github.com/gitcluster/gitcluster/store"
	"github.com/gitcluster/gitcluster/util"
)

const CommandName = "deploy"

func NewCommand(opts *options.RunOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Deploy repositories onto their alias directories.",
		ArgsUsage: "<pattern>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "only",
				Aliases: []string{"o"},
				Usage:   "Do not deploy dependencies of the selected nodes.",
			},
			&cli.BoolFlag{
				Name:    "with-excluded",
				Aliases: []string{"w"},
				Usage:   "Deploy excluded files as well.",
			},
		},
		Action: func(ctx *cli.Context) error {
			action := repository.ActionDeploy
			if ctx.Bool("with-excluded") {
				action = repository.ActionDeployAll
			}

			return Run(opts, util.CleanPatternList(ctx.Args().Slice()), action, ctx.Bool("only"))
		},
	}
}

// Run applies the action to every repository selected by the patterns. The literal name root
// targets the root repository; everything else is matched against node names, with dependencies
// included unless only is set.
func Run(opts *options.RunOptions, patterns []string, action repository.Action, only bool) error {
	unlock, err := store.Lock(opts)
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck

	root, err := store.OpenRoot(opts)
	if err != nil {
		return err
	}

	renderer := commands.NewProgressRenderer(opts)
	prompter := commands.NewPrompter(opts, renderer)

	defer renderer.Stop() //nolint:errcheck

	withRoot, patterns := commands.SplitRootFromPatterns(patterns)

	if withRoot {
		if err := root.Deploy(action); err != nil {
			return err
		}
	}

	targets, err := commands.TargetNodes(opts, root.Cluster(), patterns, only)
	if err != nil {
		return err
	}

	for _, target := range targets {
		node, err := store.OpenNode(opts, target.Name, target.Node, renderer, prompter)
		if err != nil {
			return err
		}

		if err := node.Deploy(action); err != nil {
			return err
		}
	}

	return nil
}
