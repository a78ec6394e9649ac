// Package cli assembles the gitcluster command line application.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gitcluster/gitcluster/cli/commands"
	"github.com/gitcluster/gitcluster/cli/commands/clone"
	"github.com/gitcluster/gitcluster/cli/commands/deploy"
	"github.com/gitcluster/gitcluster/cli/commands/initialize"
	"github.com/gitcluster/gitcluster/cli/commands/list"
	"github.com/gitcluster/gitcluster/cli/commands/remove"
	"github.com/gitcluster/gitcluster/cli/commands/undeploy"
	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/store"
	"github.com/gitcluster/gitcluster/util"
)

// NewApp creates the gitcluster application: the named commands plus a default action that
// delegates anything else to the git binary against the selected repositories.
func NewApp(opts *options.RunOptions) *cli.App {
	app := cli.NewApp()
	app.Name = options.AppName
	app.Usage = "Manage a cluster of git repositories deployed onto shared directories."
	app.UsageText = "gitcluster <command> [options], or gitcluster <patterns> <git arguments>..."
	app.Writer = opts.Writer
	app.ErrWriter = opts.ErrWriter

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: trace, debug, info, warn, error.",
			Value: logrus.InfoLevel.String(),
		},
		&cli.BoolFlag{
			Name:  "non-interactive",
			Usage: "Never prompt; operations that would ask a question fail instead.",
		},
	}

	app.Before = func(ctx *cli.Context) error {
		opts.NonInteractive = ctx.Bool("non-interactive")

		level, err := logrus.ParseLevel(ctx.String("log-level"))
		if err != nil {
			return errors.WithStackTrace(err)
		}

		opts.Logger.Logger.SetLevel(level)

		return nil
	}

	app.Commands = []*cli.Command{
		clone.NewCommand(opts),
		initialize.NewCommand(opts),
		deploy.NewCommand(opts),
		undeploy.NewCommand(opts),
		remove.NewCommand(opts),
		list.NewCommand(opts),
	}

	app.Action = func(ctx *cli.Context) error {
		if ctx.NArg() == 0 {
			return cli.ShowAppHelp(ctx)
		}

		if ctx.NArg() < 2 {
			return errors.Errorf("delegation expects patterns followed by git arguments, e.g. %s 'vim,sh' status -s", options.AppName)
		}

		patterns := util.SplitPatternList(ctx.Args().First())
		gitArgs := ctx.Args().Slice()[1:]

		return runGit(opts, patterns, gitArgs)
	}

	return app
}

// runGit runs the given git arguments against every repository selected by the patterns, in the
// interactive terminal, one repository after another.
func runGit(opts *options.RunOptions, patterns []string, gitArgs []string) error {
	root, err := store.OpenRoot(opts)
	if err != nil {
		return err
	}

	renderer := commands.NewProgressRenderer(opts)
	prompter := commands.NewPrompter(opts, renderer)

	defer renderer.Stop() //nolint:errcheck

	withRoot, patterns := commands.SplitRootFromPatterns(patterns)

	if withRoot {
		if err := root.Git(gitArgs...); err != nil {
			return err
		}
	}

	cluster := root.Cluster()

	for _, name := range util.MatchNames(opts.Logger, patterns, cluster.NodeNames()) {
		cfgNode, err := cluster.GetNode(name)
		if err != nil {
			return err
		}

		node, err := store.OpenNode(opts, name, cfgNode, renderer, prompter)
		if err != nil {
			return err
		}

		if err := node.Git(gitArgs...); err != nil {
			return err
		}
	}

	return nil
}
