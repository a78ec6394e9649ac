// Package remove implements the rm command: take repositories out of the cluster, or tear down the
// whole store when the root is named.
package remove

import (
	"github.com/urfave/cli/v2"

	"github.com/gitcluster/gitcluster/cli/commands"
	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/shell"
	"github.com/gitcluster/gitcluster/store"
	"github.com/gitcluster/gitcluster/util"
)

const CommandName = "rm"

func NewCommand(opts *options.RunOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Remove repositories from the cluster. Removing root removes the whole store.",
		ArgsUsage: "<pattern>...",
		Action: func(ctx *cli.Context) error {
			return Run(opts, util.CleanPatternList(ctx.Args().Slice()))
		},
	}
}

// Run removes every node selected by the patterns: each is undeployed, its git directory deleted,
// and its entry dropped from the cluster definition. The literal name root instead tears down the
// whole store after an explicit confirmation.
func Run(opts *options.RunOptions, patterns []string) error {
	unlock, err := store.Lock(opts)
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck

	root, err := store.OpenRoot(opts)
	if err != nil {
		return err
	}

	withRoot, patterns := commands.SplitRootFromPatterns(patterns)

	if withRoot {
		return nukeStore(opts, root)
	}

	renderer := commands.NewProgressRenderer(opts)
	prompter := commands.NewPrompter(opts, renderer)

	defer renderer.Stop() //nolint:errcheck

	cluster := root.Cluster()
	targets := util.MatchNames(opts.Logger, patterns, cluster.NodeNames())

	for _, name := range targets {
		cfgNode, err := cluster.GetNode(name)
		if err != nil {
			return err
		}

		node, err := store.OpenNode(opts, name, cfgNode, renderer, prompter)
		if err != nil {
			return err
		}

		if err := node.Remove(); err != nil {
			return err
		}

		if err := cluster.RemoveNode(name); err != nil {
			return err
		}

		opts.Logger.Infof("Removed node %q from the cluster", name)
	}

	return cluster.Save(opts.ClusterFile())
}

func nukeStore(opts *options.RunOptions, root *store.Root) error {
	if opts.NonInteractive {
		return errors.Errorf("removing the root tears down the whole store and needs interactive confirmation")
	}

	confirmed, err := shell.PromptUserForYesNo("Removing root deletes every repository in the cluster. Continue?")
	if err != nil {
		return err
	}

	if !confirmed {
		opts.Logger.Infof("Keeping the cluster")
		return nil
	}

	return root.Nuke()
}
