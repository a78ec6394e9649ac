// Package clone implements the clone command: bring a whole cluster onto the machine from the URL
// of its root repository.
package clone

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gitcluster/gitcluster/cli/commands"
	"github.com/gitcluster/gitcluster/cloner"
	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/store"
)

const CommandName = "clone"

func NewCommand(opts *options.RunOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Clone a cluster from the URL of its root repository.",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Maximum number of repositories cloned at once (default: unbounded).",
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return errors.Errorf("clone expects exactly one argument, the URL of the root repository")
			}

			opts.Jobs = ctx.Int("jobs")

			return Run(opts, ctx.Args().First())
		},
	}
}

// Run clones the root repository, reads the cluster definition out of it, deploys the root, then
// clones every node concurrently. A failed root clone rolls the store back to nothing; failed node
// clones are reported in an aggregate error while their siblings land normally.
func Run(opts *options.RunOptions, url string) error {
	unlock, err := store.Lock(opts)
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck

	renderer := commands.NewProgressRenderer(opts)
	prompter := commands.NewPrompter(opts, renderer)

	defer renderer.Stop() //nolint:errcheck

	root, err := store.CloneRoot(opts, url, renderer, prompter)
	if err != nil {
		cleanupStore(opts)
		return err
	}

	cluster := root.Cluster()

	orchestrator := cloner.NewOrchestrator(renderer, prompter, opts.Jobs)

	for _, name := range cluster.NodeNames() {
		orchestrator.Add(store.NodeConfig(opts, name, cluster.Nodes[name]))
	}

	return orchestrator.Run()
}

// A failed root clone leaves no store behind, matching the state before the command ran.
func cleanupStore(opts *options.RunOptions) {
	for _, dir := range []string{opts.DataDir, opts.ConfigDir} {
		if err := os.RemoveAll(dir); err != nil {
			opts.Logger.Warnf("Could not clean up %s: %v", dir, err)
		}
	}
}
