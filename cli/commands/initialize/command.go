// Package initialize implements the init command: create a new empty repository in the cluster, or
// a brand new root.
package initialize

import (
	"github.com/urfave/cli/v2"

	"github.com/gitcluster/gitcluster/config"
	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/repository"
	"github.com/gitcluster/gitcluster/store"
)

const CommandName = "init"

func NewCommand(opts *options.RunOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Initialize a new node repository, or a new root with --root.",
		ArgsUsage: "<name> <url>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "root",
				Usage: "Initialize a new empty root repository instead of a node.",
			},
			&cli.PathFlag{
				Name:    "dir-alias",
				Aliases: []string{"d"},
				Usage:   "Make the node bare-alias with the given directory as its alias.",
			},
			&cli.BoolFlag{
				Name:    "home-alias",
				Aliases: []string{"H"},
				Usage:   "Make the node bare-alias with the home directory as its alias.",
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.Bool("root") {
				if ctx.NArg() != 0 {
					return errors.Errorf("init --root takes no arguments")
				}

				return RunRoot(opts)
			}

			if ctx.NArg() != 2 {
				return errors.Errorf("init expects a node name and the URL it will be cloned from")
			}

			node := &config.Node{
				URL:       ctx.Args().Get(1),
				BareAlias: ctx.Bool("home-alias") || ctx.Path("dir-alias") != "",
				Worktree:  ctx.Path("dir-alias"),
			}

			return Run(opts, ctx.Args().Get(0), node)
		},
	}
}

// RunRoot initializes a brand new empty root repository with an empty cluster definition.
func RunRoot(opts *options.RunOptions) error {
	unlock, err := store.Lock(opts)
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck

	cluster, err := config.Parse("")
	if err != nil {
		return err
	}

	if _, err := store.InitRoot(opts, cluster); err != nil {
		return err
	}

	opts.Logger.Infof("Initialized new root repository at %s", opts.RepositoryDir(config.RootName))

	return nil
}

// Run initializes a new empty node repository, records it in the cluster definition, and writes the
// definition back. A root repository is created first if the store has none, the store is never
// left rootless.
func Run(opts *options.RunOptions, name string, node *config.Node) error {
	unlock, err := store.Lock(opts)
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck

	cluster, err := config.Load(opts.ClusterFile())
	if err != nil {
		return err
	}

	// The store is never left rootless.
	if !repository.Exists(store.RootConfig(opts, cluster)) {
		if _, err := store.InitRoot(opts, cluster); err != nil {
			return err
		}
	}

	if err := cluster.AddNode(name, node); err != nil {
		return err
	}

	if _, err := repository.Init(store.NodeConfig(opts, name, node)); err != nil {
		return err
	}

	if err := cluster.Save(opts.ClusterFile()); err != nil {
		return err
	}

	opts.Logger.Infof("Initialized new node %q at %s", name, opts.RepositoryDir(name))

	return nil
}
