// Package commands holds the helpers shared by every gitcluster command.
package commands

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/gitcluster/gitcluster/cloner"
	"github.com/gitcluster/gitcluster/config"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/util"
)

// NewProgressRenderer creates the progress renderer for a command run. Rendering only happens on an
// interactive terminal; piped output and non-interactive runs stay clean.
func NewProgressRenderer(opts *options.RunOptions) *cloner.ProgressRenderer {
	enabled := false

	if !opts.NonInteractive {
		if f, ok := opts.ErrWriter.(*os.File); ok {
			enabled = isatty.IsTerminal(f.Fd())
		}
	}

	return cloner.NewProgressRenderer(enabled)
}

// NewPrompter creates the credential prompter for a command run, honoring non-interactive mode.
func NewPrompter(opts *options.RunOptions, renderer *cloner.ProgressRenderer) cloner.CredentialPrompter {
	if opts.NonInteractive {
		return cloner.DisabledPrompter{}
	}

	return cloner.NewTerminalPrompter(renderer)
}

// SplitRootFromPatterns separates the literal root name from a cleaned pattern list. The root is
// never pattern-matched; only the exact name selects it.
func SplitRootFromPatterns(patterns []string) (bool, []string) {
	withRoot := util.ListContainsElement(patterns, config.RootName)

	return withRoot, util.RemoveElementFromList(patterns, config.RootName)
}

// TargetNodes expands the given patterns against the cluster's node names and returns the selected
// nodes, dependencies included unless only is set. Each node appears at most once.
func TargetNodes(opts *options.RunOptions, cluster *config.Cluster, patterns []string, only bool) ([]config.NodeRef, error) {
	matched := util.MatchNames(opts.Logger, patterns, cluster.NodeNames())

	if only {
		refs := make([]config.NodeRef, 0, len(matched))

		for _, name := range matched {
			node, err := cluster.GetNode(name)
			if err != nil {
				return nil, err
			}

			refs = append(refs, config.NodeRef{Name: name, Node: node})
		}

		return refs, nil
	}

	seen := make(map[string]bool, len(cluster.Nodes))
	refs := make([]config.NodeRef, 0, len(cluster.Nodes))

	for _, name := range matched {
		closure, err := cluster.DependencyClosure(name)
		if err != nil {
			return nil, err
		}

		for _, ref := range closure {
			if seen[ref.Name] {
				continue
			}

			seen[ref.Name] = true

			refs = append(refs, ref)
		}
	}

	return refs, nil
}
