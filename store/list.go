package store

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/repository"
)

// List writes a listing of the cluster to the given writer. With namesOnly it prints one name per
// line, root first, which is the machine-consumable form. Otherwise it renders a table with each
// repository's kind, current branch, and deployment state, without cloning anything: nodes not on
// disk show up as absent.
func List(writer io.Writer, opts *options.RunOptions, root *Root, namesOnly bool) error {
	cluster := root.Cluster()

	if namesOnly {
		fmt.Fprintln(writer, root.repo.Config().Name)

		for _, name := range cluster.NodeNames() {
			fmt.Fprintln(writer, name)
		}

		return nil
	}

	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Name", "Kind", "Branch", "Deployed"})
	table.SetBorder(false)

	row, err := listRow(root.repo.Config().Name, root.repo)
	if err != nil {
		return err
	}

	table.Append(row)

	for _, name := range cluster.NodeNames() {
		node := cluster.Nodes[name]
		cfg := NodeConfig(opts, name, node)

		if !repository.Exists(cfg) {
			table.Append([]string{name, cfg.Kind.String(), "-", "absent"})
			continue
		}

		repo, err := repository.Open(cfg)
		if err != nil {
			return err
		}

		if row, err = listRow(name, repo); err != nil {
			return err
		}

		table.Append(row)
	}

	table.Render()

	return nil
}

func listRow(name string, repo *repository.Repository) ([]string, error) {
	branch, err := repo.CurrentBranch()
	if err != nil {
		return nil, err
	}

	if branch == "" {
		branch = "-"
	}

	deployed := "-"

	if repo.Config().Kind == repository.BareAlias {
		isDeployed, err := repo.IsDeployed(repository.WithoutExcluded)
		if err != nil {
			return nil, err
		}

		deployed = "no"
		if isDeployed {
			deployed = "yes"
		}
	}

	return []string{name, repo.Config().Kind.String(), branch, deployed}, nil
}
