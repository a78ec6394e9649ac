// Package store ties the cluster definition to the repositories on disk: it opens or clones the
// root, hands out node handles, and guards mutations with a store-wide file lock.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/gitcluster/gitcluster/cloner"
	"github.com/gitcluster/gitcluster/config"
	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/repository"
)

const lockFileName = ".gitcluster.lock"

// Lock takes the store-wide lock, blocking until it is available, and returns the release
// function. Every command that mutates the store or the cluster definition holds this lock, so two
// concurrent invocations cannot interleave their writes.
func Lock(opts *options.RunOptions) (func() error, error) {
	fileLock := flock.New(filepath.Join(opts.DataDir, lockFileName))

	if err := fileLock.Lock(); err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "could not lock the repository store")
	}

	return fileLock.Unlock, nil
}

// RootConfig builds the repository configuration of the root for the given cluster definition. The
// root is always bare-alias; its alias directory defaults to the config directory.
func RootConfig(opts *options.RunOptions, cluster *config.Cluster) repository.Config {
	aliasDir := cluster.AliasDir
	if aliasDir == "" {
		aliasDir = opts.ConfigDir
	}

	return repository.Config{
		Name:     config.RootName,
		Path:     opts.RepositoryDir(config.RootName),
		Kind:     repository.BareAlias,
		AliasDir: aliasDir,
		Excludes: cluster.Excludes,
		GitPath:  opts.GitPath,
		Logger:   opts.Logger,
	}
}

// NodeConfig builds the repository configuration for one node. Bare-alias nodes default their alias
// directory to the user's home directory.
func NodeConfig(opts *options.RunOptions, name string, node *config.Node) repository.Config {
	kind := repository.Normal

	aliasDir := ""
	if node.BareAlias {
		kind = repository.BareAlias

		aliasDir = node.AliasDir
		if aliasDir == "" {
			aliasDir = opts.HomeDir
		}
	}

	return repository.Config{
		Name:     name,
		Path:     opts.RepositoryDir(name),
		URL:      node.URL,
		Kind:     kind,
		AliasDir: aliasDir,
		Excludes: node.Excludes,
		GitPath:  opts.GitPath,
		Logger:   opts.Logger,
	}
}

// Root is the handle on the root repository plus the cluster definition extracted from it.
type Root struct {
	opts    *options.RunOptions
	repo    *repository.Repository
	cluster *config.Cluster
}

// bootstrapConfig describes the root before its cluster definition is known: bare, no alias.
func bootstrapConfig(opts *options.RunOptions, url string) repository.Config {
	return repository.Config{
		Name:    config.RootName,
		Path:    opts.RepositoryDir(config.RootName),
		URL:     url,
		Kind:    repository.Bare,
		GitPath: opts.GitPath,
		Logger:  opts.Logger,
	}
}

// OpenRoot opens the root repository, reads the cluster definition out of its head tree, and makes
// sure the root is deployed. The definition is also written to the local cluster file so commands
// that edit it start from what the root currently says.
func OpenRoot(opts *options.RunOptions) (*Root, error) {
	boot := bootstrapConfig(opts, "")

	if !repository.Exists(boot) {
		return nil, errors.WithStackTrace(NoClusterError{DataDir: opts.DataDir})
	}

	repo, err := repository.Open(boot)
	if err != nil {
		return nil, err
	}

	return assembleRoot(opts, repo)
}

// CloneRoot clones the root repository from the given URL and assembles it the same way OpenRoot
// does. The caller owns cleanup on failure.
func CloneRoot(opts *options.RunOptions, url string, renderer *cloner.ProgressRenderer, prompter cloner.CredentialPrompter) (*Root, error) {
	boot := bootstrapConfig(opts, url)

	if repository.Exists(boot) {
		return nil, errors.WithStackTrace(RootExistsError{Path: boot.Path})
	}

	bar := renderer.AddBar(config.RootName)

	if err := renderer.Start(); err != nil {
		return nil, errors.WithStackTrace(err)
	}

	repo, err := cloner.CloneWithRetry(boot, bar, prompter)

	bar.Finish()

	if err != nil {
		return nil, err
	}

	return assembleRoot(opts, repo)
}

// InitRoot creates a brand new, empty root repository for the given cluster definition and writes
// the definition to the local cluster file.
func InitRoot(opts *options.RunOptions, cluster *config.Cluster) (*Root, error) {
	boot := bootstrapConfig(opts, "")

	if repository.Exists(boot) {
		return nil, errors.WithStackTrace(RootExistsError{Path: boot.Path})
	}

	if _, err := repository.Init(boot); err != nil {
		return nil, err
	}

	repo, err := repository.Open(RootConfig(opts, cluster))
	if err != nil {
		return nil, err
	}

	root := &Root{opts: opts, repo: repo, cluster: cluster}

	if err := cluster.Save(opts.ClusterFile()); err != nil {
		return nil, err
	}

	return root, nil
}

// assembleRoot turns a bootstrap handle into a full root: extract the cluster definition, reopen
// with the alias directory it names, sync the local cluster file, and make sure the root stays
// deployed.
func assembleRoot(opts *options.RunOptions, boot *repository.Repository) (*Root, error) {
	cluster, raw, err := extractCluster(boot)
	if err != nil {
		return nil, err
	}

	// A root with no in-tree definition, typically one created by init, is described by the local
	// cluster file alone.
	if raw == "" {
		if cluster, err = config.Load(opts.ClusterFile()); err != nil {
			return nil, err
		}
	}

	repo, err := repository.Open(RootConfig(opts, cluster))
	if err != nil {
		return nil, err
	}

	root := &Root{opts: opts, repo: repo, cluster: cluster}

	if raw != "" {
		if err := os.WriteFile(opts.ClusterFile(), []byte(raw), 0644); err != nil {
			return nil, errors.WithStackTrace(err)
		}
	}

	// The root repository always stays at least minimally deployed.
	if err := repo.Deploy(repository.ActionDeploy); err != nil {
		return nil, err
	}

	return root, nil
}

// extractCluster reads the cluster definition straight out of the root's head tree, trying each
// candidate path in order. A root with no commits or no definition yields an empty cluster.
func extractCluster(repo *repository.Repository) (*config.Cluster, string, error) {
	if repo.IsEmpty() {
		cluster, err := config.Parse("")
		return cluster, "", err
	}

	for _, candidate := range options.ClusterFileCandidates() {
		content, err := repo.ExtractFile(candidate)
		if err != nil {
			var notFound repository.FileNotFoundError
			if errors.As(err, &notFound) {
				continue
			}

			return nil, "", err
		}

		cluster, err := config.Parse(content)
		if err != nil {
			return nil, "", err
		}

		return cluster, content, nil
	}

	cluster, err := config.Parse("")

	return cluster, "", err
}

// Cluster returns the cluster definition the root was opened with.
func (r *Root) Cluster() *config.Cluster {
	return r.cluster
}

// Repository returns the underlying repository handle.
func (r *Root) Repository() *repository.Repository {
	return r.repo
}

// Deploy applies the action to the root. The root must always stay at least minimally deployed, so
// plain Deploy and Undeploy are ignored with a warning; only DeployAll and UndeployExcludes change
// anything.
func (r *Root) Deploy(action repository.Action) error {
	switch action {
	case repository.ActionDeploy, repository.ActionUndeploy:
		r.opts.Logger.Warnf("The root repository always stays deployed, ignoring %s", action)
		return nil
	}

	return r.repo.Deploy(action)
}

// Git delegates to the git binary against the root repository.
func (r *Root) Git(args ...string) error {
	return r.repo.Git(args...)
}

// Nuke removes the whole store: every repository, the cluster definition, everything under the
// config and data directories. Materialized alias content is undeployed best-effort first.
func (r *Root) Nuke() error {
	for _, name := range r.cluster.NodeNames() {
		cfg := NodeConfig(r.opts, name, r.cluster.Nodes[name])
		if !repository.Exists(cfg) {
			continue
		}

		repo, err := repository.Open(cfg)
		if err != nil {
			r.opts.Logger.Warnf("Could not open %s for undeploy: %v", name, err)
			continue
		}

		if err := repo.Deploy(repository.ActionUndeploy); err != nil {
			r.opts.Logger.Warnf("Could not undeploy %s: %v", name, err)
		}
	}

	for _, dir := range []string{r.opts.DataDir, r.opts.ConfigDir} {
		if err := os.RemoveAll(dir); err != nil {
			return errors.WithStackTrace(err)
		}
	}

	return nil
}

// Node is the handle on one non-root repository.
type Node struct {
	name string
	opts *options.RunOptions
	repo *repository.Repository
}

// OpenNode opens the named node, cloning it first when it is not on disk yet. Cloning reports
// progress through the given renderer and may prompt for credentials.
func OpenNode(opts *options.RunOptions, name string, node *config.Node, renderer *cloner.ProgressRenderer, prompter cloner.CredentialPrompter) (*Node, error) {
	cfg := NodeConfig(opts, name, node)

	if repository.Exists(cfg) {
		repo, err := repository.Open(cfg)
		if err != nil {
			return nil, err
		}

		return &Node{name: name, opts: opts, repo: repo}, nil
	}

	bar := renderer.AddBar(name)

	if err := renderer.Start(); err != nil {
		return nil, errors.WithStackTrace(err)
	}

	repo, err := cloner.CloneWithRetry(cfg, bar, prompter)

	bar.Finish()

	if err != nil {
		return nil, err
	}

	return &Node{name: name, opts: opts, repo: repo}, nil
}

// Name returns the node's name in the cluster.
func (n *Node) Name() string {
	return n.name
}

// Repository returns the underlying repository handle.
func (n *Node) Repository() *repository.Repository {
	return n.repo
}

// Deploy applies the action to the node.
func (n *Node) Deploy(action repository.Action) error {
	return n.repo.Deploy(action)
}

// Git delegates to the git binary against the node's repository.
func (n *Node) Git(args ...string) error {
	return n.repo.Git(args...)
}

// Remove undeploys the node, then deletes its git directory. Undeploy failures for bare-alias
// nodes are logged and do not block removal, so a broken repository can still be cleaned up.
func (n *Node) Remove() error {
	if err := n.repo.Deploy(repository.ActionUndeploy); err != nil {
		n.opts.Logger.Warnf("Could not undeploy %q before removal: %v", n.name, err)
	}

	return n.repo.Remove()
}

// NoClusterError is returned when a command needs the root repository but none has been cloned or
// initialized yet.
type NoClusterError struct {
	DataDir string
}

func (err NoClusterError) Error() string {
	return fmt.Sprintf("no cluster found under %s, run clone or init first", err.DataDir)
}

// RootExistsError is returned when clone or init would overwrite an existing root repository.
type RootExistsError struct {
	Path string
}

func (err RootExistsError) Error() string {
	return fmt.Sprintf("a root repository already exists at %s", err.Path)
}
