// Package config parses, validates, and writes the cluster definition file.
package config

import (
	"bytes"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/gitcluster/gitcluster/internal/errors"
)

// RootName is the reserved name of the root repository. It can never appear as a node name: commands
// that accept repository names treat it out-of-band, before any pattern matching.
const RootName = "root"

// Cluster is the parsed cluster definition. The top-level table configures the root repository,
// every other repository in the cluster is a Node keyed by name. The root is always a bare-alias
// repository; its alias directory defaults to the config directory unless Worktree overrides it.
type Cluster struct {
	// Worktree overrides the root's alias directory. Kept exactly as written in the file so a
	// definition committed to the root repository stays portable across machines; AliasDir carries
	// the expanded form.
	Worktree string `toml:"worktree,omitempty"`

	// Excludes lists sparse rules never materialized by a plain Deploy of the root.
	Excludes []string `toml:"excludes,omitempty"`

	Nodes map[string]*Node `toml:"node"`

	// AliasDir is Worktree with "~" and environment variables expanded. Never serialized.
	AliasDir string `toml:"-"`
}

// Node is one non-root repository in the cluster.
type Node struct {
	// URL is where the repository is cloned from. Required.
	URL string `toml:"url"`

	// BareAlias marks the repository as bare-alias: stored bare, materialized onto the alias
	// directory via sparse checkout. When false the repository is a plain clone.
	BareAlias bool `toml:"bare_alias,omitempty"`

	// Worktree overrides the alias directory. Empty means the user's home directory. Ignored for
	// plain repositories. Like the cluster's Worktree it is stored unexpanded; see AliasDir.
	Worktree string `toml:"worktree,omitempty"`

	// Excludes lists sparse rules never materialized by a plain Deploy.
	Excludes []string `toml:"excludes,omitempty"`

	// Depends names other nodes that must be deployed alongside this one.
	Depends []string `toml:"depends,omitempty"`

	// AliasDir is Worktree with "~" and environment variables expanded. Never serialized.
	AliasDir string `toml:"-"`
}

// Parse decodes and validates a cluster definition. Validation rejects unknown dependency names and
// dependency cycles, then derives every alias directory by expanding "~" and environment variables
// in the worktree paths, exactly once per load.
func Parse(data string) (*Cluster, error) {
	cluster := &Cluster{}

	if _, err := toml.Decode(data, cluster); err != nil {
		return nil, errors.WithStackTrace(ParseError{Underlying: err})
	}

	if cluster.Nodes == nil {
		cluster.Nodes = map[string]*Node{}
	}

	if err := cluster.validate(); err != nil {
		return nil, err
	}

	if err := cluster.expandAliasDirs(); err != nil {
		return nil, err
	}

	return cluster, nil
}

// Load reads the cluster definition from the given path. A missing file yields an empty cluster, the
// same as a root repository that was just initialized.
func Load(path string) (*Cluster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Cluster{Nodes: map[string]*Node{}}, nil
		}

		return nil, errors.WithStackTrace(err)
	}

	return Parse(string(data))
}

// Save writes the cluster definition to the given path. Worktree paths are written in their original
// unexpanded form, so a saved definition stays portable. The file is re-encoded from the parsed
// form, so comments and formatting of a hand-edited file are not preserved.
func (c *Cluster) Save(path string) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(c); err != nil {
		return errors.WithStackTrace(err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.WithStackTrace(err)
	}

	return nil
}

func (c *Cluster) validate() error {
	if _, ok := c.Nodes[RootName]; ok {
		return errors.WithStackTrace(ReservedNameError{Name: RootName})
	}

	for name, node := range c.Nodes {
		if node.URL == "" {
			return errors.WithStackTrace(MissingURLError{Node: name})
		}

		for _, dep := range node.Depends {
			if _, ok := c.Nodes[dep]; !ok {
				return errors.WithStackTrace(UndefinedDependencyError{Node: name, Dependency: dep})
			}
		}
	}

	return c.checkAcyclic()
}

// expandAliasDirs fills in the runtime alias directories. The raw Worktree fields are left alone so
// serializing the cluster never bakes in machine-specific absolute paths.
func (c *Cluster) expandAliasDirs() error {
	expanded, err := expandPath(c.Worktree)
	if err != nil {
		return err
	}

	c.AliasDir = expanded

	for _, node := range c.Nodes {
		if node.AliasDir, err = expandPath(node.Worktree); err != nil {
			return err
		}
	}

	return nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	return os.ExpandEnv(expanded), nil
}

// GetNode returns the node with the given name.
func (c *Cluster) GetNode(name string) (*Node, error) {
	node, ok := c.Nodes[name]
	if !ok {
		return nil, errors.WithStackTrace(NodeNotFoundError{Name: name})
	}

	return node, nil
}

// AddNode adds a new node to the cluster. Adding a node revalidates the whole definition so a bad
// dependency or cycle is caught before anything is written back to disk.
func (c *Cluster) AddNode(name string, node *Node) error {
	if name == RootName {
		return errors.WithStackTrace(ReservedNameError{Name: name})
	}

	if _, ok := c.Nodes[name]; ok {
		return errors.WithStackTrace(NodeExistsError{Name: name})
	}

	c.Nodes[name] = node

	if err := c.validate(); err != nil {
		delete(c.Nodes, name)
		return err
	}

	aliasDir, err := expandPath(node.Worktree)
	if err != nil {
		delete(c.Nodes, name)
		return err
	}

	node.AliasDir = aliasDir

	return nil
}

// RemoveNode removes the node with the given name. Nodes depending on the removed one keep their
// dependency entries pruned so the definition stays valid.
func (c *Cluster) RemoveNode(name string) error {
	if _, ok := c.Nodes[name]; !ok {
		return errors.WithStackTrace(NodeNotFoundError{Name: name})
	}

	delete(c.Nodes, name)

	for _, node := range c.Nodes {
		deps := make([]string, 0, len(node.Depends))

		for _, dep := range node.Depends {
			if dep != name {
				deps = append(deps, dep)
			}
		}

		node.Depends = deps
	}

	return nil
}

// NodeNames returns the names of all nodes in lexical order.
func (c *Cluster) NodeNames() []string {
	names := make([]string, 0, len(c.Nodes))
	for name := range c.Nodes {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
