// Package repository gives a handle on one git repository in the cluster: opening, initializing,
// cloning, reading its head tree, manipulating its sparse rules, and delegating to the git binary.
package repository

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/sirupsen/logrus"

	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/shell"
)

// Kind says how a repository is stored and materialized.
type Kind int

const (
	// Normal is a plain clone with its own worktree. Sparse deployment does not apply to it.
	Normal Kind = iota

	// Bare is a bare repository with no alias directory. Only the root repository passes through
	// this state, between cloning and reading its cluster definition.
	Bare

	// BareAlias is a bare repository materialized onto an alias directory through sparse rules.
	BareAlias
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Bare:
		return "bare"
	case BareAlias:
		return "bare-alias"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// Config is the immutable description of one repository. It is constructed once, from the cluster
// definition and the run options, and passed to Open, Init, or Clone.
type Config struct {
	// Name identifies the repository in logs and errors.
	Name string

	// Path is where the git directory lives: the repository directory itself for bare kinds, the
	// worktree directory holding .git for plain ones.
	Path string

	// URL is where the repository is cloned from.
	URL string

	Kind Kind

	// AliasDir is the directory bare-alias content is materialized onto.
	AliasDir string

	// Excludes are the sparse rules held back by a plain deploy.
	Excludes []string

	// GitPath is the git binary used for checkouts and delegation.
	GitPath string

	Logger *logrus.Entry
}

// GitDir returns the path of the repository's git directory.
func (c Config) GitDir() string {
	if c.Kind == Normal {
		return filepath.Join(c.Path, ".git")
	}

	return c.Path
}

// Repository is an open handle. All methods operate on the state captured in the Config plus
// whatever is currently on disk.
type Repository struct {
	cfg   Config
	repo  *git.Repository
	rules *SparseRuleSet
}

// Open opens an existing repository at cfg.Path.
func Open(cfg Config) (*Repository, error) {
	repo, err := git.PlainOpen(cfg.Path)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "could not open repository %q at %s", cfg.Name, cfg.Path)
	}

	return &Repository{cfg: cfg, repo: repo, rules: NewSparseRuleSet(cfg)}, nil
}

// Exists reports whether a repository is already present at cfg.Path.
func Exists(cfg Config) bool {
	_, err := git.PlainOpen(cfg.Path)
	return err == nil
}

// Init creates a new empty repository at cfg.Path.
func Init(cfg Config) (*Repository, error) {
	repo, err := git.PlainInit(cfg.Path, cfg.Kind != Normal)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "could not initialize repository %q at %s", cfg.Name, cfg.Path)
	}

	handle := &Repository{cfg: cfg, repo: repo, rules: NewSparseRuleSet(cfg)}

	if cfg.Kind != Normal {
		if err := handle.applyBareConfig(); err != nil {
			return nil, err
		}
	}

	return handle, nil
}

// Clone clones cfg.URL to cfg.Path, reporting transfer progress to the given writer. A failed clone
// leaves nothing behind: the target directory is removed so the caller can retry cleanly, which is
// what the authentication retry loop does. The returned error keeps the transport error in its
// chain so callers can classify authentication failures.
func Clone(cfg Config, progress io.Writer, auth transport.AuthMethod) (*Repository, error) {
	_, statErr := os.Stat(cfg.Path)
	preexisting := statErr == nil

	repo, err := git.PlainClone(cfg.Path, cfg.Kind != Normal, &git.CloneOptions{
		URL:      cfg.URL,
		Auth:     auth,
		Progress: progress,
	})
	if err != nil {
		// Only remove what this clone created; a directory that was already there stays.
		if !preexisting {
			if removeErr := os.RemoveAll(cfg.Path); removeErr != nil {
				cfg.Logger.Warnf("Could not clean up after failed clone of %q: %v", cfg.Name, removeErr)
			}
		}

		return nil, errors.WithStackTrace(err)
	}

	handle := &Repository{cfg: cfg, repo: repo, rules: NewSparseRuleSet(cfg)}

	if cfg.Kind != Normal {
		if err := handle.applyBareConfig(); err != nil {
			return nil, err
		}
	}

	return handle, nil
}

// Bare repositories double as deployable stores, so hide untracked noise from status output and
// turn sparse checkout on up front.
func (r *Repository) applyBareConfig() error {
	cfg, err := r.repo.Config()
	if err != nil {
		return errors.WithStackTrace(err)
	}

	cfg.Raw.Section("core").SetOption("sparseCheckout", "true")
	cfg.Raw.Section("status").SetOption("showUntrackedFiles", "no")

	if err := r.repo.SetConfig(cfg); err != nil {
		return errors.WithStackTrace(err)
	}

	return nil
}

// Config returns the repository's configuration.
func (r *Repository) Config() Config {
	return r.cfg
}

// Rules returns the repository's sparse rule set.
func (r *Repository) Rules() *SparseRuleSet {
	return r.rules
}

// IsEmpty reports whether the repository has no commits yet.
func (r *Repository) IsEmpty() bool {
	_, err := r.repo.Head()
	return err != nil
}

// CurrentBranch returns the short name of the branch HEAD points at. An unborn HEAD yields an empty
// string and no error.
func (r *Repository) CurrentBranch() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.IsError(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}

		return "", errors.WithStackTrace(err)
	}

	return ref.Name().Short(), nil
}

func (r *Repository) headTree() (*object.Tree, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	return tree, nil
}

// ExtractFile returns the contents of the given path in the head tree, without touching any
// worktree. This is how the cluster definition is read out of the root repository before the root
// is ever deployed. An empty repository has no tree to read, so every path yields empty content
// rather than an error.
func (r *Repository) ExtractFile(path string) (string, error) {
	if r.IsEmpty() {
		return "", nil
	}

	tree, err := r.headTree()
	if err != nil {
		return "", err
	}

	file, err := tree.File(path)
	if err != nil {
		if errors.IsError(err, object.ErrFileNotFound) {
			return "", errors.WithStackTrace(FileNotFoundError{Name: r.cfg.Name, Path: path})
		}

		return "", errors.WithStackTrace(err)
	}

	contents, err := file.Contents()
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	return contents, nil
}

// TopLevelEntries returns the names of the entries at the top level of the head tree.
func (r *Repository) TopLevelEntries() ([]string, error) {
	tree, err := r.headTree()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		names = append(names, entry.Name)
	}

	return names, nil
}

// GitArgs returns the argument list that points the git binary at this repository, followed by the
// given arguments.
func (r *Repository) GitArgs(args ...string) []string {
	var base []string

	switch r.cfg.Kind {
	case Normal:
		base = []string{"-C", r.cfg.Path}
	case Bare:
		base = []string{"--git-dir", r.cfg.GitDir()}
	case BareAlias:
		base = []string{"--git-dir", r.cfg.GitDir(), "--work-tree", r.cfg.AliasDir}
	}

	return append(base, args...)
}

// Git delegates to the git binary interactively, inheriting the process's terminal.
func (r *Repository) Git(args ...string) error {
	return shell.RunGitCommand(r.cfg.Logger, r.cfg.GitPath, r.GitArgs(args...)...)
}

// GitWithOutput delegates to the git binary non-interactively and returns its labeled output.
func (r *Repository) GitWithOutput(args ...string) (string, error) {
	return shell.RunGitCommandWithOutput(r.cfg.Logger, r.cfg.GitPath, r.GitArgs(args...)...)
}

// Remove deletes the repository's git directory from disk.
func (r *Repository) Remove() error {
	if err := os.RemoveAll(r.cfg.Path); err != nil {
		return errors.WithStackTrace(err)
	}

	return nil
}
