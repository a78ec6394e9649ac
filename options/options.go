// Package options defines the runtime configuration threaded through every command.
package options

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"

	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/util"
)

const (
	// AppName is the binary name, also used as the subdirectory name under the XDG base directories.
	AppName = "gitcluster"

	// ClusterFileName is the name of the cluster definition file kept at the top level of the root
	// repository's tree.
	ClusterFileName = "cluster.toml"

	// fallbackClusterFilePath is where the cluster definition is looked up inside the root
	// repository when it is not at the top level.
	fallbackClusterFilePath = ".config/gitcluster/" + ClusterFileName

	configHomeEnvName = "GITCLUSTER_CONFIG_HOME"
	dataHomeEnvName   = "GITCLUSTER_DATA_HOME"
)

// RunOptions carries all settings a command run needs: resolved directories, the logger, IO streams,
// and flags shared across commands. Commands receive it explicitly rather than reading globals, so
// tests can construct one pointing at a temp directory.
type RunOptions struct {
	// HomeDir is the current user's home directory, the default alias directory for bare-alias
	// repositories.
	HomeDir string

	// ConfigDir holds the cluster definition and is the alias directory for the root repository
	// unless the cluster definition says otherwise.
	ConfigDir string

	// DataDir holds the git directories of every repository in the cluster, one subdirectory per
	// repository name.
	DataDir string

	// GitPath is the path to the git binary used for checkouts and command delegation.
	GitPath string

	// Jobs bounds how many repositories are cloned concurrently. Zero or negative means no bound.
	Jobs int

	// NonInteractive disables credential and confirmation prompts; operations that would prompt
	// fail instead.
	NonInteractive bool

	Logger *logrus.Entry

	Writer    io.Writer
	ErrWriter io.Writer
}

// NewRunOptions resolves the directory layout from the environment and creates the config and data
// directories if missing. Directory resolution order: the GITCLUSTER_*_HOME override, then the XDG
// base directory, then the hardcoded default under the home directory.
func NewRunOptions() (*RunOptions, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, errors.WithStackTrace(DirectoryResolutionError{Kind: "home", Underlying: err})
	}

	configDir := resolveBaseDir(configHomeEnvName, "XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dataDir := resolveBaseDir(dataHomeEnvName, "XDG_DATA_HOME", filepath.Join(home, ".local", "share"))

	for _, dir := range []string{configDir, dataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WithStackTrace(err)
		}
	}

	return &RunOptions{
		HomeDir:   home,
		ConfigDir: configDir,
		DataDir:   dataDir,
		GitPath:   "git",
		Logger:    util.CreateLogEntry(os.Stderr, logrus.InfoLevel, ""),
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
	}, nil
}

func resolveBaseDir(overrideEnv, xdgEnv, defaultBase string) string {
	if dir := os.Getenv(overrideEnv); dir != "" {
		return dir
	}

	if base := os.Getenv(xdgEnv); base != "" {
		return filepath.Join(base, AppName)
	}

	return filepath.Join(defaultBase, AppName)
}

// Clone returns a copy of the options with the logger swapped for one carrying the given prefix.
func (opts *RunOptions) Clone(logPrefix string) *RunOptions {
	newOpts := *opts
	newOpts.Logger = util.CreateLogEntry(opts.ErrWriter, opts.Logger.Logger.GetLevel(), logPrefix)

	return &newOpts
}

// ClusterFile returns the path of the local copy of the cluster definition.
func (opts *RunOptions) ClusterFile() string {
	return filepath.Join(opts.ConfigDir, ClusterFileName)
}

// ClusterFileCandidates returns the in-tree paths, in lookup order, where the cluster definition may
// live inside the root repository.
func ClusterFileCandidates() []string {
	return []string{ClusterFileName, fallbackClusterFilePath}
}

// RepositoryDir returns the path of the git directory for the repository with the given name.
func (opts *RunOptions) RepositoryDir(name string) string {
	return filepath.Join(opts.DataDir, name)
}

// DirectoryResolutionError is returned when one of the base directories cannot be determined.
type DirectoryResolutionError struct {
	Kind       string
	Underlying error
}

func (err DirectoryResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %s directory: %v", err.Kind, err.Underlying)
}

func (err DirectoryResolutionError) Unwrap() error {
	return err.Underlying
}
