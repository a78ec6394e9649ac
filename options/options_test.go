package options_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitcluster/gitcluster/options"
)

func TestNewRunOptionsHonorsOverrides(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("GITCLUSTER_CONFIG_HOME", filepath.Join(tmp, "cfg"))
	t.Setenv("GITCLUSTER_DATA_HOME", filepath.Join(tmp, "data"))

	opts, err := options.NewRunOptions()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmp, "cfg"), opts.ConfigDir)
	assert.Equal(t, filepath.Join(tmp, "data"), opts.DataDir)
	assert.DirExists(t, opts.ConfigDir)
	assert.DirExists(t, opts.DataDir)
	assert.Equal(t, filepath.Join(tmp, "cfg", "cluster.toml"), opts.ClusterFile())
	assert.Equal(t, filepath.Join(tmp, "data", "neovim"), opts.RepositoryDir("neovim"))
}

func TestNewRunOptionsFallsBackToXDG(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("GITCLUSTER_CONFIG_HOME", "")
	t.Setenv("GITCLUSTER_DATA_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg-config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "xdg-data"))

	opts, err := options.NewRunOptions()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmp, "xdg-config", "gitcluster"), opts.ConfigDir)
	assert.Equal(t, filepath.Join(tmp, "xdg-data", "gitcluster"), opts.DataDir)
}

func TestClusterFileCandidatesOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"cluster.toml", ".config/gitcluster/cluster.toml"}, options.ClusterFileCandidates())
}
