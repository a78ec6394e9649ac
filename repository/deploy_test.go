package repository_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitcluster/gitcluster/repository"
)

func requireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not found in PATH")
	}
}

func materialize(t *testing.T, aliasDir string, names ...string) {
	t.Helper()

	for _, name := range names {
		path := filepath.Join(aliasDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("content\n"), 0644))
	}
}

func TestIsDeployedFalseForPlainAndEmptyRepositories(t *testing.T) {
	t.Parallel()

	plain, err := repository.Init(repository.Config{
		Name:    "plain",
		Path:    filepath.Join(t.TempDir(), "plain"),
		Kind:    repository.Normal,
		GitPath: "git",
		Logger:  testLogger(),
	})
	require.NoError(t, err)

	deployed, err := plain.IsDeployed(repository.WithoutExcluded)
	require.NoError(t, err)
	assert.False(t, deployed)

	empty, err := repository.Init(repository.Config{
		Name:     "empty",
		Path:     filepath.Join(t.TempDir(), "empty"),
		Kind:     repository.BareAlias,
		AliasDir: t.TempDir(),
		GitPath:  "git",
		Logger:   testLogger(),
	})
	require.NoError(t, err)

	deployed, err = empty.IsDeployed(repository.WithoutExcluded)
	require.NoError(t, err)
	assert.False(t, deployed)
}

func TestIsDeployedChecksAliasDirectoryEntries(t *testing.T) {
	t.Parallel()

	src := newSourceRepo(t, map[string]string{
		".bashrc":   "export PS1='$ '\n",
		".profile":  ". ~/.bashrc\n",
		"README.md": "readme\n",
	})

	cfg := bareAliasConfig(t, src, []string{"README*"})

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	// Nothing materialized yet.
	deployed, err := repo.IsDeployed(repository.WithoutExcluded)
	require.NoError(t, err)
	assert.False(t, deployed)

	// Everything except the excluded README: deployed without excludes, not with them.
	materialize(t, cfg.AliasDir, ".bashrc", ".profile")

	deployed, err = repo.IsDeployed(repository.WithoutExcluded)
	require.NoError(t, err)
	assert.True(t, deployed)

	deployed, err = repo.IsDeployed(repository.WithExcluded)
	require.NoError(t, err)
	assert.False(t, deployed)

	// With the README present both checks pass.
	materialize(t, cfg.AliasDir, "README.md")

	deployed, err = repo.IsDeployed(repository.WithExcluded)
	require.NoError(t, err)
	assert.True(t, deployed)
}

func TestIsDeployedIgnoresNestedExcludeRules(t *testing.T) {
	t.Parallel()

	// The deployment check only looks at top-level names, so an exclude rule that matches
	// nothing at the top level does not change the answer.
	src := newSourceRepo(t, map[string]string{
		".bashrc":        "export PS1='$ '\n",
		"docs/manual.md": "manual\n",
	})

	cfg := bareAliasConfig(t, src, []string{"docs/"})

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	materialize(t, cfg.AliasDir, ".bashrc")

	deployed, err := repo.IsDeployed(repository.WithoutExcluded)
	require.NoError(t, err)
	assert.False(t, deployed)

	materialize(t, cfg.AliasDir, "docs/manual.md")

	deployed, err = repo.IsDeployed(repository.WithoutExcluded)
	require.NoError(t, err)
	assert.True(t, deployed)
}

func TestDeploySkipsEmptyAndPlainRepositories(t *testing.T) {
	t.Parallel()

	empty, err := repository.Init(repository.Config{
		Name:     "empty",
		Path:     filepath.Join(t.TempDir(), "empty"),
		Kind:     repository.BareAlias,
		AliasDir: t.TempDir(),
		GitPath:  "git",
		Logger:   testLogger(),
	})
	require.NoError(t, err)

	assert.NoError(t, empty.Deploy(repository.ActionDeploy))

	src := newSourceRepo(t, map[string]string{"file": "content\n"})

	plain, err := repository.Open(repository.Config{
		Name:    "plain",
		Path:    src,
		Kind:    repository.Normal,
		GitPath: "git",
		Logger:  testLogger(),
	})
	require.NoError(t, err)

	assert.NoError(t, plain.Deploy(repository.ActionDeploy))
}

func TestDeployMaterializesEverythingButExcludes(t *testing.T) {
	t.Parallel()
	requireGit(t)

	src := newSourceRepo(t, map[string]string{
		".bashrc":   "export PS1='$ '\n",
		".profile":  ". ~/.bashrc\n",
		"README.md": "readme\n",
	})

	cfg := bareAliasConfig(t, src, []string{"README*"})

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Deploy(repository.ActionDeploy))

	assert.FileExists(t, filepath.Join(cfg.AliasDir, ".bashrc"))
	assert.FileExists(t, filepath.Join(cfg.AliasDir, ".profile"))
	assert.NoFileExists(t, filepath.Join(cfg.AliasDir, "README.md"))

	deployed, err := repo.IsDeployed(repository.WithoutExcluded)
	require.NoError(t, err)
	assert.True(t, deployed)
}

func TestDeployRoundTrip(t *testing.T) {
	t.Parallel()
	requireGit(t)

	src := newSourceRepo(t, map[string]string{
		".bashrc":   "export PS1='$ '\n",
		"README.md": "readme\n",
	})

	cfg := bareAliasConfig(t, src, []string{"README*"})

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	// Deploy, then deploy everything, then retract the excludes again: the alias directory must
	// end exactly where the first deploy left it.
	require.NoError(t, repo.Deploy(repository.ActionDeploy))
	assert.NoFileExists(t, filepath.Join(cfg.AliasDir, "README.md"))

	require.NoError(t, repo.Deploy(repository.ActionDeployAll))
	assert.FileExists(t, filepath.Join(cfg.AliasDir, "README.md"))

	require.NoError(t, repo.Deploy(repository.ActionUndeployExcludes))
	assert.NoFileExists(t, filepath.Join(cfg.AliasDir, "README.md"))
	assert.FileExists(t, filepath.Join(cfg.AliasDir, ".bashrc"))
}

func TestDeployIsIdempotent(t *testing.T) {
	t.Parallel()
	requireGit(t)

	src := newSourceRepo(t, map[string]string{".bashrc": "export PS1='$ '\n"})
	cfg := bareAliasConfig(t, src, nil)

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Deploy(repository.ActionDeploy))

	// A second deploy is a no-op: remove the rule file and make sure it is not rewritten.
	require.NoError(t, os.Remove(repo.Rules().Path()))
	require.NoError(t, repo.Deploy(repository.ActionDeploy))
	assert.NoFileExists(t, repo.Rules().Path())
}

func TestUndeployRemovesMaterializedContent(t *testing.T) {
	t.Parallel()
	requireGit(t)

	src := newSourceRepo(t, map[string]string{
		".bashrc":  "export PS1='$ '\n",
		".profile": ". ~/.bashrc\n",
	})

	cfg := bareAliasConfig(t, src, nil)

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	// Undeploying an undeployed repository is a no-op.
	require.NoError(t, repo.Deploy(repository.ActionUndeploy))

	require.NoError(t, repo.Deploy(repository.ActionDeploy))
	assert.FileExists(t, filepath.Join(cfg.AliasDir, ".bashrc"))

	err = repo.Deploy(repository.ActionUndeploy)
	if err != nil {
		// Some git versions refuse a checkout whose sparse rules select nothing.
		t.Skipf("git rejected empty sparse checkout: %v", err)
	}

	assert.NoFileExists(t, filepath.Join(cfg.AliasDir, ".bashrc"))
}

func TestDeployRejectsBareRepositoryWithoutAlias(t *testing.T) {
	t.Parallel()

	src := newSourceRepo(t, map[string]string{"file": "content\n"})

	cfg := repository.Config{
		Name:    "store",
		Path:    filepath.Join(t.TempDir(), "store"),
		URL:     src,
		Kind:    repository.Bare,
		GitPath: "git",
		Logger:  testLogger(),
	}

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	err = repo.Deploy(repository.ActionDeploy)

	var bareErr repository.NotBareAliasError

	assert.ErrorAs(t, err, &bareErr)
}
