package repository_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitcluster/gitcluster/repository"
	"github.com/gitcluster/gitcluster/util"
)

func testLogger() *logrus.Entry {
	return util.CreateLogEntry(io.Discard, logrus.ErrorLevel, "")
}

// newSourceRepo creates a plain repository with one commit containing the given files.
func newSourceRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))

		_, err := worktree.Add(path)
		require.NoError(t, err)
	}

	_, err = worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func bareAliasConfig(t *testing.T, url string, excludes []string) repository.Config {
	t.Helper()

	base := t.TempDir()

	return repository.Config{
		Name:     "node",
		Path:     filepath.Join(base, "node"),
		URL:      url,
		Kind:     repository.BareAlias,
		AliasDir: filepath.Join(base, "alias"),
		Excludes: excludes,
		GitPath:  "git",
		Logger:   testLogger(),
	}
}

func TestInitAndOpen(t *testing.T) {
	t.Parallel()

	cfg := repository.Config{
		Name:    "fresh",
		Path:    filepath.Join(t.TempDir(), "fresh"),
		Kind:    repository.Normal,
		GitPath: "git",
		Logger:  testLogger(),
	}

	assert.False(t, repository.Exists(cfg))

	initialized, err := repository.Init(cfg)
	require.NoError(t, err)
	assert.True(t, initialized.IsEmpty())
	assert.True(t, repository.Exists(cfg))

	opened, err := repository.Open(cfg)
	require.NoError(t, err)
	assert.True(t, opened.IsEmpty())

	branch, err := opened.CurrentBranch()
	require.NoError(t, err)
	assert.Empty(t, branch)
}

func TestOpenMissingRepository(t *testing.T) {
	t.Parallel()

	_, err := repository.Open(repository.Config{
		Name:   "missing",
		Path:   filepath.Join(t.TempDir(), "missing"),
		Logger: testLogger(),
	})
	assert.Error(t, err)
}

func TestInitBareSetsSparseConfig(t *testing.T) {
	t.Parallel()

	cfg := repository.Config{
		Name:    "store",
		Path:    filepath.Join(t.TempDir(), "store"),
		Kind:    repository.Bare,
		GitPath: "git",
		Logger:  testLogger(),
	}

	_, err := repository.Init(cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(cfg.Path, "config"))
	require.NoError(t, err)

	assert.Contains(t, string(content), "sparseCheckout")
	assert.Contains(t, string(content), "showUntrackedFiles")
}

func TestCloneBareAlias(t *testing.T) {
	t.Parallel()

	src := newSourceRepo(t, map[string]string{
		".bashrc":   "export PS1='$ '\n",
		"README.md": "readme\n",
	})

	cfg := bareAliasConfig(t, src, nil)

	cloned, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)
	assert.False(t, cloned.IsEmpty())

	entries, err := cloned.TopLevelEntries()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".bashrc", "README.md"}, entries)

	branch, err := cloned.CurrentBranch()
	require.NoError(t, err)
	assert.NotEmpty(t, branch)
}

func TestCloneFailureLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	cfg := bareAliasConfig(t, filepath.Join(t.TempDir(), "no-such-repo"), nil)

	_, err := repository.Clone(cfg, nil, nil)
	require.Error(t, err)

	assert.NoDirExists(t, cfg.Path)
}

func TestExtractFile(t *testing.T) {
	t.Parallel()

	src := newSourceRepo(t, map[string]string{
		"cluster.toml":       "[node.vim]\nurl = \"https://example.com/vim.git\"\n",
		"nested/settings.sh": "set -e\n",
	})

	cfg := bareAliasConfig(t, src, nil)

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	content, err := repo.ExtractFile("cluster.toml")
	require.NoError(t, err)
	assert.Contains(t, content, "[node.vim]")

	nested, err := repo.ExtractFile("nested/settings.sh")
	require.NoError(t, err)
	assert.Equal(t, "set -e\n", nested)

	_, err = repo.ExtractFile("nonexistent.toml")

	var notFoundErr repository.FileNotFoundError

	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "nonexistent.toml", notFoundErr.Path)
}

func TestExtractFileFromEmptyRepository(t *testing.T) {
	t.Parallel()

	cfg := repository.Config{
		Name:    "empty",
		Path:    filepath.Join(t.TempDir(), "empty"),
		Kind:    repository.Bare,
		GitPath: "git",
		Logger:  testLogger(),
	}

	repo, err := repository.Init(cfg)
	require.NoError(t, err)

	// No commits means no tree: any path reads back as empty content, not an error.
	content, err := repo.ExtractFile("cluster.toml")
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestGitArgsPerKind(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	aliasDir := filepath.Join(base, "alias")

	testCases := []struct {
		name     string
		kind     repository.Kind
		expected func(path string) []string
	}{
		{"normal", repository.Normal, func(path string) []string {
			return []string{"-C", path, "status"}
		}},
		{"bare", repository.Bare, func(path string) []string {
			return []string{"--git-dir", path, "status"}
		}},
		{"bare-alias", repository.BareAlias, func(path string) []string {
			return []string{"--git-dir", path, "--work-tree", aliasDir, "status"}
		}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(base, tc.name)

			repo, err := repository.Init(repository.Config{
				Name:     tc.name,
				Path:     path,
				Kind:     tc.kind,
				AliasDir: aliasDir,
				GitPath:  "git",
				Logger:   testLogger(),
			})
			require.NoError(t, err)

			assert.Equal(t, tc.expected(path), repo.GitArgs("status"))
		})
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	src := newSourceRepo(t, map[string]string{"file": "content\n"})
	cfg := bareAliasConfig(t, src, nil)

	repo, err := repository.Clone(cfg, nil, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Remove())
	assert.NoDirExists(t, cfg.Path)
}
