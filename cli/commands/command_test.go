package commands_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitcluster/gitcluster/cli/commands"
	"github.com/gitcluster/gitcluster/config"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/util"
)

func testOptions() *options.RunOptions {
	return &options.RunOptions{
		Logger:    util.CreateLogEntry(io.Discard, logrus.ErrorLevel, ""),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
}

func TestSplitRootFromPatterns(t *testing.T) {
	t.Parallel()

	withRoot, rest := commands.SplitRootFromPatterns([]string{"root", "vim", "*sh"})
	assert.True(t, withRoot)
	assert.Equal(t, []string{"vim", "*sh"}, rest)

	withRoot, rest = commands.SplitRootFromPatterns([]string{"vim"})
	assert.False(t, withRoot)
	assert.Equal(t, []string{"vim"}, rest)

	// Only the literal name selects the root, a glob never does.
	withRoot, _ = commands.SplitRootFromPatterns([]string{"ro*"})
	assert.False(t, withRoot)
}

const clusterWithDeps = `
[node.foo]
url = "https://example.com/user/foo.git"
depends = ["bar"]

[node.bar]
url = "https://example.com/user/bar.git"
depends = ["baz"]

[node.baz]
url = "https://example.com/user/baz.git"

[node.standalone]
url = "https://example.com/user/standalone.git"
`

func TestTargetNodesIncludesDependencies(t *testing.T) {
	t.Parallel()

	cluster, err := config.Parse(clusterWithDeps)
	require.NoError(t, err)

	targets, err := commands.TargetNodes(testOptions(), cluster, []string{"foo"}, false)
	require.NoError(t, err)

	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.Name)
	}

	assert.ElementsMatch(t, []string{"foo", "bar", "baz"}, names)
}

func TestTargetNodesOnlySkipsDependencies(t *testing.T) {
	t.Parallel()

	cluster, err := config.Parse(clusterWithDeps)
	require.NoError(t, err)

	targets, err := commands.TargetNodes(testOptions(), cluster, []string{"foo"}, true)
	require.NoError(t, err)

	require.Len(t, targets, 1)
	assert.Equal(t, "foo", targets[0].Name)
}

func TestTargetNodesDeduplicatesOverlappingClosures(t *testing.T) {
	t.Parallel()

	cluster, err := config.Parse(clusterWithDeps)
	require.NoError(t, err)

	targets, err := commands.TargetNodes(testOptions(), cluster, []string{"foo", "bar"}, false)
	require.NoError(t, err)

	assert.Len(t, targets, 3)
}

func TestTargetNodesWithGlobPattern(t *testing.T) {
	t.Parallel()

	cluster, err := config.Parse(clusterWithDeps)
	require.NoError(t, err)

	targets, err := commands.TargetNodes(testOptions(), cluster, []string{"ba*"}, true)
	require.NoError(t, err)

	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.Name)
	}

	assert.ElementsMatch(t, []string{"bar", "baz"}, names)
}
