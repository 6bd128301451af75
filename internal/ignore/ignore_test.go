package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreBasicPatterns(t *testing.T) {
	m := New("/project")
	m.AddPattern("*.log")
	m.AddPattern("node_modules/")
	m.AddPattern("/build")

	assert.True(t, m.ShouldIgnore("app.log", false))
	assert.True(t, m.ShouldIgnore("nested/app.log", false))
	assert.True(t, m.ShouldIgnore("node_modules", true))
	assert.True(t, m.ShouldIgnore("node_modules/pkg/index.js", false))
	assert.True(t, m.ShouldIgnore("build", true))
	assert.False(t, m.ShouldIgnore("src/build", true), "anchored pattern must not match nested dirs of the same name")
	assert.False(t, m.ShouldIgnore("main.go", false))
}

func TestNegationReincludesPath(t *testing.T) {
	m := New("/project")
	m.AddPattern("*.log")
	m.AddPattern("!important.log")

	assert.True(t, m.ShouldIgnore("debug.log", false))
	assert.False(t, m.ShouldIgnore("important.log", false))
}

func TestLoadReadsGitignoreFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("# comment\n*.tmp\n\ndist/\n"), 0o644))

	m := New(dir)
	require.NoError(t, m.Load())

	assert.True(t, m.ShouldIgnore("scratch.tmp", false))
	assert.True(t, m.ShouldIgnore("dist", true))
	assert.False(t, m.ShouldIgnore("main.go", false))
}

func TestLoadToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)
	require.NoError(t, m.Load())
	assert.False(t, m.ShouldIgnore("main.go", false))
}
