package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
)

const siteTOML = `
[source]
content_dir = "content/"
dist_dir = "_site"

[runner.pcss]
cmd = "echo"
args = ["pcss", "args"]
watch_args = ["pcss", "watch"]

[runner.rollup]
cmd = "rollup"
cwd = "frontend"
args = ["rollup", "-c"]
run_on = ["build"]

[runner.alpha]
cmd = "echo"
args = ["alpha"]
`

func newSiteRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "content"), 0o755))
	return root
}

func TestLoadTOML(t *testing.T) {
	root := newSiteRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, TOMLFileName), []byte(siteTOML), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, TOMLFileName), cfg.File)
	assert.Equal(t, "content", filepath.Base(cfg.ContentDir))
	assert.True(t, filepath.IsAbs(cfg.ContentDir))
	assert.DirExists(t, cfg.DistDir, "dist dir is created when missing")

	require.Len(t, cfg.Runners, 3)
	names := []string{cfg.Runners[0].Name, cfg.Runners[1].Name, cfg.Runners[2].Name}
	assert.Equal(t, []string{"pcss", "rollup", "alpha"}, names, "declaration order is kept")

	pcss := cfg.Runners[0]
	assert.Equal(t, "echo", pcss.Cmd)
	assert.Equal(t, []string{"pcss", "args"}, pcss.Args)
	assert.Equal(t, []string{"pcss", "watch"}, pcss.WatchArgs)
	assert.Equal(t, []RunMode{RunModeBuild, RunModeDev}, pcss.RunOn)

	rollup := cfg.Runners[1]
	assert.Equal(t, "frontend", rollup.Cwd)
	assert.Equal(t, []RunMode{RunModeBuild}, rollup.RunOn)
	assert.False(t, rollup.Runs(RunModeDev))
}

func TestLoadYAMLKeepsRunnerOrder(t *testing.T) {
	root := newSiteRoot(t)
	doc := `
source:
  content_dir: content
  dist_dir: out
runner:
  zeta:
    cmd: echo
    args: [z]
  beta:
    cmd: echo
    args: [b]
    watch_args: [b, -w]
    run_on: [Dev, Build]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, YAMLFileName), []byte(doc), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Len(t, cfg.Runners, 2)
	assert.Equal(t, "zeta", cfg.Runners[0].Name)
	assert.Equal(t, "beta", cfg.Runners[1].Name)
	assert.Equal(t, []RunMode{RunModeDev, RunModeBuild}, cfg.Runners[1].RunOn)
}

func TestLoadExpandsEnvFromDotEnv(t *testing.T) {
	root := newSiteRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, EnvFileName), []byte("SSITE_TEST_CONTENT=pages\n"), 0o644))
	doc := "[source]\ncontent_dir = \"${SSITE_TEST_CONTENT}\"\ndist_dir = \"_site\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, TOMLFileName), []byte(doc), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("SSITE_TEST_CONTENT") })

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "pages", filepath.Base(cfg.ContentDir))
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
	})

	t.Run("missing content dir property", func(t *testing.T) {
		_, err := Parse(newSiteRoot(t), FormatTOML, []byte("[source]\ndist_dir = \"_site\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source.content_dir")
	})

	t.Run("content dir does not exist", func(t *testing.T) {
		_, err := Parse(t.TempDir(), FormatTOML, []byte("[source]\ncontent_dir = \"content\"\ndist_dir = \"_site\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing content dir")
	})

	t.Run("missing dist dir property", func(t *testing.T) {
		_, err := Parse(newSiteRoot(t), FormatTOML, []byte("[source]\ncontent_dir = \"content\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source.dist_dir")
	})

	t.Run("dist dir overlapping content dir", func(t *testing.T) {
		for _, dist := range []string{".", "content", "content/"} {
			root := newSiteRoot(t)
			doc := "[source]\ncontent_dir = \"content\"\ndist_dir = \"" + dist + "\"\n"
			_, err := Parse(root, FormatTOML, []byte(doc))
			require.Error(t, err, dist)
			assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig), dist)
			assert.Contains(t, err.Error(), "must not be or contain the content dir")
		}
	})

	t.Run("dist dir inside content dir is allowed", func(t *testing.T) {
		cfg, err := Parse(newSiteRoot(t), FormatTOML, []byte("[source]\ncontent_dir = \"content\"\ndist_dir = \"content/_site\"\n"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfg.ContentDir, "_site"), cfg.DistDir)
	})

	t.Run("invalid toml", func(t *testing.T) {
		_, err := Parse(newSiteRoot(t), FormatTOML, []byte("[source\n"))
		require.Error(t, err)
		assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
	})
}

func TestRunnerValidation(t *testing.T) {
	base := "[source]\ncontent_dir = \"content\"\ndist_dir = \"_site\"\n"

	cases := map[string]string{
		"missing cmd":       "[runner.a]\nargs = [\"x\"]\n",
		"bad run_on":        "[runner.a]\ncmd = \"echo\"\nrun_on = [\"Deploy\"]\n",
		"dev without watch": "[runner.a]\ncmd = \"echo\"\nrun_on = [\"Dev\"]\n",
	}
	for name, runner := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(newSiteRoot(t), FormatTOML, []byte(base+runner))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error for the runner a")
		})
	}
}

func TestParseRunMode(t *testing.T) {
	mode, err := ParseRunMode(" build ")
	require.NoError(t, err)
	assert.Equal(t, RunModeBuild, mode)

	mode, err = ParseRunMode("Dev")
	require.NoError(t, err)
	assert.Equal(t, RunModeDev, mode)

	_, err = ParseRunMode("watch")
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Init(root, false))

	assert.FileExists(t, filepath.Join(root, TOMLFileName))
	assert.FileExists(t, filepath.Join(root, "content", "_frame.html"))
	assert.FileExists(t, filepath.Join(root, "content", "README.md"))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Empty(t, cfg.Runners)

	assert.Error(t, Init(root, false), "refuses to overwrite without force")
	assert.NoError(t, Init(root, true))
}
