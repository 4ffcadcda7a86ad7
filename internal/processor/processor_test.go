package processor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ssite/internal/compose"
	"git.home.luguber.info/inful/ssite/internal/processor"
	"git.home.luguber.info/inful/ssite/internal/site"
	"git.home.luguber.info/inful/ssite/internal/source"
	helpers "git.home.luguber.info/inful/ssite/internal/testutil/testutils"
)

func setup(t *testing.T, files map[string]string) (*helpers.SiteFixture, *site.Site, *compose.Composer) {
	t.Helper()
	fx := helpers.NewSiteFixture(t, files)
	return fx, site.New(fx.Config()), compose.NewComposer(nil)
}

func process(t *testing.T, s *site.Site, c *compose.Composer, src string) processor.Outcome {
	t.Helper()
	fp, ok := processor.New(s, src, c)
	require.True(t, ok, "no processor for %s", src)
	outcome, err := fp.Process(context.Background())
	require.NoError(t, err)
	return outcome
}

func TestNewSkipsFrames(t *testing.T) {
	fx, s, c := setup(t, helpers.SampleSite)

	for _, rel := range []string{"_frame.html", "sub-frame/_frame.html", "sub-frame/content-2_frame.md"} {
		_, ok := processor.New(s, fx.ContentPath(rel), c)
		assert.False(t, ok, rel)
	}
}

func TestNewMapsMissingSource(t *testing.T) {
	fx, s, c := setup(t, nil)

	fp, ok := processor.New(s, fx.ContentPath("gone.md"), c)
	require.True(t, ok)
	assert.Equal(t, source.PageMarkdown, fp.Role)
	assert.Equal(t, fx.DistPath("gone"), fp.Dst)
}

func TestProcessRendersPage(t *testing.T) {
	fx, s, c := setup(t, helpers.SampleSite)

	assert.Equal(t, processor.Rendered, process(t, s, c, fx.ContentPath("sub-frame/content-2.md")))
	fx.Dist().
		AssertFileContains("sub-frame/content-2", "<p>from sub-frame/content-2.md</p>").
		AssertFileContains("sub-frame/content-2", "Wrapped from root _frame.html").
		AssertNotExists("sub-frame/content-2.md")
}

func TestProcessReadmeBecomesIndex(t *testing.T) {
	fx, s, c := setup(t, helpers.SampleSite)

	assert.Equal(t, processor.Rendered, process(t, s, c, fx.ContentPath("README.md")))
	fx.Dist().AssertFileContains("index.html", "<h1>Home</h1>")
}

func TestProcessCopiesOtherFilesVerbatim(t *testing.T) {
	fx, s, c := setup(t, helpers.SampleSite)

	assert.Equal(t, processor.Copied, process(t, s, c, fx.ContentPath("img/logo.png")))
	fx.Dist().AssertFileEquals("img/logo.png", helpers.SampleSite["img/logo.png"])
}

func TestProcessStandaloneIsVerbatim(t *testing.T) {
	fx, s, c := setup(t, helpers.SampleSite)

	assert.Equal(t, processor.Rendered, process(t, s, c, fx.ContentPath("sub-dir/full-other-content.html")))
	fx.Dist().AssertFileEquals("sub-dir/full-other-content", helpers.SampleSite["sub-dir/full-other-content.html"])
}

func TestProcessRemovesOutputOfDeletedSource(t *testing.T) {
	fx, s, c := setup(t, map[string]string{
		"docs/page.md": "page\n",
		"keep.md":      "keep\n",
	})
	process(t, s, c, fx.ContentPath("docs/page.md"))
	process(t, s, c, fx.ContentPath("keep.md"))
	fx.Dist().AssertFileExists("docs/page")

	src := fx.Remove("docs/page.md")
	assert.Equal(t, processor.Removed, process(t, s, c, src))

	fx.Dist().AssertNotExists("docs/page").AssertNotExists("docs").AssertFileExists("keep")
}

func TestProcessRemovesDirectoryOfDeletedContentDir(t *testing.T) {
	fx, s, c := setup(t, map[string]string{
		"section/a.md":      "a\n",
		"section/deep/b.md": "b\n",
	})
	process(t, s, c, fx.ContentPath("section/a.md"))
	process(t, s, c, fx.ContentPath("section/deep/b.md"))

	src := fx.Remove("section")
	assert.Equal(t, processor.Removed, process(t, s, c, src))
	fx.Dist().AssertNotExists("section")
	assert.Empty(t, fx.Dist().Files())
}

func TestProcessIgnoresDanglingFrameLink(t *testing.T) {
	fx, s, c := setup(t, map[string]string{"page.html": "<p>x</p>\n"})
	fp, ok := processor.New(s, fx.ContentPath("page.html"), c)
	require.True(t, ok)

	require.NoError(t, os.Symlink(filepath.Join(fx.Root, "nowhere"), fx.ContentPath("_frame.html")))

	outcome, err := fp.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, processor.Rendered, outcome)
	fx.Dist().AssertFileEquals("page", "<p>x</p>\n")
}

func TestProcessUnreadableFrameIsFailed(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	fx, s, c := setup(t, map[string]string{
		"_frame.html": "<main>{{content}}</main>",
		"page.html":   "<p>x</p>\n",
	})
	require.NoError(t, os.Chmod(fx.ContentPath("_frame.html"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(fx.ContentPath("_frame.html"), 0o644) })

	assert.Equal(t, processor.Failed, process(t, s, c, fx.ContentPath("page.html")))
	fx.Dist().AssertNotExists("page")
}

func TestProcessHonoursCancellation(t *testing.T) {
	fx, s, c := setup(t, map[string]string{"page.html": "x"})
	fp, ok := processor.New(s, fx.ContentPath("page.html"), c)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fp.Process(ctx)
	require.ErrorIs(t, err, context.Canceled)
	fx.Dist().AssertNotExists("page")
}

func TestRemoveFileAndEmptyParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	file := filepath.Join(nested, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	require.NoError(t, processor.RemoveFileAndEmptyParent(file, root))
	assert.NoDirExists(t, nested)
	assert.DirExists(t, filepath.Join(root, "a"), "only one level is pruned")

	require.NoError(t, processor.RemoveFileAndEmptyParent(file, root), "missing file is not an error")

	top := filepath.Join(root, "top")
	require.NoError(t, os.WriteFile(top, []byte("x"), 0o644))
	require.NoError(t, processor.RemoveFileAndEmptyParent(top, root))
	assert.DirExists(t, root, "root is never removed")
}

func TestRemoveFileKeepsNonEmptyParent(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "d")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range []string{"x", "y"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
	}

	require.NoError(t, processor.RemoveFileAndEmptyParent(filepath.Join(dir, "x"), root))
	assert.FileExists(t, filepath.Join(dir, "y"))
}
