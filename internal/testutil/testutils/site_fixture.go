package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/ssite/internal/config"
)

// DefaultConfig is the ssite.toml written by NewSiteFixture.
const DefaultConfig = `[source]
content_dir = "content"
dist_dir = "_site"
`

// SampleSite is a content tree exercising every frame arrangement: nested directory
// frames, a page frame in markdown, standalone documents and a binary asset.
// Paths are relative to the content dir.
var SampleSite = map[string]string{
	"_frame.html": "<!DOCTYPE html>\n<html><body>\n<!-- Wrapped from root _frame.html -->\n" +
		"<main class=\"root\">\n{{content}}\n</main>\n</body></html>\n",
	"README.md":   "# Home\n\nfrom README.md\n",
	"hello.md":    "# Hello\n\nfrom hello.md\n",
	"hello2.html": "<p>from hello2.html</p>\n",
	"full.html":   "<!DOCTYPE html>\n<html><body><p>full</p></body></html>\n",

	"sub-frame/_frame.html": "<section class=\"sub-frame\">\n<!-- Wrapped from sub-frame/_frame.html -->\n" +
		"{{content}}\n</section>\n",
	"sub-frame/content-1.html": "<p>from sub-frame/content-1.html</p>\n",
	"sub-frame/content-2.md":   "from sub-frame/content-2.md\n",
	"sub-frame/content-2_frame.md": "<!-- Wrapped from content-2_frame.md -->\n\n" +
		"<div class=\"content-2\">\n\n{{content}}\n\n</div>\n",
	"sub-frame/full-content.html": "<!DOCTYPE html>\n<html><body>full content</body></html>\n",

	"sub-dir/index.html":              "<p>sub-dir index</p>\n",
	"sub-dir/full-other-content.html": "  <!DOCTYPE html>  \n<html></html>\n",
	"sub-dir/content.html":            "<p>from sub-dir/content.html</p>\n",
	"sub-dir/content_frame.html":      "<article class=\"page-frame\">{{content}}</article>\n",

	"img/logo.png": "\x89PNG\r\n\x1a\n\x00\x01binary",
}

// SiteFixture is a temporary site root with an ssite.toml and a content tree.
type SiteFixture struct {
	t    *testing.T
	Root string
}

// NewSiteFixture writes DefaultConfig and the given content files (relative to the
// content dir) into a fresh temporary root.
func NewSiteFixture(t *testing.T, files map[string]string) *SiteFixture {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}
	fx := &SiteFixture{t: t, Root: root}
	fx.WriteRoot(config.TOMLFileName, DefaultConfig)
	if err := os.MkdirAll(fx.ContentPath(""), 0o755); err != nil {
		t.Fatalf("create content dir: %v", err)
	}
	for rel, content := range files {
		fx.Write(rel, content)
	}
	return fx
}

// Config loads the fixture's configuration.
func (fx *SiteFixture) Config() *config.Config {
	fx.t.Helper()
	cfg, err := config.Load(fx.Root)
	if err != nil {
		fx.t.Fatalf("load fixture config: %v", err)
	}
	return cfg
}

// ContentPath returns the absolute path of rel inside the content dir.
func (fx *SiteFixture) ContentPath(rel string) string {
	return filepath.Join(fx.Root, "content", filepath.FromSlash(rel))
}

// DistPath returns the absolute path of rel inside the dist dir.
func (fx *SiteFixture) DistPath(rel string) string {
	return filepath.Join(fx.Root, "_site", filepath.FromSlash(rel))
}

// Write creates or replaces a content file and returns its absolute path.
func (fx *SiteFixture) Write(rel, content string) string {
	fx.t.Helper()
	p := fx.ContentPath(rel)
	writeFile(fx.t, p, content)
	return p
}

// WriteRoot creates or replaces a file relative to the site root.
func (fx *SiteFixture) WriteRoot(rel, content string) string {
	fx.t.Helper()
	p := filepath.Join(fx.Root, filepath.FromSlash(rel))
	writeFile(fx.t, p, content)
	return p
}

// Remove deletes a content file or directory and returns its absolute path.
func (fx *SiteFixture) Remove(rel string) string {
	fx.t.Helper()
	p := fx.ContentPath(rel)
	if err := os.RemoveAll(p); err != nil {
		fx.t.Fatalf("remove %s: %v", p, err)
	}
	return p
}

// Dist returns file assertions rooted at the dist dir.
func (fx *SiteFixture) Dist() *FileAssertions {
	return NewFileAssertions(fx.t, filepath.Join(fx.Root, "_site"))
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("create dir for %s: %v", p, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}
