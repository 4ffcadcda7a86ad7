// Package destination maps content paths to output paths under the dist dir.
//
// Pages lose their extension: content/docs/setup.md is written to _site/docs/setup
// and content/about.html to _site/about. A README.md becomes index.html of its
// directory. The output tree therefore has to be served by something that treats
// extension-less files as text/html.
package destination

import (
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/ssite/internal/site"
	"git.home.luguber.info/inful/ssite/internal/source"
)

// IndexFileName is the output name of a directory README.
const IndexFileName = "index.html"

// Path returns the output path of an existing regular content file. Frames, missing
// files and paths outside the content dir have no mapping.
func Path(s *site.Site, role source.Role, src string) (string, bool) {
	st, err := os.Stat(src)
	if err != nil || !st.Mode().IsRegular() {
		return "", false
	}
	return Rebase(s, role, src)
}

// Rebase is Path without the existence check. It serves sources that were just
// deleted and whose output has to follow.
func Rebase(s *site.Site, role source.Role, src string) (string, bool) {
	if role.IsFrame() {
		return "", false
	}
	rel, err := filepath.Rel(s.ContentDir(), src)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	dst := filepath.Join(s.DistDir(), rel)

	switch role {
	case source.ReadmeMarkdown:
		return filepath.Join(filepath.Dir(dst), IndexFileName), true
	case source.PageMarkdown, source.PageHTML:
		return strings.TrimSuffix(dst, filepath.Ext(dst)), true
	default:
		return dst, true
	}
}
