// Package source classifies content files into the roles that drive rendering.
package source

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// Role is the semantic role of a content file, derived from its name alone.
type Role int

const (
	Other Role = iota
	PageMarkdown
	PageHTML
	IndexHTML
	ReadmeMarkdown
	FrameHTML
	FrameMarkdown
)

const (
	FrameHTMLSuffix     = "_frame.html"
	FrameMarkdownSuffix = "_frame.md"
)

var roleNames = map[Role]string{
	Other:          "other",
	PageMarkdown:   "page_markdown",
	PageHTML:       "page_html",
	IndexHTML:      "index_html",
	ReadmeMarkdown: "readme_markdown",
	FrameHTML:      "frame_html",
	FrameMarkdown:  "frame_markdown",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// IsFrame reports whether files of this role only wrap other content.
func (r Role) IsFrame() bool { return r == FrameHTML || r == FrameMarkdown }

// IsMarkdown reports whether the content must be converted to HTML.
func (r Role) IsMarkdown() bool {
	return r == PageMarkdown || r == ReadmeMarkdown || r == FrameMarkdown
}

// IsRenderable reports whether a top-level file of this role is composed through frames.
func (r Role) IsRenderable() bool {
	switch r {
	case PageMarkdown, PageHTML, IndexHTML, ReadmeMarkdown:
		return true
	}
	return false
}

// Classify maps a path to its role. Matching is case-insensitive.
func Classify(path string) Role {
	// Casers keep state; one per call keeps Classify safe for concurrent use.
	name := cases.Fold().String(filepath.Base(path))
	switch {
	case name == "readme.md":
		return ReadmeMarkdown
	case name == "index.html":
		return IndexHTML
	case strings.HasSuffix(name, FrameHTMLSuffix):
		return FrameHTML
	case strings.HasSuffix(name, FrameMarkdownSuffix):
		return FrameMarkdown
	}
	switch filepath.Ext(name) {
	case ".md":
		return PageMarkdown
	case ".html":
		return PageHTML
	}
	return Other
}

// IsFrameName reports whether the file name marks a frame.
func IsFrameName(path string) bool {
	return Classify(path).IsFrame()
}
