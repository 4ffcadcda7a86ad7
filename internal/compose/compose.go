// Package compose turns a renderable source file and its frame chain into the final
// HTML text of a page.
package compose

import (
	"os"
	"strings"

	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
	"git.home.luguber.info/inful/ssite/internal/frames"
	"git.home.luguber.info/inful/ssite/internal/markdown"
	"git.home.luguber.info/inful/ssite/internal/source"
)

// ContentPlaceholder is replaced in every frame by the content it wraps.
const ContentPlaceholder = "{{content}}"

// A markdown frame renders its placeholder line as a paragraph of its own.
var paragraphPlaceholder = "<p>" + ContentPlaceholder + "</p>"

// Composer is stateless apart from its markdown renderer and may be shared.
type Composer struct {
	md *markdown.Renderer
}

func NewComposer(md *markdown.Renderer) *Composer {
	if md == nil {
		md = markdown.NewRenderer()
	}
	return &Composer{md: md}
}

// Compose returns the composed text of src. ok is false for roles that are not
// composed (frames and other files); such files are copied or skipped by the caller.
func (c *Composer) Compose(src string, role source.Role, chain frames.Chain) (string, bool, error) {
	if !role.IsRenderable() {
		return "", false, nil
	}
	content, err := c.load(src, role)
	if err != nil {
		return "", false, err
	}
	for _, frame := range chain {
		tmpl, err := c.load(frame, source.Classify(frame))
		if err != nil {
			return "", false, err
		}
		content = strings.ReplaceAll(tmpl, ContentPlaceholder, content)
	}
	return content, true, nil
}

// load reads path and renders it when role is markdown.
func (c *Composer) load(path string, role source.Role) (string, error) {
	// #nosec G304 - path comes from the content walk or frame resolution
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", foundationerrors.FileSystemError("failed to read file").
			WithContext("path", path).WithCause(err).Build()
	}
	if !role.IsMarkdown() {
		return string(raw), nil
	}
	html, err := c.md.Render(raw)
	if err != nil {
		return "", foundationerrors.RenderError("failed to render markdown").
			WithContext("path", path).WithCause(err).Build()
	}
	if role.IsFrame() {
		html = strings.ReplaceAll(html, paragraphPlaceholder, ContentPlaceholder)
	}
	return html, nil
}
