// Package frames resolves the chain of layout frames that wrap a content file.
//
// A chain is ordered innermost first: the page frame (<stem>_frame.html or
// <stem>_frame.md next to the file), then the directory frames (_frame.html or
// _frame.md) found walking up to the content dir. A frame whose first line is the
// doctype sentinel is a complete document and ends the walk.
package frames

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
	"git.home.luguber.info/inful/ssite/internal/site"
	"git.home.luguber.info/inful/ssite/internal/source"
)

const (
	// DoctypeSentinel as the trimmed first line marks a standalone document.
	DoctypeSentinel = "<!DOCTYPE html>"

	DirFrameHTML     = source.FrameHTMLSuffix
	DirFrameMarkdown = source.FrameMarkdownSuffix
)

// Chain lists frame files, innermost first.
type Chain []string

// Resolve computes the frame chain of src. It only fails when a file that exists cannot
// be read while sniffing for the doctype sentinel.
func Resolve(s *site.Site, src string) (Chain, error) {
	standalone, err := IsStandalone(src)
	if err != nil {
		return nil, err
	}
	chain := Chain{}
	if standalone {
		return chain, nil
	}

	dir := filepath.Dir(src)
	name := filepath.Base(src)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	if pageFrame, ok := findFrame(src, dir, stem+DirFrameHTML, stem+DirFrameMarkdown); ok {
		chain = append(chain, pageFrame)
		if done, err := IsStandalone(pageFrame); err != nil || done {
			return chain, err
		}
	}

	contentDir := s.ContentDir()
	for {
		if frame, ok := findFrame(src, dir, DirFrameHTML, DirFrameMarkdown); ok {
			chain = append(chain, frame)
			done, err := IsStandalone(frame)
			if err != nil {
				return nil, err
			}
			if done {
				break
			}
		}
		if dir == contentDir || !site.Within(dir, contentDir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return chain, nil
}

// findFrame returns the first candidate in dir that is an existing regular file other
// than src itself.
func findFrame(src, dir string, candidates ...string) (string, bool) {
	for _, c := range candidates {
		p := filepath.Join(dir, c)
		if p == src {
			continue
		}
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// IsStandalone reports whether the first line of path, trimmed, is the doctype sentinel.
// Only the first line is read. Missing files and directories are not standalone.
func IsStandalone(path string) (bool, error) {
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return false, nil
	}
	// #nosec G304 - content paths come from the site walk
	f, err := os.Open(path)
	if err != nil {
		return false, foundationerrors.FileSystemError("failed to open file for doctype check").
			WithContext("path", path).WithCause(err).Build()
	}
	defer func() { _ = f.Close() }()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, foundationerrors.FileSystemError("failed to read first line").
			WithContext("path", path).WithCause(err).Build()
	}
	return strings.TrimSpace(line) == DoctypeSentinel, nil
}
