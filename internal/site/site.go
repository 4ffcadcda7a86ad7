// Package site holds the immutable description of one site: its root, content and dist
// directories and its runners. A Site is built once at startup and shared read-only.
package site

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/ssite/internal/config"
)

type Site struct {
	rootDir    string
	contentDir string
	distDir    string
	configFile string
	runners    []config.Runner
}

func New(cfg *config.Config) *Site {
	return &Site{
		rootDir:    cfg.RootDir,
		contentDir: cfg.ContentDir,
		distDir:    cfg.DistDir,
		configFile: cfg.File,
		runners:    slices.Clone(cfg.Runners),
	}
}

func (s *Site) RootDir() string    { return s.rootDir }
func (s *Site) ContentDir() string { return s.contentDir }
func (s *Site) DistDir() string    { return s.distDir }
func (s *Site) ConfigFile() string { return s.configFile }

// Runners returns a copy of the runner descriptors in declaration order.
func (s *Site) Runners() []config.Runner { return slices.Clone(s.runners) }

// ValidContentPath reports whether path may be treated as content: it must not be inside
// the dist dir and must not be the configuration file.
func (s *Site) ValidContentPath(path string) bool {
	if Within(path, s.distDir) {
		return false
	}
	if s.configFile != "" && filepath.Clean(path) == filepath.Clean(s.configFile) {
		return false
	}
	base := filepath.Base(path)
	return base != config.TOMLFileName && base != config.YAMLFileName
}

// ContentEntries returns the regular files below the content dir, in lexical walk order.
// Entries that cannot be read are skipped.
func (s *Site) ContentEntries() []string {
	return s.FilesUnder(s.contentDir)
}

// FilesUnder returns the valid content files below dir.
func (s *Site) FilesUnder(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !s.ValidContentPath(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if isRegularFile(path, d) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// DistEntries returns what is currently below the dist dir: every non-directory entry
// in files, and every directory except the dist dir itself in dirs.
func (s *Site) DistEntries() (files, dirs []string) {
	_ = filepath.WalkDir(s.distDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		switch {
		case d.IsDir():
			if path != s.distDir {
				dirs = append(dirs, path)
			}
		default:
			files = append(files, path)
		}
		return nil
	})
	return files, dirs
}

// Rel returns path relative to the site root for display, or path itself.
func (s *Site) Rel(path string) string {
	if rel, err := filepath.Rel(s.rootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Within reports whether path equals dir or lies below it.
func Within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink != 0 {
		st, err := os.Stat(path)
		return err == nil && st.Mode().IsRegular()
	}
	return false
}
