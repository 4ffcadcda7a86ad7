// Package processor brings the output of a single content file in line with its source.
package processor

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/ssite/internal/compose"
	"git.home.luguber.info/inful/ssite/internal/destination"
	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
	"git.home.luguber.info/inful/ssite/internal/frames"
	"git.home.luguber.info/inful/ssite/internal/logfields"
	"git.home.luguber.info/inful/ssite/internal/site"
	"git.home.luguber.info/inful/ssite/internal/source"
)

// Outcome describes what Process did to the destination.
type Outcome string

const (
	Rendered Outcome = "rendered"
	Copied   Outcome = "copied"
	Removed  Outcome = "removed"
	Failed   Outcome = "failed"
)

// FileProcessor pairs one source with its destination. It is built per file and
// discarded after Process.
type FileProcessor struct {
	Src  string
	Role source.Role
	Dst  string

	site     *site.Site
	composer *compose.Composer
	logger   *slog.Logger
}

// New classifies src and maps it to its destination. An existing source must be a
// regular file; a missing one is mapped without that check so its output can be removed.
// Frames and paths outside the content dir return false.
func New(s *site.Site, src string, composer *compose.Composer) (*FileProcessor, bool) {
	role := source.Classify(src)

	var (
		dst string
		ok  bool
	)
	if _, err := os.Lstat(src); errors.Is(err, fs.ErrNotExist) {
		dst, ok = destination.Rebase(s, role, src)
	} else {
		dst, ok = destination.Path(s, role, src)
	}
	if !ok {
		return nil, false
	}
	return &FileProcessor{
		Src:      src,
		Role:     role,
		Dst:      dst,
		site:     s,
		composer: composer,
		logger:   slog.Default(),
	}, true
}

// WithLogger sets the logger used for per-file lines.
func (fp *FileProcessor) WithLogger(l *slog.Logger) *FileProcessor {
	if l != nil {
		fp.logger = l
	}
	return fp
}

// Process renders, copies or removes the destination depending on the source's current
// state. Composition failures are logged and reported as Failed without an error; only
// output tree I/O failures are returned.
func (fp *FileProcessor) Process(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	log := fp.logger.With(logfields.Src(fp.site.Rel(fp.Src)), logfields.Dst(fp.site.Rel(fp.Dst)))

	if _, err := os.Stat(fp.Src); errors.Is(err, fs.ErrNotExist) {
		if err := fp.removeOutput(); err != nil {
			return "", err
		}
		log.Info("Removed output")
		return Removed, nil
	}

	if err := os.MkdirAll(filepath.Dir(fp.Dst), 0o750); err != nil {
		return "", foundationerrors.FileSystemError("failed to create output directory").
			WithContext("path", filepath.Dir(fp.Dst)).WithCause(err).Build()
	}

	if !fp.Role.IsRenderable() {
		if err := copyFile(fp.Src, fp.Dst); err != nil {
			return "", err
		}
		log.Info("Processed file", logfields.Op("copy"))
		return Copied, nil
	}

	content, err := fp.compose()
	if err != nil {
		log.Error("Failed to render file", logfields.Role(fp.Role.String()), logfields.Error(err))
		return Failed, nil
	}
	// #nosec G306 - published site output is world readable
	if err := os.WriteFile(fp.Dst, []byte(content), 0o644); err != nil {
		return "", foundationerrors.FileSystemError("failed to write output").
			WithContext("path", fp.Dst).WithCause(err).Build()
	}
	log.Info("Processed file", logfields.Op("render"))
	return Rendered, nil
}

func (fp *FileProcessor) compose() (string, error) {
	chain, err := frames.Resolve(fp.site, fp.Src)
	if err != nil {
		return "", err
	}
	fp.logger.Debug("Resolved frame chain", logfields.Src(fp.site.Rel(fp.Src)), slog.Int("frames", len(chain)))
	content, _, err := fp.composer.Compose(fp.Src, fp.Role, chain)
	return content, err
}

// removeOutput deletes the destination. A directory destination belongs to a removed
// content directory and goes with everything below it.
func (fp *FileProcessor) removeOutput() error {
	if st, err := os.Lstat(fp.Dst); err == nil && st.IsDir() {
		if err := os.RemoveAll(fp.Dst); err != nil {
			return foundationerrors.FileSystemError("failed to remove output directory").
				WithContext("path", fp.Dst).WithCause(err).Build()
		}
	}
	return RemoveFileAndEmptyParent(fp.Dst, fp.site.DistDir())
}

// RemoveFileAndEmptyParent removes path, then its immediate parent when that is left
// empty. root itself is never removed. A missing path is not an error.
func RemoveFileAndEmptyParent(path, root string) error {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return foundationerrors.FileSystemError("failed to remove file").
				WithContext("path", path).WithCause(err).Build()
		}
		slog.Debug("Output already absent", logfields.Path(path))
	}

	parent := filepath.Dir(path)
	if filepath.Clean(parent) == filepath.Clean(root) {
		return nil
	}
	entries, err := os.ReadDir(parent)
	if err != nil || len(entries) > 0 {
		return nil
	}
	if err := os.Remove(parent); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return foundationerrors.FileSystemError("failed to remove empty directory").
			WithContext("path", parent).WithCause(err).Build()
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	// #nosec G304 - src comes from the content walk
	in, err := os.Open(src)
	if err != nil {
		return foundationerrors.FileSystemError("failed to open source").
			WithContext("path", src).WithCause(err).Build()
	}
	defer func() { _ = in.Close() }()

	// #nosec G302,G304 - dst is derived under the dist dir
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return foundationerrors.FileSystemError("failed to create output").
			WithContext("path", dst).WithCause(err).Build()
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = foundationerrors.FileSystemError("failed to close output").
				WithContext("path", dst).WithCause(cerr).Build()
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return foundationerrors.FileSystemError("failed to copy file").
			WithContext("path", dst).WithCause(err).Build()
	}
	return nil
}
