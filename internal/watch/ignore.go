package watch

import (
	"path/filepath"
	"strings"
)

// ignoredName reports editor temp and lock files and Windows thumbnail caches. Other
// dotfiles (.htaccess, .well-known/) are content and are reconciled like any file.
func ignoredName(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".#") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		len(base) > 1 && strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
