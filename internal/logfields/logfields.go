package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeySrc        = "src"
	KeyDst        = "dst"
	KeyFrame      = "frame"
	KeyRole       = "role"
	KeyPath       = "path"
	KeyOp         = "op"
	KeyRunner     = "runner"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Src(p string) slog.Attr       { return slog.String(KeySrc, p) }
func Dst(p string) slog.Attr       { return slog.String(KeyDst, p) }
func Frame(p string) slog.Attr     { return slog.String(KeyFrame, p) }
func Role(r string) slog.Attr      { return slog.String(KeyRole, r) }
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func Op(op string) slog.Attr       { return slog.String(KeyOp, op) }
func Runner(name string) slog.Attr { return slog.String(KeyRunner, name) }
func BuildID(id string) slog.Attr  { return slog.String(KeyBuildID, id) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
