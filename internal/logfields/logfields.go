package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTag        = "tag"
	KeySection    = "section"
	KeyDisplay    = "display"
	KeyFile       = "file"
	KeyLine       = "line"
	KeyPath       = "path"
	KeyDate       = "date"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Tag(name string) slog.Attr       { return slog.String(KeyTag, name) }
func Section(name string) slog.Attr   { return slog.String(KeySection, name) }
func Display(mode string) slog.Attr   { return slog.String(KeyDisplay, mode) }
func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Date(d string) slog.Attr         { return slog.String(KeyDate, d) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}

	return slog.String(KeyError, err.Error())
}
