package logfields

import "log/slog"

// Canonical log field names shared by every package.
const (
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyCategory   = "category"
	KeyFormat     = "format"
	KeyStage      = "stage"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyEvent      = "event"
	KeyError      = "error"
)

func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
