package pkglog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const serviceName = "mulehunter"

//nolint:gochecknoglobals // shared by every logger InitLogging installs
var level = new(slog.LevelVar)

// InitLogging installs a JSON logger on stdout as the slog default. The
// starting level comes from LOG_LEVEL since logging starts before config is
// read; SetLevel changes it later.
func InitLogging() {
	level.Set(ParseLevel(os.Getenv("LOG_LEVEL")))
	slog.SetDefault(slog.New(newHandler(os.Stdout)))
}

// SetLevel applies raw to every logger created by InitLogging. Blank input is
// ignored.
func SetLevel(raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	level.Set(ParseLevel(raw))
}

// ParseLevel maps "debug", "warn" and "error" to their slog level; anything
// else is info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(w io.Writer) slog.Handler {
	json := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: renameAttr,
	})
	return correlationHandler{Handler: json.WithAttrs([]slog.Attr{slog.String("service", serviceName)})}
}

// renameAttr uses "ts", "severity" and a short "file" of the form
// internal/pkg/file.go:12. Sources outside internal/ are dropped.
func renameAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", "internal/"+rel+":"+strconv.Itoa(src.Line))
	}
	return a
}

// correlationHandler adds correlation_id to records whose context has one.
type correlationHandler struct {
	slog.Handler
}

func (h correlationHandler) Handle(ctx context.Context, r slog.Record) error {
	if cid := CorrelationID(ctx); cid != "" {
		r.AddAttrs(slog.String("correlation_id", cid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h correlationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return correlationHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h correlationHandler) WithGroup(name string) slog.Handler {
	return correlationHandler{Handler: h.Handler.WithGroup(name)}
}
