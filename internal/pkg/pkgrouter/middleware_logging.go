package pkgrouter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
)

const maxLoggedBodyBytes = 64 * 1024

type redaction int

const (
	keepValue redaction = iota
	maskSecret
	maskAccount
)

//nolint:gochecknoglobals // lookup table
var redactedKeys = map[string]redaction{
	"authorization":  maskSecret,
	"cookie":         maskSecret,
	"x-api-key":      maskSecret,
	"token":          maskSecret,
	"password":       maskSecret,
	"sourceaccount":  maskAccount,
	"targetaccount":  maskAccount,
	"linkedaccounts": maskAccount,
}

func redactionFor(key string) redaction {
	return redactedKeys[strings.ToLower(strings.ReplaceAll(key, "_", ""))]
}

func redactHeaders(headers http.Header) http.Header {
	out := headers.Clone()
	for key := range out {
		if redactionFor(key) == maskSecret {
			out.Set(key, "***")
		}
	}
	return out
}

func redactValue(rule redaction, v any) any {
	switch rule {
	case maskSecret:
		return "***"
	case maskAccount:
		switch val := v.(type) {
		case string:
			return pkglog.MaskAccount(val)
		case []any:
			out := make([]any, len(val))
			for i, item := range val {
				out[i] = redactValue(maskAccount, item)
			}
			return out
		}
		return v
	default:
		return redactJSON(v)
	}
}

func redactJSON(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = redactValue(redactionFor(k), item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactJSON(item)
		}
		return out
	default:
		return v
	}
}

// loggableBody decodes a JSON body and redacts it; anything else is logged as
// text when printable.
func loggableBody(body []byte, truncated bool) any {
	if len(body) == 0 {
		return nil
	}

	var decoded any
	if !truncated && json.Unmarshal(body, &decoded) == nil {
		return redactJSON(decoded)
	}
	if !utf8.Valid(body) {
		return "<binary body omitted>"
	}
	if truncated {
		return string(body) + "...(truncated)"
	}
	return string(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	capped bool
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if room := maxLoggedBodyBytes - w.body.Len(); room > 0 {
		if len(p) > room {
			w.body.Write(p[:room])
			w.capped = true
		} else {
			w.body.Write(p)
		}
	} else if len(p) > 0 {
		w.capped = true
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := matchedRoutePath(r)
		start := time.Now()

		var reqBody []byte
		if r.Body != nil {
			//nolint:errcheck // logging only, the handler sees the same bytes
			reqBody, _ = io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), r.Body))
		}
		reqTruncated := len(reqBody) > maxLoggedBodyBytes
		if reqTruncated {
			reqBody = reqBody[:maxLoggedBodyBytes]
		}

		slog.InfoContext(r.Context(), "request received",
			"method", r.Method,
			"route", route,
			"headers", redactHeaders(r.Header),
			"body", loggableBody(reqBody, reqTruncated),
		)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		slog.Log(r.Context(), level, "response sent",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", rec.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
			"body", loggableBody(rec.body.Bytes(), rec.capped),
		)
	})
}
