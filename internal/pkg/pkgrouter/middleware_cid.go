package pkgrouter

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
)

// Generator produces fresh correlation ids.
type Generator interface {
	Generate() string
}

// headerRequestID is what most reverse proxies stamp on a request.
const headerRequestID = "X-Request-ID"

const maxCorrelationIDLen = 128

// sanitizeCorrelationID drops ids that could break a log line or a header and
// cuts long ones down.
func sanitizeCorrelationID(raw string) string {
	cid := strings.TrimSpace(raw)
	if strings.IndexFunc(cid, unicode.IsControl) >= 0 {
		return ""
	}
	if len(cid) > maxCorrelationIDLen {
		cid = cid[:maxCorrelationIDLen]
	}
	return cid
}

func incomingCorrelationID(r *http.Request) string {
	if cid := sanitizeCorrelationID(r.Header.Get(pkglog.HeaderCorrelationID)); cid != "" {
		return cid
	}
	return sanitizeCorrelationID(r.Header.Get(headerRequestID))
}

// middlewareCorrelationID echoes the caller's id, or a generated one, on the
// response and stores it in the request context.
func middlewareCorrelationID(gen Generator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := incomingCorrelationID(r)
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}
			if cid == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(pkglog.HeaderCorrelationID, cid)
			next.ServeHTTP(w, r.WithContext(pkglog.WithCorrelationID(r.Context(), cid)))
		})
	}
}
