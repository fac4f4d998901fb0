package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgerror"
)

// Handler returns a payload for the success envelope or an error for the
// error envelope. A payload may implement StatusCode() int, Message() string
// and Meta() map[string]any to shape the response.
type Handler func(ctx context.Context, r *http.Request) (any, error)

type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

type successEnvelope struct {
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

type errorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Error   map[string]string `json:"error,omitempty"`
}

// NewRouter returns a router with recover, correlation id and logging
// middleware, plus the GET / and GET /health liveness routes.
func NewRouter(gen Generator) *Router {
	r := &Router{
		hr: &httprouter.Router{
			RedirectTrailingSlash:  true,
			RedirectFixedPath:      true,
			HandleMethodNotAllowed: true,
			HandleOPTIONS:          true,
			SaveMatchedRoutePath:   true,
			NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, errorResponse{Message: "endpoint not found", Code: pkgerror.CodeNotFound.String()}, http.StatusNotFound)
			}),
			MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
			}),
		},
		mws: []Middleware{
			middlewareRecoverer,
			middlewareCorrelationID(gen),
			Unless(isLivenessPoll, middlewareLogging),
		},
	}

	r.Handle(http.MethodGet, "/", staticMessage("mulehunter transaction ingestion"))
	r.Handle(http.MethodGet, "/health", staticMessage("server is running well"))

	return r
}

func staticMessage(msg string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, successEnvelope{Message: msg}, http.StatusOK)
	})
}

// Use appends middleware for routes registered afterwards.
func (r *Router) Use(mws ...Middleware) {
	r.mws = append(r.mws, mws...)
}

func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.Handle(http.MethodGet, path, r.adapt(h), mws...)
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.Handle(http.MethodPost, path, r.adapt(h), mws...)
}

// Handle registers a plain http.Handler behind the shared middleware.
func (r *Router) Handle(method, path string, h http.Handler, mws ...Middleware) {
	chain := make([]Middleware, 0, len(r.mws)+len(mws))
	chain = append(chain, r.mws...)
	chain = append(chain, mws...)
	r.hr.Handler(method, path, Chain(h, chain...))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func (r *Router) adapt(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(req.Context(), req)
		if err != nil {
			writeError(req.Context(), w, err)
			return
		}
		writeSuccess(w, resp)
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *pkgerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unclassified handler error", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error", Code: pkgerror.CodeInternal.String()}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg(), Code: gerr.Code().String()}
	switch gerr.Type() {
	case pkgerror.TypeValidation:
		if gerr.Unwrap() != nil {
			resp.Error = map[string]string{"detail": gerr.Error()}
		}
	case pkgerror.TypeServer:
		slog.ErrorContext(ctx, "request failed", "code", gerr.Code().String(), "error", err)
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func writeSuccess(w http.ResponseWriter, resp any) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	env := successEnvelope{Message: "request has been successfully", Data: resp}
	status := http.StatusOK

	if v, ok := resp.(interface{ StatusCode() int }); ok {
		status = v.StatusCode()
	}
	if v, ok := resp.(interface{ Message() string }); ok {
		env.Message = v.Message()
	}
	if v, ok := resp.(interface{ Meta() map[string]any }); ok {
		env.Meta = v.Meta()
	}

	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, env, status)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
