package pkglog

import "context"

// HeaderCorrelationID is read from inbound requests and forwarded on outbound
// calls to the scorer.
const HeaderCorrelationID = "X-Correlation-ID"

type correlationKey struct{}

// WithCorrelationID returns a copy of ctx carrying cid. An empty cid leaves
// ctx untouched.
func WithCorrelationID(ctx context.Context, cid string) context.Context {
	if cid == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, cid)
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationKey{}).(string)
	return cid
}
