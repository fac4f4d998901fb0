// Package scorer talks to the graph-analytics risk scoring service.
package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// DefaultBudget is used when Assess is called with a non-positive budget.
const DefaultBudget = 2 * time.Second

const maxBodySize = 1 << 20

// Config holds the scorer client configuration.
type Config struct {
	BaseURL string

	// RateLimit is requests per second; zero disables client-side limiting.
	RateLimit float64
	RateBurst int
}

// Client calls GET {base}/predict/{key}. It never retries and never caches.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type predictResponse struct {
	NodeID    *int64   `json:"node_id"`
	RiskScore *float64 `json:"risk_score"`
	Verdict   string   `json:"verdict"`
}

// New creates a scorer client. A nil httpClient gets a fresh one without a
// global timeout; every call is bounded by its own budget instead.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// Assess asks the scorer about subjectKey. A non-nil error is always a
// *entity.ScoringFailure.
func (c *Client) Assess(ctx context.Context, subjectKey string, budget time.Duration) (entity.FraudAssessment, error) {
	if subjectKey == "" {
		return entity.FraudAssessment{}, fail(entity.ScoringFailureMalformed, errors.New("empty subject key"))
	}

	// The scorer addresses graph nodes by integer id.
	nodeID, err := strconv.ParseInt(subjectKey, 10, 64)
	if err != nil {
		return entity.FraudAssessment{}, fail(entity.ScoringFailureMalformed, errors.New("subject key is not a node id"))
	}

	if budget <= 0 {
		budget = DefaultBudget
	}

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Wait fails early when the next token is past the deadline.
			return entity.FraudAssessment{}, fail(entity.ScoringFailureTimeout, fmt.Errorf("rate limiter: %w", err))
		}
	}

	endpoint := c.baseURL + "/predict/" + strconv.FormatInt(nodeID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entity.FraudAssessment{}, fail(entity.ScoringFailureUnavailable, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if cid := pkglog.CorrelationID(ctx); cid != "" {
		req.Header.Set(pkglog.HeaderCorrelationID, cid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The *url.Error text carries the account id; keep only the cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = fmt.Errorf("%s scorer: %w", urlErr.Op, urlErr.Err)
		}
		return entity.FraudAssessment{}, fail(classify(ctx, err), err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.WarnContext(ctx, "failed to close scorer response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return entity.FraudAssessment{}, fail(entity.ScoringFailureUnavailable, fmt.Errorf("scorer returned HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return entity.FraudAssessment{}, fail(classify(ctx, err), fmt.Errorf("reading response body: %w", err))
	}

	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return entity.FraudAssessment{}, fail(entity.ScoringFailureMalformed, fmt.Errorf("decoding response: %w", err))
	}
	if out.RiskScore == nil {
		return entity.FraudAssessment{}, fail(entity.ScoringFailureMalformed, errors.New("response has no risk_score"))
	}

	return entity.FraudAssessment{
		SubjectKey: subjectKey,
		RiskScore:  *out.RiskScore,
		Label:      out.Verdict,
	}, nil
}

func fail(kind entity.ScoringFailureKind, err error) error {
	return &entity.ScoringFailure{Kind: kind, Err: err}
}

// classify tells a blown budget apart from a refused or reset connection.
func classify(ctx context.Context, err error) entity.ScoringFailureKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return entity.ScoringFailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entity.ScoringFailureTimeout
	}

	return entity.ScoringFailureUnavailable
}
