package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgerror"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkguid"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// DefaultScoringBudget bounds one call to the risk scorer.
const DefaultScoringBudget = 2 * time.Second

// publishTimeout caps how long a full event bus may hold up a response.
const publishTimeout = 200 * time.Millisecond

type Scorer interface {
	Assess(ctx context.Context, subjectKey string, budget time.Duration) (entity.FraudAssessment, error)
}

type Store interface {
	Save(ctx context.Context, tx entity.Transaction) (entity.Transaction, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.TransactionEvent) error
}

// Metrics takes the failure kind and verdict as plain labels.
type Metrics interface {
	RecordScoring(ctx context.Context, elapsed time.Duration, failure string)
	RecordIngested(ctx context.Context, verdict string)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Scorer        Scorer
	Store         Store
	Events        EventPublisher
	Metrics       Metrics
	Clock         Clock
	ID            pkguid.StringID
	Policy        Policy
	ScoringBudget time.Duration
}

type Usecase struct {
	scorer  Scorer
	store   Store
	events  EventPublisher
	metrics Metrics
	clock   Clock
	id      pkguid.StringID
	policy  Policy
	budget  time.Duration
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	metrics := dep.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	id := dep.ID
	if id == nil {
		id = pkguid.NewUUID()
	}

	budget := dep.ScoringBudget
	if budget <= 0 {
		budget = DefaultScoringBudget
	}

	return &Usecase{
		scorer:  dep.Scorer,
		store:   dep.Store,
		events:  dep.Events,
		metrics: metrics,
		clock:   clock,
		id:      id,
		policy:  dep.Policy,
		budget:  budget,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type noopMetrics struct{}

func (noopMetrics) RecordScoring(context.Context, time.Duration, string) {}

func (noopMetrics) RecordIngested(context.Context, string) {}

// CreateTransaction builds, scores, resolves and persists one transfer.
//
// The returned record always carries a terminal verdict. Scorer problems never
// surface as errors; the only errors are validation errors (before any network
// call) and storage errors (nothing was persisted).
func (u *Usecase) CreateTransaction(ctx context.Context, req entity.TransactionRequest) (entity.Transaction, error) {
	if u.scorer == nil || u.store == nil {
		return entity.Transaction{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	tx, err := BuildTransaction(req, u.clock.Now())
	if err != nil {
		return entity.Transaction{}, err
	}

	// Once built, the pipeline runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	key := subjectKey(tx)
	started := time.Now()
	assessment, scoringErr := u.scorer.Assess(ctx, key, u.budget)
	failure := failureKind(scoringErr)
	u.metrics.RecordScoring(ctx, time.Since(started), string(failure))

	if scoringErr != nil {
		slog.WarnContext(ctx, "risk scoring failed, transaction held for review",
			"subject_key", pkglog.MaskAccount(key),
			"failure_kind", failure,
			"error", scoringErr,
		)
	}

	u.policy.Resolve(assessment, scoringErr).applyTo(&tx)

	saved, err := u.store.Save(ctx, tx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist transaction", "subject_key", pkglog.MaskAccount(key), "verdict", tx.Verdict, "error", err)
		return entity.Transaction{}, pkgerror.NewStorage(err)
	}

	u.metrics.RecordIngested(ctx, string(saved.Verdict))
	u.publish(ctx, saved)

	slog.InfoContext(ctx, "transaction ingested",
		"transaction_id", saved.ID,
		"verdict", saved.Verdict,
		"suspected_fraud", saved.SuspectedFraud,
	)

	return saved, nil
}

func (u *Usecase) publish(ctx context.Context, tx entity.Transaction) {
	if u.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	event := entity.TransactionEvent{
		EventID:       u.id.Generate(),
		CorrelationID: pkglog.CorrelationID(ctx),
		Transaction:   tx,
	}
	if err := u.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "transaction_id", tx.ID, "event_id", event.EventID, "error", err)
	}
}

func failureKind(err error) entity.ScoringFailureKind {
	if err == nil {
		return ""
	}

	var failure *entity.ScoringFailure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return entity.ScoringFailureUnavailable
}
