package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// LogHandler only logs. It is the sink used when nothing else is configured.
type LogHandler struct{}

func (LogHandler) Handle(ctx context.Context, event entity.TransactionEvent) error {
	if event.EventID == "" {
		return errors.New("missing event id")
	}

	tx := event.Transaction
	level := slog.LevelInfo
	if tx.Verdict.NeedsReview() {
		level = slog.LevelWarn
	}

	slog.Log(ctx, level, "transaction committed",
		"event_id", event.EventID,
		"transaction_id", tx.ID,
		"verdict", tx.Verdict,
		"suspected_fraud", tx.SuspectedFraud,
	)
	return nil
}
