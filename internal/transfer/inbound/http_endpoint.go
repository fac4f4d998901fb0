package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgerror"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

const maxBodySize = 1 << 20

type HTTPEndpoint struct {
	uc           uc
	scorerHealth prober
}

func (h *HTTPEndpoint) CreateTransaction(ctx context.Context, r *http.Request) (any, error) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	if req.Amount != nil && req.Amount.IsNegative() {
		return nil, pkgerror.NewInvalidInput(errors.New("amount must not be negative"))
	}

	tx, err := h.uc.CreateTransaction(ctx, entity.TransactionRequest{
		SourceAccount: req.SourceAccount,
		TargetAccount: req.TargetAccount,
		Amount:        req.Amount,
	})
	if err != nil {
		return nil, err
	}

	return toTransactionResponse(tx), nil
}

func (h *HTTPEndpoint) ScorerHealth(ctx context.Context, r *http.Request) (any, error) {
	if h.scorerHealth == nil {
		return ScorerHealthResponse{Status: ScorerStatusUnavailable}, nil
	}

	if err := h.scorerHealth.Probe(ctx); err != nil {
		slog.WarnContext(ctx, "scorer health probe failed", "error", err)
		return ScorerHealthResponse{Status: ScorerStatusUnavailable}, nil
	}

	return ScorerHealthResponse{Status: ScorerStatusUp}, nil
}

func toTransactionResponse(tx entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID,
		SourceAccount:  tx.SourceAccount,
		TargetAccount:  tx.TargetAccount,
		Amount:         json.Number(tx.Amount.String()),
		SuspectedFraud: tx.SuspectedFraud,
		RiskScore:      tx.RiskScore,
		Verdict:        tx.Verdict,
		CreatedAt:      tx.CreatedAt,
		Signals:        tx.Signals,
	}
}
