package inbound

import (
	"context"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgrouter"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

type uc interface {
	CreateTransaction(ctx context.Context, req entity.TransactionRequest) (entity.Transaction, error)
}

type prober interface {
	Probe(ctx context.Context) error
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, scorerHealth prober) {
	end := &HTTPEndpoint{uc: uc, scorerHealth: scorerHealth}

	r.POST("/api/transactions", end.CreateTransaction)

	r.GET("/health/scorer", end.ScorerHealth)
}
