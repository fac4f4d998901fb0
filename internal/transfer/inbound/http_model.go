package inbound

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// CreateTransactionRequest accepts amount as a JSON number or a numeric string.
type CreateTransactionRequest struct {
	SourceAccount string           `json:"sourceAccount"`
	TargetAccount string           `json:"targetAccount"`
	Amount        *decimal.Decimal `json:"amount"`
}

type TransactionResponse struct {
	ID             string          `json:"id"`
	SourceAccount  string          `json:"sourceAccount"`
	TargetAccount  string          `json:"targetAccount"`
	Amount         json.Number     `json:"amount"`
	SuspectedFraud bool            `json:"suspectedFraud"`
	RiskScore      *float64        `json:"riskScore"`
	Verdict        entity.Verdict  `json:"verdict"`
	CreatedAt      time.Time       `json:"createdAt"`
	Signals        *entity.Signals `json:"signals,omitempty"`
}

func (TransactionResponse) StatusCode() int {
	return http.StatusCreated
}

func (TransactionResponse) Message() string {
	return "transaction created"
}

type ScorerStatus string

const (
	ScorerStatusUp          ScorerStatus = "UP"
	ScorerStatusUnavailable ScorerStatus = "UNAVAILABLE"
)

type ScorerHealthResponse struct {
	Status ScorerStatus `json:"status"`
}

func (r ScorerHealthResponse) StatusCode() int {
	if r.Status != ScorerStatusUp {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
