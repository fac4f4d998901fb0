package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnresolvedVerdict is returned by gateways asked to store a PENDING record.
var ErrUnresolvedVerdict = errors.New("transaction verdict is not resolved")

// TransactionRequest is an inbound funds-transfer request. A nil Amount means
// the caller did not send one.
type TransactionRequest struct {
	SourceAccount string
	TargetAccount string
	Amount        *decimal.Decimal
}

type Transaction struct {
	ID            string
	SourceAccount string
	TargetAccount string
	Amount        decimal.Decimal
	CreatedAt     time.Time

	SuspectedFraud bool
	RiskScore      *float64 // nil when the scorer could not be reached
	Verdict        Verdict

	// Signals is attached by the enrichment store before the record is
	// persisted, and stays nil when nothing is known about the account.
	Signals *Signals
}

// Resolved reports whether the record may be persisted or returned.
func (t Transaction) Resolved() bool {
	return t.Verdict.Terminal()
}

// Signals are descriptive graph features produced by the analytics pipeline.
type Signals struct {
	OutDegree         int      `json:"out_degree"`
	RiskRatio         float64  `json:"risk_ratio"`
	PopulationSize    string   `json:"population_size"`
	JA3Detected       bool     `json:"ja3_detected"`
	LinkedAccounts    []string `json:"linked_accounts"`
	UnsupervisedScore float64  `json:"unsupervised_score"`
}
