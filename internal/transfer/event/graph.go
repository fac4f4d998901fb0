package event

import (
	"context"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkggraph"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

const recordTransferCypher = `
MERGE (s:Account {id: $source})
MERGE (t:Account {id: $target})
MERGE (s)-[r:TRANSFERRED {tx_id: $txId}]->(t)
SET r.amount = $amount,
    r.verdict = $verdict,
    r.risk_score = $riskScore,
    r.suspected_fraud = $suspected,
    r.created_at = $createdAt
`

// GraphRecorder mirrors committed transfers into the account graph the
// scoring service reads from.
type GraphRecorder struct {
	graph pkggraph.Writer
}

func NewGraphRecorder(graph pkggraph.Writer) *GraphRecorder {
	return &GraphRecorder{graph: graph}
}

func (g *GraphRecorder) Handle(ctx context.Context, event entity.TransactionEvent) error {
	tx := event.Transaction
	// an edge needs both ends
	if tx.SourceAccount == "" || tx.TargetAccount == "" {
		return nil
	}

	var riskScore any
	if tx.RiskScore != nil {
		riskScore = *tx.RiskScore
	}

	return g.graph.ExecuteWrite(ctx, recordTransferCypher, map[string]any{
		"source":    tx.SourceAccount,
		"target":    tx.TargetAccount,
		"txId":      tx.ID,
		"amount":    tx.Amount.String(),
		"verdict":   string(tx.Verdict),
		"riskScore": riskScore,
		"suspected": tx.SuspectedFraud,
		"createdAt": tx.CreatedAt,
	})
}
