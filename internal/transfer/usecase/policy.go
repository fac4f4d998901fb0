package usecase

import (
	"math"

	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// DefaultRiskThreshold is the score above which a transfer is flagged.
const DefaultRiskThreshold = 0.75

// Policy maps a scoring outcome to a verdict. Scorer failures are treated as
// suspicious (fail-closed).
type Policy struct {
	threshold float64
}

// NewPolicy returns a policy flagging scores strictly above threshold. Values
// outside (0, 1] fall back to DefaultRiskThreshold.
func NewPolicy(threshold float64) Policy {
	if math.IsNaN(threshold) || threshold <= 0 || threshold > 1 {
		threshold = DefaultRiskThreshold
	}
	return Policy{threshold: threshold}
}

// Threshold returns the effective flagging threshold.
func (p Policy) Threshold() float64 {
	if p.threshold == 0 {
		return DefaultRiskThreshold
	}
	return p.threshold
}

// Resolution is the verdict half of a transaction record.
type Resolution struct {
	SuspectedFraud bool
	RiskScore      *float64
	Verdict        entity.Verdict
}

// Resolve is pure: the same inputs always give the same resolution.
func (p Policy) Resolve(assessment entity.FraudAssessment, scoringErr error) Resolution {
	if scoringErr != nil {
		return Resolution{
			SuspectedFraud: true,
			RiskScore:      nil,
			Verdict:        entity.VerdictUnknown,
		}
	}

	score := assessment.RiskScore
	if score > p.Threshold() {
		return Resolution{SuspectedFraud: true, RiskScore: &score, Verdict: entity.VerdictFlagged}
	}

	return Resolution{SuspectedFraud: false, RiskScore: &score, Verdict: entity.VerdictApproved}
}

func (r Resolution) applyTo(tx *entity.Transaction) {
	tx.SuspectedFraud = r.SuspectedFraud
	tx.RiskScore = r.RiskScore
	tx.Verdict = r.Verdict
}
