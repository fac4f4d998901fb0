package entity

type Verdict string

const (
	VerdictPending  Verdict = "PENDING"
	VerdictApproved Verdict = "APPROVED"
	VerdictFlagged  Verdict = "FLAGGED"
	VerdictUnknown  Verdict = "UNKNOWN"
)

// Terminal reports whether the verdict is a resolved outcome.
func (v Verdict) Terminal() bool {
	switch v {
	case VerdictApproved, VerdictFlagged, VerdictUnknown:
		return true
	default:
		return false
	}
}

// NeedsReview reports whether the transaction has to be looked at by an analyst.
func (v Verdict) NeedsReview() bool {
	return v == VerdictFlagged || v == VerdictUnknown
}

type ScoringFailureKind string

const (
	ScoringFailureTimeout     ScoringFailureKind = "TIMEOUT"
	ScoringFailureUnavailable ScoringFailureKind = "UNAVAILABLE"
	ScoringFailureMalformed   ScoringFailureKind = "MALFORMED"
)
