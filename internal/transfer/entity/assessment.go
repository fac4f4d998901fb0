package entity

import "fmt"

// FraudAssessment is what the risk scorer said about one subject.
type FraudAssessment struct {
	SubjectKey string
	RiskScore  float64
	Label      string
}

// ScoringFailure describes why no assessment could be obtained.
type ScoringFailure struct {
	Kind ScoringFailureKind
	Err  error
}

func (f *ScoringFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("risk scoring failed: %s", f.Kind)
	}
	return fmt.Sprintf("risk scoring failed: %s: %v", f.Kind, f.Err)
}

func (f *ScoringFailure) Unwrap() error {
	return f.Err
}
