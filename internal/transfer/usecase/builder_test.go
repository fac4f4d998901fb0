package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgerror"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

func TestBuildTransaction(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2025, 12, 25, 7, 0, 0, 0, loc)

	tx, err := BuildTransaction(entity.TransactionRequest{
		SourceAccount: " A1",
		TargetAccount: "A2",
		Amount:        amountOf("1234567890.123456789"),
	}, now)
	if err != nil {
		t.Fatalf("BuildTransaction() err = %v", err)
	}

	if tx.SourceAccount != " A1" || tx.TargetAccount != "A2" {
		t.Fatalf("accounts not copied verbatim: %q -> %q", tx.SourceAccount, tx.TargetAccount)
	}
	if tx.Amount.String() != "1234567890.123456789" {
		t.Fatalf("amount lost precision: %s", tx.Amount)
	}
	if tx.CreatedAt.Location() != time.UTC || !tx.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created at: %v", tx.CreatedAt)
	}
	if tx.Verdict != entity.VerdictPending || tx.SuspectedFraud || tx.RiskScore != nil {
		t.Fatalf("expected unresolved record, got %+v", tx)
	}
	if tx.ID != "" {
		t.Fatalf("identity must be assigned by storage, got %q", tx.ID)
	}
}

func TestBuildTransactionEdgeCases(t *testing.T) {
	now := time.Now()

	tx, err := BuildTransaction(entity.TransactionRequest{SourceAccount: "A1"}, now)
	if err != nil {
		t.Fatalf("BuildTransaction() err = %v", err)
	}
	if !tx.Amount.Equal(decimal.Zero) {
		t.Fatalf("amount = %s, want 0", tx.Amount)
	}
	if tx.TargetAccount != "" {
		t.Fatalf("target = %q, want empty", tx.TargetAccount)
	}

	tx, err = BuildTransaction(entity.TransactionRequest{SourceAccount: "A1", TargetAccount: "A1", Amount: amountOf("0")}, now)
	if err != nil {
		t.Fatalf("self transfer err = %v", err)
	}
	if subjectKey(tx) != "A1" {
		t.Fatalf("subjectKey() = %q, want A1", subjectKey(tx))
	}

	_, err = BuildTransaction(entity.TransactionRequest{Amount: amountOf("5")}, now)
	var perr *pkgerror.Error
	if !errors.As(err, &perr) || perr.Code() != pkgerror.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestSubjectKey(t *testing.T) {
	tests := []struct {
		source, target, want string
	}{
		{"A1", "A2", "A1"},
		{"", "A2", "A2"},
		{"A1", "", "A1"},
	}

	for _, tt := range tests {
		got := subjectKey(entity.Transaction{SourceAccount: tt.source, TargetAccount: tt.target})
		if got != tt.want {
			t.Fatalf("subjectKey(%q, %q) = %q, want %q", tt.source, tt.target, got, tt.want)
		}
	}
}
