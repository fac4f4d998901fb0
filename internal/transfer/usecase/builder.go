package usecase

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgerror"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// BuildTransaction turns a request into a pending record. Accounts are copied
// verbatim and a missing amount becomes zero. It only fails when neither
// account is present.
func BuildTransaction(req entity.TransactionRequest, now time.Time) (entity.Transaction, error) {
	if req.SourceAccount == "" && req.TargetAccount == "" {
		return entity.Transaction{}, pkgerror.NewInvalidInput(errors.New("sourceAccount or targetAccount is required"))
	}

	amount := decimal.Zero
	if req.Amount != nil {
		amount = *req.Amount
	}

	return entity.Transaction{
		SourceAccount:  req.SourceAccount,
		TargetAccount:  req.TargetAccount,
		Amount:         amount,
		CreatedAt:      now.UTC(),
		SuspectedFraud: false,
		RiskScore:      nil,
		Verdict:        entity.VerdictPending,
	}, nil
}

// subjectKey is the identifier sent to the scorer: the paying account, or the
// receiving one when the payer is unknown.
func subjectKey(tx entity.Transaction) string {
	if tx.SourceAccount != "" {
		return tx.SourceAccount
	}
	return tx.TargetAccount
}
