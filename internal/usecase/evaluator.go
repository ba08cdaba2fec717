package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// RestrictionEvaluator decides whether an amount on an account needs
// authentication. It fetches the current restriction set from the accounts
// collaborator and applies domain.EvaluateRestrictions.
type RestrictionEvaluator struct {
	accounts AccountService
	timeout  time.Duration
}

// NewRestrictionEvaluator creates a new RestrictionEvaluator.
func NewRestrictionEvaluator(accounts AccountService, timeout time.Duration) *RestrictionEvaluator {
	if timeout <= 0 {
		timeout = DefaultCollaboratorTimeout
	}
	return &RestrictionEvaluator{accounts: accounts, timeout: timeout}
}

// Evaluate returns the verdict for amount on account.
func (e *RestrictionEvaluator) Evaluate(ctx context.Context, account *domain.Account, amount decimal.Decimal) (domain.Verdict, error) {
	restrictions, err := callWithTimeout(ctx, e.timeout, func(ctx context.Context) ([]domain.Restriction, error) {
		return e.accounts.GetAccountRestrictions(ctx, account.ID)
	})
	if err != nil {
		return domain.Verdict{}, err
	}

	return domain.EvaluateRestrictions(restrictions, amount), nil
}
