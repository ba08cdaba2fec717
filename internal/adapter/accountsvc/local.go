// Package accountsvc adapts the account store to the usecase.AccountService
// contract when the orchestrator and the accounts live in one process.
package accountsvc

import (
	"context"
	"strings"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// Local calls the account store in-process.
type Local struct {
	accounts *usecase.AccountUseCase
}

// NewLocal creates a new Local account service.
func NewLocal(accounts *usecase.AccountUseCase) *Local {
	return &Local{accounts: accounts}
}

// FindAccountByNumber implements usecase.AccountService.
func (l *Local) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return l.accounts.GetAccountByNumber(ctx, number)
}

// FindAccountByID implements usecase.AccountService.
func (l *Local) FindAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	return l.accounts.GetAccount(ctx, id)
}

// AdjustAccountBalance implements usecase.AccountService.
func (l *Local) AdjustAccountBalance(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.Account, error) {
	return l.accounts.AdjustBalance(ctx, input)
}

// RecordAccountMovement implements usecase.AccountService.
func (l *Local) RecordAccountMovement(ctx context.Context, input usecase.RecordMovementInput) error {
	return l.accounts.RecordMovement(ctx, input)
}

// GetAccountRestrictions implements usecase.AccountService.
func (l *Local) GetAccountRestrictions(ctx context.Context, accountID string) ([]domain.Restriction, error) {
	return l.accounts.GetRestrictions(ctx, accountID)
}

// AnyOwner is the owner directory used when no users service is reachable:
// every non-blank owner id exists.
type AnyOwner struct{}

// OwnerExists implements usecase.OwnerDirectory.
func (AnyOwner) OwnerExists(_ context.Context, ownerID string) (bool, error) {
	return strings.TrimSpace(ownerID) != "", nil
}

// PatternsUnavailable is the pattern validator used when pattern validation
// is switched off. Transactions that need a pattern stay PENDIENTE.
type PatternsUnavailable struct{}

// ValidatePattern implements usecase.PatternValidator.
func (PatternsUnavailable) ValidatePattern(_ context.Context, patternID string, _ []string) (*usecase.PatternResult, error) {
	return nil, domain.Wrapf(domain.ErrCollaboratorUnavailable, "pattern validation disabled, cannot check %s", patternID)
}
