package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxOpenAccountsPerOwner is how many non-cancelled accounts one owner may hold.
const MaxOpenAccountsPerOwner = 2

// AccountNumberLength is the number of digits of an account number.
const AccountNumberLength = 10

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVA"
	AccountStatusBlocked   AccountStatus = "BLOQUEADA"
	AccountStatusInactive  AccountStatus = "INACTIVA"
	AccountStatusCancelled AccountStatus = "CANCELADA"
)

// AccountType distinguishes savings and checking accounts.
type AccountType string

const (
	AccountTypeSavings  AccountType = "AHORRO"
	AccountTypeChecking AccountType = "CORRIENTE"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	return t == AccountTypeSavings || t == AccountTypeChecking
}

// Account represents a bank account holding a balance and its restrictions.
type Account struct {
	ID             string
	Number         string
	OwnerID        string
	Type           AccountType
	Balance        decimal.Decimal
	Status         AccountStatus
	Restrictions   []Restriction
	LastMovementAt *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive reports whether the account can take part in money movement.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDelta returns the balance after applying delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}

// ValidateCancel checks the cancellation precondition.
func (a *Account) ValidateCancel() error {
	if a.Status == AccountStatusCancelled {
		return ErrAccountNotActive
	}
	if a.Balance.IsPositive() {
		return ErrPositiveBalance
	}
	return nil
}

// CanChangeStatus reports whether the account may move to status.
// Cancelled accounts never leave that status.
func (a *Account) CanChangeStatus(status AccountStatus) bool {
	if a.Status == AccountStatusCancelled {
		return false
	}
	switch status {
	case AccountStatusActive, AccountStatusBlocked, AccountStatusInactive:
		return a.Status != status
	default:
		return false
	}
}
