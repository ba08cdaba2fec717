package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	OwnerID string `json:"owner_id"`
	Type    string `json:"type"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		OwnerID: r.OwnerID,
		Type:    domain.AccountType(strings.ToUpper(strings.TrimSpace(r.Type))),
	}
}

// RestrictionRequest represents a request to add or replace a restriction.
type RestrictionRequest struct {
	AmountFrom decimal.Decimal `json:"amount_from"`
	AmountTo   decimal.Decimal `json:"amount_to"`
	PatternID  *string         `json:"pattern_id,omitempty"`
}

// ToUseCaseInput converts to use case input for the account with id accountID.
func (r *RestrictionRequest) ToUseCaseInput(accountID string) usecase.RestrictionInput {
	return usecase.RestrictionInput{
		AccountID:  accountID,
		AmountFrom: r.AmountFrom,
		AmountTo:   r.AmountTo,
		PatternID:  r.PatternID,
	}
}

// TransferRequest represents a request to move money between two accounts.
type TransferRequest struct {
	OriginNumber      string          `json:"origin_number"`
	DestinationNumber string          `json:"destination_number"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(executorID string) usecase.TransferInput {
	return usecase.TransferInput{
		OriginNumber:      r.OriginNumber,
		DestinationNumber: r.DestinationNumber,
		Amount:            r.Amount,
		ExecutorUserID:    executorID,
		Description:       r.Description,
	}
}

// SingleSidedRequest represents a deposit or a withdrawal.
type SingleSidedRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SingleSidedRequest) ToUseCaseInput(executorID string) usecase.SingleSidedInput {
	return usecase.SingleSidedInput{
		AccountNumber:  r.AccountNumber,
		Amount:         r.Amount,
		ExecutorUserID: executorID,
		Description:    r.Description,
	}
}

// AuthorizeRequest carries the verification of a pending transaction.
type AuthorizeRequest struct {
	VerificationCode string   `json:"verification_code"`
	PatternID        *string  `json:"pattern_id,omitempty"`
	Factors          []string `json:"factors,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AuthorizeRequest) ToUseCaseInput(number, originIP string) usecase.AuthorizeInput {
	return usecase.AuthorizeInput{
		TransactionNumber: number,
		VerificationCode:  r.VerificationCode,
		PatternID:         r.PatternID,
		Factors:           r.Factors,
		OriginIP:          originIP,
	}
}
