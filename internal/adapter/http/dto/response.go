package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// ErrorResponse represents an error response. Transaction is set when the
// operation failed after a transaction record was written.
type ErrorResponse struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// RestrictionResponse represents a restriction band.
type RestrictionResponse struct {
	ID         string          `json:"id"`
	AmountFrom decimal.Decimal `json:"amount_from"`
	AmountTo   decimal.Decimal `json:"amount_to"`
	PatternID  *string         `json:"pattern_id,omitempty"`
}

// AccountResponse represents an account. Accounts are addressed by number.
type AccountResponse struct {
	Number         string                `json:"number"`
	OwnerID        string                `json:"owner_id"`
	Type           string                `json:"type"`
	Balance        decimal.Decimal       `json:"balance"`
	Status         string                `json:"status"`
	Restrictions   []RestrictionResponse `json:"restrictions"`
	LastMovementAt *time.Time            `json:"last_movement_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// AccountFromDomain converts a domain account to response.
func AccountFromDomain(a *domain.Account) AccountResponse {
	return AccountResponse{
		Number:         a.Number,
		OwnerID:        a.OwnerID,
		Type:           string(a.Type),
		Balance:        a.Balance,
		Status:         string(a.Status),
		Restrictions:   RestrictionsFromDomain(a.Restrictions),
		LastMovementAt: a.LastMovementAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []AccountResponse {
	result := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// RestrictionsFromDomain converts restrictions to responses.
func RestrictionsFromDomain(rs []domain.Restriction) []RestrictionResponse {
	result := make([]RestrictionResponse, len(rs))
	for i, r := range rs {
		result[i] = RestrictionResponse{
			ID:         r.ID,
			AmountFrom: r.AmountFrom,
			AmountTo:   r.AmountTo,
			PatternID:  r.PatternID,
		}
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Total    int64             `json:"total"`
}

// MovementResponse represents one balance change of an account.
type MovementResponse struct {
	TransactionNumber string          `json:"transaction_number"`
	Delta             decimal.Decimal `json:"delta"`
	CreatedAt         time.Time       `json:"created_at"`
}

// MovementsFromDomain converts movements to responses.
func MovementsFromDomain(ms []*domain.Movement) []MovementResponse {
	result := make([]MovementResponse, len(ms))
	for i, m := range ms {
		result[i] = MovementResponse{
			TransactionNumber: m.TransactionNumber,
			Delta:             m.Delta,
			CreatedAt:         m.CreatedAt,
		}
	}
	return result
}

// TransactionResponse represents a transaction.
type TransactionResponse struct {
	Number                 string           `json:"number"`
	Type                   string           `json:"type"`
	State                  string           `json:"state"`
	Amount                 decimal.Decimal  `json:"amount"`
	OriginNumber           string           `json:"origin_number"`
	DestinationNumber      *string          `json:"destination_number,omitempty"`
	PriorBalance           decimal.Decimal  `json:"prior_balance"`
	SettlementBalance      *decimal.Decimal `json:"settlement_balance,omitempty"`
	RequiresAuthentication bool             `json:"requires_authentication"`
	PatternID              *string          `json:"pattern_id,omitempty"`
	FailureReason          string           `json:"failure_reason,omitempty"`
	Description            string           `json:"description,omitempty"`
	MovementsRecorded      bool             `json:"movements_recorded"`
	AuthorizedAt           *time.Time       `json:"authorized_at,omitempty"`
	SettledAt              *time.Time       `json:"settled_at,omitempty"`
	FailedAt               *time.Time       `json:"failed_at,omitempty"`
	CancelledAt            *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		Number:                 t.Number,
		Type:                   string(t.Type),
		State:                  string(t.State),
		Amount:                 t.Amount,
		OriginNumber:           t.OriginAccountNumber,
		DestinationNumber:      t.DestinationNumber,
		PriorBalance:           t.PriorBalance,
		SettlementBalance:      t.SettlementBalance,
		RequiresAuthentication: t.RequiresAuthentication,
		PatternID:              t.PatternID,
		FailureReason:          t.FailureReason,
		Description:            t.Description,
		MovementsRecorded:      t.MovementsRecorded,
		AuthorizedAt:           t.AuthorizedAt,
		SettledAt:              t.SettledAt,
		FailedAt:               t.FailedAt,
		CancelledAt:            t.CancelledAt,
		CreatedAt:              t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(ts []*domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(ts))
	for i, t := range ts {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// QuoteResponse is the outcome of a validate-only transfer.
type QuoteResponse struct {
	OriginNumber           string          `json:"origin_number"`
	DestinationNumber      string          `json:"destination_number"`
	Amount                 decimal.Decimal `json:"amount"`
	RequiresAuthentication bool            `json:"requires_authentication"`
	PatternID              *string         `json:"pattern_id,omitempty"`
}

// QuoteFromUseCase converts a transfer quote to response.
func QuoteFromUseCase(q *usecase.TransferQuote) QuoteResponse {
	return QuoteResponse{
		OriginNumber:           q.Origin.Number,
		DestinationNumber:      q.Destination.Number,
		Amount:                 q.Amount,
		RequiresAuthentication: q.Verdict.RequiresAuth,
		PatternID:              q.Verdict.PatternID,
	}
}

// ReconciliationResultResponse is the check of one account.
type ReconciliationResultResponse struct {
	AccountNumber     string          `json:"account_number"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ReconciliationResultFromUseCase converts a reconciliation result.
func ReconciliationResultFromUseCase(r *usecase.ReconciliationResult) ReconciliationResultResponse {
	return ReconciliationResultResponse{
		AccountNumber:     r.AccountNumber,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		CheckedAt:         r.LastChecked,
	}
}

// ReconciliationReportResponse is a full reconciliation pass.
type ReconciliationReportResponse struct {
	TotalAccounts      int                            `json:"total_accounts"`
	ReconciledAccounts int                            `json:"reconciled_accounts"`
	Discrepancies      []ReconciliationResultResponse `json:"discrepancies"`
	MovementsRecovered int                            `json:"movements_recovered"`
	PendingExpired     int                            `json:"pending_expired"`
	CheckedAt          time.Time                      `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) ReconciliationReportResponse {
	discrepancies := make([]ReconciliationResultResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationResultFromUseCase(d)
	}
	return ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		MovementsRecovered: r.MovementsRecovered,
		PendingExpired:     r.PendingExpired,
		CheckedAt:          r.CheckedAt,
	}
}
