package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/postgres/generated"
	"github.com/iho/gobank/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{
		queries: generated.New(db),
	}
}

// Create records a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	err := queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                     txn.ID,
		Number:                 txn.Number,
		Type:                   string(txn.Type),
		Amount:                 decimalToNumeric(txn.Amount),
		OriginAccountID:        txn.OriginAccountID,
		OriginAccountNumber:    txn.OriginAccountNumber,
		DestinationAccountID:   optionalText(txn.DestinationAccountID),
		DestinationNumber:      optionalText(txn.DestinationNumber),
		PriorBalance:           decimalToNumeric(txn.PriorBalance),
		State:                  string(txn.State),
		RequiresAuthentication: txn.RequiresAuthentication,
		RestrictionID:          optionalText(txn.RestrictionID),
		PatternID:              optionalText(txn.PatternID),
		ExecutorUserID:         txn.ExecutorUserID,
		Description:            txn.Description,
		AuthorizedAt:           optionalTimestamptz(txn.AuthorizedAt),
		CreatedAt:              timeToPgTimestamptz(txn.CreatedAt),
		UpdatedAt:              timeToPgTimestamptz(txn.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.Wrapf(domain.ErrInvalidTransaction, "transaction number %s already used", txn.Number)
	}

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, transactionError(err)
	}

	return rowToTransaction(row), nil
}

// GetByNumber retrieves a transaction by its TRX number.
func (r *TransactionRepository) GetByNumber(ctx context.Context, number string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByNumber(ctx, number)
	if err != nil {
		return nil, transactionError(err)
	}

	return rowToTransaction(row), nil
}

// UpdateState writes the mutable fields of txn if the stored state is still from.
func (r *TransactionRepository) UpdateState(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction, from domain.TransactionState) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	affected, err := queries.UpdateTransactionState(ctx, generated.UpdateTransactionStateParams{
		State:             string(txn.State),
		SettlementBalance: optionalNumeric(txn.SettlementBalance),
		FailureReason:     txn.FailureReason,
		VerificationCode:  txn.VerificationCode,
		MovementsRecorded: txn.MovementsRecorded,
		AuthorizedAt:      optionalTimestamptz(txn.AuthorizedAt),
		SettledAt:         optionalTimestamptz(txn.SettledAt),
		FailedAt:          optionalTimestamptz(txn.FailedAt),
		CancelledAt:       optionalTimestamptz(txn.CancelledAt),
		UpdatedAt:         timeToPgTimestamptz(txn.UpdatedAt),
		ID:                txn.ID,
		FromState:         string(from),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, txn.ID); err != nil {
			return err
		}
		return domain.ErrStaleTransaction
	}

	return nil
}

// MarkMovementsRecorded flags the movements of a transaction as written.
func (r *TransactionRepository) MarkMovementsRecorded(ctx context.Context, id string, updatedAt time.Time) error {
	affected, err := r.queries.MarkMovementsRecorded(ctx, generated.MarkMovementsRecordedParams{
		ID:        id,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByAccount lists transactions where the account is origin or destination.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountID: accountID,
		RowLimit:  int32(limit),
		RowOffset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListUnreconciled lists COMPLETADA transactions still missing movements.
func (r *TransactionRepository) ListUnreconciled(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListUnreconciledTransactions(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListPendingBefore lists PENDIENTE transactions created before the cutoff.
func (r *TransactionRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListPendingTransactionsBefore(ctx, generated.ListPendingTransactionsBeforeParams{
		CreatedAt: timeToPgTimestamptz(before),
		Limit:     int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

func transactionError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTransactionNotFound
	}
	return err
}

func rowsToTransactions(rows []generated.Transaction) []*domain.Transaction {
	txns := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, rowToTransaction(row))
	}
	return txns
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:                     row.ID,
		Number:                 row.Number,
		Type:                   domain.TransactionType(row.Type),
		Amount:                 numericToDecimal(row.Amount),
		OriginAccountID:        row.OriginAccountID,
		OriginAccountNumber:    row.OriginAccountNumber,
		DestinationAccountID:   textPtr(row.DestinationAccountID),
		DestinationNumber:      textPtr(row.DestinationNumber),
		PriorBalance:           numericToDecimal(row.PriorBalance),
		SettlementBalance:      numericPtr(row.SettlementBalance),
		State:                  domain.TransactionState(row.State),
		RequiresAuthentication: row.RequiresAuthentication,
		RestrictionID:          textPtr(row.RestrictionID),
		PatternID:              textPtr(row.PatternID),
		FailureReason:          row.FailureReason,
		VerificationCode:       row.VerificationCode,
		ExecutorUserID:         row.ExecutorUserID,
		Description:            row.Description,
		MovementsRecorded:      row.MovementsRecorded,
		AuthorizedAt:           timestamptzPtr(row.AuthorizedAt),
		SettledAt:              timestamptzPtr(row.SettledAt),
		FailedAt:               timestamptzPtr(row.FailedAt),
		CancelledAt:            timestamptzPtr(row.CancelledAt),
		CreatedAt:              row.CreatedAt.Time,
		UpdatedAt:              row.UpdatedAt.Time,
	}
}
