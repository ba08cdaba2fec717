package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/postgres/generated"
	"github.com/iho/gobank/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		Number:    account.Number,
		OwnerID:   account.OwnerID,
		Type:      string(account.Type),
		Balance:   decimalToNumeric(account.Balance),
		Status:    string(account.Status),
		Version:   account.Version,
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, accountError(err)
	}

	return rowToAccount(row), nil
}

// GetByNumber retrieves an account by its 10 digit number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByNumber(ctx, number)
	if err != nil {
		return nil, accountError(err)
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		return nil, accountError(err)
	}

	return rowToAccount(row), nil
}

// NumberExists reports whether an account already uses number.
func (r *AccountRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	return r.queries.AccountNumberExists(ctx, number)
}

// LockOwner takes a transaction scoped advisory lock on the owner so that
// concurrent account openings for the same owner are counted one at a time.
func (r *AccountRepository) LockOwner(ctx context.Context, tx usecase.Transaction, ownerID string) error {
	pgxTx := tx.(*Tx).PgxTx()
	return generated.New(pgxTx).LockOwner(ctx, ownerID)
}

// CountOpenByOwner counts the non-cancelled accounts of an owner.
func (r *AccountRepository) CountOpenByOwner(ctx context.Context, tx usecase.Transaction, ownerID string) (int, error) {
	pgxTx := tx.(*Tx).PgxTx()

	count, err := generated.New(pgxTx).CountOpenAccountsByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// ListByOwner lists every account of an owner.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// AdjustBalance applies delta in a single conditional UPDATE. When the update
// does not apply, the row is read again to tell a missing account from a
// cancelled one or a short balance.
func (r *AccountRepository) AdjustBalance(
	ctx context.Context,
	id string,
	delta decimal.Decimal,
	requireSufficientFunds bool,
	at time.Time,
) (*domain.Account, error) {
	row, err := r.queries.AdjustAccountBalance(ctx, generated.AdjustAccountBalanceParams{
		Delta:                  decimalToNumeric(delta),
		MovedAt:                timeToPgTimestamptz(at),
		ID:                     id,
		RequireSufficientFunds: requireSufficientFunds,
	})
	if err == nil {
		return rowToAccount(row), nil
	}
	if isCheckViolation(err) {
		return nil, domain.ErrInsufficientFunds
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.AccountStatusCancelled {
		return nil, domain.ErrAccountNotActive
	}

	return nil, domain.ErrInsufficientFunds
}

// UpdateStatus sets the account status.
func (r *AccountRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.AccountStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	affected, err := generated.New(pgxTx).UpdateAccountStatus(ctx, generated.UpdateAccountStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func accountError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	return err
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		Number:         row.Number,
		OwnerID:        row.OwnerID,
		Type:           domain.AccountType(row.Type),
		Balance:        numericToDecimal(row.Balance),
		Status:         domain.AccountStatus(row.Status),
		LastMovementAt: timestamptzPtr(row.LastMovementAt),
		Version:        row.Version,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
