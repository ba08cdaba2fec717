package postgres

import (
	"context"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/postgres/generated"
	"github.com/iho/gobank/internal/usecase"
)

// RestrictionRepository implements usecase.RestrictionRepository.
type RestrictionRepository struct {
	queries *generated.Queries
}

// NewRestrictionRepository creates a new RestrictionRepository.
func NewRestrictionRepository(db generated.DBTX) *RestrictionRepository {
	return &RestrictionRepository{
		queries: generated.New(db),
	}
}

// ListByAccount returns the restriction set of an account ordered by lower bound.
func (r *RestrictionRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Restriction, error) {
	return listRestrictions(ctx, r.queries, accountID)
}

// ListByAccountTx is ListByAccount inside tx.
func (r *RestrictionRepository) ListByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) ([]domain.Restriction, error) {
	pgxTx := tx.(*Tx).PgxTx()
	return listRestrictions(ctx, generated.New(pgxTx), accountID)
}

// Create stores a new restriction.
func (r *RestrictionRepository) Create(ctx context.Context, tx usecase.Transaction, accountID string, restriction *domain.Restriction) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.CreateRestriction(ctx, generated.CreateRestrictionParams{
		ID:         restriction.ID,
		AccountID:  accountID,
		AmountFrom: decimalToNumeric(restriction.AmountFrom),
		AmountTo:   decimalToNumeric(restriction.AmountTo),
		PatternID:  optionalText(restriction.PatternID),
		CreatedAt:  timeToPgTimestamptz(restriction.CreatedAt),
		UpdatedAt:  timeToPgTimestamptz(restriction.UpdatedAt),
	})
}

// Update replaces the bounds and pattern of a restriction.
func (r *RestrictionRepository) Update(ctx context.Context, tx usecase.Transaction, accountID string, restriction *domain.Restriction) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	affected, err := queries.UpdateRestriction(ctx, generated.UpdateRestrictionParams{
		ID:         restriction.ID,
		AccountID:  accountID,
		AmountFrom: decimalToNumeric(restriction.AmountFrom),
		AmountTo:   decimalToNumeric(restriction.AmountTo),
		PatternID:  optionalText(restriction.PatternID),
		UpdatedAt:  timeToPgTimestamptz(restriction.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrRestrictionNotFound
	}

	return nil
}

// Delete removes a restriction from the account.
func (r *RestrictionRepository) Delete(ctx context.Context, tx usecase.Transaction, accountID, restrictionID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	affected, err := generated.New(pgxTx).DeleteRestriction(ctx, generated.DeleteRestrictionParams{
		ID:        restrictionID,
		AccountID: accountID,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrRestrictionNotFound
	}

	return nil
}

func listRestrictions(ctx context.Context, queries *generated.Queries, accountID string) ([]domain.Restriction, error) {
	rows, err := queries.ListRestrictionsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	restrictions := make([]domain.Restriction, 0, len(rows))
	for _, row := range rows {
		restrictions = append(restrictions, domain.Restriction{
			ID:         row.ID,
			AmountFrom: numericToDecimal(row.AmountFrom),
			AmountTo:   numericToDecimal(row.AmountTo),
			PatternID:  textPtr(row.PatternID),
			CreatedAt:  row.CreatedAt.Time,
			UpdatedAt:  row.UpdatedAt.Time,
		})
	}

	return restrictions, nil
}
