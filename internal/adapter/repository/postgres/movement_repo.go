package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/postgres/generated"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	queries *generated.Queries
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db generated.DBTX) *MovementRepository {
	return &MovementRepository{
		queries: generated.New(db),
	}
}

// Create appends a movement. A second movement for the same account and
// transaction is ignored and reported with created false.
func (r *MovementRepository) Create(ctx context.Context, movement *domain.Movement) (bool, error) {
	affected, err := r.queries.CreateMovement(ctx, generated.CreateMovementParams{
		ID:                movement.ID,
		AccountID:         movement.AccountID,
		TransactionID:     movement.TransactionID,
		TransactionNumber: movement.TransactionNumber,
		Delta:             decimalToNumeric(movement.Delta),
		CreatedAt:         timeToPgTimestamptz(movement.CreatedAt),
	})
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// ListByAccount lists movements of an account, newest first.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	rows, err := r.queries.ListMovementsByAccount(ctx, generated.ListMovementsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	movements := make([]*domain.Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, &domain.Movement{
			ID:                row.ID,
			AccountID:         row.AccountID,
			TransactionID:     row.TransactionID,
			TransactionNumber: row.TransactionNumber,
			Delta:             numericToDecimal(row.Delta),
			CreatedAt:         row.CreatedAt.Time,
		})
	}

	return movements, nil
}

// SumByAccount adds up every movement delta of an account.
func (r *MovementRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	total, err := r.queries.SumMovementsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}
