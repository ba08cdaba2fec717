package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// TransactionUseCase is the transaction ledger. It owns transaction records
// and every state change, and writes an outbox event with each change.
type TransactionUseCase struct {
	txManager  TransactionManager
	txRepo     TransactionRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	numbers    NumberGenerator
	retrier    Retrier
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	numbers NumberGenerator,
	retrier Retrier,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:  txManager,
		txRepo:     txRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		numbers:    numbers,
		retrier:    retrier,
	}
}

// CreateTransactionInput represents input for recording a transaction.
type CreateTransactionInput struct {
	Type           domain.TransactionType
	Amount         decimal.Decimal
	Origin         *domain.Account
	Destination    *domain.Account
	Verdict        domain.Verdict
	ExecutorUserID string
	Description    string
}

// Create records a new transaction. It starts PENDIENTE when the verdict
// requires authentication and AUTORIZADA otherwise.
func (uc *TransactionUseCase) Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:                     uc.idGen.Generate(),
		Number:                 uc.numbers.TransactionNumber(now),
		Type:                   input.Type,
		Amount:                 input.Amount,
		OriginAccountID:        input.Origin.ID,
		OriginAccountNumber:    input.Origin.Number,
		PriorBalance:           input.Origin.Balance,
		State:                  domain.InitialState(input.Verdict.RequiresAuth),
		RequiresAuthentication: input.Verdict.RequiresAuth,
		PatternID:              input.Verdict.PatternID,
		ExecutorUserID:         input.ExecutorUserID,
		Description:            input.Description,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if input.Verdict.Restriction != nil {
		restrictionID := input.Verdict.Restriction.ID
		txn.RestrictionID = &restrictionID
	}
	if input.Destination != nil {
		destID, destNumber := input.Destination.ID, input.Destination.Number
		txn.DestinationAccountID = &destID
		txn.DestinationNumber = &destNumber
	}
	if txn.State == domain.TransactionStateAuthorized {
		txn.AuthorizedAt = &now
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	err := uc.retrier.Retry(ctx, func() error {
		return inTx(ctx, uc.txManager, func(ctx context.Context, tx Transaction) error {
			if err := uc.txRepo.Create(ctx, tx, txn); err != nil {
				return err
			}
			return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen,
				domain.AggregateTypeTransaction, txn.ID, domain.EventTypeTransactionCreated,
				domain.NewTransactionEventPayload(txn, now), now))
		})
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// Get retrieves a transaction by ID.
func (uc *TransactionUseCase) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// GetByNumber retrieves a transaction by its TRX number.
func (uc *TransactionUseCase) GetByNumber(ctx context.Context, number string) (*domain.Transaction, error) {
	return uc.txRepo.GetByNumber(ctx, number)
}

// ListByAccount lists transactions where the account is origin or destination.
func (uc *TransactionUseCase) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.txRepo.ListByAccount(ctx, accountID, limit, offset)
}

// Transition moves txn to the next state. The write is a compare-and-set on
// txn.State, so two callers racing from the same state cannot both win.
// mutate may set the fields that go with the new state. txn is not modified.
func (uc *TransactionUseCase) Transition(
	ctx context.Context,
	txn *domain.Transaction,
	next domain.TransactionState,
	mutate func(*domain.Transaction),
) (*domain.Transaction, error) {
	if err := txn.CanTransition(next); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := *txn
	updated.State = next
	updated.UpdatedAt = now

	switch next {
	case domain.TransactionStateAuthorized:
		updated.AuthorizedAt = &now
	case domain.TransactionStateCompleted:
		updated.SettledAt = &now
	case domain.TransactionStateFailed:
		updated.FailedAt = &now
	case domain.TransactionStateCancelled:
		updated.CancelledAt = &now
	}

	if mutate != nil {
		mutate(&updated)
	}

	err := uc.retrier.Retry(ctx, func() error {
		return inTx(ctx, uc.txManager, func(ctx context.Context, tx Transaction) error {
			if err := uc.txRepo.UpdateState(ctx, tx, &updated, txn.State); err != nil {
				return err
			}
			return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen,
				domain.AggregateTypeTransaction, updated.ID, domain.EventTypeForState(next),
				domain.NewTransactionEventPayload(&updated, now), now))
		})
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// MarkMovementsRecorded flags a completed transaction as fully reconciled.
func (uc *TransactionUseCase) MarkMovementsRecorded(ctx context.Context, id string) error {
	return uc.txRepo.MarkMovementsRecorded(ctx, id, time.Now().UTC())
}

// ListUnreconciled lists completed transactions whose movements were not recorded.
func (uc *TransactionUseCase) ListUnreconciled(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	return uc.txRepo.ListUnreconciled(ctx, limit)
}

// ListPendingBefore lists PENDIENTE transactions created before the cutoff.
func (uc *TransactionUseCase) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*domain.Transaction, error) {
	return uc.txRepo.ListPendingBefore(ctx, before, limit)
}
