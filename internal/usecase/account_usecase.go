package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/metrics"
)

// AccountUseCase is the account store: accounts, balances, movements and
// restrictions.
type AccountUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	restrictionRepo RestrictionRepository
	movementRepo    MovementRepository
	outboxRepo      OutboxRepository
	owners          OwnerDirectory
	idGen           IDGenerator
	numbers         NumberGenerator
	retrier         Retrier
	metrics         *metrics.Metrics
	ownerTimeout    time.Duration
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	restrictionRepo RestrictionRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	owners OwnerDirectory,
	idGen IDGenerator,
	numbers NumberGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		restrictionRepo: restrictionRepo,
		movementRepo:    movementRepo,
		outboxRepo:      outboxRepo,
		owners:          owners,
		idGen:           idGen,
		numbers:         numbers,
		retrier:         retrier,
		metrics:         metrics,
		ownerTimeout:    DefaultCollaboratorTimeout,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID string
	Type    domain.AccountType
}

// CreateAccount opens an ACTIVA account with a zero balance for an existing owner.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return nil, domain.ErrOwnerNotFound
	}
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidAccountType
	}

	exists, err := callWithTimeout(ctx, uc.ownerTimeout, func(ctx context.Context) (bool, error) {
		return uc.owners.OwnerExists(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrOwnerNotFound
	}

	number, err := uc.drawAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Number:    number,
		OwnerID:   ownerID,
		Type:      input.Type,
		Balance:   decimal.Zero,
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = uc.retrier.Retry(ctx, func() error {
		return inTx(ctx, uc.txManager, func(ctx context.Context, tx Transaction) error {
			if err := uc.accountRepo.LockOwner(ctx, tx, ownerID); err != nil {
				return err
			}

			open, err := uc.accountRepo.CountOpenByOwner(ctx, tx, ownerID)
			if err != nil {
				return err
			}
			if open >= domain.MaxOpenAccountsPerOwner {
				return domain.ErrAccountLimitExceeded
			}

			if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
				return err
			}

			return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen,
				domain.AggregateTypeAccount, account.ID, domain.EventTypeAccountCreated,
				map[string]any{
					"account_id": account.ID,
					"number":     account.Number,
					"owner_id":   account.OwnerID,
					"type":       string(account.Type),
				}, now))
		})
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

func (uc *AccountUseCase) drawAccountNumber(ctx context.Context) (string, error) {
	for range MaxAccountNumberAttempts {
		number := uc.numbers.AccountNumber()
		taken, err := uc.accountRepo.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}

	return "", domain.ErrAccountNumberExhausted
}

// GetAccount retrieves an account by ID with its restrictions.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return uc.withRestrictions(ctx, account)
}

// GetAccountByNumber retrieves an account by its 10 digit number with its restrictions.
func (uc *AccountUseCase) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	if err := domain.ValidateAccountNumber(number); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	return uc.withRestrictions(ctx, account)
}

func (uc *AccountUseCase) withRestrictions(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	restrictions, err := uc.restrictionRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	account.Restrictions = restrictions
	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// ListByOwner lists every account of an owner, cancelled ones included.
func (uc *AccountUseCase) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	return uc.accountRepo.ListByOwner(ctx, ownerID)
}

// AdjustBalance applies a signed delta to the balance and stamps the movement time.
func (uc *AccountUseCase) AdjustBalance(ctx context.Context, input AdjustBalanceInput) (*domain.Account, error) {
	if input.Delta.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateScale(input.Delta); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.AdjustBalance(ctx, input.AccountID, input.Delta, input.RequireSufficientFunds, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		op := "credit"
		if input.Delta.IsNegative() {
			op = "debit"
		}
		uc.metrics.AccountOperations.WithLabelValues(op).Inc()
	}

	return account, nil
}

// RecordMovement appends a movement for a settled transaction. Recording the
// same account and transaction twice is a no-op.
func (uc *AccountUseCase) RecordMovement(ctx context.Context, input RecordMovementInput) error {
	if input.AccountID == "" || input.TransactionID == "" {
		return domain.Wrapf(domain.ErrInvalidTransaction, "movement needs an account and a transaction")
	}

	_, err := uc.movementRepo.Create(ctx, &domain.Movement{
		ID:                uc.idGen.Generate(),
		AccountID:         input.AccountID,
		TransactionID:     input.TransactionID,
		TransactionNumber: input.TransactionNumber,
		Delta:             input.Delta,
		CreatedAt:         time.Now().UTC(),
	})
	return err
}

// ListMovements lists the movement log of an account, newest first.
func (uc *AccountUseCase) ListMovements(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	return uc.movementRepo.ListByAccount(ctx, accountID, limit, offset)
}

// RestrictionInput describes a restriction band.
type RestrictionInput struct {
	AccountID  string
	AmountFrom decimal.Decimal
	AmountTo   decimal.Decimal
	PatternID  *string
}

// AddRestriction registers a new band on the account.
func (uc *AccountUseCase) AddRestriction(ctx context.Context, input RestrictionInput) (*domain.Account, error) {
	now := time.Now().UTC()
	restriction := domain.Restriction{
		ID:         uc.idGen.Generate(),
		AmountFrom: input.AmountFrom,
		AmountTo:   input.AmountTo,
		PatternID:  input.PatternID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := uc.withLockedRestrictions(ctx, input.AccountID, func(ctx context.Context, tx Transaction, existing []domain.Restriction) error {
		if err := domain.CheckRestrictionFits(existing, restriction, ""); err != nil {
			return err
		}
		return uc.restrictionRepo.Create(ctx, tx, input.AccountID, &restriction)
	})
	if err != nil {
		return nil, err
	}

	return uc.GetAccount(ctx, input.AccountID)
}

// UpdateRestriction replaces the bounds and pattern of an existing band.
func (uc *AccountUseCase) UpdateRestriction(ctx context.Context, restrictionID string, input RestrictionInput) (*domain.Account, error) {
	err := uc.withLockedRestrictions(ctx, input.AccountID, func(ctx context.Context, tx Transaction, existing []domain.Restriction) error {
		var current *domain.Restriction
		for i := range existing {
			if existing[i].ID == restrictionID {
				current = &existing[i]
				break
			}
		}
		if current == nil {
			return domain.ErrRestrictionNotFound
		}

		updated := *current
		updated.AmountFrom = input.AmountFrom
		updated.AmountTo = input.AmountTo
		updated.PatternID = input.PatternID
		updated.UpdatedAt = time.Now().UTC()

		if err := domain.CheckRestrictionFits(existing, updated, restrictionID); err != nil {
			return err
		}
		return uc.restrictionRepo.Update(ctx, tx, input.AccountID, &updated)
	})
	if err != nil {
		return nil, err
	}

	return uc.GetAccount(ctx, input.AccountID)
}

// RemoveRestriction deletes a band from the account.
func (uc *AccountUseCase) RemoveRestriction(ctx context.Context, accountID, restrictionID string) (*domain.Account, error) {
	err := uc.withLockedRestrictions(ctx, accountID, func(ctx context.Context, tx Transaction, _ []domain.Restriction) error {
		return uc.restrictionRepo.Delete(ctx, tx, accountID, restrictionID)
	})
	if err != nil {
		return nil, err
	}

	return uc.GetAccount(ctx, accountID)
}

// withLockedRestrictions runs fn with the account row locked so that the
// overlap check and the write cannot interleave with another change.
func (uc *AccountUseCase) withLockedRestrictions(
	ctx context.Context,
	accountID string,
	fn func(ctx context.Context, tx Transaction, existing []domain.Restriction) error,
) error {
	return uc.retrier.Retry(ctx, func() error {
		return inTx(ctx, uc.txManager, func(ctx context.Context, tx Transaction) error {
			account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
			if err != nil {
				return err
			}
			if account.Status == domain.AccountStatusCancelled {
				return domain.ErrAccountNotActive
			}

			existing, err := uc.restrictionRepo.ListByAccountTx(ctx, tx, accountID)
			if err != nil {
				return err
			}

			return fn(ctx, tx, existing)
		})
	})
}

// GetRestrictions returns the restriction set of an account.
func (uc *AccountUseCase) GetRestrictions(ctx context.Context, accountID string) ([]domain.Restriction, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return uc.restrictionRepo.ListByAccount(ctx, accountID)
}

// CancelAccount soft-deletes an account with a zero balance.
func (uc *AccountUseCase) CancelAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.changeStatus(ctx, id, domain.AccountStatusCancelled)
}

// BlockAccount stops an account from taking part in money movement.
func (uc *AccountUseCase) BlockAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.changeStatus(ctx, id, domain.AccountStatusBlocked)
}

// ActivateAccount returns a blocked or inactive account to ACTIVA.
func (uc *AccountUseCase) ActivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.changeStatus(ctx, id, domain.AccountStatusActive)
}

func (uc *AccountUseCase) changeStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error) {
	var account *domain.Account

	err := uc.retrier.Retry(ctx, func() error {
		return inTx(ctx, uc.txManager, func(ctx context.Context, tx Transaction) error {
			current, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
			if err != nil {
				return err
			}

			if status == domain.AccountStatusCancelled {
				if err := current.ValidateCancel(); err != nil {
					return err
				}
			} else if !current.CanChangeStatus(status) {
				return domain.Wrapf(domain.ErrInvalidStatusTransition, "%s -> %s", current.Status, status)
			}

			now := time.Now().UTC()
			if err := uc.accountRepo.UpdateStatus(ctx, tx, id, status, now); err != nil {
				return err
			}

			previous := current.Status
			current.Status = status
			current.UpdatedAt = now
			account = current

			return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen,
				domain.AggregateTypeAccount, id, domain.EventTypeAccountStatusChanged,
				map[string]any{
					"account_id": id,
					"number":     current.Number,
					"from":       string(previous),
					"to":         string(status),
				}, now))
		})
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("status_" + strings.ToLower(string(status))).Inc()
	}

	return account, nil
}
