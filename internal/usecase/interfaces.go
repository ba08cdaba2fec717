package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	// LockOwner serializes account creation for one owner until tx ends.
	LockOwner(ctx context.Context, tx Transaction, ownerID string) error
	CountOpenByOwner(ctx context.Context, tx Transaction, ownerID string) (int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	// AdjustBalance applies delta atomically. With requireSufficientFunds the
	// update only applies when the resulting balance is not negative, and
	// domain.ErrInsufficientFunds is returned otherwise.
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal, requireSufficientFunds bool, at time.Time) (*domain.Account, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.AccountStatus, updatedAt time.Time) error
}

// RestrictionRepository defines data access for account restrictions.
type RestrictionRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Restriction, error)
	ListByAccountTx(ctx context.Context, tx Transaction, accountID string) ([]domain.Restriction, error)
	Create(ctx context.Context, tx Transaction, accountID string, restriction *domain.Restriction) error
	Update(ctx context.Context, tx Transaction, accountID string, restriction *domain.Restriction) error
	Delete(ctx context.Context, tx Transaction, accountID, restrictionID string) error
}

// MovementRepository defines data access for the per-account movement log.
type MovementRepository interface {
	// Create appends the movement unless one exists for the same account and
	// transaction. created is false in that case.
	Create(ctx context.Context, movement *domain.Movement) (created bool, err error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error)
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// TransactionRepository defines data access for transaction records.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByNumber(ctx context.Context, number string) (*domain.Transaction, error)
	// UpdateState persists txn only if the stored state still equals from.
	// It returns domain.ErrStaleTransaction when another caller won.
	UpdateState(ctx context.Context, tx Transaction, txn *domain.Transaction, from domain.TransactionState) error
	MarkMovementsRecorded(ctx context.Context, id string, updatedAt time.Time) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	ListUnreconciled(ctx context.Context, limit int) ([]*domain.Transaction, error)
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*domain.Transaction, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	// GetUnpublished returns pending events that failed fewer than maxAttempts times.
	GetUnpublished(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs op on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// NumberGenerator draws human-facing account and transaction numbers.
type NumberGenerator interface {
	AccountNumber() string
	TransactionNumber(at time.Time) string
}

// Locker runs fn while holding a lock on key across replicas.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// AttemptLimiter throttles authorization attempts. Allow records an attempt
// for every key and reports how long to wait when any key is over its limit.
type AttemptLimiter interface {
	Allow(keys ...string) (bool, time.Duration)
}

// Cache defines caching operations.
type Cache interface {
	// Get returns nil without error on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// AdjustBalanceInput is a signed balance change on one account.
type AdjustBalanceInput struct {
	AccountID              string
	Delta                  decimal.Decimal
	RequireSufficientFunds bool
}

// RecordMovementInput references the transaction that moved an account balance.
type RecordMovementInput struct {
	AccountID         string
	TransactionID     string
	TransactionNumber string
	Delta             decimal.Decimal
}

// AccountService is the accounts collaborator as seen by the orchestrator.
// Every call may fail or time out.
type AccountService interface {
	FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
	FindAccountByID(ctx context.Context, id string) (*domain.Account, error)
	AdjustAccountBalance(ctx context.Context, input AdjustBalanceInput) (*domain.Account, error)
	RecordAccountMovement(ctx context.Context, input RecordMovementInput) error
	GetAccountRestrictions(ctx context.Context, accountID string) ([]domain.Restriction, error)
}

// PatternResult is the pattern collaborator's answer.
type PatternResult struct {
	Valid      bool
	MatchCount int
}

// PatternValidator checks presented authentication factors against a pattern.
type PatternValidator interface {
	ValidatePattern(ctx context.Context, patternID string, factors []string) (*PatternResult, error)
}

// OwnerDirectory resolves account owners in the users service.
type OwnerDirectory interface {
	OwnerExists(ctx context.Context, ownerID string) (bool, error)
}

// EventPublisher delivers outbox events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}
