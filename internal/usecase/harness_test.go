package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/adapter/accountsvc"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
	"github.com/iho/gobank/internal/usecase/mocks"
)

// bank wires the account store, the ledger and the orchestrator over
// in-memory repositories.
type bank struct {
	accounts     *mocks.MockAccountRepository
	restrictions *mocks.MockRestrictionRepository
	movements    *mocks.MockMovementRepository
	txns         *mocks.MockTransactionRepository
	outbox       *mocks.MockOutboxRepository
	limiter      *mocks.MockAttemptLimiter

	store        *usecase.AccountUseCase
	service      *mocks.MockAccountService
	ledger       *usecase.TransactionUseCase
	orchestrator *usecase.OrchestratorUseCase
}

type bankOption func(*usecase.OrchestratorConfig)

func withPatterns(p usecase.PatternValidator) bankOption {
	return func(cfg *usecase.OrchestratorConfig) { cfg.Patterns = p }
}

func withTimeout(d time.Duration) bankOption {
	return func(cfg *usecase.OrchestratorConfig) { cfg.CollaboratorTimeout = d }
}

func withLocker(l usecase.Locker) bankOption {
	return func(cfg *usecase.OrchestratorConfig) { cfg.Locker = l }
}

func newBank(t *testing.T, opts ...bankOption) *bank {
	t.Helper()

	b := &bank{
		accounts:     mocks.NewMockAccountRepository(),
		restrictions: mocks.NewMockRestrictionRepository(),
		movements:    mocks.NewMockMovementRepository(),
		txns:         mocks.NewMockTransactionRepository(),
		outbox:       mocks.NewMockOutboxRepository(),
		limiter:      &mocks.MockAttemptLimiter{},
	}

	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	numbers := mocks.NewMockNumberGenerator()

	b.store = usecase.NewAccountUseCase(
		txManager, b.accounts, b.restrictions, b.movements, b.outbox,
		accountsvc.AnyOwner{}, idGen, numbers, mocks.MockRetrier{}, nil,
	)
	b.service = &mocks.MockAccountService{Next: accountsvc.NewLocal(b.store)}
	b.ledger = usecase.NewTransactionUseCase(txManager, b.txns, b.outbox, idGen, numbers, mocks.MockRetrier{})

	cfg := usecase.OrchestratorConfig{
		Accounts:            b.service,
		Ledger:              b.ledger,
		Limiter:             b.limiter,
		Locker:              mocks.NewMockLocker(),
		Logger:              zerolog.Nop(),
		CollaboratorTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	b.orchestrator = usecase.NewOrchestratorUseCase(cfg)

	return b
}

// open seeds an ACTIVA account with the given balance.
func (b *bank) open(id, number string, balance int64) *domain.Account {
	account := &domain.Account{
		ID:      id,
		Number:  number,
		OwnerID: "owner-" + id,
		Type:    domain.AccountTypeSavings,
		Balance: decimal.NewFromInt(balance),
		Status:  domain.AccountStatusActive,
	}
	b.accounts.Seed(account)
	return account
}

func (b *bank) restrict(id string, from, to int64, pattern *string) {
	_ = b.restrictions.Create(context.Background(), nil, id, &domain.Restriction{
		ID:         "r-" + id,
		AmountFrom: decimal.NewFromInt(from),
		AmountTo:   decimal.NewFromInt(to),
		PatternID:  pattern,
	})
}

func (b *bank) balance(id string) decimal.Decimal {
	return b.accounts.Balance(id)
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func ptr[T any](v T) *T {
	return &v
}
