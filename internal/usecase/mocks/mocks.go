package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// MockAccountRepository is an in-memory implementation of AccountRepository.
// AdjustBalance is atomic per repository, like the conditional UPDATE it stands in for.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	NumberExistsFunc     func(ctx context.Context, number string) (bool, error)
	AdjustBalanceFunc    func(ctx context.Context, id string, delta decimal.Decimal, requireSufficientFunds bool, at time.Time) (*domain.Account, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.AccountStatus, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores a copy of account.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := *account
	m.accounts[acc.ID] = &acc
}

// Balance returns the stored balance of the account.
func (m *MockAccountRepository) Balance(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.Seed(account)
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Number == number {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	if m.NumberExistsFunc != nil {
		return m.NumberExistsFunc(ctx, number)
	}
	_, err := m.GetByNumber(ctx, number)
	return err == nil, nil
}

func (m *MockAccountRepository) LockOwner(ctx context.Context, tx usecase.Transaction, ownerID string) error {
	return nil
}

func (m *MockAccountRepository) CountOpenByOwner(ctx context.Context, tx usecase.Transaction, ownerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, acc := range m.accounts {
		if acc.OwnerID == ownerID && acc.Status != domain.AccountStatusCancelled {
			count++
		}
	}
	return count, nil
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.OwnerID == ownerID {
			copied := *acc
			accounts = append(accounts, &copied)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		copied := *acc
		accounts = append(accounts, &copied)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	if offset >= len(accounts) {
		return nil, nil
	}
	accounts = accounts[offset:]
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal, requireSufficientFunds bool, at time.Time) (*domain.Account, error) {
	if m.AdjustBalanceFunc != nil {
		return m.AdjustBalanceFunc(ctx, id, delta, requireSufficientFunds, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if acc.Status == domain.AccountStatusCancelled {
		return nil, domain.ErrAccountNotActive
	}
	next := acc.Balance.Add(delta)
	if requireSufficientFunds && next.IsNegative() {
		return nil, domain.ErrInsufficientFunds
	}
	acc.Balance = next
	acc.Version++
	acc.LastMovementAt = &at
	acc.UpdatedAt = at
	copied := *acc
	return &copied, nil
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.AccountStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Status = status
	acc.UpdatedAt = updatedAt
	return nil
}

// MockRestrictionRepository is an in-memory implementation of RestrictionRepository.
type MockRestrictionRepository struct {
	mu           sync.RWMutex
	restrictions map[string][]domain.Restriction

	ListByAccountFunc func(ctx context.Context, accountID string) ([]domain.Restriction, error)
}

func NewMockRestrictionRepository() *MockRestrictionRepository {
	return &MockRestrictionRepository{
		restrictions: make(map[string][]domain.Restriction),
	}
}

func (m *MockRestrictionRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Restriction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Restriction(nil), m.restrictions[accountID]...), nil
}

func (m *MockRestrictionRepository) ListByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) ([]domain.Restriction, error) {
	return m.ListByAccount(ctx, accountID)
}

func (m *MockRestrictionRepository) Create(ctx context.Context, tx usecase.Transaction, accountID string, restriction *domain.Restriction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restrictions[accountID] = append(m.restrictions[accountID], *restriction)
	return nil
}

func (m *MockRestrictionRepository) Update(ctx context.Context, tx usecase.Transaction, accountID string, restriction *domain.Restriction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.restrictions[accountID] {
		if r.ID == restriction.ID {
			m.restrictions[accountID][i] = *restriction
			return nil
		}
	}
	return domain.ErrRestrictionNotFound
}

func (m *MockRestrictionRepository) Delete(ctx context.Context, tx usecase.Transaction, accountID, restrictionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.restrictions[accountID]
	for i, r := range list {
		if r.ID == restrictionID {
			m.restrictions[accountID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrRestrictionNotFound
}

// MockMovementRepository is an in-memory implementation of MovementRepository.
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements []*domain.Movement

	CreateFunc func(ctx context.Context, movement *domain.Movement) (bool, error)
}

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{}
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *domain.Movement) (bool, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.movements {
		if existing.AccountID == movement.AccountID && existing.TransactionID == movement.TransactionID {
			return false, nil
		}
	}
	copied := *movement
	m.movements = append(m.movements, &copied)
	return true, nil
}

func (m *MockMovementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var movements []*domain.Movement
	for i := len(m.movements) - 1; i >= 0; i-- {
		if m.movements[i].AccountID == accountID {
			movements = append(movements, m.movements[i])
		}
	}
	if offset >= len(movements) {
		return nil, nil
	}
	movements = movements[offset:]
	if len(movements) > limit {
		movements = movements[:limit]
	}
	return movements, nil
}

func (m *MockMovementRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, mv := range m.movements {
		if mv.AccountID == accountID {
			sum = sum.Add(mv.Delta)
		}
	}
	return sum, nil
}

// Count returns how many movements are stored.
func (m *MockMovementRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.movements)
}

// MockTransactionRepository is an in-memory implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateFunc      func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	UpdateStateFunc func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction, from domain.TransactionState) error
	// GetByIDErr, when set and returning non-nil, fails the lookup.
	GetByIDErr func(id string) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *txn
	m.txns[txn.ID] = &copied
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDErr != nil {
		if err := m.GetByIDErr(id); err != nil {
			return nil, err
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.txns[id]; ok {
		copied := *txn
		return &copied, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByNumber(ctx context.Context, number string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.Number == number {
			copied := *txn
			return &copied, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) UpdateState(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction, from domain.TransactionState) error {
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, tx, txn, from)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.txns[txn.ID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if current.State != from {
		return domain.ErrStaleTransaction
	}
	copied := *txn
	m.txns[txn.ID] = &copied
	return nil
}

func (m *MockTransactionRepository) MarkMovementsRecorded(ctx context.Context, id string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	txn.MovementsRecorded = true
	txn.UpdatedAt = updatedAt
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	return m.filter(func(t *domain.Transaction) bool {
		return t.OriginAccountID == accountID ||
			(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
	}, limit, offset), nil
}

func (m *MockTransactionRepository) ListUnreconciled(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	return m.filter(func(t *domain.Transaction) bool {
		return t.State == domain.TransactionStateCompleted && !t.MovementsRecorded
	}, limit, 0), nil
}

func (m *MockTransactionRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*domain.Transaction, error) {
	return m.filter(func(t *domain.Transaction) bool {
		return t.State == domain.TransactionStatePending && t.CreatedAt.Before(before)
	}, limit, 0), nil
}

// SetCreatedAt backdates a stored transaction.
func (m *MockTransactionRepository) SetCreatedAt(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn, ok := m.txns[id]; ok {
		txn.CreatedAt = at
	}
}

func (m *MockTransactionRepository) filter(keep func(*domain.Transaction) bool, limit, offset int) []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.txns {
		if keep(txn) {
			copied := *txn
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MockOutboxRepository is an in-memory implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && e.Attempts < maxAttempts && len(events) < limit {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Attempts++
			e.LastError = reason
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// EventTypes returns the event types written so far, in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.EventType)
	}
	return types
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%06d", m.counter)
}

// MockNumberGenerator hands out sequential account and transaction numbers.
type MockNumberGenerator struct {
	AccountNumberFunc func() string
	mu                sync.Mutex
	accounts          int
	txns              int
}

func NewMockNumberGenerator() *MockNumberGenerator {
	return &MockNumberGenerator{}
}

func (m *MockNumberGenerator) AccountNumber() string {
	if m.AccountNumberFunc != nil {
		return m.AccountNumberFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts++
	return fmt.Sprintf("%010d", m.accounts)
}

func (m *MockNumberGenerator) TransactionNumber(at time.Time) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns++
	return fmt.Sprintf("TRX%s%06d", at.Format("20060102150405"), m.txns)
}

// MockRetrier runs the operation once.
type MockRetrier struct{}

func (MockRetrier) Retry(ctx context.Context, op func() error) error {
	return op()
}

// MockLocker serializes callers per key inside the process.
type MockLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	WithLockFunc func(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{locks: make(map[string]*sync.Mutex)}
}

func (m *MockLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if m.WithLockFunc != nil {
		return m.WithLockFunc(ctx, key, fn)
	}
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(ctx)
}

// MockAttemptLimiter allows every attempt unless AllowFunc says otherwise.
type MockAttemptLimiter struct {
	AllowFunc func(keys ...string) (bool, time.Duration)
	mu        sync.Mutex
	seen      []string
}

func (m *MockAttemptLimiter) Allow(keys ...string) (bool, time.Duration) {
	m.mu.Lock()
	m.seen = append(m.seen, keys...)
	m.mu.Unlock()
	if m.AllowFunc != nil {
		return m.AllowFunc(keys...)
	}
	return true, 0
}

// Keys returns every key passed to Allow.
func (m *MockAttemptLimiter) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.seen...)
}

// MockAccountService forwards to Next unless a Func override is set.
type MockAccountService struct {
	Next usecase.AccountService

	FindAccountByNumberFunc    func(ctx context.Context, number string) (*domain.Account, error)
	FindAccountByIDFunc        func(ctx context.Context, id string) (*domain.Account, error)
	AdjustAccountBalanceFunc   func(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.Account, error)
	RecordAccountMovementFunc  func(ctx context.Context, input usecase.RecordMovementInput) error
	GetAccountRestrictionsFunc func(ctx context.Context, accountID string) ([]domain.Restriction, error)
}

func (m *MockAccountService) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	if m.FindAccountByNumberFunc != nil {
		return m.FindAccountByNumberFunc(ctx, number)
	}
	return m.Next.FindAccountByNumber(ctx, number)
}

func (m *MockAccountService) FindAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.FindAccountByIDFunc != nil {
		return m.FindAccountByIDFunc(ctx, id)
	}
	return m.Next.FindAccountByID(ctx, id)
}

func (m *MockAccountService) AdjustAccountBalance(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.Account, error) {
	if m.AdjustAccountBalanceFunc != nil {
		return m.AdjustAccountBalanceFunc(ctx, input)
	}
	return m.Next.AdjustAccountBalance(ctx, input)
}

func (m *MockAccountService) RecordAccountMovement(ctx context.Context, input usecase.RecordMovementInput) error {
	if m.RecordAccountMovementFunc != nil {
		return m.RecordAccountMovementFunc(ctx, input)
	}
	return m.Next.RecordAccountMovement(ctx, input)
}

func (m *MockAccountService) GetAccountRestrictions(ctx context.Context, accountID string) ([]domain.Restriction, error) {
	if m.GetAccountRestrictionsFunc != nil {
		return m.GetAccountRestrictionsFunc(ctx, accountID)
	}
	return m.Next.GetAccountRestrictions(ctx, accountID)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Value returns what is stored under key.
func (m *MockIdempotencyStore) Value(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// MockCache is an in-memory Cache that ignores ttl.
type MockCache struct {
	mu   sync.Mutex
	data map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, error)
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
