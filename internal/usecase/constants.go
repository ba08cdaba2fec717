package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultCollaboratorTimeout bounds every call to another service
	DefaultCollaboratorTimeout = 5 * time.Second

	// MaxAccountNumberAttempts bounds the draws for a unique account number
	MaxAccountNumberAttempts = 20

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// ReconciliationBatchSize is how many records one reconciliation pass loads
	ReconciliationBatchSize = 100
)
