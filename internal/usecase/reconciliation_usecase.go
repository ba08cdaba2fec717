package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/metrics"
)

// ReconciliationUseCase repairs what settlement leaves behind: movements
// missing after a partial settlement and PENDIENTE transactions that were
// never authorized. It also checks that each account's movement log adds up
// to its balance.
type ReconciliationUseCase struct {
	accountRepo  AccountRepository
	movementRepo MovementRepository
	ledger       *TransactionUseCase
	accounts     AccountService
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	pendingTTL   time.Duration
	timeout      time.Duration
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	ledger *TransactionUseCase,
	accounts AccountService,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
	pendingTTL time.Duration,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		ledger:       ledger,
		accounts:     accounts,
		metrics:      metrics,
		logger:       logger.With().Str("component", "reconciliation").Logger(),
		pendingTTL:   pendingTTL,
		timeout:      DefaultCollaboratorTimeout,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	AccountNumber     string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares the balance of an account with the sum of its movements
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := uc.movementRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	difference := account.Balance.Sub(sum)
	return &ReconciliationResult{
		AccountID:         accountID,
		AccountNumber:     account.Number,
		RecordedBalance:   account.Balance,
		CalculatedBalance: sum,
		Difference:        difference,
		IsReconciled:      difference.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	limit, offset, _ := domain.ValidatePagination(1000, 0)

	var results []*ReconciliationResult
	for {
		accounts, err := uc.accountRepo.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.Number, err)
			}
			results = append(results, result)
		}

		if len(accounts) < limit {
			return results, nil
		}
		offset += limit
	}
}

// RecoverMovements records the missing movements of partially settled
// transactions. Recording is idempotent per account and transaction, so a
// transaction whose movements were half written is completed safely.
func (uc *ReconciliationUseCase) RecoverMovements(ctx context.Context) (int, error) {
	txns, err := uc.ledger.ListUnreconciled(ctx, ReconciliationBatchSize)
	if err != nil {
		return 0, err
	}

	recovered := 0
	var errs error
	for _, txn := range txns {
		if err := uc.recordMovements(ctx, txn); err != nil {
			uc.logger.Warn().Err(err).Str("transaction", txn.Number).Msg("movement recovery failed")
			errs = errors.Join(errs, err)
			continue
		}

		if err := uc.ledger.MarkMovementsRecorded(ctx, txn.ID); err != nil {
			errs = errors.Join(errs, err)
			continue
		}

		recovered++
		if uc.metrics != nil {
			uc.metrics.MovementsReconciled.Inc()
		}
		uc.logger.Info().Str("transaction", txn.Number).Msg("movements recovered")
	}

	return recovered, errs
}

func (uc *ReconciliationUseCase) recordMovements(ctx context.Context, txn *domain.Transaction) error {
	inputs := []RecordMovementInput{{
		AccountID:         txn.OriginAccountID,
		TransactionID:     txn.ID,
		TransactionNumber: txn.Number,
		Delta:             txn.OriginDelta(),
	}}
	if txn.DestinationAccountID != nil {
		inputs = append(inputs, RecordMovementInput{
			AccountID:         *txn.DestinationAccountID,
			TransactionID:     txn.ID,
			TransactionNumber: txn.Number,
			Delta:             txn.Amount,
		})
	}

	for _, input := range inputs {
		_, err := callWithTimeout(ctx, uc.timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, uc.accounts.RecordAccountMovement(ctx, input)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// ExpirePending cancels PENDIENTE transactions older than the pending TTL so
// none waits for authorization forever.
func (uc *ReconciliationUseCase) ExpirePending(ctx context.Context) (int, error) {
	if uc.pendingTTL <= 0 {
		return 0, nil
	}

	txns, err := uc.ledger.ListPendingBefore(ctx, time.Now().UTC().Add(-uc.pendingTTL), ReconciliationBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	var errs error
	for _, txn := range txns {
		_, err := uc.ledger.Transition(ctx, txn, domain.TransactionStateCancelled, func(t *domain.Transaction) {
			t.FailureReason = domain.FailureAuthorizationExpired
		})
		if err != nil {
			// Authorized in the meantime.
			if errors.Is(err, domain.ErrStaleTransaction) {
				continue
			}
			errs = errors.Join(errs, err)
			continue
		}
		expired++
		uc.logger.Info().Str("transaction", txn.Number).Msg("pending transaction expired")
	}

	return expired, errs
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	MovementsRecovered int
	PendingExpired     int
	CheckedAt          time.Time
}

// GenerateReconciliationReport recovers movements, expires stale pending
// transactions and then checks every account.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	recovered, recoverErr := uc.RecoverMovements(ctx)
	expired, expireErr := uc.ExpirePending(ctx)

	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts:      len(results),
		Discrepancies:      make([]*ReconciliationResult, 0),
		MovementsRecovered: recovered,
		PendingExpired:     expired,
		CheckedAt:          time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, errors.Join(recoverErr, expireErr)
}

// Run reconciles on every tick until ctx is done.
func (uc *ReconciliationUseCase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := uc.GenerateReconciliationReport(ctx)
			if err != nil {
				uc.logger.Error().Err(err).Msg("reconciliation pass finished with errors")
			}
			if report == nil {
				continue
			}
			event := uc.logger.Info()
			if len(report.Discrepancies) > 0 {
				event = uc.logger.Warn()
			}
			event.
				Int("accounts", report.TotalAccounts).
				Int("discrepancies", len(report.Discrepancies)).
				Int("movements_recovered", report.MovementsRecovered).
				Int("pending_expired", report.PendingExpired).
				Msg("reconciliation pass")
		}
	}
}
