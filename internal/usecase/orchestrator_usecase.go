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

// OrchestratorConfig holds the collaborators of the transfer orchestrator.
type OrchestratorConfig struct {
	Accounts            AccountService
	Ledger              *TransactionUseCase
	Evaluator           *RestrictionEvaluator
	Patterns            PatternValidator
	Limiter             AttemptLimiter
	Locker              Locker
	Metrics             *metrics.Metrics
	Logger              zerolog.Logger
	CollaboratorTimeout time.Duration
}

// OrchestratorUseCase validates, gates and settles money movement across
// the accounts collaborator. There is no shared database transaction between
// the ledger and the accounts, so settlement is a sequence of bounded calls.
type OrchestratorUseCase struct {
	accounts  AccountService
	ledger    *TransactionUseCase
	evaluator *RestrictionEvaluator
	patterns  PatternValidator
	limiter   AttemptLimiter
	locker    Locker
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	timeout   time.Duration
}

// NewOrchestratorUseCase creates a new OrchestratorUseCase.
func NewOrchestratorUseCase(cfg OrchestratorConfig) *OrchestratorUseCase {
	timeout := cfg.CollaboratorTimeout
	if timeout <= 0 {
		timeout = DefaultCollaboratorTimeout
	}

	evaluator := cfg.Evaluator
	if evaluator == nil {
		evaluator = NewRestrictionEvaluator(cfg.Accounts, timeout)
	}

	return &OrchestratorUseCase{
		accounts:  cfg.Accounts,
		ledger:    cfg.Ledger,
		evaluator: evaluator,
		patterns:  cfg.Patterns,
		limiter:   cfg.Limiter,
		locker:    cfg.Locker,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.With().Str("component", "orchestrator").Logger(),
		timeout:   timeout,
	}
}

// TransferInput represents input for a transfer between two accounts.
type TransferInput struct {
	OriginNumber      string
	DestinationNumber string
	Amount            decimal.Decimal
	ExecutorUserID    string
	Description       string
}

// TransferQuote is the outcome of validating a transfer without executing it.
type TransferQuote struct {
	Origin      *domain.Account
	Destination *domain.Account
	Amount      decimal.Decimal
	Verdict     domain.Verdict
	Description string
}

// ValidateTransfer runs the checks of Transfer and evaluates restrictions
// without recording anything.
func (o *OrchestratorUseCase) ValidateTransfer(ctx context.Context, input TransferInput) (*TransferQuote, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateAccountNumber(input.OriginNumber); err != nil {
		return nil, err
	}
	if err := domain.ValidateAccountNumber(input.DestinationNumber); err != nil {
		return nil, err
	}
	if input.OriginNumber == input.DestinationNumber {
		return nil, domain.ErrSameAccountTransfer
	}
	description, err := domain.ValidateDescription(input.Description)
	if err != nil {
		return nil, err
	}

	origin, err := o.findByNumber(ctx, input.OriginNumber)
	if err != nil {
		return nil, err
	}
	destination, err := o.findByNumber(ctx, input.DestinationNumber)
	if err != nil {
		return nil, err
	}
	if origin.ID == destination.ID {
		return nil, domain.ErrSameAccountTransfer
	}
	if !origin.IsActive() || !destination.IsActive() {
		return nil, domain.ErrAccountNotActive
	}

	// Advisory only, settlement checks the balance again.
	if err := origin.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	verdict, err := o.evaluator.Evaluate(ctx, origin, input.Amount)
	if err != nil {
		return nil, err
	}

	return &TransferQuote{
		Origin:      origin,
		Destination: destination,
		Amount:      input.Amount,
		Verdict:     verdict,
		Description: description,
	}, nil
}

// Transfer moves money between two accounts. Transfers inside a restricted
// band are recorded PENDIENTE and wait for Authorize; the others settle
// immediately. When settlement fails the FALLIDA record is returned along
// with the error.
func (o *OrchestratorUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	quote, err := o.ValidateTransfer(ctx, input)
	if err != nil {
		o.countRejected(err)
		return nil, err
	}

	txn, err := o.ledger.Create(ctx, CreateTransactionInput{
		Type:           domain.TransactionTypeTransfer,
		Amount:         quote.Amount,
		Origin:         quote.Origin,
		Destination:    quote.Destination,
		Verdict:        quote.Verdict,
		ExecutorUserID: input.ExecutorUserID,
		Description:    quote.Description,
	})
	if err != nil {
		return nil, err
	}

	return o.afterCreate(ctx, txn)
}

// SingleSidedInput represents input for a deposit or a withdrawal.
type SingleSidedInput struct {
	AccountNumber  string
	Amount         decimal.Decimal
	ExecutorUserID string
	Description    string
}

// Deposit credits an account. Deposits never require authentication.
func (o *OrchestratorUseCase) Deposit(ctx context.Context, input SingleSidedInput) (*domain.Transaction, error) {
	account, description, err := o.validateSingleSided(ctx, input)
	if err != nil {
		return nil, err
	}

	txn, err := o.ledger.Create(ctx, CreateTransactionInput{
		Type:           domain.TransactionTypeDeposit,
		Amount:         input.Amount,
		Origin:         account,
		ExecutorUserID: input.ExecutorUserID,
		Description:    description,
	})
	if err != nil {
		return nil, err
	}

	return o.afterCreate(ctx, txn)
}

// Withdraw debits an account after the same balance and restriction checks
// as a transfer.
func (o *OrchestratorUseCase) Withdraw(ctx context.Context, input SingleSidedInput) (*domain.Transaction, error) {
	account, description, err := o.validateSingleSided(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateDebit(input.Amount); err != nil {
		o.countRejected(err)
		return nil, err
	}

	verdict, err := o.evaluator.Evaluate(ctx, account, input.Amount)
	if err != nil {
		return nil, err
	}

	txn, err := o.ledger.Create(ctx, CreateTransactionInput{
		Type:           domain.TransactionTypeWithdrawal,
		Amount:         input.Amount,
		Origin:         account,
		Verdict:        verdict,
		ExecutorUserID: input.ExecutorUserID,
		Description:    description,
	})
	if err != nil {
		return nil, err
	}

	return o.afterCreate(ctx, txn)
}

func (o *OrchestratorUseCase) validateSingleSided(ctx context.Context, input SingleSidedInput) (*domain.Account, string, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, "", err
	}
	if err := domain.ValidateAccountNumber(input.AccountNumber); err != nil {
		return nil, "", err
	}
	description, err := domain.ValidateDescription(input.Description)
	if err != nil {
		return nil, "", err
	}

	account, err := o.findByNumber(ctx, input.AccountNumber)
	if err != nil {
		return nil, "", err
	}
	if !account.IsActive() {
		return nil, "", domain.ErrAccountNotActive
	}

	return account, description, nil
}

func (o *OrchestratorUseCase) afterCreate(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	if o.metrics != nil {
		o.metrics.TransactionsCreated.WithLabelValues(string(txn.Type), string(txn.State)).Inc()
		o.metrics.TransactionAmount.Observe(txn.Amount.InexactFloat64())
	}

	if txn.State == domain.TransactionStatePending {
		o.logger.Info().
			Str("transaction", txn.Number).
			Str("type", string(txn.Type)).
			Msg("transaction awaiting authorization")
		return txn, nil
	}

	settled, err := o.Settle(ctx, txn.ID)
	if err != nil {
		if settled == nil {
			settled = txn
		}
		return settled, fmt.Errorf("transaction %s: %w", txn.Number, err)
	}

	return settled, nil
}

// AuthorizeInput represents input for authorizing a pending transaction.
type AuthorizeInput struct {
	TransactionNumber string
	VerificationCode  string
	PatternID         *string
	Factors           []string
	OriginIP          string
}

// Authorize validates the authentication pattern of a PENDIENTE transaction,
// moves it to AUTORIZADA and settles it. Attempts are throttled per origin
// account and per origin IP.
func (o *OrchestratorUseCase) Authorize(ctx context.Context, input AuthorizeInput) (*domain.Transaction, error) {
	if err := domain.ValidateVerificationCode(input.VerificationCode); err != nil {
		return nil, err
	}

	txn, err := o.ledger.GetByNumber(ctx, input.TransactionNumber)
	if err != nil {
		return nil, err
	}

	if o.limiter != nil {
		keys := []string{"account:" + txn.OriginAccountID}
		if input.OriginIP != "" {
			keys = append(keys, "ip:"+input.OriginIP)
		}
		if ok, wait := o.limiter.Allow(keys...); !ok {
			o.countAuthorization("throttled")
			if o.metrics != nil {
				o.metrics.RateLimitHits.WithLabelValues("authorization").Inc()
			}
			return nil, domain.Wrapf(domain.ErrTooManyAttempts, "retry in %s", wait.Round(time.Second))
		}
	}

	if txn.State != domain.TransactionStatePending {
		return nil, domain.ErrNotPending
	}

	if txn.PatternID != nil {
		if input.PatternID != nil && *input.PatternID != *txn.PatternID {
			o.countAuthorization("pattern_mismatch")
			return nil, domain.ErrPatternMismatch
		}

		result, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) (*PatternResult, error) {
			return o.patterns.ValidatePattern(ctx, *txn.PatternID, input.Factors)
		})
		if err != nil {
			o.countAuthorization("collaborator_error")
			return nil, err
		}
		if !result.Valid {
			o.countAuthorization("rejected")
			o.logger.Warn().
				Str("transaction", txn.Number).
				Int("match_count", result.MatchCount).
				Msg("authentication pattern rejected")
			return nil, domain.ErrPatternRejected
		}
	}

	code := input.VerificationCode
	authorized, err := o.ledger.Transition(ctx, txn, domain.TransactionStateAuthorized, func(t *domain.Transaction) {
		t.VerificationCode = code
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleTransaction) {
			return nil, domain.ErrNotPending
		}
		return nil, err
	}
	o.countAuthorization("authorized")

	settled, err := o.Settle(ctx, authorized.ID)
	if err != nil {
		if settled == nil {
			settled = authorized
		}
		return settled, fmt.Errorf("transaction %s: %w", authorized.Number, err)
	}

	return settled, nil
}

// Cancel abandons a PENDIENTE transaction.
func (o *OrchestratorUseCase) Cancel(ctx context.Context, number string) (*domain.Transaction, error) {
	txn, err := o.ledger.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if txn.State != domain.TransactionStatePending {
		return nil, domain.ErrNotPending
	}

	cancelled, err := o.ledger.Transition(ctx, txn, domain.TransactionStateCancelled, nil)
	if errors.Is(err, domain.ErrStaleTransaction) {
		return nil, domain.ErrNotPending
	}
	return cancelled, err
}

// Settle applies an AUTORIZADA transaction to the account balances. It is
// serialized per transaction and fails with domain.ErrNotAuthorized for any
// other state, so settling twice never moves money twice.
func (o *OrchestratorUseCase) Settle(ctx context.Context, id string) (*domain.Transaction, error) {
	// Settlement must finish once started even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	var (
		result   *domain.Transaction
		settling bool
	)
	err := o.locker.WithLock(ctx, "settle:"+id, func(ctx context.Context) error {
		txn, err := o.ledger.Get(ctx, id)
		if err != nil {
			return err
		}
		if txn.State != domain.TransactionStateAuthorized {
			result = txn
			return domain.ErrNotAuthorized
		}

		settling = true
		result, err = o.settle(ctx, txn)
		return err
	})
	if err != nil && !settling &&
		!errors.Is(err, domain.ErrNotAuthorized) && !errors.Is(err, domain.ErrTransactionNotFound) {
		return o.abandon(ctx, id, err)
	}

	return result, err
}

// abandon fails an AUTORIZADA transaction whose settlement never reached a
// balance call: the lock was not acquired or the transaction could not be
// read under it. Only the caller that created or authorized the transaction
// reaches Settle, so no other settlement of id can be in flight.
func (o *OrchestratorUseCase) abandon(ctx context.Context, id string, cause error) (*domain.Transaction, error) {
	cause = collaboratorFailure(cause)

	txn, err := o.ledger.Get(ctx, id)
	if err != nil {
		o.logger.Error().Err(err).Str("transaction_id", id).Msg("settlement did not start and transaction could not be read")
		return nil, errors.Join(cause, err)
	}
	if txn.State != domain.TransactionStateAuthorized {
		return txn, cause
	}

	return o.fail(ctx, txn, nil, failureReason(cause, domain.FailureCollaboratorUnavailable), cause)
}

// collaboratorFailure classifies a lock or store error as a collaborator
// failure, keeping the original error in the chain.
func collaboratorFailure(err error) error {
	switch {
	case domain.IsCollaboratorFailure(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrCollaboratorTimeout, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrCollaboratorUnavailable, err)
	}
}

func (o *OrchestratorUseCase) settle(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	start := time.Now()
	log := o.logger.With().Str("transaction", txn.Number).Str("type", string(txn.Type)).Logger()

	origin, err := o.findByID(ctx, txn.OriginAccountID)
	if err != nil {
		return o.fail(ctx, txn, nil, failureReason(err, domain.FailureAccountNotFound), err)
	}
	settlementBalance := origin.Balance

	if !origin.IsActive() {
		return o.fail(ctx, txn, &settlementBalance, domain.FailureAccountNotActive, domain.ErrAccountNotActive)
	}

	// Re-validate against the current balance, not the creation snapshot.
	if txn.Debits() {
		if err := origin.ValidateDebit(txn.Amount); err != nil {
			return o.fail(ctx, txn, &settlementBalance, domain.FailureInsufficientFundsAtSettlement, err)
		}
	}

	if txn.DestinationAccountID != nil {
		destination, err := o.findByID(ctx, *txn.DestinationAccountID)
		if err != nil {
			return o.fail(ctx, txn, &settlementBalance, failureReason(err, domain.FailureAccountNotFound), err)
		}
		if !destination.IsActive() {
			return o.fail(ctx, txn, &settlementBalance, domain.FailureAccountNotActive, domain.ErrAccountNotActive)
		}
	}

	// Debit strictly before credit.
	adjusted, err := o.adjust(ctx, txn.OriginAccountID, txn.OriginDelta(), txn.Debits())
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return o.fail(ctx, txn, &settlementBalance, domain.FailureInsufficientFundsAtSettlement, err)
		}
		if domain.IsCollaboratorFailure(err) {
			log.Error().Err(err).Msg("origin adjustment outcome unknown")
		}
		fallback := domain.FailureCreditRejected
		if txn.Debits() {
			fallback = domain.FailureDebitRejected
		}
		return o.fail(ctx, txn, &settlementBalance, failureReason(err, fallback), err)
	}
	movements := []RecordMovementInput{{
		AccountID:         adjusted.ID,
		TransactionID:     txn.ID,
		TransactionNumber: txn.Number,
		Delta:             txn.OriginDelta(),
	}}

	if txn.DestinationAccountID != nil {
		credited, err := o.adjust(ctx, *txn.DestinationAccountID, txn.Amount, false)
		if err != nil {
			if o.metrics != nil {
				o.metrics.SettlementAnomalies.Inc()
			}
			log.Error().Err(err).
				Str("origin", txn.OriginAccountNumber).
				Str("amount", txn.Amount.String()).
				Msg("origin debited but destination credit failed, manual reconciliation required")
			return o.fail(ctx, txn, &settlementBalance, failureReason(err, domain.FailureCreditRejected), err)
		}
		movements = append(movements, RecordMovementInput{
			AccountID:         credited.ID,
			TransactionID:     txn.ID,
			TransactionNumber: txn.Number,
			Delta:             txn.Amount,
		})
	}

	var movementErr error
	for _, m := range movements {
		_, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, o.accounts.RecordAccountMovement(ctx, m)
		})
		if err != nil {
			movementErr = errors.Join(movementErr, err)
		}
	}

	completed, err := o.ledger.Transition(ctx, txn, domain.TransactionStateCompleted, func(t *domain.Transaction) {
		t.SettlementBalance = &settlementBalance
		t.MovementsRecorded = movementErr == nil
	})
	if err != nil {
		log.Error().Err(err).Msg("balances settled but completion was not persisted")
		return nil, err
	}

	if movementErr != nil {
		if o.metrics != nil {
			o.metrics.PartialSettlements.Inc()
		}
		log.Error().Err(movementErr).
			Str("code", domain.ErrPartialSettlement.Code).
			Msg("partial settlement: balances moved but movements were not recorded")
	}

	if o.metrics != nil {
		o.metrics.TransactionsSettled.WithLabelValues(string(txn.Type)).Inc()
		o.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}
	log.Info().Str("amount", txn.Amount.String()).Msg("transaction settled")

	return completed, nil
}

// fail marks txn FALLIDA and returns the failed record with cause.
func (o *OrchestratorUseCase) fail(
	ctx context.Context,
	txn *domain.Transaction,
	settlementBalance *decimal.Decimal,
	reason string,
	cause error,
) (*domain.Transaction, error) {
	failed, err := o.ledger.Transition(ctx, txn, domain.TransactionStateFailed, func(t *domain.Transaction) {
		t.FailureReason = reason
		t.SettlementBalance = settlementBalance
	})
	if err != nil {
		o.logger.Error().Err(err).Str("transaction", txn.Number).Msg("failed to mark transaction failed")
		return nil, errors.Join(cause, err)
	}

	if o.metrics != nil {
		o.metrics.TransactionsFailed.WithLabelValues(reason).Inc()
	}
	o.logger.Warn().Err(cause).
		Str("transaction", txn.Number).
		Str("reason", reason).
		Msg("transaction failed at settlement")

	return failed, cause
}

func failureReason(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrCollaboratorTimeout):
		return domain.FailureCollaboratorTimeout
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		return domain.FailureCollaboratorUnavailable
	case errors.Is(err, domain.ErrAccountNotActive):
		return domain.FailureAccountNotActive
	case errors.Is(err, domain.ErrAccountNotFound):
		return domain.FailureAccountNotFound
	default:
		return fallback
	}
}

func (o *OrchestratorUseCase) findByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return callWithTimeout(ctx, o.timeout, func(ctx context.Context) (*domain.Account, error) {
		return o.accounts.FindAccountByNumber(ctx, number)
	})
}

func (o *OrchestratorUseCase) findByID(ctx context.Context, id string) (*domain.Account, error) {
	return callWithTimeout(ctx, o.timeout, func(ctx context.Context) (*domain.Account, error) {
		return o.accounts.FindAccountByID(ctx, id)
	})
}

func (o *OrchestratorUseCase) adjust(ctx context.Context, accountID string, delta decimal.Decimal, guarded bool) (*domain.Account, error) {
	return callWithTimeout(ctx, o.timeout, func(ctx context.Context) (*domain.Account, error) {
		return o.accounts.AdjustAccountBalance(ctx, AdjustBalanceInput{
			AccountID:              accountID,
			Delta:                  delta,
			RequireSufficientFunds: guarded,
		})
	})
}

func (o *OrchestratorUseCase) countRejected(err error) {
	if o.metrics != nil {
		o.metrics.TransactionsFailed.WithLabelValues(domain.CodeOf(err)).Inc()
	}
}

func (o *OrchestratorUseCase) countAuthorization(outcome string) {
	if o.metrics != nil {
		o.metrics.AuthorizationAttempts.WithLabelValues(outcome).Inc()
	}
}
