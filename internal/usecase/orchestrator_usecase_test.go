package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
	"github.com/iho/gobank/internal/usecase/mocks"
)

func TestOrchestrator_Transfer_Unrestricted(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 100)
	b.open("b", "1000000002", 0)

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber:      "1000000001",
		DestinationNumber: "1000000002",
		Amount:            amount(40),
		ExecutorUserID:    "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.State != domain.TransactionStateCompleted {
		t.Fatalf("expected COMPLETADA, got %s", txn.State)
	}
	if !txn.MovementsRecorded {
		t.Error("expected movements to be recorded")
	}
	if !txn.PriorBalance.Equal(amount(100)) {
		t.Errorf("expected prior balance 100, got %s", txn.PriorBalance)
	}
	if txn.SettlementBalance == nil || !txn.SettlementBalance.Equal(amount(100)) {
		t.Errorf("expected settlement balance 100, got %v", txn.SettlementBalance)
	}
	if !b.balance("a").Equal(amount(60)) || !b.balance("b").Equal(amount(40)) {
		t.Errorf("expected balances 60/40, got %s/%s", b.balance("a"), b.balance("b"))
	}
	if b.movements.Count() != 2 {
		t.Errorf("expected 2 movements, got %d", b.movements.Count())
	}

	events := b.outbox.EventTypes()
	want := []string{domain.EventTypeTransactionCreated, domain.EventTypeTransactionCompleted}
	if len(events) != len(want) || events[0] != want[0] || events[1] != want[1] {
		t.Errorf("expected events %v, got %v", want, events)
	}
}

func TestOrchestrator_Transfer_RestrictedWaitsForAuthorization(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	patterns := mocks.NewMockPatternValidator(ctrl)
	b := newBank(t, withPatterns(patterns))
	b.open("a", "1000000001", 50)
	b.open("b", "1000000002", 0)
	b.restrict("a", 0, 100, ptr("P"))

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber:      "1000000001",
		DestinationNumber: "1000000002",
		Amount:            amount(30),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.State != domain.TransactionStatePending {
		t.Fatalf("expected PENDIENTE, got %s", txn.State)
	}
	if !txn.RequiresAuthentication || txn.PatternID == nil || *txn.PatternID != "P" {
		t.Fatalf("expected pattern P to be required, got %+v", txn)
	}
	if !b.balance("a").Equal(amount(50)) || !b.balance("b").IsZero() {
		t.Fatalf("balances must not move before authorization, got %s/%s", b.balance("a"), b.balance("b"))
	}

	patterns.EXPECT().
		ValidatePattern(gomock.Any(), "P", []string{"f1", "f2"}).
		Return(&usecase.PatternResult{Valid: true, MatchCount: 2}, nil)

	settled, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{
		TransactionNumber: txn.Number,
		VerificationCode:  "123456",
		Factors:           []string{"f1", "f2"},
		OriginIP:          "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settled.State != domain.TransactionStateCompleted {
		t.Fatalf("expected COMPLETADA, got %s", settled.State)
	}
	if settled.VerificationCode != "123456" || settled.AuthorizedAt == nil {
		t.Errorf("expected authorization stamps, got %+v", settled)
	}
	if !b.balance("a").Equal(amount(20)) || !b.balance("b").Equal(amount(30)) {
		t.Errorf("expected balances 20/30, got %s/%s", b.balance("a"), b.balance("b"))
	}

	keys := b.limiter.Keys()
	if len(keys) != 2 || keys[0] != "account:a" || keys[1] != "ip:10.0.0.1" {
		t.Errorf("expected limiter keys for account and ip, got %v", keys)
	}
}

func TestOrchestrator_Transfer_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.TransferInput
		wantErr error
	}{
		{
			name:    "insufficient funds",
			input:   usecase.TransferInput{OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(80)},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:    "same account",
			input:   usecase.TransferInput{OriginNumber: "1000000001", DestinationNumber: "1000000001", Amount: amount(10)},
			wantErr: domain.ErrSameAccountTransfer,
		},
		{
			name:    "unknown destination",
			input:   usecase.TransferInput{OriginNumber: "1000000001", DestinationNumber: "1999999999", Amount: amount(10)},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:    "non positive amount",
			input:   usecase.TransferInput{OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(0)},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "sub-cent amount",
			input:   usecase.TransferInput{OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: money("10.005")},
			wantErr: domain.ErrInvalidAmountScale,
		},
		{
			name:    "malformed number",
			input:   usecase.TransferInput{OriginNumber: "12", DestinationNumber: "1000000002", Amount: amount(10)},
			wantErr: domain.ErrInvalidAccountNumber,
		},
		{
			name:    "blocked destination",
			input:   usecase.TransferInput{OriginNumber: "1000000001", DestinationNumber: "1000000003", Amount: amount(10)},
			wantErr: domain.ErrAccountNotActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBank(t)
			b.open("a", "1000000001", 50)
			b.open("b", "1000000002", 0)
			blocked := b.open("c", "1000000003", 0)
			blocked.Status = domain.AccountStatusBlocked
			b.accounts.Seed(blocked)

			txn, err := b.orchestrator.Transfer(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if txn != nil {
				t.Errorf("expected no transaction, got %+v", txn)
			}

			recorded, _ := b.txns.ListByAccount(context.Background(), "a", 10, 0)
			if len(recorded) != 0 {
				t.Errorf("expected no recorded transactions, got %d", len(recorded))
			}
			if !b.balance("a").Equal(amount(50)) {
				t.Errorf("origin balance changed to %s", b.balance("a"))
			}
		})
	}
}

func TestOrchestrator_ValidateTransfer_HasNoSideEffects(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 500)
	b.open("b", "1000000002", 0)
	b.restrict("a", 100, 1000, ptr("P"))

	input := usecase.TransferInput{OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(200)}

	first, err := b.orchestrator.ValidateTransfer(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := b.orchestrator.ValidateTransfer(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Verdict.RequiresAuth || !second.Verdict.RequiresAuth {
		t.Fatal("expected both quotes to require authentication")
	}
	if *first.Verdict.PatternID != *second.Verdict.PatternID {
		t.Fatal("expected identical verdicts")
	}
	if len(b.outbox.EventTypes()) != 0 {
		t.Fatalf("validation must not write events, got %v", b.outbox.EventTypes())
	}
}

func TestOrchestrator_Settle_IsIdempotent(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 100)
	b.open("b", "1000000002", 0)

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(40),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again, err := b.orchestrator.Settle(context.Background(), txn.ID)
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if domain.KindOf(err) != domain.KindStateConflict {
		t.Fatalf("expected state conflict, got %s", domain.KindOf(err))
	}
	if again.State != domain.TransactionStateCompleted {
		t.Fatalf("expected record to stay COMPLETADA, got %s", again.State)
	}
	if !b.balance("a").Equal(amount(60)) || !b.balance("b").Equal(amount(40)) {
		t.Fatalf("settling twice moved money: %s/%s", b.balance("a"), b.balance("b"))
	}
}

func TestOrchestrator_Settle_RechecksBalance(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 50)
	b.open("b", "1000000002", 0)
	b.restrict("a", 0, 100, nil)

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(30),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Balance drops between creation and authorization.
	if _, err := b.store.AdjustBalance(context.Background(), usecase.AdjustBalanceInput{AccountID: "a", Delta: amount(-40)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failed, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{
		TransactionNumber: txn.Number,
		VerificationCode:  "000111",
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if failed == nil || failed.State != domain.TransactionStateFailed {
		t.Fatalf("expected FALLIDA record, got %+v", failed)
	}
	if failed.FailureReason != domain.FailureInsufficientFundsAtSettlement {
		t.Errorf("unexpected failure reason %q", failed.FailureReason)
	}
	if !b.balance("a").Equal(amount(10)) || !b.balance("b").IsZero() {
		t.Errorf("balances must not move, got %s/%s", b.balance("a"), b.balance("b"))
	}
}

func TestOrchestrator_Settle_LockFailureFailsTransaction(t *testing.T) {
	tests := []struct {
		name       string
		lockErr    error
		wantErr    error
		wantReason string
	}{
		{"lock backend down", errors.New("redsync: failed to acquire lock"), domain.ErrCollaboratorUnavailable, domain.FailureCollaboratorUnavailable},
		{"lock wait timed out", context.DeadlineExceeded, domain.ErrCollaboratorTimeout, domain.FailureCollaboratorTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locker := mocks.NewMockLocker()
			locker.WithLockFunc = func(ctx context.Context, key string, fn func(ctx context.Context) error) error {
				return tt.lockErr
			}
			b := newBank(t, withLocker(locker))
			b.open("a", "1000000001", 100)
			b.open("b", "1000000002", 0)

			txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
				OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(40),
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if txn == nil || txn.State != domain.TransactionStateFailed {
				t.Fatalf("expected FALLIDA record, got %+v", txn)
			}
			if txn.FailureReason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, txn.FailureReason)
			}

			stored, err := b.ledger.Get(context.Background(), txn.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stored.State != domain.TransactionStateFailed {
				t.Errorf("expected stored state FALLIDA, got %s", stored.State)
			}
			if !b.balance("a").Equal(amount(100)) || !b.balance("b").IsZero() {
				t.Errorf("balances must not move, got %s/%s", b.balance("a"), b.balance("b"))
			}
		})
	}
}

func TestOrchestrator_Settle_PreReadFailureFailsTransaction(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 100)
	b.open("b", "1000000002", 0)

	var (
		mu        sync.Mutex
		failFirst = true
	)
	b.txns.GetByIDErr = func(id string) error {
		mu.Lock()
		defer mu.Unlock()
		if failFirst {
			failFirst = false
			return errors.New("connection reset by peer")
		}
		return nil
	}

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(40),
	})
	if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got %v", err)
	}
	if txn == nil || txn.State != domain.TransactionStateFailed {
		t.Fatalf("expected FALLIDA record, got %+v", txn)
	}
	if txn.FailureReason != domain.FailureCollaboratorUnavailable {
		t.Errorf("unexpected failure reason %q", txn.FailureReason)
	}
	if !b.balance("a").Equal(amount(100)) {
		t.Errorf("origin balance changed to %s", b.balance("a"))
	}
}

func TestOrchestrator_Settle_LockFailureLeavesSettledTransaction(t *testing.T) {
	locker := mocks.NewMockLocker()
	b := newBank(t, withLocker(locker))
	b.open("a", "1000000001", 100)
	b.open("b", "1000000002", 0)

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(40),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locker.WithLockFunc = func(ctx context.Context, key string, fn func(ctx context.Context) error) error {
		return errors.New("redis: connection refused")
	}

	again, err := b.orchestrator.Settle(context.Background(), txn.ID)
	if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got %v", err)
	}
	if again == nil || again.State != domain.TransactionStateCompleted {
		t.Fatalf("expected record to stay COMPLETADA, got %+v", again)
	}
	if !b.balance("a").Equal(amount(60)) || !b.balance("b").Equal(amount(40)) {
		t.Errorf("expected balances 60/40, got %s/%s", b.balance("a"), b.balance("b"))
	}
}

func TestOrchestrator_Settle_PartialSettlement(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 100)
	b.open("b", "1000000002", 0)

	b.service.RecordAccountMovementFunc = func(ctx context.Context, input usecase.RecordMovementInput) error {
		return domain.ErrCollaboratorUnavailable
	}

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(40),
	})
	if err != nil {
		t.Fatalf("partial settlement must not surface as an error, got %v", err)
	}
	if txn.State != domain.TransactionStateCompleted || txn.MovementsRecorded {
		t.Fatalf("expected COMPLETADA without movements, got %s recorded=%v", txn.State, txn.MovementsRecorded)
	}
	if !b.balance("a").Equal(amount(60)) || !b.balance("b").Equal(amount(40)) {
		t.Fatalf("expected balances 60/40, got %s/%s", b.balance("a"), b.balance("b"))
	}
	if b.movements.Count() != 0 {
		t.Fatalf("expected no movements, got %d", b.movements.Count())
	}
}

func TestOrchestrator_Settle_CollaboratorTimeout(t *testing.T) {
	b := newBank(t, withTimeout(20*time.Millisecond))
	b.open("a", "1000000001", 100)
	b.open("b", "1000000002", 0)

	b.service.AdjustAccountBalanceFunc = func(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.Account, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(40),
	})
	if !errors.Is(err, domain.ErrCollaboratorTimeout) {
		t.Fatalf("expected ErrCollaboratorTimeout, got %v", err)
	}
	if txn == nil || txn.State != domain.TransactionStateFailed {
		t.Fatalf("expected FALLIDA record, got %+v", txn)
	}
	if txn.FailureReason != domain.FailureCollaboratorTimeout {
		t.Errorf("expected collaborator timeout reason, got %q", txn.FailureReason)
	}
}

func TestOrchestrator_Settle_CreditFailureAfterDebit(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 100)
	b.open("b", "1000000002", 0)

	next := b.service.Next
	b.service.AdjustAccountBalanceFunc = func(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.Account, error) {
		if input.AccountID == "b" {
			return nil, domain.ErrCollaboratorUnavailable
		}
		return next.AdjustAccountBalance(ctx, input)
	}

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(40),
	})
	if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got %v", err)
	}
	if txn.State != domain.TransactionStateFailed || txn.FailureReason != domain.FailureCollaboratorUnavailable {
		t.Fatalf("expected FALLIDA collaborator unavailable, got %s %q", txn.State, txn.FailureReason)
	}
	// No automatic reversal: the debit stays for manual reconciliation.
	if !b.balance("a").Equal(amount(60)) {
		t.Errorf("expected origin debited to 60, got %s", b.balance("a"))
	}
}

func TestOrchestrator_Authorize_Failures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	patterns := mocks.NewMockPatternValidator(ctrl)
	b := newBank(t, withPatterns(patterns))
	b.open("a", "1000000001", 500)
	b.open("b", "1000000002", 0)
	b.restrict("a", 100, 1000, ptr("P"))

	pending, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(200),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	completed, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(50),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("missing verification code", func(t *testing.T) {
		_, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{TransactionNumber: pending.Number})
		if !errors.Is(err, domain.ErrMissingVerification) {
			t.Fatalf("expected ErrMissingVerification, got %v", err)
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		_, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{TransactionNumber: "TRX0", VerificationCode: "1"})
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Fatalf("expected ErrTransactionNotFound, got %v", err)
		}
	})

	t.Run("not pending", func(t *testing.T) {
		_, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{TransactionNumber: completed.Number, VerificationCode: "1"})
		if !errors.Is(err, domain.ErrNotPending) {
			t.Fatalf("expected ErrNotPending, got %v", err)
		}
	})

	t.Run("pattern mismatch", func(t *testing.T) {
		_, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{
			TransactionNumber: pending.Number, VerificationCode: "1", PatternID: ptr("Q"),
		})
		if !errors.Is(err, domain.ErrPatternMismatch) {
			t.Fatalf("expected ErrPatternMismatch, got %v", err)
		}
	})

	t.Run("pattern rejected keeps transaction pending", func(t *testing.T) {
		patterns.EXPECT().ValidatePattern(gomock.Any(), "P", gomock.Any()).
			Return(&usecase.PatternResult{Valid: false, MatchCount: 1}, nil)

		_, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{
			TransactionNumber: pending.Number, VerificationCode: "1",
		})
		if !errors.Is(err, domain.ErrPatternRejected) {
			t.Fatalf("expected ErrPatternRejected, got %v", err)
		}

		stored, _ := b.ledger.GetByNumber(context.Background(), pending.Number)
		if stored.State != domain.TransactionStatePending {
			t.Fatalf("expected PENDIENTE, got %s", stored.State)
		}
	})

	t.Run("pattern service unavailable", func(t *testing.T) {
		patterns.EXPECT().ValidatePattern(gomock.Any(), "P", gomock.Any()).
			Return(nil, domain.ErrCollaboratorUnavailable)

		_, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{
			TransactionNumber: pending.Number, VerificationCode: "1",
		})
		if !domain.IsCollaboratorFailure(err) {
			t.Fatalf("expected collaborator failure, got %v", err)
		}
	})

	t.Run("throttled", func(t *testing.T) {
		b.limiter.AllowFunc = func(keys ...string) (bool, time.Duration) { return false, 30 * time.Second }
		defer func() { b.limiter.AllowFunc = nil }()

		_, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{
			TransactionNumber: pending.Number, VerificationCode: "1",
		})
		if !errors.Is(err, domain.ErrTooManyAttempts) {
			t.Fatalf("expected ErrTooManyAttempts, got %v", err)
		}
	})

	if !b.balance("a").Equal(amount(450)) {
		t.Errorf("failed authorizations must not move money, got %s", b.balance("a"))
	}
}

func TestOrchestrator_Cancel(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 50)
	b.open("b", "1000000002", 0)
	b.restrict("a", 0, 100, nil)

	txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(30),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err := b.orchestrator.Cancel(context.Background(), txn.Number)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.State != domain.TransactionStateCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("expected CANCELADA, got %+v", cancelled)
	}

	if _, err := b.orchestrator.Cancel(context.Background(), txn.Number); !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
	if _, err := b.orchestrator.Authorize(context.Background(), usecase.AuthorizeInput{TransactionNumber: txn.Number, VerificationCode: "1"}); !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestOrchestrator_DepositAndWithdraw(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 0)
	b.restrict("a", 1000, 5000, nil)

	deposit, err := b.orchestrator.Deposit(context.Background(), usecase.SingleSidedInput{
		AccountNumber: "1000000001", Amount: amount(2000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deposit.State != domain.TransactionStateCompleted || deposit.RequiresAuthentication {
		t.Fatalf("deposits settle without authentication, got %s", deposit.State)
	}
	if !b.balance("a").Equal(amount(2000)) {
		t.Fatalf("expected 2000, got %s", b.balance("a"))
	}

	small, err := b.orchestrator.Withdraw(context.Background(), usecase.SingleSidedInput{
		AccountNumber: "1000000001", Amount: amount(300),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if small.State != domain.TransactionStateCompleted || !b.balance("a").Equal(amount(1700)) {
		t.Fatalf("expected settled withdrawal, got %s balance %s", small.State, b.balance("a"))
	}

	large, err := b.orchestrator.Withdraw(context.Background(), usecase.SingleSidedInput{
		AccountNumber: "1000000001", Amount: amount(1500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if large.State != domain.TransactionStatePending {
		t.Fatalf("expected restricted withdrawal to wait, got %s", large.State)
	}

	if _, err := b.orchestrator.Withdraw(context.Background(), usecase.SingleSidedInput{
		AccountNumber: "1000000001", Amount: amount(9000),
	}); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestOrchestrator_ConcurrentTransfersConserveMoney(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 100)
	b.open("b", "1000000002", 0)

	const workers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			txn, err := b.orchestrator.Transfer(context.Background(), usecase.TransferInput{
				OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(20),
			})
			if err == nil && txn.State == domain.TransactionStateCompleted {
				mu.Lock()
				completed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if b.balance("a").IsNegative() {
		t.Fatalf("origin went negative: %s", b.balance("a"))
	}
	if !b.balance("a").Add(b.balance("b")).Equal(amount(100)) {
		t.Fatalf("money not conserved: %s + %s", b.balance("a"), b.balance("b"))
	}
	if completed != 5 || !b.balance("b").Equal(amount(100)) {
		t.Fatalf("expected exactly 5 completed transfers, got %d (destination %s)", completed, b.balance("b"))
	}
}
