package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

func newReconciler(b *bank, ttl time.Duration) *usecase.ReconciliationUseCase {
	return usecase.NewReconciliationUseCase(b.accounts, b.movements, b.ledger, b.service, nil, zerolog.Nop(), ttl)
}

func TestReconciliation_RecoverMovements(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 0)
	b.open("b", "1000000002", 0)
	ctx := context.Background()

	if _, err := b.orchestrator.Deposit(ctx, usecase.SingleSidedInput{AccountNumber: "1000000001", Amount: amount(100)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b.service.RecordAccountMovementFunc = func(ctx context.Context, input usecase.RecordMovementInput) error {
		return domain.ErrCollaboratorUnavailable
	}
	txn, err := b.orchestrator.Transfer(ctx, usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(40),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.MovementsRecorded {
		t.Fatal("expected movements to be missing")
	}

	reconciler := newReconciler(b, 0)

	before, err := reconciler.ReconcileAccount(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before.IsReconciled || !before.Difference.Equal(amount(-40)) {
		t.Fatalf("expected a -40 discrepancy, got %+v", before)
	}

	// Collaborator still down: nothing recovered, transaction stays flagged.
	recovered, err := reconciler.RecoverMovements(ctx)
	if !errors.Is(err, domain.ErrCollaboratorUnavailable) || recovered != 0 {
		t.Fatalf("expected failed recovery, got %d %v", recovered, err)
	}

	b.service.RecordAccountMovementFunc = nil
	recovered, err = reconciler.RecoverMovements(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recovered != 1 {
		t.Fatalf("expected 1 recovered transaction, got %d", recovered)
	}

	stored, _ := b.ledger.Get(ctx, txn.ID)
	if !stored.MovementsRecorded {
		t.Fatal("expected transaction to be marked reconciled")
	}

	// Second run finds nothing to do.
	recovered, err = reconciler.RecoverMovements(ctx)
	if err != nil || recovered != 0 {
		t.Fatalf("expected idempotent rerun, got %d %v", recovered, err)
	}

	report, err := reconciler.GenerateReconciliationReport(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalAccounts != 2 || report.ReconciledAccounts != 2 || len(report.Discrepancies) != 0 {
		t.Fatalf("expected both accounts reconciled, got %+v", report)
	}
}

func TestReconciliation_ReportsUnbackedBalance(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 75)

	report, err := newReconciler(b, 0).GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %d", len(report.Discrepancies))
	}
	if d := report.Discrepancies[0]; d.AccountNumber != "1000000001" || !d.Difference.Equal(amount(75)) {
		t.Fatalf("unexpected discrepancy %+v", d)
	}
}

func TestReconciliation_ExpirePending(t *testing.T) {
	b := newBank(t)
	b.open("a", "1000000001", 50)
	b.open("b", "1000000002", 0)
	b.restrict("a", 0, 100, nil)
	ctx := context.Background()

	stale, err := b.orchestrator.Transfer(ctx, usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fresh, err := b.orchestrator.Transfer(ctx, usecase.TransferInput{
		OriginNumber: "1000000001", DestinationNumber: "1000000002", Amount: amount(20),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.txns.SetCreatedAt(stale.ID, time.Now().Add(-2*time.Hour))

	expired, err := newReconciler(b, time.Hour).ExpirePending(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired transaction, got %d", expired)
	}

	got, _ := b.ledger.Get(ctx, stale.ID)
	if got.State != domain.TransactionStateCancelled || got.FailureReason != domain.FailureAuthorizationExpired {
		t.Fatalf("expected expired CANCELADA, got %s %q", got.State, got.FailureReason)
	}
	got, _ = b.ledger.Get(ctx, fresh.ID)
	if got.State != domain.TransactionStatePending {
		t.Fatalf("fresh transaction must stay PENDIENTE, got %s", got.State)
	}

	if n, err := newReconciler(b, 0).ExpirePending(ctx); err != nil || n != 0 {
		t.Fatalf("zero TTL disables expiry, got %d %v", n, err)
	}
}
