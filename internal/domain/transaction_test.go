package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransaction_CanTransition(t *testing.T) {
	tests := []struct {
		from    TransactionState
		to      TransactionState
		allowed bool
	}{
		{TransactionStatePending, TransactionStateAuthorized, true},
		{TransactionStatePending, TransactionStateCancelled, true},
		{TransactionStatePending, TransactionStateCompleted, false},
		{TransactionStatePending, TransactionStateFailed, false},
		{TransactionStateAuthorized, TransactionStateCompleted, true},
		{TransactionStateAuthorized, TransactionStateFailed, true},
		{TransactionStateAuthorized, TransactionStatePending, false},
		{TransactionStateAuthorized, TransactionStateCancelled, false},
		{TransactionStateCompleted, TransactionStateFailed, false},
		{TransactionStateFailed, TransactionStateAuthorized, false},
		{TransactionStateCancelled, TransactionStateAuthorized, false},
		{TransactionStateReversed, TransactionStateCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			txn := &Transaction{State: tt.from}
			err := txn.CanTransition(tt.to)
			if tt.allowed && err != nil {
				t.Fatalf("expected transition allowed, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrInvalidStateTransition) {
				t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
			}
		})
	}
}

func TestTransactionState_IsTerminal(t *testing.T) {
	terminal := []TransactionState{
		TransactionStateCompleted, TransactionStateFailed,
		TransactionStateCancelled, TransactionStateReversed,
	}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if TransactionStatePending.IsTerminal() || TransactionStateAuthorized.IsTerminal() {
		t.Error("pending and authorized are not terminal")
	}
}

func TestTransaction_Validate(t *testing.T) {
	dest := "acc-2"
	same := "acc-1"
	amount := decimal.NewFromInt(10)

	tests := []struct {
		name    string
		txn     Transaction
		wantErr error
	}{
		{"transfer", Transaction{Type: TransactionTypeTransfer, Amount: amount, OriginAccountID: "acc-1", DestinationAccountID: &dest}, nil},
		{"deposit", Transaction{Type: TransactionTypeDeposit, Amount: amount, OriginAccountID: "acc-1"}, nil},
		{"withdrawal", Transaction{Type: TransactionTypeWithdrawal, Amount: amount, OriginAccountID: "acc-1"}, nil},
		{"transfer without destination", Transaction{Type: TransactionTypeTransfer, Amount: amount, OriginAccountID: "acc-1"}, ErrInvalidTransaction},
		{"transfer to itself", Transaction{Type: TransactionTypeTransfer, Amount: amount, OriginAccountID: "acc-1", DestinationAccountID: &same}, ErrSameAccountTransfer},
		{"deposit with destination", Transaction{Type: TransactionTypeDeposit, Amount: amount, OriginAccountID: "acc-1", DestinationAccountID: &dest}, ErrInvalidTransaction},
		{"unknown type", Transaction{Type: "PRESTAMO", Amount: amount, OriginAccountID: "acc-1"}, ErrInvalidTransaction},
		{"zero amount", Transaction{Type: TransactionTypeDeposit, Amount: decimal.Zero, OriginAccountID: "acc-1"}, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInitialState(t *testing.T) {
	if InitialState(true) != TransactionStatePending {
		t.Error("restricted transactions start pending")
	}
	if InitialState(false) != TransactionStateAuthorized {
		t.Error("unrestricted transactions start authorized")
	}
}

func TestTransaction_OriginDelta(t *testing.T) {
	amount := decimal.NewFromInt(25)

	deposit := &Transaction{Type: TransactionTypeDeposit, Amount: amount}
	if !deposit.OriginDelta().Equal(amount) || deposit.Debits() {
		t.Error("deposit credits the origin")
	}

	withdrawal := &Transaction{Type: TransactionTypeWithdrawal, Amount: amount}
	if !withdrawal.OriginDelta().Equal(amount.Neg()) || !withdrawal.Debits() {
		t.Error("withdrawal debits the origin")
	}
}
