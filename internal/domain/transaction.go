package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes the money movements the ledger supports.
type TransactionType string

const (
	TransactionTypeTransfer   TransactionType = "TRANSFERENCIA"
	TransactionTypeDeposit    TransactionType = "DEPOSITO"
	TransactionTypeWithdrawal TransactionType = "RETIRO"
)

// TransactionState is a state of the transaction state machine.
type TransactionState string

const (
	TransactionStatePending    TransactionState = "PENDIENTE"
	TransactionStateAuthorized TransactionState = "AUTORIZADA"
	TransactionStateCompleted  TransactionState = "COMPLETADA"
	TransactionStateFailed     TransactionState = "FALLIDA"
	TransactionStateCancelled  TransactionState = "CANCELADA"
	TransactionStateReversed   TransactionState = "REVERSADA"
)

var transactionTransitions = map[TransactionState][]TransactionState{
	TransactionStatePending:    {TransactionStateAuthorized, TransactionStateCancelled},
	TransactionStateAuthorized: {TransactionStateCompleted, TransactionStateFailed},
}

// IsTerminal reports whether no transition may leave s.
func (s TransactionState) IsTerminal() bool {
	_, ok := transactionTransitions[s]
	return !ok
}

// Reasons recorded on FALLIDA transactions and on expired CANCELADA ones.
const (
	FailureInsufficientFundsAtSettlement = "insufficient funds at settlement"
	FailureCollaboratorTimeout           = "collaborator timeout"
	FailureCollaboratorUnavailable       = "collaborator unavailable"
	FailureCreditRejected                = "credit to destination failed"
	FailureDebitRejected                 = "debit from origin failed"
	FailureAccountNotActive              = "account not active at settlement"
	FailureAccountNotFound               = "account not found at settlement"
	FailureAuthorizationExpired          = "authorization window expired"
)

// Transaction is a money movement record and its authorization state.
type Transaction struct {
	ID                     string
	Number                 string
	Type                   TransactionType
	Amount                 decimal.Decimal
	OriginAccountID        string
	OriginAccountNumber    string
	DestinationAccountID   *string
	DestinationNumber      *string
	PriorBalance           decimal.Decimal
	SettlementBalance      *decimal.Decimal
	State                  TransactionState
	RequiresAuthentication bool
	RestrictionID          *string
	PatternID              *string
	FailureReason          string
	VerificationCode       string
	ExecutorUserID         string
	Description            string
	MovementsRecorded      bool
	AuthorizedAt           *time.Time
	SettledAt              *time.Time
	FailedAt               *time.Time
	CancelledAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// CanTransition checks whether the transaction may move to next.
func (t *Transaction) CanTransition(next TransactionState) error {
	for _, allowed := range transactionTransitions[t.State] {
		if allowed == next {
			return nil
		}
	}
	return Wrapf(ErrInvalidStateTransition, "%s -> %s", t.State, next)
}

// Validate validates the transaction shape before it is recorded.
func (t *Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	switch t.Type {
	case TransactionTypeTransfer:
		if t.DestinationAccountID == nil {
			return Wrapf(ErrInvalidTransaction, "transfer requires a destination")
		}
		if *t.DestinationAccountID == t.OriginAccountID {
			return ErrSameAccountTransfer
		}
	case TransactionTypeDeposit, TransactionTypeWithdrawal:
		if t.DestinationAccountID != nil {
			return Wrapf(ErrInvalidTransaction, "%s is single sided", t.Type)
		}
	default:
		return Wrapf(ErrInvalidTransaction, "unknown transaction type %q", t.Type)
	}

	return nil
}

// InitialState is PENDIENTE when authentication is required, AUTORIZADA otherwise.
func InitialState(requiresAuth bool) TransactionState {
	if requiresAuth {
		return TransactionStatePending
	}
	return TransactionStateAuthorized
}

// OriginDelta is the signed balance change applied to the origin account.
func (t *Transaction) OriginDelta() decimal.Decimal {
	if t.Type == TransactionTypeDeposit {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Debits reports whether settlement takes money out of the origin account.
func (t *Transaction) Debits() bool {
	return t.Type != TransactionTypeDeposit
}
