package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// Orchestrator defines the money movement operations used by TransactionHandler.
type Orchestrator interface {
	ValidateTransfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferQuote, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
	Deposit(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error)
	Withdraw(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error)
	Authorize(ctx context.Context, input usecase.AuthorizeInput) (*domain.Transaction, error)
	Cancel(ctx context.Context, number string) (*domain.Transaction, error)
}

// TransactionReader reads recorded transactions.
type TransactionReader interface {
	GetByNumber(ctx context.Context, number string) (*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	orchestrator Orchestrator
	ledger       TransactionReader
	accounts     AccountFinder
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(orchestrator Orchestrator, ledger TransactionReader, accounts AccountFinder) *TransactionHandler {
	return &TransactionHandler{
		orchestrator: orchestrator,
		ledger:       ledger,
		accounts:     accounts,
	}
}

// Transfer moves money between two accounts. A transfer that needs
// authentication is answered with 202 and the PENDIENTE record.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.ownsAccount(w, r, req.OriginNumber) {
		return
	}

	txn, err := h.orchestrator.Transfer(r.Context(), req.ToUseCaseInput(domain.ExecutorID(r.Context())))
	if err != nil {
		writeTransactionError(w, err, txn)
		return
	}

	writeTransaction(w, txn)
}

// Quote validates a transfer without recording it.
func (h *TransactionHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.ownsAccount(w, r, req.OriginNumber) {
		return
	}

	quote, err := h.orchestrator.ValidateTransfer(r.Context(), req.ToUseCaseInput(domain.ExecutorID(r.Context())))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromUseCase(quote))
}

// Deposit credits an account.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.singleSided(w, r, h.orchestrator.Deposit)
}

// Withdraw debits an account.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.singleSided(w, r, h.orchestrator.Withdraw)
}

func (h *TransactionHandler) singleSided(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error),
) {
	var req dto.SingleSidedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.ownsAccount(w, r, req.AccountNumber) {
		return
	}

	txn, err := op(r.Context(), req.ToUseCaseInput(domain.ExecutorID(r.Context())))
	if err != nil {
		writeTransactionError(w, err, txn)
		return
	}

	writeTransaction(w, txn)
}

// Get retrieves a transaction by number.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.ledger.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.canViewTransaction(r, txn) {
		writeForbidden(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Authorize verifies and settles a PENDIENTE transaction.
func (h *TransactionHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var req dto.AuthorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.ownsTransaction(w, r, number) {
		return
	}

	txn, err := h.orchestrator.Authorize(r.Context(), req.ToUseCaseInput(number, originIP(r)))
	if err != nil {
		writeTransactionError(w, err, txn)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Cancel abandons a PENDIENTE transaction.
func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if !h.ownsTransaction(w, r, number) {
		return
	}

	txn, err := h.orchestrator.Cancel(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

func writeTransaction(w http.ResponseWriter, txn *domain.Transaction) {
	status := http.StatusCreated
	if txn.State == domain.TransactionStatePending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, dto.TransactionFromDomain(txn))
}

// ownsAccount checks that the caller may move money out of the account
// with number. Anonymous callers skip the check.
func (h *TransactionHandler) ownsAccount(w http.ResponseWriter, r *http.Request, number string) bool {
	if _, ok := domain.PrincipalFrom(r.Context()); !ok {
		return true
	}

	account, err := h.accounts.GetAccountByNumber(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return false
	}
	if !canOperate(r, account) {
		writeForbidden(w)
		return false
	}
	return true
}

func (h *TransactionHandler) ownsTransaction(w http.ResponseWriter, r *http.Request, number string) bool {
	if _, ok := domain.PrincipalFrom(r.Context()); !ok {
		return true
	}

	txn, err := h.ledger.GetByNumber(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return false
	}
	return h.ownsAccount(w, r, txn.OriginAccountNumber)
}

func (h *TransactionHandler) canViewTransaction(r *http.Request, txn *domain.Transaction) bool {
	if _, ok := domain.PrincipalFrom(r.Context()); !ok {
		return true
	}

	numbers := []string{txn.OriginAccountNumber}
	if txn.DestinationNumber != nil {
		numbers = append(numbers, *txn.DestinationNumber)
	}
	for _, number := range numbers {
		account, err := h.accounts.GetAccountByNumber(r.Context(), number)
		if err == nil && canView(r, account) {
			return true
		}
	}
	return false
}
