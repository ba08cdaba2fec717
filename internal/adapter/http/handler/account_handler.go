package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	ListMovements(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error)
	CancelAccount(ctx context.Context, id string) (*domain.Account, error)
	BlockAccount(ctx context.Context, id string) (*domain.Account, error)
	ActivateAccount(ctx context.Context, id string) (*domain.Account, error)
}

// AccountTransactionLister lists the transactions touching an account.
type AccountTransactionLister interface {
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	ledger    AccountTransactionLister
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, ledger AccountTransactionLister) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, ledger: ledger}
}

// Create opens a new account. Customers may only open accounts for themselves.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	if p, ok := domain.PrincipalFrom(r.Context()); ok && p.Role != domain.RoleAdmin {
		if req.OwnerID == "" {
			req.OwnerID = p.UserID
		}
		if req.OwnerID != p.UserID {
			writeForbidden(w)
			return
		}
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by number.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := h.lookup(w, r, canView)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts, optionally filtered by owner_id. Customers only see
// their own accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if p, ok := domain.PrincipalFrom(r.Context()); ok && p.Role == domain.RoleCustomer {
		ownerID = p.UserID
	}

	var (
		accounts []*domain.Account
		err      error
	)
	if ownerID != "" {
		accounts, err = h.accountUC.ListByOwner(r.Context(), ownerID)
	} else {
		limit, offset := pagination(r)
		accounts, err = h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
			Limit:  limit,
			Offset: offset,
		})
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Movements lists the balance changes of an account, newest first.
func (h *AccountHandler) Movements(w http.ResponseWriter, r *http.Request) {
	account, ok := h.lookup(w, r, canView)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	movements, err := h.accountUC.ListMovements(r.Context(), account.ID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementsFromDomain(movements))
}

// Transactions lists the transactions touching an account.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	account, ok := h.lookup(w, r, canView)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	txns, err := h.ledger.ListByAccount(r.Context(), account.ID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

// Cancel closes an account with a zero balance.
func (h *AccountHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.accountUC.CancelAccount)
}

// Block freezes an account.
func (h *AccountHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.accountUC.BlockAccount)
}

// Activate reactivates a blocked or inactive account.
func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.accountUC.ActivateAccount)
}

func (h *AccountHandler) changeStatus(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, id string) (*domain.Account, error),
) {
	account, ok := h.lookup(w, r, canView)
	if !ok {
		return
	}

	updated, err := change(r.Context(), account.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(updated))
}

// lookup resolves the {number} path parameter and checks access with allow.
func (h *AccountHandler) lookup(
	w http.ResponseWriter,
	r *http.Request,
	allow func(*http.Request, *domain.Account) bool,
) (*domain.Account, bool) {
	return lookupAccount(w, r, h.accountUC, allow)
}

// AccountFinder resolves accounts by number.
type AccountFinder interface {
	GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
}

func lookupAccount(
	w http.ResponseWriter,
	r *http.Request,
	accounts AccountFinder,
	allow func(*http.Request, *domain.Account) bool,
) (*domain.Account, bool) {
	number := chi.URLParam(r, "number")
	if number == "" {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAccountNumber.Code, "missing account number")
		return nil, false
	}

	account, err := accounts.GetAccountByNumber(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	if !allow(r, account) {
		writeForbidden(w)
		return nil, false
	}
	return account, true
}
