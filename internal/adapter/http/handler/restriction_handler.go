package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// RestrictionService defines the behavior needed by RestrictionHandler.
type RestrictionService interface {
	GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
	AddRestriction(ctx context.Context, input usecase.RestrictionInput) (*domain.Account, error)
	UpdateRestriction(ctx context.Context, restrictionID string, input usecase.RestrictionInput) (*domain.Account, error)
	RemoveRestriction(ctx context.Context, accountID, restrictionID string) (*domain.Account, error)
}

// RestrictionHandler manages the restriction bands of an account.
type RestrictionHandler struct {
	accountUC RestrictionService
}

// NewRestrictionHandler creates a new RestrictionHandler.
func NewRestrictionHandler(accountUC RestrictionService) *RestrictionHandler {
	return &RestrictionHandler{accountUC: accountUC}
}

// List returns the restrictions of an account.
func (h *RestrictionHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := lookupAccount(w, r, h.accountUC, canView)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.RestrictionsFromDomain(account.Restrictions))
}

// Add adds a restriction band.
func (h *RestrictionHandler) Add(w http.ResponseWriter, r *http.Request) {
	account, ok := lookupAccount(w, r, h.accountUC, canView)
	if !ok {
		return
	}

	var req dto.RestrictionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := h.accountUC.AddRestriction(r.Context(), req.ToUseCaseInput(account.ID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(updated))
}

// Update replaces a restriction band.
func (h *RestrictionHandler) Update(w http.ResponseWriter, r *http.Request) {
	account, ok := lookupAccount(w, r, h.accountUC, canView)
	if !ok {
		return
	}

	var req dto.RestrictionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	restrictionID := chi.URLParam(r, "restrictionID")
	updated, err := h.accountUC.UpdateRestriction(r.Context(), restrictionID, req.ToUseCaseInput(account.ID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(updated))
}

// Remove deletes a restriction band.
func (h *RestrictionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	account, ok := lookupAccount(w, r, h.accountUC, canView)
	if !ok {
		return
	}

	updated, err := h.accountUC.RemoveRestriction(r.Context(), account.ID, chi.URLParam(r, "restrictionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(updated))
}
