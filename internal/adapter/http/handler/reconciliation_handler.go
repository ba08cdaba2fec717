package handler

import (
	"context"
	"net/http"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/usecase"
)

// Reconciler defines the reconciliation operations exposed over HTTP.
type Reconciler interface {
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
}

// ReconciliationHandler handles reconciliation requests.
type ReconciliationHandler struct {
	reconciler Reconciler
	accounts   AccountFinder
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciler Reconciler, accounts AccountFinder) *ReconciliationHandler {
	return &ReconciliationHandler{reconciler: reconciler, accounts: accounts}
}

// Report runs a full reconciliation pass.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}

// Account checks a single account.
func (h *ReconciliationHandler) Account(w http.ResponseWriter, r *http.Request) {
	account, ok := lookupAccount(w, r, h.accounts, canView)
	if !ok {
		return
	}

	result, err := h.reconciler.ReconcileAccount(r.Context(), account.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResultFromUseCase(result))
}
