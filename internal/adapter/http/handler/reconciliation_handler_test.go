package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/usecase"
)

type reconcilerStub struct {
	reportFn  func(ctx context.Context) (*usecase.ReconciliationReport, error)
	accountFn func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
}

func (s *reconcilerStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.reportFn(ctx)
}

func (s *reconcilerStub) ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
	return s.accountFn(ctx, accountID)
}

func TestReconciliationHandler_Report(t *testing.T) {
	handler := NewReconciliationHandler(&reconcilerStub{
		reportFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			return &usecase.ReconciliationReport{TotalAccounts: 3, ReconciledAccounts: 3, MovementsRecovered: 1}, nil
		},
	}, newAccountServiceStub())

	rec := httptest.NewRecorder()
	handler.Report(rec, httptest.NewRequest(http.MethodGet, "/reconciliation", nil))

	var resp dto.ReconciliationReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalAccounts != 3 || resp.MovementsRecovered != 1 {
		t.Fatalf("unexpected report %+v", resp)
	}
}

func TestReconciliationHandler_Report_Error(t *testing.T) {
	handler := NewReconciliationHandler(&reconcilerStub{
		reportFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			return nil, errors.New("db down")
		},
	}, newAccountServiceStub())

	rec := httptest.NewRecorder()
	handler.Report(rec, httptest.NewRequest(http.MethodGet, "/reconciliation", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestReconciliationHandler_Account(t *testing.T) {
	handler := NewReconciliationHandler(&reconcilerStub{
		accountFn: func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
			if accountID != "acc-1" {
				t.Fatalf("expected internal id, got %s", accountID)
			}
			return &usecase.ReconciliationResult{
				AccountNumber:     "0000000001",
				RecordedBalance:   decimal.NewFromInt(100),
				CalculatedBalance: decimal.NewFromInt(100),
				IsReconciled:      true,
			}, nil
		},
	}, newAccountServiceStub(testAccount("acc-1", "0000000001", "user-1")))

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "number", "0000000001")
	rec := httptest.NewRecorder()
	handler.Account(rec, req)

	var resp dto.ReconciliationResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.IsReconciled {
		t.Fatalf("unexpected result %s: %v", rec.Body.String(), err)
	}
}
