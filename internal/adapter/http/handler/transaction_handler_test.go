package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

type orchestratorStub struct {
	quoteFn     func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferQuote, error)
	transferFn  func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
	depositFn   func(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error)
	withdrawFn  func(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error)
	authorizeFn func(ctx context.Context, input usecase.AuthorizeInput) (*domain.Transaction, error)
	cancelFn    func(ctx context.Context, number string) (*domain.Transaction, error)
}

func (s *orchestratorStub) ValidateTransfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferQuote, error) {
	return s.quoteFn(ctx, input)
}

func (s *orchestratorStub) Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
	return s.transferFn(ctx, input)
}

func (s *orchestratorStub) Deposit(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error) {
	return s.depositFn(ctx, input)
}

func (s *orchestratorStub) Withdraw(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error) {
	return s.withdrawFn(ctx, input)
}

func (s *orchestratorStub) Authorize(ctx context.Context, input usecase.AuthorizeInput) (*domain.Transaction, error) {
	return s.authorizeFn(ctx, input)
}

func (s *orchestratorStub) Cancel(ctx context.Context, number string) (*domain.Transaction, error) {
	return s.cancelFn(ctx, number)
}

func newTransactionHandlerFixture(orch *orchestratorStub, txns ...*domain.Transaction) *TransactionHandler {
	accounts := newAccountServiceStub(
		testAccount("acc-1", "0000000001", "user-1"),
		testAccount("acc-2", "0000000002", "user-2"),
	)
	ledger := &ledgerStub{txns: make(map[string]*domain.Transaction)}
	for _, t := range txns {
		ledger.txns[t.Number] = t
	}
	return NewTransactionHandler(orch, ledger, accounts)
}

func transferBody(origin, dest string, amount int64) *bytes.Reader {
	body, _ := json.Marshal(dto.TransferRequest{
		OriginNumber:      origin,
		DestinationNumber: dest,
		Amount:            decimal.NewFromInt(amount),
	})
	return bytes.NewReader(body)
}

func TestTransactionHandler_Transfer_Completed(t *testing.T) {
	var captured usecase.TransferInput
	handler := newTransactionHandlerFixture(&orchestratorStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{Number: "TRX1", State: domain.TransactionStateCompleted, Amount: input.Amount}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/transfers", transferBody("0000000001", "0000000002", 40))
	req = withPrincipal(req, domain.Principal{UserID: "user-1", Role: domain.RoleCustomer})
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ExecutorUserID != "user-1" || captured.OriginNumber != "0000000001" {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestTransactionHandler_Transfer_Pending(t *testing.T) {
	handler := newTransactionHandlerFixture(&orchestratorStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			return &domain.Transaction{Number: "TRX1", State: domain.TransactionStatePending, RequiresAuthentication: true}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/transfers", transferBody("0000000001", "0000000002", 40))
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp.RequiresAuthentication {
		t.Fatalf("unexpected response %s: %v", rec.Body.String(), err)
	}
}

func TestTransactionHandler_Transfer_FailedAtSettlement(t *testing.T) {
	handler := newTransactionHandlerFixture(&orchestratorStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			return &domain.Transaction{Number: "TRX1", State: domain.TransactionStateFailed}, domain.ErrCollaboratorUnavailable
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/transfers", transferBody("0000000001", "0000000002", 40))
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Transaction == nil || resp.Transaction.State != "FALLIDA" {
		t.Fatalf("expected failed record in body, got %+v", resp)
	}
}

func TestTransactionHandler_Transfer_NotOwner(t *testing.T) {
	handler := newTransactionHandlerFixture(&orchestratorStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			t.Fatal("transfer must not run for a foreign origin")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/transfers", transferBody("0000000002", "0000000001", 40))
	req = withPrincipal(req, domain.Principal{UserID: "user-1", Role: domain.RoleCustomer})
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestTransactionHandler_Quote(t *testing.T) {
	pattern := "P"
	handler := newTransactionHandlerFixture(&orchestratorStub{
		quoteFn: func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferQuote, error) {
			return &usecase.TransferQuote{
				Origin:      testAccount("acc-1", input.OriginNumber, "user-1"),
				Destination: testAccount("acc-2", input.DestinationNumber, "user-2"),
				Amount:      input.Amount,
				Verdict:     domain.Verdict{RequiresAuth: true, PatternID: &pattern},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/transfers/quote", transferBody("0000000001", "0000000002", 500))
	rec := httptest.NewRecorder()

	handler.Quote(rec, req)

	var resp dto.QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.Code != http.StatusOK || !resp.RequiresAuthentication || *resp.PatternID != "P" {
		t.Fatalf("unexpected quote %d %+v", rec.Code, resp)
	}
}

func TestTransactionHandler_DepositAndWithdraw(t *testing.T) {
	handler := newTransactionHandlerFixture(&orchestratorStub{
		depositFn: func(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error) {
			return &domain.Transaction{Number: "TRX1", Type: domain.TransactionTypeDeposit, State: domain.TransactionStateCompleted}, nil
		},
		withdrawFn: func(ctx context.Context, input usecase.SingleSidedInput) (*domain.Transaction, error) {
			return nil, domain.ErrInsufficientFunds
		},
	})

	body := `{"account_number":"0000000001","amount":"25"}`

	req := httptest.NewRequest(http.MethodPost, "/transactions/deposits", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.Deposit(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit: expected 201, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/transactions/withdrawals", bytes.NewBufferString(body))
	rec = httptest.NewRecorder()
	handler.Withdraw(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("withdraw: expected 422, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Transaction != nil {
		t.Fatalf("rejected withdrawal must not carry a record: %+v", resp)
	}
}

func TestTransactionHandler_Authorize(t *testing.T) {
	pending := &domain.Transaction{Number: "TRX1", OriginAccountNumber: "0000000001", State: domain.TransactionStatePending}
	var captured usecase.AuthorizeInput
	handler := newTransactionHandlerFixture(&orchestratorStub{
		authorizeFn: func(ctx context.Context, input usecase.AuthorizeInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{Number: input.TransactionNumber, State: domain.TransactionStateCompleted}, nil
		},
	}, pending)

	req := httptest.NewRequest(http.MethodPost, "/transactions/TRX1/authorize", bytes.NewBufferString(`{"verification_code":"123456"}`))
	req.RemoteAddr = "203.0.113.9:5555"
	req = setChiURLParams(req, "number", "TRX1")
	req = withPrincipal(req, domain.Principal{UserID: "user-1", Role: domain.RoleCustomer})
	rec := httptest.NewRecorder()

	handler.Authorize(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.TransactionNumber != "TRX1" || captured.VerificationCode != "123456" || captured.OriginIP != "203.0.113.9" {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestTransactionHandler_Authorize_Throttled(t *testing.T) {
	handler := newTransactionHandlerFixture(&orchestratorStub{
		authorizeFn: func(ctx context.Context, input usecase.AuthorizeInput) (*domain.Transaction, error) {
			return nil, domain.ErrTooManyAttempts
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"verification_code":"1"}`))
	req = setChiURLParams(req, "number", "TRX1")
	rec := httptest.NewRecorder()

	handler.Authorize(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestTransactionHandler_CancelAndGet(t *testing.T) {
	dest := "0000000002"
	txn := &domain.Transaction{Number: "TRX1", OriginAccountNumber: "0000000001", DestinationNumber: &dest, State: domain.TransactionStatePending}
	handler := newTransactionHandlerFixture(&orchestratorStub{
		cancelFn: func(ctx context.Context, number string) (*domain.Transaction, error) {
			return &domain.Transaction{Number: number, State: domain.TransactionStateCancelled}, nil
		},
	}, txn)

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "number", "TRX1")
	req = withPrincipal(req, domain.Principal{UserID: "user-2", Role: domain.RoleCustomer})
	rec := httptest.NewRecorder()
	handler.Get(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("destination owner should see the transaction, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Cancel(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("destination owner must not cancel, got %d", rec.Code)
	}

	req = setChiURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "number", "TRX1")
	req = withPrincipal(req, domain.Principal{UserID: "user-1", Role: domain.RoleCustomer})
	rec = httptest.NewRecorder()
	handler.Cancel(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("origin owner cancels, got %d", rec.Code)
	}

	req = setChiURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "number", "TRX404")
	rec = httptest.NewRecorder()
	handler.Get(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
