package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
	"github.com/iho/gobank/internal/usecase/mocks"
)

func TestRestrictionEvaluator_Evaluate(t *testing.T) {
	bands := []domain.Restriction{
		{ID: "r1", AmountFrom: amount(0), AmountTo: amount(100), PatternID: ptr("P")},
		{ID: "r2", AmountFrom: amount(500), AmountTo: amount(1000)},
	}
	service := &mocks.MockAccountService{
		GetAccountRestrictionsFunc: func(ctx context.Context, accountID string) ([]domain.Restriction, error) {
			return bands, nil
		},
	}
	evaluator := usecase.NewRestrictionEvaluator(service, time.Second)
	account := &domain.Account{ID: "a"}

	tests := []struct {
		name        string
		amount      int64
		wantAuth    bool
		wantPattern string
	}{
		{name: "inside first band", amount: 50, wantAuth: true, wantPattern: "P"},
		{name: "lower bound inclusive", amount: 0, wantAuth: true, wantPattern: "P"},
		{name: "upper bound inclusive", amount: 100, wantAuth: true, wantPattern: "P"},
		{name: "between bands", amount: 300},
		{name: "band without pattern", amount: 700, wantAuth: true},
		{name: "above all bands", amount: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := evaluator.Evaluate(context.Background(), account, amount(tt.amount))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if verdict.RequiresAuth != tt.wantAuth {
				t.Fatalf("expected RequiresAuth %v, got %v", tt.wantAuth, verdict.RequiresAuth)
			}
			got := ""
			if verdict.PatternID != nil {
				got = *verdict.PatternID
			}
			if got != tt.wantPattern {
				t.Errorf("expected pattern %q, got %q", tt.wantPattern, got)
			}
		})
	}
}

func TestRestrictionEvaluator_CollaboratorTimeout(t *testing.T) {
	service := &mocks.MockAccountService{
		GetAccountRestrictionsFunc: func(ctx context.Context, accountID string) ([]domain.Restriction, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	evaluator := usecase.NewRestrictionEvaluator(service, 10*time.Millisecond)

	_, err := evaluator.Evaluate(context.Background(), &domain.Account{ID: "a"}, amount(10))
	if !errors.Is(err, domain.ErrCollaboratorTimeout) {
		t.Fatalf("expected ErrCollaboratorTimeout, got %v", err)
	}
}
