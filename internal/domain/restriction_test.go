package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func band(id string, from, to int64) Restriction {
	return Restriction{ID: id, AmountFrom: decimal.NewFromInt(from), AmountTo: decimal.NewFromInt(to)}
}

func bandOf(from, to string) Restriction {
	return Restriction{AmountFrom: decimal.RequireFromString(from), AmountTo: decimal.RequireFromString(to)}
}

func TestRestriction_Contains(t *testing.T) {
	r := band("r1", 100, 500)

	tests := []struct {
		amount int64
		want   bool
	}{
		{99, false},
		{100, true},
		{300, true},
		{500, true},
		{501, false},
	}

	for _, tt := range tests {
		if got := r.Contains(decimal.NewFromInt(tt.amount)); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestRestriction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       Restriction
		wantErr error
	}{
		{"valid", band("", 0, 100), nil},
		{"equal bounds", band("", 100, 100), ErrInvalidRange},
		{"inverted bounds", band("", 200, 100), ErrInvalidRange},
		{"negative from", band("", -1, 100), ErrInvalidRange},
		{"two decimals", bandOf("0", "100.99"), nil},
		{"sub-cent upper bound", bandOf("0", "100.004"), ErrInvalidAmountScale},
		{"sub-cent lower bound", bandOf("100.0045", "200"), ErrInvalidAmountScale},
		{"sub-cent width", bandOf("0.001", "0.002"), ErrInvalidAmountScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.r.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckRestrictionFits(t *testing.T) {
	existing := []Restriction{band("a", 0, 100), band("b", 500, 1000)}

	tests := []struct {
		name      string
		candidate Restriction
		skipID    string
		wantErr   error
	}{
		{"disjoint gap", band("", 101, 499), "", nil},
		{"shared lower boundary", band("", 100, 200), "", ErrOverlappingRange},
		{"shared upper boundary", band("", 400, 500), "", ErrOverlappingRange},
		{"contained", band("", 600, 700), "", ErrOverlappingRange},
		{"containing", band("", 200, 2000), "", ErrOverlappingRange},
		{"above all", band("", 1001, 5000), "", nil},
		{"update skips itself", band("a", 0, 150), "a", nil},
		{"update still checks others", band("a", 0, 600), "a", ErrOverlappingRange},
		{"invalid range checked first", band("", 300, 300), "", ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRestrictionFits(existing, tt.candidate, tt.skipID)
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

func TestEvaluateRestrictions(t *testing.T) {
	pattern := "pattern-1"
	high := band("high", 1000, 5000)
	high.PatternID = &pattern
	restrictions := []Restriction{band("low", 100, 500), high}

	t.Run("no match", func(t *testing.T) {
		v := EvaluateRestrictions(restrictions, decimal.NewFromInt(50))
		if v.RequiresAuth || v.Restriction != nil || v.PatternID != nil {
			t.Fatalf("expected empty verdict, got %+v", v)
		}
	})

	t.Run("match without pattern", func(t *testing.T) {
		v := EvaluateRestrictions(restrictions, decimal.NewFromInt(100))
		if !v.RequiresAuth || v.Restriction == nil || v.Restriction.ID != "low" {
			t.Fatalf("expected low band, got %+v", v)
		}
		if v.PatternID != nil {
			t.Fatalf("expected no pattern, got %v", *v.PatternID)
		}
	})

	t.Run("match with pattern", func(t *testing.T) {
		v := EvaluateRestrictions(restrictions, decimal.NewFromInt(5000))
		if !v.RequiresAuth || v.PatternID == nil || *v.PatternID != pattern {
			t.Fatalf("expected pattern verdict, got %+v", v)
		}
	})

	t.Run("empty set", func(t *testing.T) {
		if v := EvaluateRestrictions(nil, decimal.NewFromInt(1)); v.RequiresAuth {
			t.Fatal("expected no authentication for empty set")
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := EvaluateRestrictions(restrictions, decimal.NewFromInt(300))
		b := EvaluateRestrictions(restrictions, decimal.NewFromInt(300))
		if a.RequiresAuth != b.RequiresAuth || a.Restriction.ID != b.Restriction.ID {
			t.Fatal("expected identical verdicts")
		}
	})
}
