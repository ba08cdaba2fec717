package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Restriction guards a monetary band of an account behind an authentication pattern.
type Restriction struct {
	ID         string
	AmountFrom decimal.Decimal
	AmountTo   decimal.Decimal
	PatternID  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Contains reports whether amount falls inside the band, both ends inclusive.
func (r Restriction) Contains(amount decimal.Decimal) bool {
	return r.AmountFrom.LessThanOrEqual(amount) && amount.LessThanOrEqual(r.AmountTo)
}

// Overlaps reports whether two bands collide. Shared boundary values count
// as a collision, so [0,100] and [100,200] overlap.
func (r Restriction) Overlaps(other Restriction) bool {
	return other.Contains(r.AmountFrom) ||
		other.Contains(r.AmountTo) ||
		r.Contains(other.AmountFrom) ||
		r.Contains(other.AmountTo)
}

// Validate checks the band bounds.
func (r Restriction) Validate() error {
	if r.AmountFrom.IsNegative() {
		return Wrapf(ErrInvalidRange, "amount_from must not be negative")
	}
	if ValidateScale(r.AmountFrom) != nil {
		return Wrapf(ErrInvalidAmountScale, "amount_from %s", r.AmountFrom)
	}
	if ValidateScale(r.AmountTo) != nil {
		return Wrapf(ErrInvalidAmountScale, "amount_to %s", r.AmountTo)
	}
	if r.AmountFrom.GreaterThanOrEqual(r.AmountTo) {
		return ErrInvalidRange
	}
	return nil
}

// CheckRestrictionFits validates candidate against the existing set. The
// restriction with skipID is ignored, which lets updates check against
// everything but themselves.
func CheckRestrictionFits(existing []Restriction, candidate Restriction, skipID string) error {
	if err := candidate.Validate(); err != nil {
		return err
	}

	for _, r := range existing {
		if skipID != "" && r.ID == skipID {
			continue
		}
		if candidate.Overlaps(r) {
			return Wrapf(ErrOverlappingRange, "[%s, %s] collides with [%s, %s]",
				candidate.AmountFrom, candidate.AmountTo, r.AmountFrom, r.AmountTo)
		}
	}

	return nil
}

// Verdict is the outcome of evaluating an amount against an account's restrictions.
type Verdict struct {
	RequiresAuth bool
	Restriction  *Restriction
	PatternID    *string
}

// EvaluateRestrictions returns the verdict for amount against restrictions.
// The first band containing amount wins; no match means no authentication.
// It has no side effects and gives the same answer for the same inputs.
func EvaluateRestrictions(restrictions []Restriction, amount decimal.Decimal) Verdict {
	for i := range restrictions {
		if restrictions[i].Contains(amount) {
			matched := restrictions[i]
			return Verdict{
				RequiresAuth: true,
				Restriction:  &matched,
				PatternID:    matched.PatternID,
			}
		}
	}

	return Verdict{}
}
