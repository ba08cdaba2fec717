package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxTransactionAmount   = "1000000000" // 1 billion
	MinTransactionAmount   = "0.01"
	MaxDescriptionLength   = 255
	MaxVerificationCodeLen = 64

	// MoneyScale is the number of decimal places every stored amount carries.
	MoneyScale = 2
)

var (
	minAmount = decimal.RequireFromString(MinTransactionAmount)
	maxAmount = decimal.RequireFromString(MaxTransactionAmount)

	accountNumberRegex = regexp.MustCompile(`^[0-9]{10}$`)
)

// ValidateAmount validates a transaction amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if err := ValidateScale(amount); err != nil {
		return err
	}

	if amount.LessThan(minAmount) {
		return Wrapf(ErrAmountTooSmall, "minimum amount is %s", MinTransactionAmount)
	}

	if amount.GreaterThan(maxAmount) {
		return Wrapf(ErrAmountTooLarge, "maximum amount is %s", MaxTransactionAmount)
	}

	return nil
}

// ValidateScale rejects amounts with more decimal places than storage keeps.
// Trailing zeros do not count, so 10.500 is accepted.
func ValidateScale(amount decimal.Decimal) error {
	if amount.Exponent() >= -MoneyScale {
		return nil
	}
	if amount.Equal(amount.Truncate(MoneyScale)) {
		return nil
	}
	return ErrInvalidAmountScale
}

// ValidateAccountNumber validates the 10 digit account number format
func ValidateAccountNumber(number string) error {
	if !accountNumberRegex.MatchString(number) {
		return ErrInvalidAccountNumber
	}
	return nil
}

// ValidateDescription trims and bounds a free-text description
func ValidateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if len(description) > MaxDescriptionLength {
		return "", Wrapf(ErrInvalidDescription, "description exceeds %d characters", MaxDescriptionLength)
	}
	return description, nil
}

// ValidateVerificationCode checks the out-of-band confirmation code
func ValidateVerificationCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrMissingVerification
	}
	if len(code) > MaxVerificationCodeLen {
		return fmt.Errorf("%w: code exceeds %d characters", ErrMissingVerification, MaxVerificationCodeLen)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
