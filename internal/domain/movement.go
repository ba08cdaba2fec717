package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement is an append-only record of a balance change on one account.
// There is at most one movement per account and transaction.
type Movement struct {
	ID                string
	AccountID         string
	TransactionID     string
	TransactionNumber string
	Delta             decimal.Decimal
	CreatedAt         time.Time
}
