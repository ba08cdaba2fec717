package postgres

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var accountNumberSpace = big.NewInt(10_000_000_000)

// RandomNumberGenerator draws account and transaction numbers. Uniqueness is
// enforced by the callers and the unique indexes, not here.
type RandomNumberGenerator struct{}

// NewRandomNumberGenerator creates a new RandomNumberGenerator.
func NewRandomNumberGenerator() *RandomNumberGenerator {
	return &RandomNumberGenerator{}
}

// AccountNumber returns a random 10 digit number.
func (g *RandomNumberGenerator) AccountNumber() string {
	n, err := rand.Int(rand.Reader, accountNumberSpace)
	if err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return fmt.Sprintf("%010d", n.Int64())
}

// TransactionNumber returns TRX, the UTC timestamp and a 6 character suffix.
func (g *RandomNumberGenerator) TransactionNumber(at time.Time) string {
	suffix := make([]byte, 6)
	alphabetSize := big.NewInt(int64(len(suffixAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		suffix[i] = suffixAlphabet[n.Int64()]
	}
	return "TRX" + at.UTC().Format("20060102150405") + string(suffix)
}
