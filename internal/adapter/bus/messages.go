// Package bus carries collaborator calls over RabbitMQ as request/reply
// commands, one queue per command topic.
package bus

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// Command topics.
const (
	TopicFindAccountByNumber = "accounts.find_by_number"
	TopicFindAccountByID     = "accounts.find_by_id"
	TopicAdjustBalance       = "accounts.adjust_balance"
	TopicRecordMovement      = "accounts.record_movement"
	TopicRestrictions        = "accounts.restrictions"
	TopicValidatePattern     = "patterns.validate"
	TopicOwnerExists         = "users.exists"
)

// AccountTopics are the commands the accounts service answers.
var AccountTopics = []string{
	TopicFindAccountByNumber,
	TopicFindAccountByID,
	TopicAdjustBalance,
	TopicRecordMovement,
	TopicRestrictions,
}

// Reply wraps every response. Error is set instead of Payload on failure.
type Reply struct {
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ReplyError     `json:"error,omitempty"`
}

// ReplyError carries a domain error code across the bus.
type ReplyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Err converts the reply error back into the registered domain sentinel.
// Unknown codes become collaborator failures.
func (e *ReplyError) Err() error {
	if sentinel, ok := domain.ErrorFromCode(e.Code); ok {
		if e.Message == "" || e.Message == sentinel.Message {
			return sentinel
		}
		return domain.Wrapf(sentinel, "%s", e.Message)
	}
	return domain.Wrapf(domain.ErrCollaboratorUnavailable, "remote %s: %s", e.Code, e.Message)
}

// NewReplyError converts err for the wire.
func NewReplyError(err error) *ReplyError {
	if de, ok := domain.AsError(err); ok {
		return &ReplyError{Code: de.Code, Message: err.Error()}
	}
	return &ReplyError{Code: "INTERNAL", Message: "internal error"}
}

// FindAccountByNumberRequest is the accounts.find_by_number body.
type FindAccountByNumberRequest struct {
	Number string `json:"number"`
}

// FindAccountByIDRequest is the accounts.find_by_id body.
type FindAccountByIDRequest struct {
	AccountID string `json:"account_id"`
}

// AdjustBalanceRequest is the accounts.adjust_balance body.
type AdjustBalanceRequest struct {
	AccountID              string          `json:"account_id"`
	Delta                  decimal.Decimal `json:"delta"`
	RequireSufficientFunds bool            `json:"require_sufficient_funds"`
}

// RecordMovementRequest is the accounts.record_movement body.
type RecordMovementRequest struct {
	AccountID         string          `json:"account_id"`
	TransactionID     string          `json:"transaction_id"`
	TransactionNumber string          `json:"transaction_number"`
	Delta             decimal.Decimal `json:"delta"`
}

// RestrictionsRequest is the accounts.restrictions body.
type RestrictionsRequest struct {
	AccountID string `json:"account_id"`
}

// RestrictionsResponse answers accounts.restrictions.
type RestrictionsResponse struct {
	Restrictions []RestrictionMessage `json:"restrictions"`
}

// ValidatePatternRequest is the patterns.validate body.
type ValidatePatternRequest struct {
	PatternID string   `json:"pattern_id"`
	Factors   []string `json:"factors"`
}

// ValidatePatternResponse answers patterns.validate.
type ValidatePatternResponse struct {
	Valid      bool `json:"valid"`
	MatchCount int  `json:"match_count"`
}

// OwnerExistsRequest is the users.exists body.
type OwnerExistsRequest struct {
	UserID string `json:"user_id"`
}

// OwnerExistsResponse answers users.exists.
type OwnerExistsResponse struct {
	Exists bool `json:"exists"`
}

// Empty answers commands without a result.
type Empty struct{}

// AccountMessage is an account on the wire.
type AccountMessage struct {
	ID             string               `json:"id"`
	Number         string               `json:"number"`
	OwnerID        string               `json:"owner_id"`
	Type           string               `json:"type"`
	Balance        decimal.Decimal      `json:"balance"`
	Status         string               `json:"status"`
	Restrictions   []RestrictionMessage `json:"restrictions"`
	LastMovementAt *time.Time           `json:"last_movement_at,omitempty"`
	Version        int64                `json:"version"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// RestrictionMessage is a restriction on the wire.
type RestrictionMessage struct {
	ID         string          `json:"id"`
	AmountFrom decimal.Decimal `json:"amount_from"`
	AmountTo   decimal.Decimal `json:"amount_to"`
	PatternID  *string         `json:"pattern_id,omitempty"`
}

// NewAccountMessage converts a domain account.
func NewAccountMessage(a *domain.Account) *AccountMessage {
	return &AccountMessage{
		ID:             a.ID,
		Number:         a.Number,
		OwnerID:        a.OwnerID,
		Type:           string(a.Type),
		Balance:        a.Balance,
		Status:         string(a.Status),
		Restrictions:   newRestrictionMessages(a.Restrictions),
		LastMovementAt: a.LastMovementAt,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// Account converts back to the domain account.
func (m *AccountMessage) Account() *domain.Account {
	return &domain.Account{
		ID:             m.ID,
		Number:         m.Number,
		OwnerID:        m.OwnerID,
		Type:           domain.AccountType(m.Type),
		Balance:        m.Balance,
		Status:         domain.AccountStatus(m.Status),
		Restrictions:   restrictionsFromMessages(m.Restrictions),
		LastMovementAt: m.LastMovementAt,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func newRestrictionMessages(rs []domain.Restriction) []RestrictionMessage {
	out := make([]RestrictionMessage, 0, len(rs))
	for _, r := range rs {
		out = append(out, RestrictionMessage{
			ID:         r.ID,
			AmountFrom: r.AmountFrom,
			AmountTo:   r.AmountTo,
			PatternID:  r.PatternID,
		})
	}
	return out
}

func restrictionsFromMessages(ms []RestrictionMessage) []domain.Restriction {
	out := make([]domain.Restriction, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.Restriction{
			ID:         m.ID,
			AmountFrom: m.AmountFrom,
			AmountTo:   m.AmountTo,
			PatternID:  m.PatternID,
		})
	}
	return out
}
