package domain

import "time"

// Event types
const (
	EventTypeAccountCreated        = "account.created"
	EventTypeAccountStatusChanged  = "account.status_changed"
	EventTypeTransactionCreated    = "transaction.created"
	EventTypeTransactionAuthorized = "transaction.authorized"
	EventTypeTransactionCompleted  = "transaction.completed"
	EventTypeTransactionFailed     = "transaction.failed"
	EventTypeTransactionCancelled  = "transaction.cancelled"
)

// Aggregate types
const (
	AggregateTypeAccount     = "account"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
	// Attempts counts failed deliveries; LastError holds the latest cause.
	Attempts  int
	LastError string
}

// EventTypeForState maps a transaction state to the event emitted on entering it.
func EventTypeForState(state TransactionState) string {
	switch state {
	case TransactionStateAuthorized:
		return EventTypeTransactionAuthorized
	case TransactionStateCompleted:
		return EventTypeTransactionCompleted
	case TransactionStateFailed:
		return EventTypeTransactionFailed
	case TransactionStateCancelled:
		return EventTypeTransactionCancelled
	default:
		return EventTypeTransactionCreated
	}
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Number    string `json:"number"`
	OwnerID   string `json:"owner_id"`
	Type      string `json:"type"`
}

// TransactionEvent payload, shared by every transaction.* event
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"`
	Number        string `json:"number"`
	Type          string `json:"type"`
	State         string `json:"state"`
	Amount        string `json:"amount"`
	OriginID      string `json:"origin_account_id"`
	DestinationID string `json:"destination_account_id,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	EventAt       string `json:"event_at"`
}

// NewTransactionEventPayload builds the outbox payload for t.
func NewTransactionEventPayload(t *Transaction, at time.Time) map[string]any {
	payload := map[string]any{
		"transaction_id":    t.ID,
		"number":            t.Number,
		"type":              string(t.Type),
		"state":             string(t.State),
		"amount":            t.Amount.String(),
		"origin_account_id": t.OriginAccountID,
		"event_at":          at.UTC().Format(time.RFC3339Nano),
	}
	if t.DestinationAccountID != nil {
		payload["destination_account_id"] = *t.DestinationAccountID
	}
	if t.FailureReason != "" {
		payload["failure_reason"] = t.FailureReason
	}
	return payload
}
