package bus

import (
	"context"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// Caller is the request/reply primitive the collaborator clients use.
type Caller interface {
	Call(ctx context.Context, topic string, req, resp any) error
}

// AccountClient implements usecase.AccountService over the bus.
type AccountClient struct {
	caller Caller
}

// NewAccountClient creates an AccountClient.
func NewAccountClient(caller Caller) *AccountClient {
	return &AccountClient{caller: caller}
}

// FindAccountByNumber implements usecase.AccountService.
func (c *AccountClient) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	var resp AccountMessage
	if err := c.caller.Call(ctx, TopicFindAccountByNumber, FindAccountByNumberRequest{Number: number}, &resp); err != nil {
		return nil, err
	}
	return resp.Account(), nil
}

// FindAccountByID implements usecase.AccountService.
func (c *AccountClient) FindAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	var resp AccountMessage
	if err := c.caller.Call(ctx, TopicFindAccountByID, FindAccountByIDRequest{AccountID: id}, &resp); err != nil {
		return nil, err
	}
	return resp.Account(), nil
}

// AdjustAccountBalance implements usecase.AccountService.
func (c *AccountClient) AdjustAccountBalance(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.Account, error) {
	req := AdjustBalanceRequest{
		AccountID:              input.AccountID,
		Delta:                  input.Delta,
		RequireSufficientFunds: input.RequireSufficientFunds,
	}
	var resp AccountMessage
	if err := c.caller.Call(ctx, TopicAdjustBalance, req, &resp); err != nil {
		return nil, err
	}
	return resp.Account(), nil
}

// RecordAccountMovement implements usecase.AccountService.
func (c *AccountClient) RecordAccountMovement(ctx context.Context, input usecase.RecordMovementInput) error {
	req := RecordMovementRequest{
		AccountID:         input.AccountID,
		TransactionID:     input.TransactionID,
		TransactionNumber: input.TransactionNumber,
		Delta:             input.Delta,
	}
	return c.caller.Call(ctx, TopicRecordMovement, req, nil)
}

// GetAccountRestrictions implements usecase.AccountService.
func (c *AccountClient) GetAccountRestrictions(ctx context.Context, accountID string) ([]domain.Restriction, error) {
	var resp RestrictionsResponse
	if err := c.caller.Call(ctx, TopicRestrictions, RestrictionsRequest{AccountID: accountID}, &resp); err != nil {
		return nil, err
	}
	return restrictionsFromMessages(resp.Restrictions), nil
}

// PatternClient implements usecase.PatternValidator over the bus.
type PatternClient struct {
	caller Caller
}

// NewPatternClient creates a PatternClient.
func NewPatternClient(caller Caller) *PatternClient {
	return &PatternClient{caller: caller}
}

// ValidatePattern implements usecase.PatternValidator.
func (c *PatternClient) ValidatePattern(ctx context.Context, patternID string, factors []string) (*usecase.PatternResult, error) {
	var resp ValidatePatternResponse
	req := ValidatePatternRequest{PatternID: patternID, Factors: factors}
	if err := c.caller.Call(ctx, TopicValidatePattern, req, &resp); err != nil {
		return nil, err
	}
	return &usecase.PatternResult{Valid: resp.Valid, MatchCount: resp.MatchCount}, nil
}

// OwnerClient implements usecase.OwnerDirectory over the bus.
type OwnerClient struct {
	caller Caller
}

// NewOwnerClient creates an OwnerClient.
func NewOwnerClient(caller Caller) *OwnerClient {
	return &OwnerClient{caller: caller}
}

// OwnerExists implements usecase.OwnerDirectory.
func (c *OwnerClient) OwnerExists(ctx context.Context, ownerID string) (bool, error) {
	var resp OwnerExistsResponse
	if err := c.caller.Call(ctx, TopicOwnerExists, OwnerExistsRequest{UserID: ownerID}, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}
