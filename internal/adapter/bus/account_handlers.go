package bus

import (
	"context"
	"encoding/json"

	"github.com/iho/gobank/internal/usecase"
)

// RegisterAccountHandlers serves the accounts commands from the account
// store, so the accounts service can run behind the bus.
func RegisterAccountHandlers(s *Server, accounts *usecase.AccountUseCase) {
	s.Handle(TopicFindAccountByNumber, func(ctx context.Context, body json.RawMessage) (any, error) {
		req, err := decode[FindAccountByNumberRequest](body)
		if err != nil {
			return nil, err
		}
		account, err := accounts.GetAccountByNumber(ctx, req.Number)
		if err != nil {
			return nil, err
		}
		return NewAccountMessage(account), nil
	})

	s.Handle(TopicFindAccountByID, func(ctx context.Context, body json.RawMessage) (any, error) {
		req, err := decode[FindAccountByIDRequest](body)
		if err != nil {
			return nil, err
		}
		account, err := accounts.GetAccount(ctx, req.AccountID)
		if err != nil {
			return nil, err
		}
		return NewAccountMessage(account), nil
	})

	s.Handle(TopicAdjustBalance, func(ctx context.Context, body json.RawMessage) (any, error) {
		req, err := decode[AdjustBalanceRequest](body)
		if err != nil {
			return nil, err
		}
		account, err := accounts.AdjustBalance(ctx, usecase.AdjustBalanceInput{
			AccountID:              req.AccountID,
			Delta:                  req.Delta,
			RequireSufficientFunds: req.RequireSufficientFunds,
		})
		if err != nil {
			return nil, err
		}
		return NewAccountMessage(account), nil
	})

	s.Handle(TopicRecordMovement, func(ctx context.Context, body json.RawMessage) (any, error) {
		req, err := decode[RecordMovementRequest](body)
		if err != nil {
			return nil, err
		}
		err = accounts.RecordMovement(ctx, usecase.RecordMovementInput{
			AccountID:         req.AccountID,
			TransactionID:     req.TransactionID,
			TransactionNumber: req.TransactionNumber,
			Delta:             req.Delta,
		})
		return Empty{}, err
	})

	s.Handle(TopicRestrictions, func(ctx context.Context, body json.RawMessage) (any, error) {
		req, err := decode[RestrictionsRequest](body)
		if err != nil {
			return nil, err
		}
		restrictions, err := accounts.GetRestrictions(ctx, req.AccountID)
		if err != nil {
			return nil, err
		}
		return RestrictionsResponse{Restrictions: newRestrictionMessages(restrictions)}, nil
	})
}
