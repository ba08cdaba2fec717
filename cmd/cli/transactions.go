package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/iho/gobank/internal/adapter/http/dto"
)

func newTransferCmd(api *apiClient) *cobra.Command {
	var from, to, amount, description string
	var quote bool

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between two accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			path := "/api/v1/transactions/transfers"
			if quote {
				path += "/quote"
			}
			return api.post(cmd.Context(), cmd.OutOrStdout(), path, dto.TransferRequest{
				OriginNumber:      from,
				DestinationNumber: to,
				Amount:            value,
				Description:       description,
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Origin account number")
	cmd.Flags().StringVar(&to, "to", "", "Destination account number")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to move")
	cmd.Flags().StringVar(&description, "description", "", "Free text description")
	cmd.Flags().BoolVar(&quote, "quote", false, "Only report whether authorization would be required")
	return cmd
}

func newDepositCmd(api *apiClient) *cobra.Command {
	return singleSidedCmd(api, "deposit", "Credit an account", "/api/v1/transactions/deposits")
}

func newWithdrawCmd(api *apiClient) *cobra.Command {
	return singleSidedCmd(api, "withdraw", "Debit an account", "/api/v1/transactions/withdrawals")
}

func singleSidedCmd(api *apiClient, use, short, path string) *cobra.Command {
	var account, amount, description string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			return api.post(cmd.Context(), cmd.OutOrStdout(), path, dto.SingleSidedRequest{
				AccountNumber: account,
				Amount:        value,
				Description:   description,
			})
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "Account number")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount")
	cmd.Flags().StringVar(&description, "description", "", "Free text description")
	return cmd
}

func newTransactionCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transaction",
		Short: "Transaction operations",
	}

	getCmd := &cobra.Command{
		Use:   "get NUMBER",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.get(cmd.Context(), cmd.OutOrStdout(), transactionPath(args[0], ""))
		},
	}

	var code, pattern string
	var factors []string
	authorizeCmd := &cobra.Command{
		Use:   "authorize NUMBER",
		Short: "Authorize a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.AuthorizeRequest{VerificationCode: code, Factors: factors}
			if pattern != "" {
				req.PatternID = &pattern
			}
			return api.post(cmd.Context(), cmd.OutOrStdout(), transactionPath(args[0], "/authorize"), req)
		},
	}
	authorizeCmd.Flags().StringVar(&code, "code", "", "Verification code")
	authorizeCmd.Flags().StringVar(&pattern, "pattern", "", "Pattern id")
	authorizeCmd.Flags().StringSliceVar(&factors, "factor", nil, "Authentication factor (repeatable)")

	cancelCmd := &cobra.Command{
		Use:   "cancel NUMBER",
		Short: "Cancel a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.post(cmd.Context(), cmd.OutOrStdout(), transactionPath(args[0], "/cancel"), nil)
		},
	}

	cmd.AddCommand(getCmd, authorizeCmd, cancelCmd)
	return cmd
}

func newReconcileCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [NUMBER]",
		Short: "Compare balances against recorded movements",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return api.get(cmd.Context(), cmd.OutOrStdout(), accountPath(args[0], "/reconciliation"))
			}
			return api.get(cmd.Context(), cmd.OutOrStdout(), "/api/v1/reconciliation")
		},
	}
}

func transactionPath(number, suffix string) string {
	return "/api/v1/transactions/" + url.PathEscape(number) + suffix
}
