package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/gobank/internal/adapter/http/dto"
)

func newAccountCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var owner, accountType string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.post(cmd.Context(), cmd.OutOrStdout(), "/api/v1/accounts", dto.CreateAccountRequest{
				OwnerID: owner,
				Type:    accountType,
			})
		},
	}
	createCmd.Flags().StringVar(&owner, "owner", "", "Owner user id")
	createCmd.Flags().StringVar(&accountType, "type", "AHORRO", "Account type (AHORRO or CORRIENTE)")

	getCmd := &cobra.Command{
		Use:   "get NUMBER",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.get(cmd.Context(), cmd.OutOrStdout(), accountPath(args[0], ""))
		},
	}

	var listOwner string
	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := pageQuery(limit, offset)
			if listOwner != "" {
				q.Set("owner_id", listOwner)
			}
			return api.get(cmd.Context(), cmd.OutOrStdout(), "/api/v1/accounts?"+q.Encode())
		},
	}
	listCmd.Flags().StringVar(&listOwner, "owner", "", "Only accounts of this owner")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	movementsCmd := &cobra.Command{
		Use:   "movements NUMBER",
		Short: "List account movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.get(cmd.Context(), cmd.OutOrStdout(), accountPath(args[0], "/movements?"+pageQuery(limit, offset).Encode()))
		},
	}
	movementsCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	movementsCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(createCmd, getCmd, listCmd, movementsCmd)
	for _, action := range []string{"cancel", "block", "activate"} {
		cmd.AddCommand(statusCmd(api, action))
	}
	return cmd
}

func statusCmd(api *apiClient, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " NUMBER",
		Short: fmt.Sprintf("Run %s on an account", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.post(cmd.Context(), cmd.OutOrStdout(), accountPath(args[0], "/"+action), nil)
		},
	}
}

func newRestrictionCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restriction",
		Short: "Account restriction operations",
	}

	listCmd := &cobra.Command{
		Use:   "list NUMBER",
		Short: "List restrictions of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.get(cmd.Context(), cmd.OutOrStdout(), accountPath(args[0], "/restrictions"))
		},
	}

	var from, to, pattern string
	addCmd := &cobra.Command{
		Use:   "add NUMBER",
		Short: "Add an amount restriction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.RestrictionRequest{}
			var err error
			if req.AmountFrom, err = parseAmount("from", from); err != nil {
				return err
			}
			if req.AmountTo, err = parseAmount("to", to); err != nil {
				return err
			}
			if pattern != "" {
				req.PatternID = &pattern
			}
			return api.post(cmd.Context(), cmd.OutOrStdout(), accountPath(args[0], "/restrictions"), req)
		},
	}
	addCmd.Flags().StringVar(&from, "from", "", "Lower bound of the amount range")
	addCmd.Flags().StringVar(&to, "to", "", "Upper bound of the amount range")
	addCmd.Flags().StringVar(&pattern, "pattern", "", "Pattern required for amounts in range")

	removeCmd := &cobra.Command{
		Use:   "remove NUMBER RESTRICTION_ID",
		Short: "Remove a restriction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.delete(cmd.Context(), cmd.OutOrStdout(), accountPath(args[0], "/restrictions/"+url.PathEscape(args[1])))
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd)
	return cmd
}

func accountPath(number, suffix string) string {
	return "/api/v1/accounts/" + url.PathEscape(number) + suffix
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, fmt.Errorf("--%s is required", flag)
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return amount, nil
}
