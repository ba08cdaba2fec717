package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	api := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "gobank-cli",
		Short:         "GoBank CLI tool",
		Long:          `A command line interface for interacting with the GoBank API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&api.baseURL, "url", envOr("GOBANK_URL", "http://localhost:8080"), "Base URL of the GoBank API")
	rootCmd.PersistentFlags().DurationVar(&api.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&api.token, "token", os.Getenv("GOBANK_TOKEN"), "Bearer token")

	rootCmd.AddCommand(
		newAccountCmd(api),
		newRestrictionCmd(api),
		newTransferCmd(api),
		newDepositCmd(api),
		newWithdrawCmd(api),
		newTransactionCmd(api),
		newReconcileCmd(api),
		newMigrateCmd(),
		newTokenCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
