package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL  string
	timeout  time.Duration
	customer string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "corebank-cli",
		Short: "CoreBank CLI tool",
		Long:  `A command line interface for interacting with the CoreBank API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the CoreBank API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&customer, "customer", "", "Customer ID sent as X-Customer-ID when auth is disabled")

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}
	accountCmd.AddCommand(balanceCmd(), verifyAccountCmd())

	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer operations",
	}
	transferCmd.AddCommand(transferStatusCmd())

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}
	adminCmd.AddCommand(reconcileCmd(), endOfDayCmd())

	rootCmd.AddCommand(accountCmd, transferCmd, adminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/accounts/"+args[0]+"/balance")
		},
	}
}

func verifyAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <account-id>",
		Short: "Verify an account against its journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/accounts/"+args[0]+"/reconciliation")
		},
	}
}

func transferStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <transfer-id>",
		Short: "Show a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/transfers/"+args[0])
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run reconciliation across all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/admin/reconciliation")
		},
	}
}

func endOfDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end-of-day",
		Short: "Run the end-of-day batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/admin/end-of-day")
		},
	}
}

func request(method, path string) error {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		return err
	}
	if customer != "" {
		req.Header.Set("X-Customer-ID", customer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), 200))
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printJSON(payload)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
