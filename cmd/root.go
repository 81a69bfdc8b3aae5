// Package cmd holds the eats command line: the API server and a small
// customer client.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	apiURL   string
	apiToken string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eats",
		Short:         "Food ordering API server and client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&apiURL, "api", envOr("EATS_API_URL", "http://localhost:7000"), "API base URL for client commands")
	root.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("EATS_TOKEN"), "bearer token for client commands")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(menuCmd())
	root.AddCommand(cartCmd())
	root.AddCommand(checkoutCmd())
	root.AddCommand(ordersCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogger(level slog.Level) {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
