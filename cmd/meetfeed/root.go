package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meetfeed/meetfeed-client/internal/app"
	"github.com/meetfeed/meetfeed-client/internal/config"
	"github.com/meetfeed/meetfeed-client/internal/logger"
)

var jsonOut bool

var rootCmd = &cobra.Command{
	Use:   "meetfeed",
	Short: "Events feed client for the meetfeed backend",
	Long: `meetfeed drives the mini app's screens from the terminal.

Configuration comes from the environment (API_BASE_URL, TMA_INIT_DATA, ...)
and configs/.env. Every command logs in with the configured init data first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
}

// withClient loads config, logs in and runs fn with the wired runtime.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *app.Client) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.DebugObj("meetfeed starting", "config", cfg.Redacted())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := app.NewClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.Login(ctx); err != nil {
		return err
	}
	return fn(ctx, client)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printTableHeader(w *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// townsFile resolves the registry path without building the full client.
func townsFile() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.TownsFile, nil
}
