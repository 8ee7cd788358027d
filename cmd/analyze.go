package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/mselser95/hl-holdtime/internal/app"
	"github.com/mselser95/hl-holdtime/internal/batch"
	"github.com/mselser95/hl-holdtime/internal/report"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	analyzeFormat string

	analyzeCmd = &cobra.Command{
		Use:   "analyze <address>",
		Short: "Report holding times for one account",
		Long: `Fetches every fill of the account, matches opens to closes first-in
first-out per coin and prints holding-time statistics.

Durations are shown in minutes below one hour, hours below one day and days
otherwise.

Examples:
  # Human-readable report
  hl-holdtime analyze 0x5c9c9ab381c841530464ef9ee402568f84c3b676

  # Machine-readable
  hl-holdtime analyze 0x5c9c9ab381c841530464ef9ee402568f84c3b676 --format json
  hl-holdtime analyze 0x5c9c9ab381c841530464ef9ee402568f84c3b676 --format csv > holdtime.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "table", "Output format: table, json, csv")
}

func runAnalyze(cmd *cobra.Command, args []string) (err error) {
	format, err := report.ParseFormat(analyzeFormat, report.FormatTable, report.FormatJSON, report.FormatCSV)
	if err != nil {
		return err
	}

	account, ok := batch.NormalizeAddress(args[0])
	if !ok {
		return fmt.Errorf("invalid account address: %q", args[0])
	}

	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	analyzer, err := app.NewAnalyzer(cfg, logger)
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return analyzeAccount(ctx, analyzer, account, format, cmd.OutOrStdout())
}

func analyzeAccount(
	ctx context.Context,
	analyzer batch.Analyzer,
	account string,
	format report.Format,
	w io.Writer,
) error {
	result, err := analyzer.Analyze(ctx, account)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", account, err)
	}

	err = report.NewRenderer(w).RenderReport(result, format)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}
