package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mselser95/hl-holdtime/internal/app"
	"github.com/mselser95/hl-holdtime/internal/batch"
	"github.com/mselser95/hl-holdtime/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	batchInput          string
	batchRecordsPath    string
	batchThresholdHours float64
	batchComparison     string
	batchFormat         string

	batchCmd = &cobra.Command{
		Use:   "batch [address...]",
		Short: "Find accounts with short average holding times",
		Long: `Analyzes accounts one after another and keeps those whose overall simple
average holding time satisfies the threshold (by default: at most 1 hour).

Accounts come from the arguments or from a JSON document (--input, "-" for
stdin) holding records with an "address" field under --records-path.
Accounts that fail to fetch or have no closed trades are skipped and reported.

Examples:
  # Leaderboard export with records under data.trades
  hl-holdtime batch --input traders.json

  # Addresses on the command line, stricter threshold
  hl-holdtime batch 0xabc... 0xdef... --threshold-hours 0.25 --comparison lt

  # Pipe a bare JSON array of addresses
  cat addresses.json | hl-holdtime batch --input - --records-path ""`,
		RunE: runBatch,
	}
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", `JSON file with account records ("-" for stdin)`)
	batchCmd.Flags().StringVar(&batchRecordsPath, "records-path", batch.DefaultRecordsPath, "Path to the records array inside the input document")
	batchCmd.Flags().Float64Var(&batchThresholdHours, "threshold-hours", batch.DefaultThresholdHours, "Threshold on the overall simple average, in hours (default from BATCH_THRESHOLD_HOURS)")
	batchCmd.Flags().StringVar(&batchComparison, "comparison", string(batch.LessOrEqual), "Comparison: lte, lt, gte, gt (default from BATCH_COMPARISON)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "table", "Output format: table, json")
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	format, err := report.ParseFormat(batchFormat, report.FormatTable, report.FormatJSON)
	if err != nil {
		return err
	}
	if batchInput == "" && len(args) == 0 {
		return fmt.Errorf("no accounts: pass addresses or --input")
	}

	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Flags override the environment only when set explicitly.
	criteria, err := app.Criteria(cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("threshold-hours") {
		criteria.ThresholdHours = batchThresholdHours
	}
	if cmd.Flags().Changed("comparison") {
		criteria.Comparison, err = batch.ParseComparison(batchComparison)
		if err != nil {
			return err
		}
	}

	accounts := append([]string{}, args...)
	if batchInput != "" {
		parsed, readErr := readAccounts(cmd.InOrStdin(), batchInput, batchRecordsPath, logger)
		if readErr != nil {
			return readErr
		}
		accounts = append(accounts, parsed...)
	}

	analyzer, err := app.NewAnalyzer(cfg, logger)
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runBatchWith(ctx, analyzer, criteria, accounts, format, cmd.OutOrStdout(), logger)
}

func runBatchWith(
	ctx context.Context,
	analyzer batch.Analyzer,
	criteria batch.Criteria,
	accounts []string,
	format report.Format,
	w io.Writer,
	logger *zap.Logger,
) error {
	filter, err := batch.NewFilter(&batch.Config{
		Analyzer: analyzer,
		Criteria: criteria,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("create batch filter: %w", err)
	}

	result, runErr := filter.Run(ctx, accounts)

	err = report.NewRenderer(w).RenderBatch(result, format)
	if err != nil {
		return fmt.Errorf("render batch result: %w", err)
	}

	if runErr != nil {
		return runErr
	}
	return nil
}

func readAccounts(stdin io.Reader, input string, recordsPath string, logger *zap.Logger) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", input, err)
	}

	accounts, err := batch.ParseRecords(data, recordsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", input, err)
	}

	return accounts, nil
}
