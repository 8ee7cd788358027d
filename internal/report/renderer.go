package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mselser95/hl-holdtime/internal/analysis"
	"github.com/mselser95/hl-holdtime/internal/batch"
	"github.com/mselser95/hl-holdtime/internal/stats"
)

const lineWidth = 80

// Renderer writes reports to w.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// RenderReport writes a single-account report in the given format.
func (r *Renderer) RenderReport(report *analysis.Report, format Format) error {
	switch format {
	case FormatJSON:
		return r.writeJSON(report)
	case FormatCSV:
		return r.reportCSV(report)
	default:
		r.reportTable(report)
		return nil
	}
}

// RenderBatch writes a batch result in the given format. CSV is not supported.
func (r *Renderer) RenderBatch(result *batch.Result, format Format) error {
	switch format {
	case FormatJSON:
		return r.writeJSON(result)
	case FormatTable:
		r.batchTable(result)
		return nil
	default:
		return fmt.Errorf("unsupported batch format: %s", format)
	}
}

func (r *Renderer) reportTable(report *analysis.Report) {
	rule := strings.Repeat("=", lineWidth)
	thin := strings.Repeat("-", lineWidth)

	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, "HOLDING TIME REPORT")
	fmt.Fprintln(r.w, rule)
	fmt.Fprintf(r.w, "Account: %s\n", report.Account)
	fmt.Fprintf(r.w, "Fills:   %d\n", report.FillCount)

	if report.FillCount == 0 {
		fmt.Fprintln(r.w, "\nNo fills found")
		return
	}
	if report.Empty() {
		fmt.Fprintln(r.w, "\nNo closed trades found")
	} else {
		for _, s := range report.Summary.Instruments {
			fmt.Fprintf(r.w, "\n[%s]\n", s.Instrument)
			fmt.Fprintln(r.w, thin)
			fmt.Fprintf(r.w, "  Closes:            %d\n", s.CloseCount)
			fmt.Fprintf(r.w, "  Simple average:    %s\n", FormatDuration(s.SimpleAverage))
			fmt.Fprintf(r.w, "  Weighted average:  %s (size-weighted)\n", FormatDuration(s.WeightedAverage))
			fmt.Fprintf(r.w, "  Shortest:          %s\n", FormatDuration(s.MinDuration))
			fmt.Fprintf(r.w, "  Longest:           %s\n", FormatDuration(s.MaxDuration))
			fmt.Fprintf(r.w, "  Total closed size: %.4f\n", s.TotalMatchedSize)
		}

		overall := report.Summary.Overall
		fmt.Fprintln(r.w, "\n"+rule)
		fmt.Fprintln(r.w, "[OVERALL]")
		fmt.Fprintln(r.w, thin)
		fmt.Fprintf(r.w, "  Closes:            %d\n", overall.CloseCount)
		fmt.Fprintf(r.w, "  Simple average:    %s\n", FormatDuration(overall.SimpleAverage))
		fmt.Fprintf(r.w, "  Weighted average:  %s\n", FormatDuration(overall.WeightedAverage))
	}

	if report.Summary != nil && len(report.Summary.OpenPositions) > 0 {
		fmt.Fprintln(r.w, "\n"+rule)
		fmt.Fprintln(r.w, "[OPEN POSITIONS]")
		fmt.Fprintln(r.w, thin)
		for _, p := range report.Summary.OpenPositions {
			fmt.Fprintf(r.w, "  %s: %s (%d open lots)\n", p.Instrument, p.TotalSize.StringFixed(4), p.LotCount)
		}
	}

	if len(report.OverClosed) > 0 {
		fmt.Fprintln(r.w, "\n"+rule)
		fmt.Fprintln(r.w, "[UNMATCHED CLOSES]")
		fmt.Fprintln(r.w, thin)
		for _, instrument := range sortedInstruments(report) {
			fmt.Fprintf(r.w, "  %s: %s\n", instrument, report.OverClosed[instrument].StringFixed(4))
		}
	}
}

func (r *Renderer) reportCSV(report *analysis.Report) (err error) {
	writer := csv.NewWriter(r.w)
	defer writer.Flush()

	err = writer.Write([]string{
		"Account",
		"Scope",
		"Closes",
		"SimpleAvgHours",
		"WeightedAvgHours",
		"MinHours",
		"MaxHours",
		"TotalClosedSize",
	})
	if err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	if report.Empty() {
		return nil
	}

	row := func(scope string, s stats.HoldingStats) []string {
		return []string{
			report.Account,
			scope,
			fmt.Sprintf("%d", s.CloseCount),
			fmt.Sprintf("%.4f", s.SimpleAverage),
			fmt.Sprintf("%.4f", s.WeightedAverage),
			fmt.Sprintf("%.4f", s.MinDuration),
			fmt.Sprintf("%.4f", s.MaxDuration),
			fmt.Sprintf("%.4f", s.TotalMatchedSize),
		}
	}

	for _, s := range report.Summary.Instruments {
		err = writer.Write(row(s.Instrument, s.HoldingStats))
		if err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	err = writer.Write(row("OVERALL", *report.Summary.Overall))
	if err != nil {
		return fmt.Errorf("write CSV row: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

func (r *Renderer) batchTable(result *batch.Result) {
	rule := strings.Repeat("=", lineWidth)

	fmt.Fprintln(r.w, rule)
	fmt.Fprintf(r.w, "HIGH-FREQUENCY ACCOUNTS (simple average %s)\n", result.Criteria.String())
	fmt.Fprintln(r.w, rule)
	fmt.Fprintf(r.w, "Run:      %s\n", result.RunID)
	fmt.Fprintf(r.w, "Matched:  %d | Rejected: %d | Skipped: %d\n",
		len(result.Matched), len(result.Rejected), len(result.Skipped))

	if len(result.Matched) > 0 {
		fmt.Fprintln(r.w)
		for _, a := range result.Matched {
			fmt.Fprintf(r.w, "  %s  %s (%d closes)\n", a.Address, FormatDuration(a.SimpleAverageHours), a.CloseCount)
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintln(r.w, "\nSkipped:")
		for _, s := range result.Skipped {
			fmt.Fprintf(r.w, "  %s  %s\n", s.Address, s.Reason)
		}
	}
}

func (r *Renderer) writeJSON(v any) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func sortedInstruments(report *analysis.Report) []string {
	instruments := make([]string, 0, len(report.OverClosed))
	for instrument := range report.OverClosed {
		instruments = append(instruments, instrument)
	}
	sort.Strings(instruments)
	return instruments
}
