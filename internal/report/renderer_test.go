package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/hl-holdtime/internal/analysis"
	"github.com/mselser95/hl-holdtime/internal/batch"
	"github.com/mselser95/hl-holdtime/internal/stats"
	"github.com/mselser95/hl-holdtime/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		Account:   testutil.AccountA,
		Status:    analysis.StatusOK,
		FillCount: 4,
		Summary: &stats.Summary{
			Instruments: []stats.InstrumentStats{
				{
					Instrument: "BTC",
					HoldingStats: stats.HoldingStats{
						CloseCount:       2,
						SimpleAverage:    2.0,
						WeightedAverage:  2.2,
						MinDuration:      1.0,
						MaxDuration:      3.0,
						TotalMatchedSize: 10,
					},
				},
			},
			Overall: &stats.HoldingStats{
				CloseCount:       2,
				SimpleAverage:    2.0,
				WeightedAverage:  2.2,
				MinDuration:      1.0,
				MaxDuration:      3.0,
				TotalMatchedSize: 10,
			},
			OpenPositions: []stats.OpenPosition{
				{Instrument: "ETH", TotalSize: decimal.RequireFromString("1.5"), LotCount: 2},
			},
		},
		OverClosed: map[string]decimal.Decimal{
			"SOL": decimal.RequireFromString("0.25"),
		},
		GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderReport_Table(t *testing.T) {
	var buf bytes.Buffer

	err := NewRenderer(&buf).RenderReport(sampleReport(), FormatTable)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Account: "+testutil.AccountA)
	assert.Contains(t, out, "[BTC]")
	assert.Contains(t, out, "Simple average:    2.0 hours")
	assert.Contains(t, out, "Weighted average:  2.2 hours (size-weighted)")
	assert.Contains(t, out, "Total closed size: 10.0000")
	assert.Contains(t, out, "[OVERALL]")
	assert.Contains(t, out, "ETH: 1.5000 (2 open lots)")
	assert.Contains(t, out, "SOL: 0.2500")
}

func TestRenderReport_TableEmpty(t *testing.T) {
	tests := []struct {
		name   string
		report *analysis.Report
		want   string
	}{
		{
			name:   "no_fills",
			report: &analysis.Report{Account: testutil.AccountB, Status: analysis.StatusNoData, Summary: &stats.Summary{}},
			want:   "No fills found",
		},
		{
			name: "no_closes",
			report: &analysis.Report{
				Account:   testutil.AccountB,
				Status:    analysis.StatusNoData,
				FillCount: 1,
				Summary: &stats.Summary{
					OpenPositions: []stats.OpenPosition{{Instrument: "BTC", TotalSize: decimal.NewFromInt(1), LotCount: 1}},
				},
			},
			want: "No closed trades found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewRenderer(&buf).RenderReport(tt.report, FormatTable))
			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), "[OVERALL]")
		})
	}
}

func TestRenderReport_JSON(t *testing.T) {
	var buf bytes.Buffer

	err := NewRenderer(&buf).RenderReport(sampleReport(), FormatJSON)
	require.NoError(t, err)

	var decoded struct {
		Account string `json:"account"`
		Status  string `json:"status"`
		Summary struct {
			Overall struct {
				CloseCount    int     `json:"close_count"`
				SimpleAverage float64 `json:"simple_average_hours"`
			} `json:"overall"`
			Instruments []struct {
				Instrument string `json:"instrument"`
			} `json:"instruments"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, testutil.AccountA, decoded.Account)
	assert.Equal(t, analysis.StatusOK, decoded.Status)
	assert.Equal(t, 2, decoded.Summary.Overall.CloseCount)
	assert.Equal(t, 2.0, decoded.Summary.Overall.SimpleAverage)
	require.Len(t, decoded.Summary.Instruments, 1)
	assert.Equal(t, "BTC", decoded.Summary.Instruments[0].Instrument)
}

func TestRenderReport_CSV(t *testing.T) {
	var buf bytes.Buffer

	err := NewRenderer(&buf).RenderReport(sampleReport(), FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Scope", rows[0][1])
	assert.Equal(t, []string{testutil.AccountA, "BTC", "2", "2.0000", "2.2000", "1.0000", "3.0000", "10.0000"}, rows[1])
	assert.Equal(t, "OVERALL", rows[2][1])
}

func TestRenderBatch(t *testing.T) {
	result := &batch.Result{
		RunID:    "3f8a2b8e-0000-4000-8000-000000000000",
		Criteria: batch.DefaultCriteria(),
		Matched: []batch.Account{
			{Address: testutil.AccountA, SimpleAverageHours: 0.5, CloseCount: 12},
		},
		Rejected: []batch.Account{
			{Address: testutil.AccountB, SimpleAverageHours: 30, CloseCount: 3},
		},
		Skipped: []batch.Skip{
			{Address: testutil.AccountC, Reason: batch.SkipFetchFailed, Error: "status 502"},
		},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewRenderer(&buf).RenderBatch(result, FormatTable))

		out := buf.String()
		assert.Contains(t, out, "simple average <= 1.0h")
		assert.Contains(t, out, "Matched:  1 | Rejected: 1 | Skipped: 1")
		assert.Contains(t, out, testutil.AccountA+"  30.0 minutes (12 closes)")
		assert.Contains(t, out, testutil.AccountC+"  fetch_failed")
		assert.NotContains(t, out, testutil.AccountB)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewRenderer(&buf).RenderBatch(result, FormatJSON))

		var decoded batch.Result
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, result.RunID, decoded.RunID)
		assert.Equal(t, result.Addresses(), decoded.Addresses())
		assert.Equal(t, batch.SkipFetchFailed, decoded.Skipped[0].Reason)
	})

	t.Run("csv_unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, NewRenderer(&buf).RenderBatch(result, FormatCSV))
	})
}
