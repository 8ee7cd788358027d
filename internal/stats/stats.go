// Package stats summarizes holding observations produced by the matcher.
package stats

import (
	"math"
	"sort"

	"github.com/mselser95/hl-holdtime/internal/matcher"
	"github.com/shopspring/decimal"
)

// HoldingStats describes a set of holding observations. Durations are in hours.
type HoldingStats struct {
	CloseCount       int     `json:"close_count"`
	SimpleAverage    float64 `json:"simple_average_hours"`
	WeightedAverage  float64 `json:"weighted_average_hours"`
	MinDuration      float64 `json:"min_duration_hours"`
	MaxDuration      float64 `json:"max_duration_hours"`
	TotalMatchedSize float64 `json:"total_matched_size"`
}

// InstrumentStats is HoldingStats for one instrument.
type InstrumentStats struct {
	Instrument string `json:"instrument"`
	HoldingStats
}

// OpenPosition summarizes the lots still open for one instrument.
type OpenPosition struct {
	Instrument string          `json:"instrument"`
	TotalSize  decimal.Decimal `json:"total_size"`
	LotCount   int             `json:"lot_count"`
}

// Summary is the aggregated view of one account's matcher result.
type Summary struct {
	Instruments   []InstrumentStats `json:"instruments"`
	Overall       *HoldingStats     `json:"overall,omitempty"`
	OpenPositions []OpenPosition    `json:"open_positions"`
}

// Summarize computes per-instrument and pooled statistics plus the open-position table.
// Instruments without observations are left out of the statistics; instruments without
// open lots are left out of the open-position table. Both lists are sorted by instrument.
func Summarize(res *matcher.Result) *Summary {
	summary := &Summary{
		Instruments:   []InstrumentStats{},
		OpenPositions: []OpenPosition{},
	}
	if res == nil {
		return summary
	}

	var pooled []matcher.Observation
	for _, instrument := range sortedKeys(res.Observations) {
		obs := res.Observations[instrument]
		s, ok := Compute(obs)
		if !ok {
			continue
		}
		summary.Instruments = append(summary.Instruments, InstrumentStats{
			Instrument:   instrument,
			HoldingStats: s,
		})
		pooled = append(pooled, obs...)
	}

	// Pool observations instead of averaging per-instrument averages.
	if overall, ok := Compute(pooled); ok {
		summary.Overall = &overall
	}

	for _, instrument := range sortedKeys(res.OpenLots) {
		lots := res.OpenLots[instrument]
		if len(lots) == 0 {
			continue
		}
		total := decimal.Zero
		for _, lot := range lots {
			total = total.Add(lot.RemainingSize)
		}
		summary.OpenPositions = append(summary.OpenPositions, OpenPosition{
			Instrument: instrument,
			TotalSize:  total,
			LotCount:   len(lots),
		})
	}

	return summary
}

// Compute returns the statistics of obs. ok is false when obs is empty.
func Compute(obs []matcher.Observation) (s HoldingStats, ok bool) {
	if len(obs) == 0 {
		return s, false
	}

	var (
		sumHours    float64
		sumWeighted float64
		sumSize     float64
	)
	s.MinDuration = math.Inf(1)
	s.MaxDuration = math.Inf(-1)

	for _, o := range obs {
		size := o.MatchedSize.InexactFloat64()
		sumHours += o.HoldingHours
		sumWeighted += o.HoldingHours * size
		sumSize += size
		s.MinDuration = math.Min(s.MinDuration, o.HoldingHours)
		s.MaxDuration = math.Max(s.MaxDuration, o.HoldingHours)
	}

	s.CloseCount = len(obs)
	s.SimpleAverage = sumHours / float64(len(obs))
	s.TotalMatchedSize = sumSize

	if sumSize > 0 {
		s.WeightedAverage = clamp(sumWeighted/sumSize, s.MinDuration, s.MaxDuration)
	} else {
		s.WeightedAverage = s.SimpleAverage
	}

	return s, true
}

// clamp keeps float rounding from pushing v outside [lo, hi].
func clamp(v float64, lo float64, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
