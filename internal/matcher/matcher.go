package matcher

import (
	"fmt"
	"sort"

	"github.com/mselser95/hl-holdtime/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const millisPerHour = 60 * 60 * 1000

// Lot is an open quantity waiting in an instrument's FIFO queue.
type Lot struct {
	OpenedAt      int64
	RemainingSize decimal.Decimal
	OpenPrice     decimal.Decimal
}

// Observation is one closed slice of a lot: matchedSize units held from OpenTime to CloseTime.
type Observation struct {
	Instrument   string
	MatchedSize  decimal.Decimal
	OpenTime     int64
	CloseTime    int64
	HoldingHours float64
}

// Result holds the matcher output for a single account.
type Result struct {
	// Observations per instrument, in match order.
	Observations map[string][]Observation

	// OpenLots are lots left unconsumed after all fills, head first.
	OpenLots map[string][]Lot

	// OverClosed is closing quantity per instrument that found no open lot.
	// It produces no observation.
	OverClosed map[string]decimal.Decimal
}

// Matcher reconstructs position lifecycles from fills using FIFO queues.
type Matcher struct {
	logger *zap.Logger
}

// New creates a matcher. A nil logger disables diagnostics.
func New(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{logger: logger}
}

// Validate checks that every fill carries the fields the matcher relies on.
func Validate(fills []types.Fill) error {
	for i, f := range fills {
		switch {
		case f.Instrument == "":
			return &types.MalformedFillError{Index: i, Field: "coin"}
		case !f.Size.IsPositive():
			return &types.MalformedFillError{Index: i, Field: "sz", Reason: "size must be positive"}
		case f.Direction == "":
			return &types.MalformedFillError{Index: i, Field: "dir"}
		}
	}
	return nil
}

// Match sorts fills by timestamp (stable on ties) and runs FIFO matching per instrument.
// The input slice is not modified.
func (m *Matcher) Match(fills []types.Fill) (*Result, error) {
	err := Validate(fills)
	if err != nil {
		return nil, fmt.Errorf("validate fills: %w", err)
	}

	sorted := make([]types.Fill, len(fills))
	copy(sorted, fills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	b := newBook()
	for _, fill := range sorted {
		if fill.IsOpening() {
			b.open(fill)
			continue
		}

		excess := b.close(fill)
		if excess.IsPositive() {
			b.overClosed[fill.Instrument] = b.overClosed[fill.Instrument].Add(excess)
			OverClosedFillsTotal.Inc()
			m.logger.Warn("close-exceeds-open-size",
				zap.String("instrument", fill.Instrument),
				zap.Int64("time", fill.Timestamp),
				zap.String("direction", fill.Direction),
				zap.String("fill-size", fill.Size.String()),
				zap.String("unmatched-size", excess.String()))
		}
	}

	res := b.result()

	observationCount := 0
	for _, obs := range res.Observations {
		observationCount += len(obs)
	}
	ObservationsTotal.Add(float64(observationCount))

	m.logger.Debug("fills-matched",
		zap.Int("fills", len(sorted)),
		zap.Int("observations", observationCount),
		zap.Int("open-instruments", len(res.OpenLots)),
		zap.Int("over-closed-instruments", len(res.OverClosed)))

	return res, nil
}

// book is the per-run arena of instrument queues. Queues are created on first access.
type book struct {
	queues       map[string][]Lot
	observations map[string][]Observation
	overClosed   map[string]decimal.Decimal
}

func newBook() *book {
	return &book{
		queues:       make(map[string][]Lot),
		observations: make(map[string][]Observation),
		overClosed:   make(map[string]decimal.Decimal),
	}
}

func (b *book) open(fill types.Fill) {
	b.queues[fill.Instrument] = append(b.queues[fill.Instrument], Lot{
		OpenedAt:      fill.Timestamp,
		RemainingSize: fill.Size,
		OpenPrice:     fill.Price,
	})
}

// close consumes fill.Size from the head of the instrument queue and returns the
// quantity that could not be matched.
func (b *book) close(fill types.Fill) (excess decimal.Decimal) {
	queue := b.queues[fill.Instrument]
	remaining := fill.Size

	for remaining.IsPositive() && len(queue) > 0 {
		head := &queue[0]

		if head.RemainingSize.LessThanOrEqual(remaining) {
			b.record(fill, *head, head.RemainingSize)
			remaining = remaining.Sub(head.RemainingSize)
			queue = queue[1:]
			continue
		}

		b.record(fill, *head, remaining)
		head.RemainingSize = head.RemainingSize.Sub(remaining)
		remaining = decimal.Zero
	}

	b.queues[fill.Instrument] = queue
	return remaining
}

func (b *book) record(fill types.Fill, lot Lot, size decimal.Decimal) {
	b.observations[fill.Instrument] = append(b.observations[fill.Instrument], Observation{
		Instrument:   fill.Instrument,
		MatchedSize:  size,
		OpenTime:     lot.OpenedAt,
		CloseTime:    fill.Timestamp,
		HoldingHours: float64(fill.Timestamp-lot.OpenedAt) / millisPerHour,
	})
}

func (b *book) result() *Result {
	open := make(map[string][]Lot)
	for instrument, queue := range b.queues {
		if len(queue) == 0 {
			continue
		}
		lots := make([]Lot, len(queue))
		copy(lots, queue)
		open[instrument] = lots
	}

	return &Result{
		Observations: b.observations,
		OpenLots:     open,
		OverClosed:   b.overClosed,
	}
}
