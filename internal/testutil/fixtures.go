package testutil

import (
	"github.com/mselser95/hl-holdtime/pkg/types"
	"github.com/shopspring/decimal"
)

// Hour is one hour in fill timestamp units (milliseconds).
const Hour = int64(60 * 60 * 1000)

// Test account addresses.
const (
	AccountA = "0x5c9c9ab381c841530464ef9ee402568f84c3b676"
	AccountB = "0xf709deb9ca069e53a31a408fde397a87d025a352"
	AccountC = "0x1234567890abcdef1234567890abcdef12345678"
)

// FillRecord creates a raw userFills record as the info API returns it.
func FillRecord(coin string, size string, price string, timestamp int64, direction string) map[string]any {
	side := "B"
	if direction == "Close Long" || direction == "Open Short" {
		side = "A"
	}
	return map[string]any{
		"coin":          coin,
		"px":            price,
		"sz":            size,
		"side":          side,
		"time":          timestamp,
		"startPosition": "0.0",
		"dir":           direction,
		"closedPnl":     "0.0",
		"hash":          "0x0000000000000000000000000000000000000000000000000000000000000000",
		"oid":           timestamp,
		"crossed":       true,
		"fee":           "0.0",
		"tid":           timestamp,
		"feeToken":      "USDC",
	}
}

// CreateTestFill creates a fill with a fixed price.
func CreateTestFill(instrument string, size string, timestamp int64, direction string) types.Fill {
	return types.Fill{
		Instrument: instrument,
		Size:       decimal.RequireFromString(size),
		Price:      decimal.NewFromInt(100),
		Timestamp:  timestamp,
		Direction:  direction,
	}
}

// RoundTrips creates n open/close pairs on instrument, each held for holdMillis.
func RoundTrips(instrument string, n int, holdMillis int64) []types.Fill {
	fills := make([]types.Fill, 0, 2*n)
	for i := 0; i < n; i++ {
		openAt := int64(i) * (holdMillis + Hour)
		fills = append(fills,
			CreateTestFill(instrument, "1", openAt, "Open Long"),
			CreateTestFill(instrument, "1", openAt+holdMillis, "Close Long"),
		)
	}
	return fills
}
