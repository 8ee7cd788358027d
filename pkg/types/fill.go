package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// openMarker is the substring of a fill direction that marks an opening action
// ("Open Long", "Open Short"). Any other direction closes.
const openMarker = "Open"

// Fill represents a single trade execution for one account.
type Fill struct {
	Instrument string
	Size       decimal.Decimal // always positive
	Price      decimal.Decimal
	Timestamp  int64 // milliseconds since epoch
	Direction  string
}

// IsOpening reports whether the fill opens (adds to) a position.
func (f Fill) IsOpening() bool {
	return strings.Contains(f.Direction, openMarker)
}

// UserFill is a fill record as returned by the Hyperliquid info endpoint.
// Required fields are pointers so a missing field can be told apart from a zero value.
type UserFill struct {
	Coin      *string          `json:"coin"`
	Px        *decimal.Decimal `json:"px"`
	Sz        *decimal.Decimal `json:"sz"`
	Side      string           `json:"side,omitempty"`
	Time      *int64           `json:"time"`
	Dir       *string          `json:"dir"`
	ClosedPnl string           `json:"closedPnl,omitempty"`
	Hash      string           `json:"hash,omitempty"`
	Oid       int64            `json:"oid,omitempty"`
	Fee       string           `json:"fee,omitempty"`
}

// ToFill converts the wire record into a Fill. index is the record's position in the
// response and is only used for error reporting. A zero size is accepted; the caller
// decides whether to keep the fill.
func (u UserFill) ToFill(index int) (fill Fill, err error) {
	switch {
	case u.Coin == nil || *u.Coin == "":
		return fill, &MalformedFillError{Index: index, Field: "coin"}
	case u.Sz == nil:
		return fill, &MalformedFillError{Index: index, Field: "sz"}
	case u.Time == nil:
		return fill, &MalformedFillError{Index: index, Field: "time"}
	case u.Dir == nil || *u.Dir == "":
		return fill, &MalformedFillError{Index: index, Field: "dir"}
	}

	fill = Fill{
		Instrument: *u.Coin,
		Size:       u.Sz.Abs(),
		Timestamp:  *u.Time,
		Direction:  *u.Dir,
	}
	if u.Px != nil {
		fill.Price = *u.Px
	}

	return fill, nil
}
