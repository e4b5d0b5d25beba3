package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Level 是单个价位的聚合挂单量。
type Level struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// BookSnapshot represents an immutable view of an L2 book at one point in time.
// Bids are ordered by descending price, asks by ascending price.
type BookSnapshot struct {
	Bids []Level
	Asks []Level
	Ts   time.Time
}

// BestBidPrice returns the top bid price; ok is false when the bid side is empty.
func (b BookSnapshot) BestBidPrice() (decimal.Decimal, bool) {
	return b.BidAt(1)
}

// BestAskPrice returns the top ask price; ok is false when the ask side is empty.
func (b BookSnapshot) BestAskPrice() (decimal.Decimal, bool) {
	return b.AskAt(1)
}

// BidAt returns the bid price at a 1-indexed rank from the best level.
func (b BookSnapshot) BidAt(rank int) (decimal.Decimal, bool) {
	if rank < 1 || rank > len(b.Bids) {
		return decimal.Zero, false
	}
	return b.Bids[rank-1].Price, true
}

// AskAt returns the ask price at a 1-indexed rank from the best level.
func (b BookSnapshot) AskAt(rank int) (decimal.Decimal, bool) {
	if rank < 1 || rank > len(b.Asks) {
		return decimal.Zero, false
	}
	return b.Asks[rank-1].Price, true
}

// Spread returns best ask minus best bid; absent when either side is empty.
func (b BookSnapshot) Spread() (float64, bool) {
	bid, ok := b.BestBidPrice()
	if !ok {
		return 0, false
	}
	ask, ok := b.BestAskPrice()
	if !ok {
		return 0, false
	}
	spread, _ := ask.Sub(bid).Float64()
	return spread, true
}

// Mid 返回中间价；若缺失任一侧返回 0。
func (b BookSnapshot) Mid() float64 {
	bid, okBid := b.BestBidPrice()
	ask, okAsk := b.BestAskPrice()
	if !okBid || !okAsk {
		return 0
	}
	mid, _ := bid.Add(ask).Div(decimal.NewFromInt(2)).Float64()
	return mid
}

// LevelCount is the number of bid levels plus ask levels present.
func (b BookSnapshot) LevelCount() int {
	return len(b.Bids) + len(b.Asks)
}

// IsEmpty reports whether both sides are empty.
func (b BookSnapshot) IsEmpty() bool {
	return len(b.Bids) == 0 && len(b.Asks) == 0
}

// Clone returns a deep copy whose level slices do not alias the receiver.
func (b BookSnapshot) Clone() BookSnapshot {
	out := BookSnapshot{Ts: b.Ts}
	if len(b.Bids) > 0 {
		out.Bids = append(make([]Level, 0, len(b.Bids)), b.Bids...)
	}
	if len(b.Asks) > 0 {
		out.Asks = append(make([]Level, 0, len(b.Asks)), b.Asks...)
	}
	return out
}
