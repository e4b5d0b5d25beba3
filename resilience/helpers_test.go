package resilience

import (
	"time"

	"github.com/shopspring/decimal"

	"market-resilience/market"
)

var t0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func levels(prices ...string) []market.Level {
	out := make([]market.Level, 0, len(prices))
	for _, p := range prices {
		out = append(out, market.Level{Price: decimal.RequireFromString(p), Size: decimal.NewFromInt(10)})
	}
	return out
}

func book(at time.Duration, bids, asks []market.Level) market.BookSnapshot {
	return market.BookSnapshot{Bids: bids, Asks: asks, Ts: t0.Add(at)}
}

// baseline: spread 0.1 with three levels a side.
func baseline(at time.Duration) market.BookSnapshot {
	return book(at, levels("10.0", "9.9", "9.8"), levels("10.1", "10.2", "10.3"))
}

// bidDepleted: best bid falls through the third level, spread widens to 0.4.
func bidDepleted(at time.Duration) market.BookSnapshot {
	return book(at, levels("9.7", "9.6", "9.5"), levels("10.1", "10.2", "10.3"))
}
