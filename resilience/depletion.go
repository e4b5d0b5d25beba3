package resilience

import (
	"github.com/shopspring/decimal"

	"market-resilience/market"
)

// Depletion describes a liquidity withdrawal between two consecutive books.
type Depletion struct {
	Side  market.Side     // SideBuy for the bid side, SideSell for the ask side
	Price decimal.Decimal // previous best price on the depleted side
}

// DetectDepletion compares two consecutive snapshots. The current best price
// must move strictly past the previous price at rank levels (1-indexed). A side
// with fewer than levels levels in prev is not checked. Bids are checked
// before asks and the first match wins.
func DetectDepletion(prev, cur market.BookSnapshot, levels int) (Depletion, bool) {
	if threshold, ok := prev.BidAt(levels); ok {
		if best, ok := cur.BestBidPrice(); ok && best.LessThan(threshold) {
			anchor, _ := prev.BestBidPrice()
			return Depletion{Side: market.SideBuy, Price: anchor}, true
		}
	}
	if threshold, ok := prev.AskAt(levels); ok {
		if best, ok := cur.BestAskPrice(); ok && best.GreaterThan(threshold) {
			anchor, _ := prev.BestAskPrice()
			return Depletion{Side: market.SideSell, Price: anchor}, true
		}
	}
	return Depletion{}, false
}
