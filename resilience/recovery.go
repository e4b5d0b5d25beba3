package resilience

import (
	"github.com/shopspring/decimal"

	"market-resilience/market"
)

// ClassifyRecovery decides which side recovered after a depletion anchored at
// initialPrice. It returns SideNone when the relevant side of cur is empty.
func ClassifyRecovery(depletionSide market.Side, initialPrice decimal.Decimal, cur market.BookSnapshot) market.Side {
	switch depletionSide {
	case market.SideBuy:
		best, ok := cur.BestBidPrice()
		if !ok {
			return market.SideNone
		}
		if best.GreaterThanOrEqual(initialPrice) {
			return market.SideBuy
		}
		return market.SideSell
	case market.SideSell:
		best, ok := cur.BestAskPrice()
		if !ok {
			return market.SideNone
		}
		if best.LessThanOrEqual(initialPrice) {
			return market.SideSell
		}
		return market.SideBuy
	default:
		return market.SideNone
	}
}
