package market

import (
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// OrderBook 维护价格->数量映射，供行情源增量或全量更新。
type OrderBook struct {
	mu   sync.RWMutex
	bids map[string]Level // canonical price -> level
	asks map[string]Level
	ts   time.Time
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: make(map[string]Level),
		asks: make(map[string]Level),
	}
}

// ApplyDelta 应用增量更新，Size 为 0 表示删除该档。
func (ob *OrderBook) ApplyDelta(bidDelta, askDelta []Level, ts time.Time) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	applySide(ob.bids, bidDelta)
	applySide(ob.asks, askDelta)
	ob.ts = ts
}

// ApplySnapshot 用全量档位替换当前簿。
func (ob *OrderBook) ApplySnapshot(bids, asks []Level, ts time.Time) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	clear(ob.bids)
	clear(ob.asks)
	applySide(ob.bids, bids)
	applySide(ob.asks, asks)
	ob.ts = ts
}

func applySide(side map[string]Level, delta []Level) {
	for _, lvl := range delta {
		// decimal 数值相等但 exponent 不同（"100" vs "100.00"）时需要同一个 key
		k := lvl.Price.String()
		if lvl.Size.IsZero() {
			delete(side, k)
			continue
		}
		side[k] = lvl
	}
}

// Best 返回最好买/卖价；缺失的一侧 ok 为 false。
func (ob *OrderBook) Best() (bestBid decimal.Decimal, okBid bool, bestAsk decimal.Decimal, okAsk bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	for _, lvl := range ob.bids {
		if !okBid || lvl.Price.GreaterThan(bestBid) {
			bestBid, okBid = lvl.Price, true
		}
	}
	for _, lvl := range ob.asks {
		if !okAsk || lvl.Price.LessThan(bestAsk) {
			bestAsk, okAsk = lvl.Price, true
		}
	}
	return bestBid, okBid, bestAsk, okAsk
}

// Snapshot 返回按价格排序的只读快照；depth<=0 表示不截断。
func (ob *OrderBook) Snapshot(depth int) BookSnapshot {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	bids := sortedLevels(ob.bids, func(a, b Level) int { return b.Price.Cmp(a.Price) })
	asks := sortedLevels(ob.asks, func(a, b Level) int { return a.Price.Cmp(b.Price) })
	if depth > 0 {
		if len(bids) > depth {
			bids = bids[:depth]
		}
		if len(asks) > depth {
			asks = asks[:depth]
		}
	}
	return BookSnapshot{Bids: bids, Asks: asks, Ts: ob.ts}
}

func sortedLevels(side map[string]Level, cmp func(a, b Level) int) []Level {
	if len(side) == 0 {
		return nil
	}
	out := make([]Level, 0, len(side))
	for _, lvl := range side {
		out = append(out, lvl)
	}
	slices.SortFunc(out, cmp)
	return out
}
