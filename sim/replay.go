package sim

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"market-resilience/market"
)

// BookSink 接收按交易对分发的快照，Router 与 gateway.BookSink 同形。
type BookSink interface {
	OnBook(symbol string, snap market.BookSnapshot) error
}

// Record 是录制文件中的一行。
// Type 为空或 "snapshot" 时整体替换盘口，"delta" 时按档增量更新（数量为 0 删除）。
type Record struct {
	Type   string               `json:"type,omitempty"`
	Symbol string               `json:"symbol"`
	Ts     time.Time            `json:"ts"`
	Bids   [][2]decimal.Decimal `json:"bids"`
	Asks   [][2]decimal.Decimal `json:"asks"`
}

// ReplayStats 汇总一次回放。
type ReplayStats struct {
	Lines   int
	Books   int
	Skipped int
}

const maxLineBytes = 4 << 20

// Replay 逐行读取 JSONL 录制数据，经由每个交易对的 OrderBook 规整后送入 sink。
// 解析错误会带上行号返回；sink 返回的错误同样终止回放。
func Replay(ctx context.Context, r io.Reader, sink BookSink) (ReplayStats, error) {
	var stats ReplayStats
	books := make(map[string]*market.OrderBook)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Lines++
		line := sc.Bytes()
		if len(line) == 0 || line[0] == '#' {
			stats.Skipped++
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return stats, fmt.Errorf("line %d: %w", stats.Lines, err)
		}
		symbol := normalize(rec.Symbol)
		if symbol == "" {
			return stats, fmt.Errorf("line %d: missing symbol", stats.Lines)
		}

		ob, ok := books[symbol]
		if !ok {
			ob = market.NewOrderBook()
			books[symbol] = ob
		}
		bids, asks := toLevels(rec.Bids), toLevels(rec.Asks)
		switch rec.Type {
		case "", "snapshot":
			ob.ApplySnapshot(bids, asks, rec.Ts)
		case "delta":
			ob.ApplyDelta(bids, asks, rec.Ts)
		default:
			return stats, fmt.Errorf("line %d: unknown record type %q", stats.Lines, rec.Type)
		}

		if err := sink.OnBook(symbol, ob.Snapshot(0)); err != nil {
			return stats, fmt.Errorf("line %d: %w", stats.Lines, err)
		}
		stats.Books++
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read replay: %w", err)
	}
	return stats, nil
}

func toLevels(raw [][2]decimal.Decimal) []market.Level {
	out := make([]market.Level, 0, len(raw))
	for _, pq := range raw {
		out = append(out, market.Level{Price: pq[0], Size: pq[1]})
	}
	return out
}
