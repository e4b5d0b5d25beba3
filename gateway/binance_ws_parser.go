package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"market-resilience/market"
)

// CombinedMessage 对应 binance combined stream 包装。
type CombinedMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// DepthUpdate 提取 depth<levels>@<speed> 消息的核心字段。
type DepthUpdate struct {
	EventType string               `json:"e"`
	EventTime int64                `json:"E"` // ms
	TxTime    int64                `json:"T"` // ms
	Symbol    string               `json:"s"`
	Bids      [][2]decimal.Decimal `json:"b"`
	Asks      [][2]decimal.Decimal `json:"a"`
}

// ParseCombinedDepth 解析 combined stream 的 depth 消息，返回符号与快照。
// 快照时间取事件时间 E；缺失时使用 recvTime。数量为 0 的档位被丢弃。
func ParseCombinedDepth(raw []byte, recvTime time.Time) (string, market.BookSnapshot, error) {
	var msg CombinedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", market.BookSnapshot{}, fmt.Errorf("decode combined message: %w", err)
	}
	if len(msg.Data) == 0 {
		return "", market.BookSnapshot{}, fmt.Errorf("stream %q: empty data", msg.Stream)
	}
	var depth DepthUpdate
	if err := json.Unmarshal(msg.Data, &depth); err != nil {
		return "", market.BookSnapshot{}, fmt.Errorf("decode depth: %w", err)
	}
	if depth.Symbol == "" {
		return "", market.BookSnapshot{}, fmt.Errorf("stream %q: missing symbol", msg.Stream)
	}
	ts := recvTime
	if depth.EventTime > 0 {
		ts = time.UnixMilli(depth.EventTime).UTC()
	}
	snap := market.BookSnapshot{
		Bids: toLevels(depth.Bids),
		Asks: toLevels(depth.Asks),
		Ts:   ts,
	}
	return depth.Symbol, snap, nil
}

func toLevels(rows [][2]decimal.Decimal) []market.Level {
	if len(rows) == 0 {
		return nil
	}
	out := make([]market.Level, 0, len(rows))
	for _, r := range rows {
		if r[1].IsZero() {
			continue
		}
		out = append(out, market.Level{Price: r[0], Size: r[1]})
	}
	return out
}
