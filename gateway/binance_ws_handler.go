package gateway

import (
	"time"

	"market-resilience/market"
)

// BookSink 接收解析后的快照。
type BookSink interface {
	OnBook(symbol string, snap market.BookSnapshot) error
}

// DepthHandler 解析 depth combined 消息并推送给 Sink。
type DepthHandler struct {
	Sink    BookSink
	OnError func(stream string, err error)
}

// OnRawMessage 可作为 DepthStream.Run 的回调。
func (h *DepthHandler) OnRawMessage(msg []byte, recv time.Time) {
	sym, snap, err := ParseCombinedDepth(msg, recv)
	if err != nil {
		h.fail("", err)
		return
	}
	if h.Sink == nil {
		return
	}
	if err := h.Sink.OnBook(sym, snap); err != nil {
		h.fail(sym, err)
	}
}

func (h *DepthHandler) fail(stream string, err error) {
	if h.OnError != nil {
		h.OnError(stream, err)
	}
}
