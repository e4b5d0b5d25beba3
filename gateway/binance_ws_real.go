package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"
)

// DepthStream 订阅 binance 部分深度 combined stream，断线后自动重连。
// 连续失败由熔断器保护，熔断期间按 Timeout 等待后再试。
type DepthStream struct {
	BaseEndpoint string // 默认 wss://fstream.binance.com
	Depth        int    // 5/10/20
	Interval     string // 100ms/250ms/500ms
	Dialer       *websocket.Dialer
	ReadTimeout  time.Duration
	MinBackoff   time.Duration
	MaxBackoff   time.Duration

	// OnReconnect 在每次重新拨号前调用，可用于计数。
	OnReconnect func(attempt int, lastErr error)

	streams []string
	breaker *gobreaker.CircuitBreaker
}

func NewDepthStream(endpoint string, depth int, interval string) *DepthStream {
	return &DepthStream{
		BaseEndpoint: endpoint,
		Depth:        depth,
		Interval:     interval,
		Dialer:       websocket.DefaultDialer,
		ReadTimeout:  30 * time.Second,
		MinBackoff:   500 * time.Millisecond,
		MaxBackoff:   30 * time.Second,
		breaker:      newBreaker("binance-depth"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	return gobreaker.NewCircuitBreaker(st)
}

func (b *DepthStream) SubscribeDepth(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol required")
	}
	stream := fmt.Sprintf("%s@depth%d@%s", strings.ToLower(symbol), b.Depth, b.Interval)
	b.streams = append(b.streams, stream)
	return nil
}

// Streams 返回已订阅的 stream 名称。
func (b *DepthStream) Streams() []string {
	return append([]string(nil), b.streams...)
}

// URL 构建 combined stream 地址。
func (b *DepthStream) URL() (string, error) {
	if len(b.streams) == 0 {
		return "", fmt.Errorf("no streams subscribed")
	}
	u, err := url.Parse(b.BaseEndpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	u.Path = "/stream"
	q := u.Query()
	q.Set("streams", strings.Join(b.streams, "/"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run 连接并把原始消息交给 onMessage，直到 ctx 结束。
func (b *DepthStream) Run(ctx context.Context, onMessage func(raw []byte, recv time.Time)) error {
	addr, err := b.URL()
	if err != nil {
		return err
	}
	if b.breaker == nil {
		b.breaker = newBreaker("binance-depth")
	}
	backoff := b.MinBackoff
	for attempt := 0; ; attempt++ {
		if attempt > 0 && b.OnReconnect != nil {
			b.OnReconnect(attempt, err)
		}
		_, err = b.breaker.Execute(func() (any, error) {
			return nil, b.session(ctx, addr, onMessage, &backoff)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := backoff
		if errors.Is(err, gobreaker.ErrOpenState) {
			wait = b.MaxBackoff
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
		if backoff > b.MaxBackoff {
			backoff = b.MaxBackoff
		}
	}
}

// session 维持一次连接；收到过消息后重置退避。
func (b *DepthStream) session(ctx context.Context, addr string, onMessage func([]byte, time.Time), backoff *time.Duration) error {
	conn, _, err := b.Dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		if b.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(b.ReadTimeout))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		*backoff = b.MinBackoff
		if onMessage != nil {
			onMessage(message, time.Now().UTC())
		}
	}
}
