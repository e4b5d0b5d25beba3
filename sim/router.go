package sim

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"market-resilience/config"
	"market-resilience/market"
)

// ErrUnknownSymbol 表示 Router 限定了交易对集合且收到集合外的快照。
var ErrUnknownSymbol = errors.New("unknown symbol")

// Router 将快照按交易对分发给相互独立的 Runner。
// Runner 首次出现时由 build 惰性创建。
type Router struct {
	// OnEvent 在每个迁移事件后调用，可为空。
	OnEvent func(Event)

	mu      sync.RWMutex
	build   func(symbol string) (*Runner, error)
	allowed map[string]struct{}
	runners map[string]*Runner
}

// NewRouter 创建 Router；symbols 非空时只接受其中的交易对。
func NewRouter(build func(symbol string) (*Runner, error), symbols ...string) *Router {
	rt := &Router{
		build:   build,
		runners: make(map[string]*Runner),
	}
	if len(symbols) > 0 {
		rt.allowed = make(map[string]struct{}, len(symbols))
		for _, s := range symbols {
			rt.allowed[normalize(s)] = struct{}{}
		}
	}
	return rt
}

// OnBook 实现 gateway.BookSink。
func (rt *Router) OnBook(symbol string, snap market.BookSnapshot) error {
	r, err := rt.runner(normalize(symbol))
	if err != nil {
		return err
	}
	ev, err := r.OnBook(snap)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Symbol, err)
	}
	if ev != nil && rt.OnEvent != nil {
		rt.OnEvent(*ev)
	}
	return nil
}

func (rt *Router) runner(symbol string) (*Runner, error) {
	rt.mu.RLock()
	r, ok := rt.runners[symbol]
	rt.mu.RUnlock()
	if ok {
		return r, nil
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if r, ok := rt.runners[symbol]; ok {
		return r, nil
	}
	if rt.allowed != nil {
		if _, ok := rt.allowed[symbol]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
		}
	}
	r, err := rt.build(symbol)
	if err != nil {
		return nil, err
	}
	rt.runners[symbol] = r
	return r, nil
}

// Runner 返回已创建的 Runner。
func (rt *Router) Runner(symbol string) (*Runner, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	r, ok := rt.runners[normalize(symbol)]
	return r, ok
}

// Symbols 返回已创建 Runner 的交易对，按字母序。
func (rt *Router) Symbols() []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]string, 0, len(rt.runners))
	for s := range rt.runners {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Reconfigure 替换构造函数并丢弃现有 Runner，之后的快照从全新状态开始。
// 新构造函数先对每个现有交易对试建一次，任一失败时保持原 Runner 与指标不变。
func (rt *Router) Reconfigure(build func(symbol string) (*Runner, error)) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	next := make(map[string]*Runner, len(rt.runners))
	for s := range rt.runners {
		r, err := build(s)
		if err != nil {
			return fmt.Errorf("reconfigure %s: %w", s, err)
		}
		next[s] = r
	}
	for s, old := range rt.runners {
		if old.Monitor != nil {
			old.Monitor.ResetSymbol(s)
		}
	}
	rt.build = build
	rt.runners = next
	return nil
}

// Reset 清空所有 Runner 的指标器状态。
func (rt *Router) Reset() {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	for _, r := range rt.runners {
		r.Reset()
	}
}

func normalize(symbol string) string {
	return config.NormalizeSymbol(symbol)
}
