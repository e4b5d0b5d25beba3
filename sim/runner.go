package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"market-resilience/infrastructure/logger"
	"market-resilience/infrastructure/monitor"
	"market-resilience/market"
	"market-resilience/resilience"
)

// EventKind 描述一次状态迁移。
type EventKind int

const (
	EventDepletion EventKind = iota + 1
	EventRecovered
	EventTimedOut
)

func (k EventKind) String() string {
	switch k {
	case EventDepletion:
		return "depletion"
	case EventRecovered:
		return "recovered"
	case EventTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Event 是 Runner 在一次快照上观察到的迁移。
type Event struct {
	Kind      EventKind
	Symbol    string
	Ts        time.Time
	Side      market.Side     // 耗尽侧
	Price     decimal.Decimal // 耗尽锚定价
	Imbalance float64         // 事件快照前 N 档的挂单量失衡
	Signal    resilience.Signal
}

// Runner 将单个交易对的快照串到 resilience.Indicator，并记录日志/指标。
// OnBook 内部加锁，保证同一指标器只有一个写者。
type Runner struct {
	Symbol          string
	Indicator       *resilience.Indicator
	Log             *logger.Logger   // 可选
	Monitor         *monitor.Monitor // 可选
	ImbalanceLevels int

	mu sync.Mutex
}

// OnBook 处理一个快照；若发生耗尽或结束事件则返回 Event。
func (r *Runner) OnBook(snap market.BookSnapshot) (*Event, error) {
	if r.Indicator == nil {
		return nil, errors.New("runner not initialized")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	wasRunning := r.Indicator.IsRunning()
	r.Indicator.HandleBook(snap)

	if r.Monitor != nil {
		spread, ok := snap.Spread()
		r.Monitor.RecordUpdate(r.Symbol, spread, ok)
	}

	switch {
	case !wasRunning && r.Indicator.IsRunning():
		ep, _ := r.Indicator.Episode()
		ev := r.event(EventDepletion, snap)
		ev.Side, ev.Price = ep.Side, ep.InitialPrice
		r.onDepletion(ev)
		return ev, nil
	case wasRunning && !r.Indicator.IsRunning():
		res, ok := r.Indicator.LastResolution()
		if !ok {
			return nil, nil
		}
		kind := EventRecovered
		if res.Outcome == resilience.OutcomeTimedOut {
			kind = EventTimedOut
		}
		ev := r.event(kind, snap)
		ev.Side, ev.Price = res.Episode.Side, res.Episode.InitialPrice
		r.onResolution(ev)
		return ev, nil
	}
	return nil, nil
}

func (r *Runner) event(kind EventKind, snap market.BookSnapshot) *Event {
	return &Event{
		Kind:      kind,
		Symbol:    r.Symbol,
		Ts:        snap.Ts,
		Imbalance: market.SnapshotImbalance(snap, r.ImbalanceLevels),
		Signal:    r.Indicator.Signal(),
	}
}

func (r *Runner) onDepletion(ev *Event) {
	if r.Monitor != nil {
		r.Monitor.RecordDepletion(r.Symbol, ev.Side.String())
	}
	if r.Log != nil {
		r.Log.LogEpisode(ev.Kind.String(), r.Symbol, map[string]interface{}{
			"side":      ev.Side.String(),
			"price":     ev.Price.String(),
			"imbalance": ev.Imbalance,
			"book_ts":   ev.Ts,
		})
	}
}

func (r *Runner) onResolution(ev *Event) {
	sig := ev.Signal
	if r.Monitor != nil {
		r.Monitor.RecordResolution(r.Symbol, ev.Kind.String(), sig.Score, sig.IsStrongReversal, sig.IsDepletionContinuing)
		if ev.Kind == EventRecovered {
			r.Monitor.RecordRecoveryTime(r.Symbol, sig.RecoveryTime.Seconds())
		}
	}
	if r.Log != nil {
		r.Log.LogEpisode(ev.Kind.String(), r.Symbol, map[string]interface{}{
			"score":                sig.Score,
			"depletion_side":       sig.DepletionSide.String(),
			"recovery_side":        sig.RecoverySide.String(),
			"bias_side":            sig.BiasSide.String(),
			"recovery_time_ms":     sig.RecoveryTime.Milliseconds(),
			"strong_reversal":      sig.IsStrongReversal,
			"depletion_continuing": sig.IsDepletionContinuing,
			"imbalance":            ev.Imbalance,
			"book_ts":              ev.Ts,
		})
	}
}

// Signal 返回指标器当前发布的状态。
func (r *Runner) Signal() resilience.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Indicator.Signal()
}

// Reset 清空指标器状态。
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Indicator.Reset()
	if r.Monitor != nil {
		r.Monitor.ResetSymbol(r.Symbol)
	}
}
