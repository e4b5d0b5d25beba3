package resilience

import (
	"fmt"
	"time"

	"market-resilience/market"
)

// Signal is the published state of an Indicator. The three Is* flags are
// transient: they describe the most recent update only.
type Signal struct {
	Score         float64
	BiasSide      market.Side
	DepletionSide market.Side
	RecoverySide  market.Side
	RecoveryTime  time.Duration
	Count         int
	Initialized   bool
	HasInputs     bool

	IsSpreadRecovered     bool
	IsStrongReversal      bool
	IsDepletionContinuing bool
}

// Indicator is the market resilience indicator: it watches a stream of book
// snapshots for a depletion confirmed by a spread widening, then scores how the
// book recovers. One instance per instrument; calls must be serialized.
type Indicator struct {
	cfg    Config
	sig    Signal
	window *SpreadWindow
	state  *DepletionState
	prev   *market.BookSnapshot
	last   *Resolution
}

// New builds an indicator from cfg.
func New(cfg Config) (*Indicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Indicator{
		cfg:    cfg,
		sig:    Signal{RecoveryTime: cfg.Timeout},
		window: NewSpreadWindow(cfg.SpreadWindowSize),
		state:  NewDepletionState(cfg.Timeout),
	}, nil
}

func (ind *Indicator) Name() string { return "MarketResilienceIndicator" }

func (ind *Indicator) String() string {
	return fmt.Sprintf("%s(score=%g, bias_side=%s, depletion_side=%s, recovery_side=%s, recovery_time=%s)",
		ind.Name(), ind.sig.Score, ind.sig.BiasSide, ind.sig.DepletionSide, ind.sig.RecoverySide, ind.sig.RecoveryTime)
}

// HandleBook consumes one snapshot.
func (ind *Indicator) HandleBook(snap market.BookSnapshot) {
	ind.sig.IsSpreadRecovered = false
	ind.sig.IsStrongReversal = false
	ind.sig.IsDepletionContinuing = false
	ind.last = nil

	ind.sig.HasInputs = true
	ind.sig.Count++

	if ind.state.IsRunning() {
		ind.monitor(snap)
	} else {
		ind.watch(snap)
	}

	ind.sig.Initialized = true
}

// monitor resolves an open episode; spread recovery takes priority over timeout.
func (ind *Indicator) monitor(snap market.BookSnapshot) {
	if ind.spreadBackToAverage(snap) {
		ep, _ := ind.state.Active()
		side := ClassifyRecovery(ep.Side, ep.InitialPrice, snap)
		if res, ok := ind.state.Recover(snap, side); ok {
			ind.applyRecovery(res)
			ind.finish(res)
		}
		return
	}
	if ind.state.IsTimeout(snap.Ts) {
		res, _ := ind.state.Expire(snap.Ts)
		ind.sig.Score = 0
		ind.sig.BiasSide = market.SideNone
		ind.sig.DepletionSide = res.Episode.Side
		ind.sig.RecoverySide = market.SideNone
		ind.sig.RecoveryTime = ind.cfg.Timeout
		ind.finish(res)
	}
}

// watch feeds the spread window and looks for a confirmed depletion.
func (ind *Indicator) watch(snap market.BookSnapshot) {
	if spread, ok := snap.Spread(); ok {
		ind.window.Push(spread)
	}
	if ind.prev != nil {
		if d, ok := DetectDepletion(*ind.prev, snap, ind.cfg.LevelsToConsume); ok && ind.spreadIncreased(snap) {
			ind.state.Begin(snap, d)
		}
	}
	cp := snap.Clone()
	ind.prev = &cp
}

func (ind *Indicator) applyRecovery(res Resolution) {
	elapsed := res.Elapsed()
	sc := ScoreRecovery(ind.cfg, res.Episode.Initial, *res.End, res.Episode.Side, res.RecoverySide, elapsed)
	ind.sig.Score = sc.Score
	ind.sig.IsSpreadRecovered = true
	ind.sig.BiasSide = res.RecoverySide
	ind.sig.IsStrongReversal = sc.StrongReversal
	ind.sig.IsDepletionContinuing = sc.DepletionContinuing
	ind.sig.DepletionSide = res.Episode.Side
	ind.sig.RecoverySide = res.RecoverySide
	ind.sig.RecoveryTime = elapsed
}

func (ind *Indicator) finish(res Resolution) {
	ind.last = &res
	ind.prev = nil
}

func (ind *Indicator) spreadIncreased(snap market.BookSnapshot) bool {
	avg, ok := ind.window.Average()
	if !ok {
		return false
	}
	spread, ok := snap.Spread()
	return ok && spread > avg*(1+ind.cfg.SpreadIncreaseThreshold)
}

func (ind *Indicator) spreadBackToAverage(snap market.BookSnapshot) bool {
	avg, ok := ind.window.Average()
	if !ok {
		return false
	}
	spread, ok := snap.Spread()
	return ok && spread <= avg
}

// Reset restores the construction-time state without reallocating.
func (ind *Indicator) Reset() {
	ind.sig = Signal{RecoveryTime: ind.cfg.Timeout}
	ind.window.Clear()
	ind.state.Reset()
	ind.prev = nil
	ind.last = nil
}

func (ind *Indicator) Config() Config { return ind.cfg }

// Signal returns a copy of the published state.
func (ind *Indicator) Signal() Signal { return ind.sig }

// Episode returns the open depletion episode, if any.
func (ind *Indicator) Episode() (Episode, bool) { return ind.state.Active() }

// LastResolution returns the episode closed by the most recent update, if any.
func (ind *Indicator) LastResolution() (Resolution, bool) {
	if ind.last == nil {
		return Resolution{}, false
	}
	return *ind.last, true
}

func (ind *Indicator) IsRunning() bool { return ind.state.IsRunning() }
func (ind *Indicator) Score() float64 { return ind.sig.Score }
func (ind *Indicator) BiasSide() market.Side { return ind.sig.BiasSide }
func (ind *Indicator) DepletionSide() market.Side { return ind.sig.DepletionSide }
func (ind *Indicator) RecoverySide() market.Side { return ind.sig.RecoverySide }
func (ind *Indicator) RecoveryTime() time.Duration { return ind.sig.RecoveryTime }
func (ind *Indicator) Count() int { return ind.sig.Count }
func (ind *Indicator) Initialized() bool { return ind.sig.Initialized }
func (ind *Indicator) HasInputs() bool { return ind.sig.HasInputs }
func (ind *Indicator) IsSpreadRecovered() bool { return ind.sig.IsSpreadRecovered }
func (ind *Indicator) IsStrongReversal() bool { return ind.sig.IsStrongReversal }
func (ind *Indicator) IsDepletionContinuing() bool { return ind.sig.IsDepletionContinuing }
