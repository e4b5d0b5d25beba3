package resilience

import (
	"time"

	"github.com/shopspring/decimal"

	"market-resilience/market"
)

// Episode is an open depletion being monitored.
type Episode struct {
	Initial      market.BookSnapshot // owned copy of the book at onset
	Side         market.Side
	InitialPrice decimal.Decimal
	Start        time.Time
}

// Outcome is how a monitored episode ended.
type Outcome int

const (
	OutcomeRecovered Outcome = iota + 1
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecovered:
		return "recovered"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Resolution is a closed episode. End and RecoverySide are only set for
// OutcomeRecovered.
type Resolution struct {
	Outcome      Outcome
	Episode      Episode
	End          *market.BookSnapshot
	RecoverySide market.Side
	EndTime      time.Time
	timeout      time.Duration
}

// Elapsed is end minus start for a recovery, the configured timeout otherwise.
func (r Resolution) Elapsed() time.Duration {
	if r.Outcome == OutcomeRecovered && r.End != nil {
		return r.EndTime.Sub(r.Episode.Start)
	}
	return r.timeout
}

// DepletionState is the Idle/Monitoring state machine. Monitoring holds exactly
// one Episode; Recover and Expire close it and return to Idle.
type DepletionState struct {
	timeout time.Duration
	active  *Episode // nil while idle
}

func NewDepletionState(timeout time.Duration) *DepletionState {
	return &DepletionState{timeout: timeout}
}

// IsRunning reports whether an episode is open.
func (s *DepletionState) IsRunning() bool { return s.active != nil }

// Active returns the open episode, if any.
func (s *DepletionState) Active() (Episode, bool) {
	if s.active == nil {
		return Episode{}, false
	}
	return *s.active, true
}

// Begin opens an episode at snap. It is a no-op while another episode is
// open or when side is SideNone.
func (s *DepletionState) Begin(snap market.BookSnapshot, d Depletion) bool {
	if s.active != nil || d.Side == market.SideNone {
		return false
	}
	s.active = &Episode{
		Initial:      snap.Clone(),
		Side:         d.Side,
		InitialPrice: d.Price,
		Start:        snap.Ts,
	}
	return true
}

// IsTimeout reports whether now is strictly more than timeout past the start.
func (s *DepletionState) IsTimeout(now time.Time) bool {
	if s.active == nil {
		return false
	}
	return now.Sub(s.active.Start) > s.timeout
}

// Recover closes the open episode as recovered at snap.
func (s *DepletionState) Recover(snap market.BookSnapshot, side market.Side) (Resolution, bool) {
	if s.active == nil || side == market.SideNone {
		return Resolution{}, false
	}
	end := snap.Clone()
	res := Resolution{
		Outcome:      OutcomeRecovered,
		Episode:      *s.active,
		End:          &end,
		RecoverySide: side,
		EndTime:      snap.Ts,
		timeout:      s.timeout,
	}
	s.active = nil
	return res, true
}

// Expire closes the open episode as timed out.
func (s *DepletionState) Expire(now time.Time) (Resolution, bool) {
	if s.active == nil {
		return Resolution{}, false
	}
	res := Resolution{
		Outcome:      OutcomeTimedOut,
		Episode:      *s.active,
		RecoverySide: market.SideNone,
		EndTime:      now,
		timeout:      s.timeout,
	}
	s.active = nil
	return res, true
}

// Reset drops any open episode.
func (s *DepletionState) Reset() { s.active = nil }
