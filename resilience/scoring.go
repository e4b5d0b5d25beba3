package resilience

import (
	"math"
	"time"

	"market-resilience/market"
)

// Scorecard is the output of scoring one recovered episode.
type Scorecard struct {
	Score               float64
	NormalizedTime      float64
	SpreadRecovery      float64
	DepthRecovery       float64
	SameSide            bool
	StrongReversal      bool
	DepletionContinuing bool
}

// ScoreRecovery turns a recovered episode into a clamped [0,1] score.
//
//	base  = TimeWeight*time + DepthWeight*depth + SpreadWeight*spread
//	score = clamp(base + bias, 0, 1)
//
// where bias is SameSideBias when the recovery is on the depleted side and
// OppositeSideBias otherwise.
func ScoreRecovery(cfg Config, initial, end market.BookSnapshot, depletionSide, recoverySide market.Side, recoveryTime time.Duration) Scorecard {
	sc := Scorecard{
		NormalizedTime: normalizedTime(recoveryTime, cfg.Timeout),
		SpreadRecovery: spreadRecovery(initial, end),
		DepthRecovery:  depthRecovery(initial, end),
		SameSide:       depletionSide == recoverySide,
	}
	base := cfg.TimeWeight*sc.NormalizedTime +
		cfg.DepthWeight*sc.DepthRecovery +
		cfg.SpreadWeight*sc.SpreadRecovery
	bias := cfg.OppositeSideBias
	if sc.SameSide {
		bias = cfg.SameSideBias
	}
	sc.Score = clamp01(base + bias)
	sc.StrongReversal = sc.Score >= cfg.StrongResilienceThreshold && sc.SameSide
	sc.DepletionContinuing = sc.Score < cfg.WeakResilienceThreshold && !sc.SameSide
	return sc
}

func normalizedTime(recovery, timeout time.Duration) float64 {
	if timeout <= 0 {
		return 0
	}
	v := 1 - float64(recovery)/float64(timeout)
	if v < 0 {
		return 0
	}
	return v
}

func spreadRecovery(initial, end market.BookSnapshot) float64 {
	s0, ok := initial.Spread()
	if !ok {
		return 0
	}
	s1, ok := end.Spread()
	if !ok {
		return 0
	}
	if s0 <= 0 {
		return 0
	}
	return clamp01((s0 - s1) / s0)
}

// depthRecovery compares level counts, not sizes.
func depthRecovery(initial, end market.BookSnapshot) float64 {
	d0 := initial.LevelCount()
	if d0 == 0 {
		return 0
	}
	return clamp01(float64(end.LevelCount()) / float64(d0))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
