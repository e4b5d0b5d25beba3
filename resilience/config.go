package resilience

import (
	"fmt"
	"time"
)

// Config holds the tunables of a MarketResilienceIndicator. It is copied into
// the indicator at construction and never changes afterwards.
type Config struct {
	Timeout                   time.Duration // max episode duration before a forced zero score
	SpreadWindowSize          int           // rolling spread observations kept
	LevelsToConsume           int           // book rank used as the depletion threshold
	SpreadIncreaseThreshold   float64       // fraction above the rolling average that confirms a depletion
	StrongResilienceThreshold float64
	WeakResilienceThreshold   float64
	// weights do not need to sum to 1
	TimeWeight   float64
	DepthWeight  float64
	SpreadWeight float64
	// added to the weighted base score before clamping
	SameSideBias     float64
	OppositeSideBias float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:                   500 * time.Millisecond,
		SpreadWindowSize:          50,
		LevelsToConsume:           3,
		SpreadIncreaseThreshold:   1.0,
		StrongResilienceThreshold: 0.7,
		WeakResilienceThreshold:   0.3,
		TimeWeight:                0.5,
		DepthWeight:               0.0,
		SpreadWeight:              0.5,
		SameSideBias:              0.5,
		OppositeSideBias:          -0.5,
	}
}

// Validate checks the structural preconditions of the indicator.
func (c Config) Validate() error {
	if c.LevelsToConsume < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidLevels, c.LevelsToConsume)
	}
	if c.SpreadWindowSize < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidWindow, c.SpreadWindowSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidTimeout, c.Timeout)
	}
	return nil
}
