package resilience

import "errors"

var (
	ErrInvalidLevels  = errors.New("resilience: levels to consume must be >= 1")
	ErrInvalidWindow  = errors.New("resilience: spread window size must be >= 1")
	ErrInvalidTimeout = errors.New("resilience: timeout must be > 0")
)
