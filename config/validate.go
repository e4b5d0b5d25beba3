package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"

	"market-resilience/resilience"
)

// ErrInvalid 用于参数验证错误。
type ErrInvalid string

func (e ErrInvalid) Error() string { return string(e) }

// Validate ensures required fields are present and every resolved indicator
// config is constructible. levelsToConsume < 1 is rejected here, before any
// indicator is built.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return ErrInvalid("env is required")
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Feed.Depth {
	case 5, 10, 20:
	default:
		return ErrInvalid(fmt.Sprintf("feed.depth must be 5, 10 or 20, got %d", cfg.Feed.Depth))
	}
	switch cfg.Feed.Interval {
	case "100ms", "250ms", "500ms":
	default:
		return ErrInvalid(fmt.Sprintf("feed.interval must be 100ms, 250ms or 500ms, got %q", cfg.Feed.Interval))
	}

	var errs []error
	if err := validateIndicator("indicator", cfg.IndicatorFor("")); err != nil {
		errs = append(errs, err)
	}
	for sym := range cfg.Symbols {
		if err := validateIndicator("symbols."+sym, cfg.IndicatorFor(sym)); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sym := range cfg.Feed.Symbols {
		if sym == "" {
			errs = append(errs, ErrInvalid("feed.symbols contains an empty symbol"))
		}
	}
	return errors.Join(errs...)
}

func validateIndicator(path string, rc resilience.Config) error {
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
