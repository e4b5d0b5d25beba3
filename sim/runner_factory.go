package sim

import (
	"fmt"

	"market-resilience/config"
	"market-resilience/infrastructure/logger"
	"market-resilience/infrastructure/monitor"
	"market-resilience/resilience"
)

// defaultImbalanceLevels 与 Binance 最浅的部分深度一致。
const defaultImbalanceLevels = 5

// BuildRunner 基于配置组装单个交易对的 Runner。
func BuildRunner(cfg config.AppConfig, symbol string, log *logger.Logger, mon *monitor.Monitor) (*Runner, error) {
	ind, err := resilience.New(cfg.IndicatorFor(symbol))
	if err != nil {
		return nil, fmt.Errorf("build indicator for %s: %w", symbol, err)
	}
	if log != nil {
		log = log.WithFields(map[string]interface{}{"component": "runner"})
	}
	return &Runner{
		Symbol:          symbol,
		Indicator:       ind,
		Log:             log,
		Monitor:         mon,
		ImbalanceLevels: defaultImbalanceLevels,
	}, nil
}

// Factory 返回 Router 使用的构造函数。
func Factory(cfg config.AppConfig, log *logger.Logger, mon *monitor.Monitor) func(string) (*Runner, error) {
	return func(symbol string) (*Runner, error) {
		return BuildRunner(cfg, symbol, log, mon)
	}
}
