package sim

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"market-resilience/config"
	"market-resilience/infrastructure/monitor"
	"market-resilience/market"
	"market-resilience/resilience"
)

var t0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func levels(prices ...string) []market.Level {
	out := make([]market.Level, 0, len(prices))
	for _, p := range prices {
		out = append(out, market.Level{Price: decimal.RequireFromString(p), Size: decimal.NewFromInt(10)})
	}
	return out
}

func baseline(at time.Duration) market.BookSnapshot {
	return market.BookSnapshot{Bids: levels("10.0", "9.9", "9.8"), Asks: levels("10.1", "10.2", "10.3"), Ts: t0.Add(at)}
}

func bidDepleted(at time.Duration) market.BookSnapshot {
	return market.BookSnapshot{Bids: levels("9.7", "9.6", "9.5"), Asks: levels("10.1", "10.2", "10.3"), Ts: t0.Add(at)}
}

func newRunner(t *testing.T, symbol string) *Runner {
	t.Helper()
	ind, err := resilience.New(resilience.DefaultConfig())
	require.NoError(t, err)
	return &Runner{Symbol: symbol, Indicator: ind, ImbalanceLevels: 3}
}

// warmUp feeds five baseline books so the spread window averages 0.1.
func warmUp(t *testing.T, feed func(market.BookSnapshot)) {
	t.Helper()
	for i := 0; i < 5; i++ {
		feed(baseline(time.Duration(i) * time.Millisecond))
	}
}

func defaultFactory() func(string) (*Runner, error) {
	return Factory(config.Default(), nil, nil)
}

// metricValues sums counters and reads gauges by family name; histograms report their sample count.
func metricValues(t *testing.T, mon *monitor.Monitor) map[string]float64 {
	t.Helper()
	families, err := mon.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}
