package sim

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-resilience/config"
	"market-resilience/infrastructure/monitor"
	"market-resilience/market"
)

func TestRouterCreatesIndependentRunners(t *testing.T) {
	var events []Event
	rt := NewRouter(defaultFactory())
	rt.OnEvent = func(ev Event) { events = append(events, ev) }

	warmUp(t, func(s market.BookSnapshot) {
		require.NoError(t, rt.OnBook("btcusdt", s))
		require.NoError(t, rt.OnBook("ETHUSDT", s))
	})
	require.NoError(t, rt.OnBook("BTCUSDT", bidDepleted(100*time.Millisecond)))

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, rt.Symbols())
	btc, ok := rt.Runner("BTCUSDT")
	require.True(t, ok)
	eth, ok := rt.Runner("ethusdt")
	require.True(t, ok)
	assert.True(t, btc.Indicator.IsRunning())
	assert.False(t, eth.Indicator.IsRunning(), "instruments never share state")
	assert.Equal(t, 6, btc.Signal().Count)
	assert.Equal(t, 5, eth.Signal().Count)

	require.Len(t, events, 1)
	assert.Equal(t, EventDepletion, events[0].Kind)
	assert.Equal(t, "BTCUSDT", events[0].Symbol)
}

func TestRouterRejectsUnknownSymbol(t *testing.T) {
	rt := NewRouter(defaultFactory(), "BTCUSDT")
	require.NoError(t, rt.OnBook("BTCUSDT", baseline(0)))

	err := rt.OnBook("DOGEUSDT", baseline(0))
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
	_, ok := rt.Runner("DOGEUSDT")
	assert.False(t, ok)
}

func TestRouterPropagatesBuildError(t *testing.T) {
	cfg := config.Default()
	zero := 0
	cfg.Symbols = map[string]config.IndicatorConfig{"BTCUSDT": {LevelsToConsume: &zero}}
	rt := NewRouter(Factory(cfg, nil, nil))

	err := rt.OnBook("BTCUSDT", baseline(0))
	assert.Error(t, err)
	require.NoError(t, rt.OnBook("ETHUSDT", baseline(0)))
}

func TestRouterReconfigure(t *testing.T) {
	rt := NewRouter(defaultFactory())
	warmUp(t, func(s market.BookSnapshot) { require.NoError(t, rt.OnBook("BTCUSDT", s)) })
	require.NoError(t, rt.OnBook("BTCUSDT", bidDepleted(100*time.Millisecond)))

	cfg := config.Default()
	timeout := 2 * time.Second
	cfg.Indicator.Timeout = &timeout
	require.NoError(t, rt.Reconfigure(Factory(cfg, nil, nil)))

	r, ok := rt.Runner("BTCUSDT")
	require.True(t, ok)
	assert.False(t, r.Indicator.IsRunning(), "reload starts from a fresh state")
	assert.Equal(t, 0, r.Signal().Count)
	assert.Equal(t, timeout, r.Indicator.Config().Timeout)
}

func TestRouterReconfigureKeepsOldOnError(t *testing.T) {
	rt := NewRouter(defaultFactory())
	require.NoError(t, rt.OnBook("BTCUSDT", baseline(0)))
	before, _ := rt.Runner("BTCUSDT")

	cfg := config.Default()
	zero := time.Duration(0)
	cfg.Indicator.Timeout = &zero
	assert.Error(t, rt.Reconfigure(Factory(cfg, nil, nil)))

	after, _ := rt.Runner("BTCUSDT")
	assert.Same(t, before, after)
	assert.Equal(t, 1, after.Signal().Count)
}

func TestRouterReset(t *testing.T) {
	rt := NewRouter(defaultFactory())
	warmUp(t, func(s market.BookSnapshot) { require.NoError(t, rt.OnBook("BTCUSDT", s)) })
	rt.Reset()
	r, _ := rt.Runner("BTCUSDT")
	assert.Equal(t, 0, r.Signal().Count)
}

func TestRouterAppliesLowerCaseSymbolOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: dev\nsymbols:\n  ethusdt:\n    timeout: 750ms\n"), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	rt := NewRouter(Factory(cfg, nil, nil), "ethusdt")
	require.NoError(t, rt.OnBook("ethusdt", baseline(0)))

	r, ok := rt.Runner("ETHUSDT")
	require.True(t, ok)
	assert.Equal(t, 750*time.Millisecond, r.Indicator.Config().Timeout)
}

func TestRouterReconfigureFailureKeepsMetrics(t *testing.T) {
	mon := monitor.New(monitor.DefaultConfig())
	rt := NewRouter(Factory(config.Default(), nil, mon))
	warmUp(t, func(s market.BookSnapshot) {
		require.NoError(t, rt.OnBook("BTCUSDT", s))
		require.NoError(t, rt.OnBook("ETHUSDT", s))
	})
	require.NoError(t, rt.OnBook("BTCUSDT", bidDepleted(100*time.Millisecond)))
	require.NoError(t, rt.OnBook("BTCUSDT", baseline(200*time.Millisecond)))
	require.InDelta(t, 1.0, metricValues(t, mon)["mr_resilience_score"], 1e-9)

	good := Factory(config.Default(), nil, mon)
	failing := func(symbol string) (*Runner, error) {
		if symbol == "ETHUSDT" {
			return nil, errors.New("bad params")
		}
		return good(symbol)
	}
	// map iteration order varies; run a few times so BTCUSDT is built before the failure at least once
	for i := 0; i < 8; i++ {
		require.Error(t, rt.Reconfigure(failing))
		assert.InDelta(t, 1.0, metricValues(t, mon)["mr_resilience_score"], 1e-9)
	}

	require.NoError(t, rt.Reconfigure(good))
	assert.Equal(t, 0.0, metricValues(t, mon)["mr_resilience_score"])
}
