package monitor

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordResolution(t *testing.T) {
	m := New(DefaultConfig())

	m.RecordDepletion("BTCUSDT", "BUY")
	if got := testutil.ToFloat64(m.running.WithLabelValues("BTCUSDT")); got != 1 {
		t.Fatalf("expected running=1, got %f", got)
	}

	m.RecordResolution("BTCUSDT", "recovered", 0.8, true, false)
	m.RecordRecoveryTime("BTCUSDT", 0.1)
	if got := testutil.ToFloat64(m.score.WithLabelValues("BTCUSDT")); got != 0.8 {
		t.Errorf("expected score 0.8, got %f", got)
	}
	if got := testutil.ToFloat64(m.running.WithLabelValues("BTCUSDT")); got != 0 {
		t.Errorf("expected running=0, got %f", got)
	}
	if got := testutil.ToFloat64(m.reversals.WithLabelValues("BTCUSDT")); got != 1 {
		t.Errorf("expected 1 strong reversal, got %f", got)
	}
	if got := testutil.ToFloat64(m.continuations.WithLabelValues("BTCUSDT")); got != 0 {
		t.Errorf("expected no continuation, got %f", got)
	}
	if got := testutil.ToFloat64(m.resolutions.WithLabelValues("BTCUSDT", "recovered")); got != 1 {
		t.Errorf("expected 1 recovered resolution, got %f", got)
	}
	if got := testutil.CollectAndCount(m.recoveryTime); got != 1 {
		t.Errorf("expected 1 recovery time series, got %d", got)
	}
}

func TestRecordUpdateSkipsMissingSpread(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordUpdate("ETHUSDT", 0.5, true)
	m.RecordUpdate("ETHUSDT", 0, false)

	if got := testutil.ToFloat64(m.updates.WithLabelValues("ETHUSDT")); got != 2 {
		t.Errorf("expected 2 updates, got %f", got)
	}
	if got := testutil.ToFloat64(m.spread.WithLabelValues("ETHUSDT")); got != 0.5 {
		t.Errorf("expected spread to keep 0.5, got %f", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordFeedReconnect("btcusdt@depth20@100ms")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "mr_resilience_feed_reconnects_total") {
		t.Fatalf("metrics output missing reconnect counter:\n%s", rec.Body.String())
	}
}
