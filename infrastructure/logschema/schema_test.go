package logschema

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	err := Validate("depletion", map[string]interface{}{
		"symbol":  "BTCUSDT",
		"side":    "BUY",
		"price":   "10",
		"book_ts": "2024-03-01T09:30:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = Validate("recovered", map[string]interface{}{"symbol": "BTCUSDT", "score": 1.0})
	if err == nil {
		t.Fatalf("expected error for missing fields")
	}
	if !strings.Contains(err.Error(), "depletion_side") || !strings.Contains(err.Error(), "recovery_time_ms") {
		t.Fatalf("error should list missing fields: %v", err)
	}
	if err := Validate("unregistered", nil); err != nil {
		t.Fatalf("unregistered events are not checked: %v", err)
	}
}

func TestKnownEvents(t *testing.T) {
	names := Known()
	want := []string{"depletion", "recovered", "timed_out"}
	if len(names) != len(want) {
		t.Fatalf("Known() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Known() = %v, want %v", names, want)
		}
	}
}
