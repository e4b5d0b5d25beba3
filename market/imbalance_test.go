package market

import (
	"testing"
)

func TestCalculateImbalance(t *testing.T) {
	tests := []struct {
		name      string
		bidVolume float64
		askVolume float64
		expected  float64
	}{
		{name: "Equal volumes", bidVolume: 100, askVolume: 100, expected: 0},
		{name: "More bid volume", bidVolume: 150, askVolume: 100, expected: 0.2},
		{name: "More ask volume", bidVolume: 100, askVolume: 150, expected: -0.2},
		{name: "Zero volumes", bidVolume: 0, askVolume: 0, expected: 0},
		{name: "One zero volume", bidVolume: 100, askVolume: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateImbalance(tt.bidVolume, tt.askVolume)
			if result != tt.expected {
				t.Errorf("CalculateImbalance(%f, %f) = %f, want %f",
					tt.bidVolume, tt.askVolume, result, tt.expected)
			}
		})
	}
}

func TestSnapshotImbalance(t *testing.T) {
	snap := BookSnapshot{
		Bids: []Level{lv("100.0", "2"), lv("99.9", "3"), lv("99.8", "1")},
		Asks: []Level{lv("100.1", "1"), lv("100.2", "2"), lv("100.3", "3")},
	}

	if got, want := SnapshotImbalance(snap, 1), CalculateImbalance(2, 1); got != want {
		t.Errorf("SnapshotImbalance(1 level) = %f, want %f", got, want)
	}
	if got, want := SnapshotImbalance(snap, 2), CalculateImbalance(2+3, 1+2); got != want {
		t.Errorf("SnapshotImbalance(2 levels) = %f, want %f", got, want)
	}
	// more levels than available
	if got, want := SnapshotImbalance(snap, 10), CalculateImbalance(2+3+1, 1+2+3); got != want {
		t.Errorf("SnapshotImbalance(10 levels) = %f, want %f", got, want)
	}
	if got := SnapshotImbalance(snap, 0); got != 0 {
		t.Errorf("SnapshotImbalance(0 levels) = %f, want 0", got)
	}
	if got := SnapshotImbalance(BookSnapshot{}, 3); got != 0 {
		t.Errorf("SnapshotImbalance(empty) = %f, want 0", got)
	}
}
