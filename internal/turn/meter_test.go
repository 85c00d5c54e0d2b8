package turn

import (
	"testing"

	"github.com/vovakirdan/mergecrawl/internal/events"
)

func TestThresholdFiresExactlyOnce(t *testing.T) {
	thresholds := []int{1, 3, 5}

	for _, threshold := range thresholds {
		bus := events.NewBus()
		fired := 0
		bus.AdvanceFired.Subscribe(func(events.AdvanceFired) { fired++ })
		m := NewMeter(threshold, bus)

		for i := 0; i < threshold; i++ {
			if m.IsFull() {
				t.Fatalf("threshold %d: full after %d increments", threshold, i)
			}
			m.Increment()
		}
		if !m.IsFull() {
			t.Errorf("threshold %d: IsFull() = false after %d increments", threshold, threshold)
		}
		if fired != 1 {
			t.Errorf("threshold %d: fired %d advances, expected 1", threshold, fired)
		}

		// Further increments clamp and do not fire again.
		m.Increment()
		m.Increment()
		if m.Value() != threshold || fired != 1 {
			t.Errorf("threshold %d: value=%d fired=%d after overflow", threshold, m.Value(), fired)
		}

		m.Reset()
		if m.Value() != 0 || m.IsFull() {
			t.Errorf("threshold %d: Reset() left value %d", threshold, m.Value())
		}
	}
}

func TestAdvanceCountAcrossResets(t *testing.T) {
	bus := events.NewBus()
	var counts []int
	bus.AdvanceFired.Subscribe(func(ev events.AdvanceFired) { counts = append(counts, ev.Count) })

	m := NewMeter(2, bus)
	bus.AdvanceFired.Subscribe(func(events.AdvanceFired) { m.Reset() })

	for range 6 {
		m.Increment()
	}
	if len(counts) != 3 || counts[2] != 3 {
		t.Errorf("counts = %v, expected [1 2 3]", counts)
	}
	if m.Advances() != 3 {
		t.Errorf("Advances() = %d, expected 3", m.Advances())
	}
}

func TestSetThresholdAndRestore(t *testing.T) {
	m := NewMeter(0, nil)
	if m.Threshold() != DefaultThreshold {
		t.Errorf("Threshold() = %d, expected default %d", m.Threshold(), DefaultThreshold)
	}

	m.Restore(2, 7)
	if m.Value() != 2 || m.Advances() != 7 {
		t.Errorf("Restore: value=%d advances=%d", m.Value(), m.Advances())
	}
	if m.Progress() != 2.0/3.0 {
		t.Errorf("Progress() = %v", m.Progress())
	}

	m.SetThreshold(1)
	if m.Value() != 1 || !m.IsFull() {
		t.Errorf("SetThreshold(1): value=%d full=%v", m.Value(), m.IsFull())
	}
}
