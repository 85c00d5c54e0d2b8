// Package turn paces the world against player actions: every threshold
// actions fill the advance meter and fire one advance.
package turn

import "github.com/vovakirdan/mergecrawl/internal/events"

// DefaultThreshold is the number of actions per advance.
const DefaultThreshold = 3

// Meter counts player actions toward the next advance. It fires exactly one
// AdvanceFired when it fills and stays full until Reset.
type Meter struct {
	value     int
	threshold int
	fired     bool
	advances  int
	bus       *events.Bus
}

// NewMeter creates an empty meter. Thresholds below 1 use DefaultThreshold.
func NewMeter(threshold int, bus *events.Bus) *Meter {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Meter{threshold: threshold, bus: bus}
}

// Increment adds one action, clamped at the threshold. It returns true when
// this call filled the meter and fired the advance.
func (m *Meter) Increment() bool {
	m.value = min(m.value+1, m.threshold)
	if m.value < m.threshold || m.fired {
		return false
	}
	m.fired = true
	m.advances++
	if m.bus != nil {
		m.bus.AdvanceFired.Publish(events.AdvanceFired{Count: m.advances})
	}
	return true
}

// Reset empties the meter and re-arms it.
func (m *Meter) Reset() {
	m.value = 0
	m.fired = false
}

// IsFull reports whether the meter has reached the threshold.
func (m *Meter) IsFull() bool {
	return m.value >= m.threshold
}

// Value returns the current count.
func (m *Meter) Value() int {
	return m.value
}

// Threshold returns the number of actions per advance.
func (m *Meter) Threshold() int {
	return m.threshold
}

// SetThreshold changes the threshold, clamping the current value. It does
// not fire an advance.
func (m *Meter) SetThreshold(n int) {
	if n < 1 {
		n = 1
	}
	m.threshold = n
	m.value = min(m.value, n)
}

// Progress returns value/threshold in [0, 1].
func (m *Meter) Progress() float64 {
	return float64(m.value) / float64(m.threshold)
}

// Advances returns how many advances have fired.
func (m *Meter) Advances() int {
	return m.advances
}

// Restore sets the meter from saved state without firing.
func (m *Meter) Restore(value, advances int) {
	m.value = max(0, min(value, m.threshold))
	m.advances = max(advances, 0)
	m.fired = m.value >= m.threshold
}
