// Package world models one world's adaptive environment: its mutable
// parameters and the rolling memory that drives the feedback loop.
package world

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Sample is one epoch's observation of the population.
type Sample struct {
	Size       int
	MeanHealth float64
}

// Memory is a fixed-capacity FIFO window of recent population samples.
// Recording beyond capacity evicts the oldest sample.
type Memory struct {
	samples []Sample
	window  int
	head    int
	count   int
}

// NewMemory creates a memory holding at most window samples.
func NewMemory(window int) *Memory {
	return &Memory{
		samples: make([]Sample, window),
		window:  window,
	}
}

// Record appends a sample, evicting the oldest when the window is full.
func (m *Memory) Record(s Sample) {
	m.samples[m.head] = s
	m.head = (m.head + 1) % m.window
	if m.count < m.window {
		m.count++
	}
}

// Len returns the number of samples currently held.
func (m *Memory) Len() int { return m.count }

// Window returns the configured capacity.
func (m *Memory) Window() int { return m.window }

// Reset clears the window. Used on world reset only.
func (m *Memory) Reset() {
	m.head = 0
	m.count = 0
}

// Sizes returns the recorded population sizes, oldest first.
func (m *Memory) Sizes() []float64 {
	out := make([]float64, m.count)
	start := m.head - m.count
	if start < 0 {
		start += m.window
	}
	for i := 0; i < m.count; i++ {
		out[i] = float64(m.samples[(start+i)%m.window].Size)
	}
	return out
}

// MeanHealths returns the recorded mean health values, oldest first.
func (m *Memory) MeanHealths() []float64 {
	out := make([]float64, m.count)
	start := m.head - m.count
	if start < 0 {
		start += m.window
	}
	for i := 0; i < m.count; i++ {
		out[i] = m.samples[(start+i)%m.window].MeanHealth
	}
	return out
}

// Trend returns the least-squares slope of population size over the window,
// in entities per epoch. Positive means the world is growing, negative
// shrinking. Below two samples there is no trend yet and 0 is returned.
func (m *Memory) Trend() float64 {
	if m.count < 2 {
		return 0
	}
	ys := m.Sizes()
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return slope
}
