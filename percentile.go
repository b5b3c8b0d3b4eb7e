package foundation

import (
	"fmt"
	"slices"
	"time"
)

const percentileSize = 100 * 10000

// Percentile keeps the last samples of a latency series, in nanoseconds.
// Old samples are overwritten once it holds percentileSize of them.
type Percentile struct {
	data   []float64 // samples in insertion order
	sorted []float64 // sorted copy of data, empty when stale
	pos    int
}

// NewPercentile
func NewPercentile(data ...float64) *Percentile {
	p := &Percentile{
		data: make([]float64, 0, min(len(data)+1024, percentileSize)),
	}
	for _, d := range data {
		p.Add(d)
	}
	return p
}

// Add
func (p *Percentile) Add(data float64) {
	p.sorted = p.sorted[:0]
	if len(p.data) == percentileSize {
		p.data[p.pos] = data
		p.pos = (p.pos + 1) % percentileSize
	} else {
		p.data = append(p.data, data)
	}
}

// AddSince records the time elapsed since start.
func (p *Percentile) AddSince(start time.Time) {
	p.Add(float64(time.Since(start).Nanoseconds()))
}

// Len returns the number of samples kept.
func (p *Percentile) Len() int { return len(p.data) }

func (p *Percentile) sort() []float64 {
	if len(p.sorted) != len(p.data) {
		p.sorted = append(p.sorted[:0], p.data...)
		slices.Sort(p.sorted)
	}
	return p.sorted
}

// Percentile returns the sample at the given percent, 0 if empty.
func (p *Percentile) Percentile(percentile float64) float64 {
	if len(p.data) == 0 {
		return 0
	}
	sorted := p.sort()
	i := int((percentile / 100) * float64(len(sorted)))
	return sorted[min(i, len(sorted)-1)]
}

// Min
func (p *Percentile) Min() float64 {
	if len(p.data) == 0 {
		return 0
	}
	return p.sort()[0]
}

// Max
func (p *Percentile) Max() float64 {
	if len(p.data) == 0 {
		return 0
	}
	sorted := p.sort()
	return sorted[len(sorted)-1]
}

// Avg
func (p *Percentile) Avg() float64 {
	if len(p.data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.data {
		sum += v
	}
	return sum / float64(len(p.data))
}

// String formats the series as durations.
func (p *Percentile) String() string {
	d := func(v float64) time.Duration { return time.Duration(v) }
	return fmt.Sprintf("50th: %v, 90th: %v, 99th: %v, 999th: %v, min: %v, max: %v, avg: %v",
		d(p.Percentile(50)), d(p.Percentile(90)), d(p.Percentile(99)), d(p.Percentile(99.9)),
		d(p.Min()), d(p.Max()), d(p.Avg()))
}
