package aggregator

// DefaultWindowSize is the number of samples averaged when no window is configured
const DefaultWindowSize = 5

// MovingAverage keeps the last N samples in a ring and reports their mean.
// It does not validate input; callers gate samples before adding them.
type MovingAverage struct {
	buf   []float64
	index int // next write position
	count int // retained samples, 0..len(buf)
}

// NewMovingAverage creates a filter averaging over the given window.
// A non-positive window falls back to DefaultWindowSize.
func NewMovingAverage(window int) *MovingAverage {
	if window <= 0 {
		window = DefaultWindowSize
	}
	return &MovingAverage{
		buf: make([]float64, window),
	}
}

// Add inserts a sample, overwriting the oldest one once the window is full
func (m *MovingAverage) Add(value float64) {
	m.buf[m.index] = value
	m.index = (m.index + 1) % len(m.buf)
	if m.count < len(m.buf) {
		m.count++
	}
}

// Average returns the mean of the retained samples, or 0 if there are none.
// The sum is recomputed from the window on every call so rounding error
// cannot build up over long runtimes.
func (m *MovingAverage) Average() float64 {
	if m.count == 0 {
		return 0
	}

	// Until the ring wraps the samples occupy buf[:count]; afterwards count == len(buf).
	var sum float64
	for _, v := range m.buf[:m.count] {
		sum += v
	}
	return sum / float64(m.count)
}

// Reset discards all samples without changing the window size
func (m *MovingAverage) Reset() {
	for i := range m.buf {
		m.buf[i] = 0
	}
	m.index = 0
	m.count = 0
}

// Len returns the number of retained samples
func (m *MovingAverage) Len() int {
	return m.count
}

// Cap returns the window size
func (m *MovingAverage) Cap() int {
	return len(m.buf)
}
