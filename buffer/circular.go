package buffer

// CircularFloat is a fixed-size circular buffer of float64 values. The
// sampler's step tuner records accept (1) / reject (0) outcomes in one and
// reads back the windowed acceptance rate.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	BufSize   int       // BufSize is the fixed number of values maintained in memory
	Count     int       // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer holding totalSize values.
func NewCircularFloat(totalSize int) *CircularFloat {
	if totalSize < 1 {
		totalSize = 1
	}

	return &CircularFloat{
		buffer:  make([]float64, totalSize),
		pos:     0,
		BufSize: totalSize,
		Count:   0,
	}
}

// Add appends the given value to the buffer, overwriting the oldest entry.
func (c *CircularFloat) Add(v float64) {
	c.TotalSeen++

	c.buffer[c.pos] = v
	c.pos = (c.pos + 1) % c.BufSize

	if c.Count < c.BufSize {
		c.Count++
	}
}

// Full returns true once Add has been called at least BufSize times.
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}

// Mean returns the mean of the values currently held. Returns 0 for an empty
// buffer.
func (c *CircularFloat) Mean() float64 {
	if c.Count < 1 {
		return 0.0
	}

	var sum float64
	for i := 0; i < c.Count; i++ {
		sum += c.buffer[i]
	}
	return sum / float64(c.Count)
}

// Reset empties the buffer without reallocating. TotalSeen is preserved.
func (c *CircularFloat) Reset() {
	c.pos = 0
	c.Count = 0
}
