package ring_buffer

// Buffer keeps the most recent samples added to it, up to a fixed capacity.
// The speech decoder uses it as a pre-roll: the audio heard just before an
// utterance is detected gets prepended to the utterance buffer so the first
// word is not clipped.
type Buffer struct {
	buffer []int16
	head   int
	filled int
}

func New(size int) *Buffer {
	return &Buffer{
		buffer: make([]int16, size),
	}
}

func (r *Buffer) Add(samples []int16) {
	for _, s := range samples {
		r.buffer[r.head] = s
		r.head = (r.head + 1) % len(r.buffer)
		if r.filled < len(r.buffer) {
			r.filled++
		}
	}
}

// Read returns the retained samples oldest-first. Until the buffer has
// wrapped, only the samples actually added are returned.
func (r *Buffer) Read() []int16 {
	out := make([]int16, r.filled)
	start := r.head - r.filled
	if start < 0 {
		start += len(r.buffer)
	}
	for i := 0; i < r.filled; i++ {
		out[i] = r.buffer[(start+i)%len(r.buffer)]
	}
	return out
}

// Reset discards all retained samples.
func (r *Buffer) Reset() {
	r.head = 0
	r.filled = 0
}
