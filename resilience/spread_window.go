package resilience

// SpreadWindow is a fixed-capacity FIFO of recent spreads with O(1) average.
type SpreadWindow struct {
	buf  []float64
	head int // next write position
	n    int
	sum  float64
}

// NewSpreadWindow panics on capacity < 1; Config.Validate guards callers.
func NewSpreadWindow(capacity int) *SpreadWindow {
	if capacity < 1 {
		panic("resilience: spread window capacity must be >= 1")
	}
	return &SpreadWindow{buf: make([]float64, capacity)}
}

// Push appends a spread, evicting the oldest one once the window is full.
func (w *SpreadWindow) Push(spread float64) {
	if w.n == len(w.buf) {
		w.sum -= w.buf[w.head]
	} else {
		w.n++
	}
	w.buf[w.head] = spread
	w.sum += spread
	w.head++
	if w.head == len(w.buf) {
		w.head = 0
		if w.n == len(w.buf) {
			w.resum()
		}
	}
}

// resum recomputes the running sum once per full cycle so add/subtract
// rounding error does not accumulate on long streams.
func (w *SpreadWindow) resum() {
	sum := 0.0
	for _, v := range w.buf {
		sum += v
	}
	w.sum = sum
}

// Average returns the mean of the window; ok is false when it is empty.
func (w *SpreadWindow) Average() (avg float64, ok bool) {
	if w.n == 0 {
		return 0, false
	}
	return w.sum / float64(w.n), true
}

func (w *SpreadWindow) Len() int { return w.n }

func (w *SpreadWindow) Cap() int { return len(w.buf) }

// Values returns the contents oldest first.
func (w *SpreadWindow) Values() []float64 {
	out := make([]float64, 0, w.n)
	start := w.head - w.n
	if start < 0 {
		start += len(w.buf)
	}
	for i := 0; i < w.n; i++ {
		out = append(out, w.buf[(start+i)%len(w.buf)])
	}
	return out
}

// Clear empties the window without reallocating.
func (w *SpreadWindow) Clear() {
	clear(w.buf)
	w.head = 0
	w.n = 0
	w.sum = 0
}
