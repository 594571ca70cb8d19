package monitor

// window is a fixed-capacity FIFO of float64 samples. When full, a push
// evicts the oldest sample. It is not safe for concurrent use; the Monitor
// holds the lock.
type window struct {
	buf  []float64
	head int
	n    int
}

func newWindow(capacity int) *window {
	return &window{buf: make([]float64, capacity)}
}

func (w *window) push(v float64) {
	if len(w.buf) == 0 {
		return
	}
	if w.n == len(w.buf) {
		w.buf[w.head] = v
		w.head = (w.head + 1) % len(w.buf)
		return
	}
	w.buf[(w.head+w.n)%len(w.buf)] = v
	w.n++
}

func (w *window) len() int {
	return w.n
}

// values returns the samples oldest-first as a fresh slice.
func (w *window) values() []float64 {
	out := make([]float64, w.n)
	for i := 0; i < w.n; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}

// sum avoids the copy when only an aggregate is needed.
func (w *window) sum() float64 {
	var s float64
	for i := 0; i < w.n; i++ {
		s += w.buf[(w.head+i)%len(w.buf)]
	}
	return s
}
