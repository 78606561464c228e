package hub

import "sync"

// frameRing is a fixed-capacity FIFO of outbound frames. When full the
// oldest frame is dropped, so a stalled client sees fresh state once it
// drains instead of an ever-growing backlog. Safe for one producer and one
// consumer.
type frameRing struct {
	mu       sync.Mutex
	buf      [][]byte
	capacity int
	head     int // next write position
	count    int
}

func newFrameRing(capacity int) *frameRing {
	return &frameRing{
		buf:      make([][]byte, capacity),
		capacity: capacity,
	}
}

func (r *frameRing) push(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == r.capacity {
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = frame
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = frame
	r.head = (r.head + 1) % r.capacity
	r.count++
}

func (r *frameRing) pop() ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil, false
	}
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	frame := r.buf[start]
	r.buf[start] = nil
	r.count--
	return frame, true
}

func (r *frameRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
