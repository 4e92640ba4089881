// Package queue implements the bounded lock-free MPMC ring buffer and the
// blocking adapter layered on top of it.
package queue

import "sync/atomic"

// cell is one ring slot: a sequence counter used as a lock-free handshake
// between producers and consumers, plus the stored element. A cell is
// writable once seq == producer's claimed ticket, and consumable once
// seq == ticket + 1; after consumption seq advances by capacity so the cell
// is ready for its next round.
type cell[T any] struct {
	seq  atomic.Uint64
	item T
}

// Bounded is a fixed-capacity, lock-free multi-producer/multi-consumer
// queue backed by a ring of sequence-tagged cells. Capacity is rounded up
// to the next power of two, minimum 2.
type Bounded[T any] struct {
	capacity uint64
	mask     uint64
	cells    []cell[T]

	producerPos atomic.Uint64
	consumerPos atomic.Uint64
}

// NewBounded constructs a Bounded queue with the given requested capacity,
// rounded up to the next power of two (minimum 2).
func NewBounded[T any](capacity int) *Bounded[T] {
	adjusted := roundUpToPow2(capacity)
	q := &Bounded[T]{
		capacity: adjusted,
		mask:     adjusted - 1,
		cells:    make([]cell[T], adjusted),
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q
}

func roundUpToPow2(n int) uint64 {
	if n < 2 {
		return 2
	}
	v := uint64(n) - 1
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	return v + 1
}

// Capacity returns the adjusted (power-of-two) capacity.
func (q *Bounded[T]) Capacity() int { return int(q.capacity) }

// ApproxSize returns producer_pos - consumer_pos; monotonic counters that
// may be briefly stale under concurrency.
func (q *Bounded[T]) ApproxSize() int {
	p := q.producerPos.Load()
	c := q.consumerPos.Load()
	return int(p - c)
}

// Empty reports whether the queue currently appears empty.
func (q *Bounded[T]) Empty() bool { return q.ApproxSize() == 0 }

// Full reports whether the queue currently appears full.
func (q *Bounded[T]) Full() bool { return q.ApproxSize() >= int(q.capacity) }

// TryPush attempts a non-blocking enqueue, returning false if no writable
// cell is available right now.
func (q *Bounded[T]) TryPush(item T) bool {
	pos := q.producerPos.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if q.producerPos.CompareAndSwap(pos, pos+1) {
				c.item = item
				c.seq.Store(pos + 1)
				return true
			}
		case diff < 0:
			// Queue full: this round's cell is still awaiting a consumer.
			return false
		default:
			pos = q.producerPos.Load()
		}
	}
}

// TryPop attempts a non-blocking dequeue, returning the zero value and
// false if no consumable cell is available right now.
func (q *Bounded[T]) TryPop() (T, bool) {
	var zero T
	pos := q.consumerPos.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if q.consumerPos.CompareAndSwap(pos, pos+1) {
				item := c.item
				c.item = zero
				c.seq.Store(pos + q.capacity)
				return item, true
			}
		case diff < 0:
			// Queue empty: this round's cell has not been written yet.
			return zero, false
		default:
			pos = q.consumerPos.Load()
		}
	}
}

// TryPushBatch pushes items in order, stopping at the first failure, and
// returns the number accepted.
func (q *Bounded[T]) TryPushBatch(items []T) int {
	n := 0
	for _, item := range items {
		if !q.TryPush(item) {
			break
		}
		n++
	}
	return n
}

// TryPopBatch pops up to maxCount items, stopping at the first failure.
func (q *Bounded[T]) TryPopBatch(maxCount int) []T {
	out := make([]T, 0, maxCount)
	for i := 0; i < maxCount; i++ {
		item, ok := q.TryPop()
		if !ok {
			break
		}
		out = append(out, item)
	}
	return out
}
