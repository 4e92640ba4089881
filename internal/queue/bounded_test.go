package queue

import (
	"sync"
	"testing"
)

func TestNewBounded_RoundsCapacityToPowerOfTwo(t *testing.T) {
	cases := []struct {
		requested int
		want      int
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 4},
		{5, 8},
		{16, 16},
		{17, 32},
	}
	for _, c := range cases {
		q := NewBounded[int](c.requested)
		if q.Capacity() != c.want {
			t.Errorf("NewBounded(%d).Capacity() = %d, want %d", c.requested, q.Capacity(), c.want)
		}
	}
}

func TestBounded_PushPopOrder(t *testing.T) {
	q := NewBounded[int](4)

	for i := 0; i < 4; i++ {
		if !q.TryPush(i) {
			t.Fatalf("TryPush(%d) failed unexpectedly", i)
		}
	}
	if !q.Full() {
		t.Fatalf("expected queue to report full at capacity")
	}
	if q.TryPush(99) {
		t.Fatalf("expected TryPush to fail on a full queue")
	}

	for i := 0; i < 4; i++ {
		item, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop() failed unexpectedly at i=%d", i)
		}
		if item != i {
			t.Fatalf("TryPop() = %d, want %d (FIFO order)", item, i)
		}
	}
	if !q.Empty() {
		t.Fatalf("expected queue to report empty after draining")
	}
	if _, ok := q.TryPop(); ok {
		t.Fatalf("expected TryPop to fail on an empty queue")
	}
}

func TestBounded_WrapsAroundRingCorrectly(t *testing.T) {
	q := NewBounded[int](2)

	for round := 0; round < 5; round++ {
		if !q.TryPush(round) {
			t.Fatalf("round %d: TryPush failed", round)
		}
		item, ok := q.TryPop()
		if !ok || item != round {
			t.Fatalf("round %d: TryPop() = (%d, %v), want (%d, true)", round, item, ok, round)
		}
	}
}

func TestBounded_TryPushBatch_StopsAtFirstFullCell(t *testing.T) {
	q := NewBounded[int](4)

	n := q.TryPushBatch([]int{1, 2, 3, 4, 5, 6})
	if n != 4 {
		t.Fatalf("TryPushBatch() accepted %d items, want 4", n)
	}
	if q.ApproxSize() != 4 {
		t.Fatalf("ApproxSize() = %d, want 4", q.ApproxSize())
	}
}

func TestBounded_TryPopBatch_StopsWhenEmpty(t *testing.T) {
	q := NewBounded[int](4)
	q.TryPushBatch([]int{1, 2, 3})

	got := q.TryPopBatch(10)
	if len(got) != 3 {
		t.Fatalf("TryPopBatch() returned %d items, want 3", len(got))
	}
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("TryPopBatch()[%d] = %d, want %d", i, v, i+1)
		}
	}
}

func TestBounded_ConcurrentProducersConsumers(t *testing.T) {
	const producers = 8
	const perProducer = 1000
	const total = producers * perProducer

	q := NewBounded[int](64)
	var wg sync.WaitGroup

	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.TryPush(1) {
				}
			}
		}()
	}

	var (
		mu    sync.Mutex
		count int
	)
	var consumersDone sync.WaitGroup
	consumersDone.Add(4)
	for c := 0; c < 4; c++ {
		go func() {
			defer consumersDone.Done()
			for {
				mu.Lock()
				done := count >= total
				mu.Unlock()
				if done {
					return
				}
				if _, ok := q.TryPop(); ok {
					mu.Lock()
					count++
					mu.Unlock()
				}
			}
		}()
	}

	wg.Wait()
	consumersDone.Wait()

	if count != total {
		t.Fatalf("consumed %d items, want %d", count, total)
	}
	if !q.Empty() {
		t.Fatalf("expected queue to be empty after all items consumed")
	}
}
