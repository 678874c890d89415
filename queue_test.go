package winloop

import (
	"sync"
	"testing"
)

func TestCommandQueue_FIFO(t *testing.T) {
	q := newCommandQueue()
	if _, ok := q.pop(); ok {
		t.Fatal("a new queue should be empty")
	}

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		q.push(func(*Context) { got = append(got, i) })
	}
	for i := 0; i < 5; i++ {
		q.popWait()(nil)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("commands should run in order, got %v", got)
		}
	}
	if _, ok := q.pop(); ok {
		t.Error("the queue should be empty after popping every command")
	}
}

func TestCommandQueue_ConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 1000
	q := newCommandQueue()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.push(func(*Context) {})
			}
		}()
	}

	n := 0
	for n < producers*perProducer {
		if _, ok := q.pop(); ok {
			n++
		}
	}
	wg.Wait()
	if _, ok := q.pop(); ok {
		t.Error("no command should be left")
	}
}
