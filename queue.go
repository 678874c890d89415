package winloop

import (
	"runtime"
	"sync/atomic"
)

// command is a unit of work executed on the dispatcher thread.
type command func(*Context)

type node struct {
	next atomic.Pointer[node]
	cmd  command
}

// commandQueue is an unbounded multi-producer, single-consumer FIFO. Producers
// link nodes with one atomic swap; the dispatcher thread is the only consumer.
type commandQueue struct {
	head atomic.Pointer[node] // most recently pushed node
	tail *node                // consumer side, points at the last consumed (stub) node
}

func newCommandQueue() *commandQueue {
	stub := new(node)
	q := &commandQueue{tail: stub}
	q.head.Store(stub)
	return q
}

// push appends cmd. Safe for concurrent use.
func (q *commandQueue) push(cmd command) {
	n := &node{cmd: cmd}
	prev := q.head.Swap(n)
	prev.next.Store(n)
}

// pop removes the oldest command. It returns false when the queue is empty.
// Consumer only.
func (q *commandQueue) pop() (command, bool) {
	next := q.tail.next.Load()
	if next == nil {
		return nil, false
	}
	q.tail = next
	cmd := next.cmd
	next.cmd = nil
	return cmd, true
}

// popWait removes the oldest command, knowing one has been pushed. A producer
// may have swapped the head without linking its node yet; the gap closes as
// soon as that producer runs its next instruction.
func (q *commandQueue) popWait() command {
	for {
		if cmd, ok := q.pop(); ok {
			return cmd
		}
		runtime.Gosched()
	}
}
