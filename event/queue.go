package event

import "sync/atomic"

// Queue is a lock-free, unbounded FIFO queue with any number of producers
// and a single consumer. Send never blocks. It must be initialized using
// [Queue.Init] before use.
//
// Nodes are not recycled: the garbage collector keeps a node alive while
// any producer still holds it, which rules out ABA on the CAS loops.
type Queue[T any] struct {
	head atomic.Pointer[queueNode[T]]
	tail atomic.Pointer[queueNode[T]]
	len  atomic.Int64
}

type queueNode[T any] struct {
	next atomic.Pointer[queueNode[T]]
	v    T
}

// Init initializes the queue with its sentinel node.
func (q *Queue[T]) Init() {
	sentinel := &queueNode[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
}

// Send adds v to the end of the queue. It is safe to call from any
// goroutine.
func (q *Queue[T]) Send(v T) {
	n := &queueNode[T]{v: v}
	for {
		last := q.tail.Load()
		next := last.next.Load()
		if q.tail.Load() != last {
			continue
		}
		if next != nil {
			q.tail.CompareAndSwap(last, next)
			continue
		}
		if last.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(last, n)
			q.len.Add(1)
			return
		}
	}
}

// Next removes and returns the value at the front of the queue.
// ok is false when the queue is empty. Only the consumer may call Next.
func (q *Queue[T]) Next() (v T, ok bool) {
	for {
		first := q.head.Load()
		last := q.tail.Load()
		next := first.next.Load()
		if first != q.head.Load() {
			continue
		}
		if first == last {
			if next == nil {
				return v, false
			}
			q.tail.CompareAndSwap(last, next)
			continue
		}
		v = next.v
		if q.head.CompareAndSwap(first, next) {
			// next becomes the new sentinel; drop its payload reference.
			var zero T
			next.v = zero
			q.len.Add(-1)
			return v, true
		}
	}
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return int(q.len.Load())
}
