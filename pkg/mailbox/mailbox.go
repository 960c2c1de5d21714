package mailbox

import (
	"fmt"
	"sync"
)

// OverflowStrategy defines what Add does when a bounded mailbox is full.
type OverflowStrategy string

// Overflow strategies for when a bounded mailbox is full to its capacity.
const (
	OverflowBlock OverflowStrategy = "block" // Suspend the caller until there is capacity.
	OverflowFail  OverflowStrategy = "fail"  // Return ErrOverflow immediately.
)

// Unbounded is the capacity value for a mailbox with no upper limit.
const Unbounded = 0

// DefaultOverflowStrategy only matters for bounded mailboxes.
const DefaultOverflowStrategy = OverflowBlock

// Mailbox is a concurrent FIFO queue with a blocking dequeue. Implementations
// must be safe for any number of concurrent producers and a single consumer,
// must never lose or duplicate an item, and must preserve arrival order.
//
// Close is the acceptance cut-off: once it returns, every subsequent Add
// fails with ErrClosed, while Take keeps handing out the items accepted
// before the cut-off and only reports ErrClosed when none are left.
type Mailbox[T any] interface {
	Add(item T) error
	Take() (T, error)
	IsEmpty() bool
	Len() int
	Close()
}

// Queue is the default Mailbox implementation. With a capacity of Unbounded
// Add never blocks; with a positive capacity Add either blocks or fails
// (depending on the overflow strategy) when the queue is full.
type Queue[T any] struct {
	mtx      sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	items            []T
	maxCapacity      int
	overflowStrategy OverflowStrategy
	closed           bool
}

// Queue implements Mailbox.
var _ Mailbox[int] = (*Queue[int])(nil)

// Option modifies the default behaviour of a Queue.
type Option func(q *queueOpts)

type queueOpts struct {
	maxCapacity      int
	overflowStrategy OverflowStrategy
}

// MaxCapacity bounds the queue to n items. Zero (or a negative value) leaves
// it unbounded.
func MaxCapacity(n int) Option {
	return func(o *queueOpts) {
		if n < 0 {
			n = Unbounded
		}
		o.maxCapacity = n
	}
}

func OverflowStrategyBlock(o *queueOpts) {
	o.overflowStrategy = OverflowBlock
}

func OverflowStrategyFail(o *queueOpts) {
	o.overflowStrategy = OverflowFail
}

// New creates an empty, open queue.
func New[T any](opts ...Option) *Queue[T] {
	o := queueOpts{
		maxCapacity:      Unbounded,
		overflowStrategy: DefaultOverflowStrategy,
	}
	for _, opt := range opts {
		opt(&o)
	}
	q := &Queue[T]{
		maxCapacity:      o.maxCapacity,
		overflowStrategy: o.overflowStrategy,
	}
	if q.maxCapacity > 0 {
		q.items = make([]T, 0, q.maxCapacity)
	}
	q.notEmpty = sync.NewCond(&q.mtx)
	q.notFull = sync.NewCond(&q.mtx)
	return q
}

// Add appends the item to the tail of the queue and wakes the consumer if it
// is waiting.
func (q *Queue[T]) Add(item T) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	for {
		if q.closed {
			return ErrClosed{}
		}
		if !q.full() {
			break
		}
		if q.overflowStrategy == OverflowFail {
			return ErrOverflow{MaxCapacity: q.maxCapacity}
		}
		q.notFull.Wait()
	}
	q.items = append(q.items, item)
	q.notEmpty.Signal()
	return nil
}

// Take removes and returns the oldest item, suspending the caller while the
// queue is empty. After Close it continues to return queued items until the
// queue is drained, and then returns ErrClosed.
func (q *Queue[T]) Take() (T, error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	for len(q.items) == 0 {
		if q.closed {
			var zero T
			return zero, ErrClosed{}
		}
		q.notEmpty.Wait()
	}
	return q.pop(), nil
}

// TryTake is the non-blocking variant of Take.
func (q *Queue[T]) TryTake() (T, error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if len(q.items) == 0 {
		var zero T
		if q.closed {
			return zero, ErrClosed{}
		}
		return zero, ErrEmpty{}
	}
	return q.pop(), nil
}

// IsEmpty is a point-in-time query; only Take decides emptiness under
// concurrency.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Len reports the number of items queued right now.
func (q *Queue[T]) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return len(q.items)
}

// MaxCapacity reports the configured capacity (Unbounded if none).
func (q *Queue[T]) MaxCapacity() int {
	return q.maxCapacity
}

// OverflowStrategy reports the configured overflow strategy.
func (q *Queue[T]) OverflowStrategy() OverflowStrategy {
	return q.overflowStrategy
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return q.closed
}

// Close stops the queue from accepting new items. Items already queued stay
// available to Take. Safe to call more than once.
func (q *Queue[T]) Close() {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	// everyone re-evaluates: the consumer may need to exit, blocked producers
	// must be rejected
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

func (q *Queue[T]) String() string {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return fmt.Sprintf(
		"Queue{closed=%t, len=%d, maxCapacity=%d, overflowStrategy=%s}",
		q.closed,
		len(q.items),
		q.maxCapacity,
		q.overflowStrategy,
	)
}

func (q *Queue[T]) full() bool {
	return q.maxCapacity > 0 && len(q.items) >= q.maxCapacity
}

// must be called with the lock held and at least one item queued
func (q *Queue[T]) pop() T {
	var zero T
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if q.maxCapacity > 0 {
		q.notFull.Signal()
	}
	return item
}
