package notify

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrMissingID           = errors.New("notify: notification id is required")
	ErrInvalidDeliveryTime = errors.New("notify: invalid delivery time")
	ErrEngineStopped       = errors.New("notify: engine stopped")
)

// Delivery is an emitted notification together with the time it came due.
type Delivery struct {
	Notification Notification
	At           time.Time
}

type queueItem struct {
	delivery Delivery
	seq      uint64
}

type deliveryQueue []queueItem

func (q deliveryQueue) Len() int { return len(q) }

func (q deliveryQueue) Less(i, j int) bool {
	return q[i].delivery.At.Before(q[j].delivery.At)
}

func (q deliveryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *deliveryQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *deliveryQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Engine schedules notifications by delivery time and emits them on C when
// due. Scheduling an id that is already pending replaces the earlier entry,
// so a fixed id like SummaryID never stacks duplicates. Times at or before
// now fire immediately.
type Engine struct {
	mu      sync.Mutex
	queue   deliveryQueue
	live    map[string]uint64 // id -> seq of the entry that still counts
	seq     uint64
	out     chan Delivery
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(deliveryQueue, 0),
		live:   make(map[string]uint64),
		out:    make(chan Delivery, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Delivery {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule queues n for delivery at the given time, replacing any pending
// entry with the same id.
func (e *Engine) Schedule(n Notification, at time.Time) error {
	if n.ID == "" {
		return ErrMissingID
	}
	if at.IsZero() {
		return ErrInvalidDeliveryTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}

	e.seq++
	e.live[n.ID] = e.seq
	heap.Push(&e.queue, queueItem{delivery: Delivery{Notification: n, At: at}, seq: e.seq})
	e.signalWakeup()
	return nil
}

// Cancel drops the pending entry for id, if any. Superseded heap entries
// are discarded lazily when they surface.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	delete(e.live, id)
	e.mu.Unlock()
	e.signalWakeup()
}

func (e *Engine) CancelAll() {
	e.mu.Lock()
	e.live = make(map[string]uint64)
	e.queue = e.queue[:0]
	e.mu.Unlock()
	e.signalWakeup()
}

// Pending reports whether id has an undelivered entry.
func (e *Engine) Pending(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.live[id]
	return ok
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.At)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, d := range e.popDue(time.Now().UTC()) {
				select {
				case e.out <- d:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

// peek returns the earliest live entry, pruning canceled and superseded
// entries off the head so the timer never waits on a dead one.
func (e *Engine) peek() (Delivery, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		head := e.queue[0]
		if e.live[head.delivery.Notification.ID] == head.seq {
			return head.delivery, true
		}
		heap.Pop(&e.queue)
	}
	return Delivery{}, false
}

func (e *Engine) popDue(now time.Time) []Delivery {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Delivery, 0)
	for len(e.queue) > 0 {
		head := e.queue[0]
		if head.delivery.At.After(now) {
			break
		}
		heap.Pop(&e.queue)
		id := head.delivery.Notification.ID
		if e.live[id] != head.seq {
			continue
		}
		delete(e.live, id)
		out = append(out, head.delivery)
	}
	return out
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
