// Package reconcile coalesces bursts of snapshot writes into the blob
// store. Mutations can arrive far faster than writes complete; at most one
// write per key is ever useful, so superseded snapshots are dropped and
// only the most recent value reaches persistence.
package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/todueapp/todue/internal/storage"
)

type Reconciler struct {
	blobs storage.BlobStore

	mu      sync.Mutex
	pending map[string]string // key -> latest unwritten value
	parked  map[string]string // failed writes awaiting the next mutation
	lastErr error

	wakeup  chan struct{}
	flushCh chan chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	writes  uint64
}

func NewReconciler(blobs storage.BlobStore) *Reconciler {
	return &Reconciler{
		blobs:   blobs,
		pending: make(map[string]string),
		parked:  make(map[string]string),
		wakeup:  make(chan struct{}, 1),
		flushCh: make(chan chan struct{}),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	go r.loop()
}

// Stop drains whatever is pending at the moment of the call and stops the
// writer. Save after Stop is a no-op.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()
	close(r.stopCh)
	<-r.doneCh
}

// Save enqueues value as the next persisted state for key and returns
// immediately. A pending value for the same key is replaced, never queued
// behind; a value parked by an earlier failed write is superseded.
func (r *Reconciler) Save(key, value string) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	delete(r.parked, key)
	r.pending[key] = value
	r.mu.Unlock()
	r.signalWakeup()
}

// Flush retries parked writes, drains everything pending, and returns once
// the store is idle or the context expires.
func (r *Reconciler) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case r.flushCh <- reply:
	case <-r.doneCh:
		return errors.New("reconcile: stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Writes reports the number of completed blob writes.
func (r *Reconciler) Writes() uint64 {
	return atomic.LoadUint64(&r.writes)
}

// Err returns the most recent write failure, if any. Failures are
// non-fatal; the in-memory state remains authoritative for the session.
func (r *Reconciler) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

func (r *Reconciler) loop() {
	defer close(r.doneCh)
	for {
		key, value, ok := r.take()
		if !ok {
			select {
			case <-r.wakeup:
				continue
			case reply := <-r.flushCh:
				r.drain()
				close(reply)
			case <-r.stopCh:
				r.drain()
				return
			}
			continue
		}
		r.write(key, value)
	}
}

// take pops one pending entry. With a single writer goroutine, per-key
// write order matches Save order by construction.
func (r *Reconciler) take() (string, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range r.pending {
		delete(r.pending, key)
		return key, value, true
	}
	return "", "", false
}

func (r *Reconciler) write(key, value string) {
	if err := r.blobs.Set(context.Background(), key, value); err != nil {
		r.park(key, value, err)
		return
	}
	atomic.AddUint64(&r.writes, 1)
}

// park holds a failed value for the next flush or until a newer Save for
// the key supersedes it. No immediate retry: a tight retry loop against a
// failing store buys nothing.
func (r *Reconciler) park(key, value string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = err
	if _, newer := r.pending[key]; !newer {
		r.parked[key] = value
	}
}

// drain retries parked values once and writes until pending is empty.
// Writes that fail during the drain are parked again, not retried here.
func (r *Reconciler) drain() {
	r.mu.Lock()
	for key, value := range r.parked {
		if _, newer := r.pending[key]; !newer {
			r.pending[key] = value
		}
		delete(r.parked, key)
	}
	r.mu.Unlock()

	attempted := make(map[string]int)
	for {
		key, value, ok := r.take()
		if !ok {
			return
		}
		if attempted[key] > 1 {
			continue
		}
		attempted[key]++
		r.write(key, value)
	}
}

func (r *Reconciler) signalWakeup() {
	select {
	case r.wakeup <- struct{}{}:
	default:
	}
}
