// Package app wires the task store, settings, persistence reconciler, and
// notification pipeline into one owned lifecycle: init from persistence,
// live for the process, flush pending writes on teardown.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/todueapp/todue/internal/model"
	"github.com/todueapp/todue/internal/notify"
	"github.com/todueapp/todue/internal/reconcile"
	"github.com/todueapp/todue/internal/storage"
	"github.com/todueapp/todue/internal/store"
)

type App struct {
	Tasks    *store.TaskStore
	Settings *store.SettingsStore
	Engine   *notify.Engine
	Composer *notify.Composer

	reconciler *reconcile.Reconciler
	blobCloser io.Closer
	notifier   notify.Notifier
	clock      func() time.Time

	onDeliver   func(notify.Delivery)
	deliverDone chan struct{}
	started     bool

	deliverMu      sync.Mutex
	lastDeliverErr error
}

// New opens the SQLite-backed blob store at cfg.DBPath and assembles the
// app around it.
func New(cfg Config) (*App, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	blobs, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.DesktopNotifications {
		notifier = notify.ExecNotifier{}
	}
	a := NewWithBlobStore(blobs, cfg, notifier)
	a.blobCloser = blobs
	return a, nil
}

// NewWithBlobStore assembles the app over an existing blob store. The
// store is loaded synchronously: absent or malformed blobs fall back to
// the bundled dataset and default settings.
func NewWithBlobStore(blobs storage.BlobStore, cfg Config, notifier notify.Notifier) *App {
	clock := func() time.Time { return time.Now().UTC() }
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}

	tasks := loadTasks(blobs, clock())
	settings := loadSettings(blobs)

	classifier := model.Classifier{DueSoon: cfg.DueSoonHorizon, Upcoming: cfg.UpcomingHorizon}
	if classifier.DueSoon <= 0 || classifier.Upcoming <= 0 {
		classifier = model.DefaultClassifier()
	}

	engine := notify.NewEngine(cfg.SchedulerBuffer)
	a := &App{
		Tasks:       store.NewTaskStore(tasks),
		Settings:    store.NewSettingsStore(settings),
		Engine:      engine,
		Composer:    notify.NewComposer(classifier, engine),
		reconciler:  reconcile.NewReconciler(blobs),
		notifier:    notifier,
		clock:       clock,
		deliverDone: make(chan struct{}),
	}

	// Each commit persists the new snapshot and recomputes the summary.
	// Both hooks only enqueue; neither blocks the mutating caller.
	a.Tasks.OnCommit(func(snap store.Snapshot) {
		if raw, err := storage.EncodeTasks(snap.All()); err == nil {
			a.reconciler.Save(storage.TasksKey, raw)
		}
		_ = a.Composer.Recompute(snap, a.Settings.Get(), a.clock())
	})
	a.Settings.OnSet(func(s store.Settings) {
		if raw, err := storage.EncodeSettings(s); err == nil {
			a.reconciler.Save(storage.SettingsKey, raw)
		}
		_ = a.Composer.Recompute(a.Tasks.Snapshot(), s, a.clock())
	})
	return a
}

func loadTasks(blobs storage.BlobStore, now time.Time) map[string]model.Task {
	raw, err := blobs.Get(context.Background(), storage.TasksKey)
	if err != nil {
		return store.DefaultTasks(now)
	}
	tasks, err := storage.DecodeTasks(raw)
	if err != nil {
		// Malformed persisted data is treated like absent data.
		return store.DefaultTasks(now)
	}
	return tasks
}

func loadSettings(blobs storage.BlobStore) store.Settings {
	raw, err := blobs.Get(context.Background(), storage.SettingsKey)
	if err != nil {
		return nil
	}
	settings, err := storage.DecodeSettings(raw)
	if err != nil {
		return nil
	}
	return settings
}

// OnDeliver registers an observer for delivered notifications. Must be
// called before Start.
func (a *App) OnDeliver(fn func(notify.Delivery)) {
	a.onDeliver = fn
}

func (a *App) Start() {
	if a.started {
		return
	}
	a.started = true
	a.reconciler.Start()
	a.Engine.Start()
	go a.deliverLoop()
	a.RecomputeNotifications()
}

func (a *App) deliverLoop() {
	defer close(a.deliverDone)
	for d := range a.Engine.C() {
		// Delivery failures are non-fatal; the next recomputation retries
		// naturally.
		if err := a.notifier.Send(d.Notification); err != nil {
			a.deliverMu.Lock()
			a.lastDeliverErr = err
			a.deliverMu.Unlock()
		}
		if a.onDeliver != nil {
			a.onDeliver(d)
		}
	}
}

// LastDeliveryError reports the most recent notifier failure, if any.
func (a *App) LastDeliveryError() error {
	a.deliverMu.Lock()
	defer a.deliverMu.Unlock()
	return a.lastDeliverErr
}

// RecomputeNotifications rebuilds the rolling summary from the current
// snapshot and settings.
func (a *App) RecomputeNotifications() {
	_ = a.Composer.Recompute(a.Tasks.Snapshot(), a.Settings.Get(), a.clock())
}

// Remind schedules a per-task reminder at the target time. A missing id is
// a silent no-op.
func (a *App) Remind(id string, at time.Time) error {
	task, ok := a.Tasks.Snapshot().Get(id)
	if !ok {
		return nil
	}
	return a.Composer.Remind(task, at)
}

// Icon reports the notification status icon for the current state.
func (a *App) Icon() string {
	return notify.IconName(a.Tasks.Snapshot().Tasks(), a.Settings.Get())
}

// Flush forces pending persistence writes to complete.
func (a *App) Flush(ctx context.Context) error {
	return a.reconciler.Flush(ctx)
}

// Close stops delivery, flushes pending writes, and releases the store.
func (a *App) Close() error {
	var errs []error
	if a.started {
		a.Engine.Stop()
		<-a.deliverDone

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.reconciler.Flush(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			errs = append(errs, err)
		}
		cancel()
		a.reconciler.Stop()
	}
	if a.blobCloser != nil {
		if err := a.blobCloser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
