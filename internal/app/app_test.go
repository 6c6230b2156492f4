package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/todueapp/todue/internal/model"
	"github.com/todueapp/todue/internal/notify"
	"github.com/todueapp/todue/internal/storage"
	"github.com/todueapp/todue/internal/store"
)

type memBlobStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{values: make(map[string]string)}
}

func (m *memBlobStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *memBlobStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memBlobStore) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Send(n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DBPath = ""
	return cfg
}

func flushApp(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestAbsentPersistenceLoadsBundledDataset(t *testing.T) {
	a := NewWithBlobStore(newMemBlobStore(), testConfig(), nil)
	if a.Tasks.Snapshot().Len() == 0 {
		t.Fatal("empty store; expected bundled dataset")
	}
	for _, level := range model.Levels() {
		if a.Settings.Get().Enabled(level) {
			t.Fatalf("level %s enabled without persisted opt-in", level)
		}
	}
}

func TestMalformedPersistenceFallsBackToDefaults(t *testing.T) {
	blobs := newMemBlobStore()
	blobs.values[storage.TasksKey] = "{corrupt"
	blobs.values[storage.SettingsKey] = "[broken"

	a := NewWithBlobStore(blobs, testConfig(), nil)
	if a.Tasks.Snapshot().Len() == 0 {
		t.Fatal("malformed task blob should load the bundled dataset")
	}
	if a.Settings.Get().Enabled(model.LevelOverdue) {
		t.Fatal("malformed settings blob should load defaults")
	}
}

func TestPersistedStateRoundTripsThroughRestart(t *testing.T) {
	blobs := newMemBlobStore()

	a := NewWithBlobStore(blobs, testConfig(), nil)
	a.Start()
	a.Tasks.Reset(nil)
	id := a.Tasks.Add("Buy milk")
	a.Settings.Set(store.Settings{model.LevelOverdue: true})
	flushApp(t, a)
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b := NewWithBlobStore(blobs, testConfig(), nil)
	task, ok := b.Tasks.Snapshot().Get(id)
	if !ok {
		t.Fatalf("task %s did not survive restart", id)
	}
	if task.Text != "Buy milk" {
		t.Fatalf("text = %q", task.Text)
	}
	if !b.Settings.Get().Enabled(model.LevelOverdue) {
		t.Fatal("settings did not survive restart")
	}
}

func TestMutationPersistsLatestSnapshot(t *testing.T) {
	blobs := newMemBlobStore()
	a := NewWithBlobStore(blobs, testConfig(), nil)
	a.Start()
	defer a.Close()

	a.Tasks.Reset(nil)
	id := a.Tasks.Add("one")
	a.Tasks.Add("two")
	a.Tasks.Remove(id)
	flushApp(t, a)

	raw, ok := blobs.value(storage.TasksKey)
	if !ok {
		t.Fatal("no task blob persisted")
	}
	decoded, err := storage.DecodeTasks(raw)
	if err != nil {
		t.Fatalf("decode persisted blob: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("persisted %d tasks, want 1", len(decoded))
	}
	if _, exists := decoded[id]; exists {
		t.Fatal("removed task still persisted")
	}
}

func TestCommitTriggersSummaryDelivery(t *testing.T) {
	notifier := &recordingNotifier{}
	a := NewWithBlobStore(newMemBlobStore(), testConfig(), notifier)

	delivered := make(chan notify.Delivery, 8)
	a.OnDeliver(func(d notify.Delivery) { delivered <- d })
	a.Start()
	defer a.Close()

	a.Tasks.Reset(nil)
	a.Settings.Set(store.Settings{model.LevelOverdue: true})

	id := a.Tasks.Add("Buy milk")
	due := time.Now().UTC().Add(-time.Hour)
	a.Tasks.Update(id, model.Changes{DueAt: &due})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case d := <-delivered:
			if d.Notification.ID != notify.SummaryID {
				continue
			}
			n := d.Notification
			if n.Title != "Things to do" {
				t.Fatalf("title = %q", n.Title)
			}
			return
		case <-deadline:
			t.Fatal("no summary delivered after mutation")
		}
	}
}

func TestRemindMissingTaskIsNoOp(t *testing.T) {
	a := NewWithBlobStore(newMemBlobStore(), testConfig(), nil)
	a.Start()
	defer a.Close()

	if err := a.Remind("missing", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("remind on missing id: %v", err)
	}
	if a.Engine.Pending("missing") {
		t.Fatal("reminder scheduled for a missing task")
	}
}

func TestIconReflectsState(t *testing.T) {
	a := NewWithBlobStore(newMemBlobStore(), testConfig(), nil)
	a.Tasks.Reset(nil)

	if got := a.Icon(); got != "notifications-off" {
		t.Fatalf("icon = %q, want notifications-off", got)
	}
	a.Settings.Set(store.Settings{model.LevelOverdue: true})
	a.Tasks.Add("pending")
	if got := a.Icon(); got != "notifications-active" {
		t.Fatalf("icon = %q, want notifications-active", got)
	}
}
