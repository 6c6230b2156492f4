package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/todueapp/todue/internal/model"
)

// Snapshot is an immutable view of the task map at one point in logical
// time. Two snapshots are the same state iff their versions are equal, so
// change detection is a version comparison, never a deep compare.
type Snapshot struct {
	version uint64
	tasks   map[string]model.Task
}

func (s Snapshot) Version() uint64 { return s.version }

func (s Snapshot) Len() int { return len(s.tasks) }

func (s Snapshot) Get(id string) (model.Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

// Tasks returns the snapshot content as a fresh slice. Mutating the result
// does not affect the snapshot.
func (s Snapshot) Tasks() []model.Task {
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out
}

// All returns the content as a fresh map keyed by task id.
func (s Snapshot) All() map[string]model.Task {
	out := make(map[string]model.Task, len(s.tasks))
	for id, t := range s.tasks {
		out[id] = t
	}
	return out
}

// CommitHook observes every committed snapshot. Hooks run on the mutating
// goroutine after the commit is visible and must not block; anything slow
// belongs behind a queue (the reconciler's Save already is).
type CommitHook func(Snapshot)

// TaskStore owns the canonical id -> task mapping. Every mutation replaces
// the whole snapshot; readers hold whatever snapshot they fetched and are
// never exposed to partial state.
type TaskStore struct {
	mu    sync.Mutex
	snap  Snapshot
	hooks []CommitHook

	newID func() string
	clock func() time.Time
}

func NewTaskStore(initial map[string]model.Task) *TaskStore {
	tasks := make(map[string]model.Task, len(initial))
	for id, t := range initial {
		tasks[id] = t
	}
	return &TaskStore{
		snap:  Snapshot{version: 1, tasks: tasks},
		newID: uuid.NewString,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// OnCommit registers a hook. Registration is not synchronized with
// mutation; wire hooks up before handing the store to event sources.
func (s *TaskStore) OnCommit(hook CommitHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *TaskStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Add inserts a new unchecked task and returns its generated id.
func (s *TaskStore) Add(text string) string {
	s.mu.Lock()
	id := s.newID()
	next := s.cloneLocked()
	next[id] = model.Task{
		ID:        id,
		Text:      text,
		Checked:   false,
		CreatedAt: s.clock(),
	}
	snap := s.commitLocked(next)
	s.mu.Unlock()

	s.notify(snap)
	return id
}

// Update merges changes into the task at id. A missing id is a silent
// no-op; the returned bool reports whether the task existed.
func (s *TaskStore) Update(id string, changes model.Changes) bool {
	s.mu.Lock()
	current, ok := s.snap.tasks[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	next := s.cloneLocked()
	next[id] = changes.Apply(current)
	snap := s.commitLocked(next)
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// UpdateMany applies the same changes to every listed id in one commit.
// Missing ids are skipped; if none exist, nothing is committed.
func (s *TaskStore) UpdateMany(ids []string, changes model.Changes) {
	s.mu.Lock()
	var next map[string]model.Task
	for _, id := range ids {
		current, ok := s.snap.tasks[id]
		if !ok {
			continue
		}
		if next == nil {
			next = s.cloneLocked()
		}
		next[id] = changes.Apply(current)
	}
	if next == nil {
		s.mu.Unlock()
		return
	}
	snap := s.commitLocked(next)
	s.mu.Unlock()

	s.notify(snap)
}

// Remove deletes the task at id. Missing ids are ignored; the returned
// bool reports whether anything was removed.
func (s *TaskStore) Remove(id string) bool {
	s.mu.Lock()
	if _, ok := s.snap.tasks[id]; !ok {
		s.mu.Unlock()
		return false
	}
	next := s.cloneLocked()
	delete(next, id)
	snap := s.commitLocked(next)
	s.mu.Unlock()

	s.notify(snap)
	return true
}

func (s *TaskStore) RemoveMany(ids []string) {
	s.mu.Lock()
	var next map[string]model.Task
	for _, id := range ids {
		if _, ok := s.snap.tasks[id]; !ok {
			continue
		}
		if next == nil {
			next = s.cloneLocked()
		}
		delete(next, id)
	}
	if next == nil {
		s.mu.Unlock()
		return
	}
	snap := s.commitLocked(next)
	s.mu.Unlock()

	s.notify(snap)
}

// Reset replaces the entire store content, e.g. to load the bundled
// dataset.
func (s *TaskStore) Reset(data map[string]model.Task) {
	next := make(map[string]model.Task, len(data))
	for id, t := range data {
		next[id] = t
	}
	s.mu.Lock()
	snap := s.commitLocked(next)
	s.mu.Unlock()

	s.notify(snap)
}

func (s *TaskStore) cloneLocked() map[string]model.Task {
	next := make(map[string]model.Task, len(s.snap.tasks)+1)
	for id, t := range s.snap.tasks {
		next[id] = t
	}
	return next
}

func (s *TaskStore) commitLocked(next map[string]model.Task) Snapshot {
	s.snap = Snapshot{version: s.snap.version + 1, tasks: next}
	return s.snap
}

func (s *TaskStore) notify(snap Snapshot) {
	for _, hook := range s.hooks {
		hook(snap)
	}
}
