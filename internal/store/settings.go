package store

import (
	"sync"

	"github.com/todueapp/todue/internal/model"
)

// Settings maps an urgency level to whether that level produces
// notifications.
type Settings map[model.UrgencyLevel]bool

// DefaultSettings disables every level; notifications are opt-in.
func DefaultSettings() Settings {
	out := make(Settings, len(model.Levels()))
	for _, level := range model.Levels() {
		out[level] = false
	}
	return out
}

func (s Settings) Enabled(level model.UrgencyLevel) bool {
	return s[level]
}

func (s Settings) clone() Settings {
	out := make(Settings, len(s))
	for level, on := range s {
		out[level] = on
	}
	return out
}

// SettingsStore owns the notification preferences, persisted independently
// of the task data.
type SettingsStore struct {
	mu      sync.Mutex
	current Settings
	hooks   []func(Settings)
}

// NewSettingsStore seeds the store from persisted settings; nil falls back
// to the all-disabled defaults.
func NewSettingsStore(initial Settings) *SettingsStore {
	current := DefaultSettings()
	for level, on := range initial {
		if level.IsValid() {
			current[level] = on
		}
	}
	return &SettingsStore{current: current}
}

func (s *SettingsStore) OnSet(hook func(Settings)) {
	s.hooks = append(s.hooks, hook)
}

func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Set replaces the full mapping. Unknown levels are dropped; levels absent
// from the input revert to disabled.
func (s *SettingsStore) Set(next Settings) {
	normalized := DefaultSettings()
	for level, on := range next {
		if level.IsValid() {
			normalized[level] = on
		}
	}
	s.mu.Lock()
	s.current = normalized
	committed := normalized.clone()
	s.mu.Unlock()

	for _, hook := range s.hooks {
		hook(committed)
	}
}

// Toggle flips a single level and commits the result as a full
// replacement.
func (s *SettingsStore) Toggle(level model.UrgencyLevel) {
	if !level.IsValid() {
		return
	}
	s.mu.Lock()
	next := s.current.clone()
	next[level] = !next[level]
	s.current = next
	committed := next.clone()
	s.mu.Unlock()

	for _, hook := range s.hooks {
		hook(committed)
	}
}
