package update

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/todueapp/todue/internal/app"
	"github.com/todueapp/todue/internal/model"
	"github.com/todueapp/todue/internal/storage"
)

type memBlobStore struct {
	mu     sync.Mutex
	values map[string]string
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

func newTestModel(t *testing.T) (Model, *app.App) {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.DBPath = ""
	a := app.NewWithBlobStore(&memBlobStore{values: make(map[string]string)}, cfg, nil)
	return NewModel(a, nil), a
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

func keyEnter() tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyEnter})
}

func asModel(t *testing.T, m tea.Model) Model {
	t.Helper()
	out, ok := m.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", m)
	}
	return out
}

func TestNewModelListsBundledTasks(t *testing.T) {
	m, a := newTestModel(t)
	if got, want := len(m.taskList.Items()), a.Tasks.Snapshot().Len(); got != want {
		t.Fatalf("list has %d items, want %d", got, want)
	}
}

func TestAddKeyOpensAddScene(t *testing.T) {
	m, _ := newTestModel(t)
	next := asModel(t, first(m.Update(keyRunes("a"))))
	if next.Scene != SceneAddItem {
		t.Fatalf("scene = %s, want %s", next.Scene, SceneAddItem)
	}
}

func TestAddSceneCommitsTask(t *testing.T) {
	m, a := newTestModel(t)
	before := a.Tasks.Snapshot().Len()

	next := asModel(t, first(m.Update(keyRunes("a"))))
	for _, r := range "Walk the dog" {
		next = asModel(t, first(next.Update(keyRunes(string(r)))))
	}
	next = asModel(t, first(next.Update(keyEnter())))

	if next.Scene != SceneHome {
		t.Fatalf("scene = %s, want %s", next.Scene, SceneHome)
	}
	if got := a.Tasks.Snapshot().Len(); got != before+1 {
		t.Fatalf("store has %d tasks, want %d", got, before+1)
	}
	found := false
	for _, task := range a.Tasks.Snapshot().Tasks() {
		if task.Text == "Walk the dog" {
			found = true
		}
	}
	if !found {
		t.Fatal("added task not in store")
	}
}

func TestEditRouteRequiresKnownItem(t *testing.T) {
	m, _ := newTestModel(t)
	next := asModel(t, first(m.Update(NavigateMsg{Route: Route{ID: SceneEditItem, ItemID: "missing"}})))
	if next.Scene != SceneHome {
		t.Fatalf("scene = %s, want to stay home", next.Scene)
	}
	if !next.Status.IsError {
		t.Fatal("missing item did not surface an error status")
	}
}

func TestEditRouteCarriesItemID(t *testing.T) {
	m, a := newTestModel(t)
	id := a.Tasks.Add("Original text")

	next := asModel(t, first(m.Update(NavigateMsg{Route: Route{ID: SceneEditItem, ItemID: id}})))
	if next.Scene != SceneEditItem || next.editItemID != id {
		t.Fatalf("scene = %s itemID = %s", next.Scene, next.editItemID)
	}
	if next.textInput.Value() != "Original text" {
		t.Fatalf("editor seeded with %q", next.textInput.Value())
	}
}

func TestCheckAllKey(t *testing.T) {
	m, a := newTestModel(t)
	next := asModel(t, first(m.Update(keyRunes("C"))))
	for _, task := range a.Tasks.Snapshot().Tasks() {
		if !task.Checked {
			t.Fatalf("task %s not checked", task.ID)
		}
	}
	if next.Status.Text == "" {
		t.Fatal("no status feedback")
	}
}

func TestRemoveCheckedKey(t *testing.T) {
	m, a := newTestModel(t)
	total := a.Tasks.Snapshot().Len()
	_ = asModel(t, first(m.Update(keyRunes("C"))))
	next := asModel(t, first(m.Update(keyRunes("D"))))
	_ = next
	if got := a.Tasks.Snapshot().Len(); got != 0 {
		t.Fatalf("%d of %d tasks remain after sweep", got, total)
	}
}

func TestLevelToggleKey(t *testing.T) {
	m, a := newTestModel(t)
	if a.Settings.Get().Enabled(model.LevelOverdue) {
		t.Fatal("overdue enabled before toggle")
	}
	_ = asModel(t, first(m.Update(keyRunes("1"))))
	if !a.Settings.Get().Enabled(model.LevelOverdue) {
		t.Fatal("overdue not enabled by key 1")
	}
}

func TestPaletteExecutesCommand(t *testing.T) {
	m, a := newTestModel(t)
	before := a.Tasks.Snapshot().Len()

	next := asModel(t, first(m.Update(keyRunes("/"))))
	if !next.PaletteOpen {
		t.Fatal("palette not open")
	}
	next.paletteInput.SetValue("/add from the palette")
	next = asModel(t, first(next.Update(keyEnter())))

	if next.PaletteOpen {
		t.Fatal("palette still open after enter")
	}
	if got := a.Tasks.Snapshot().Len(); got != before+1 {
		t.Fatalf("store has %d tasks, want %d", got, before+1)
	}
}

func TestPaletteParseErrorSurfacesStatus(t *testing.T) {
	m, _ := newTestModel(t)
	next := asModel(t, first(m.Update(keyRunes("/"))))
	next.paletteInput.SetValue("/frobnicate")
	next = asModel(t, first(next.Update(keyEnter())))
	if !next.Status.IsError {
		t.Fatal("parse error not surfaced")
	}
}

func TestViewRendersScenes(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "todue") {
		t.Fatal("home view missing header")
	}
	add := asModel(t, first(m.Update(keyRunes("a"))))
	if !strings.Contains(add.View(), "Add a task") {
		t.Fatal("add view missing prompt")
	}
}

func first(m tea.Model, _ tea.Cmd) tea.Model { return m }
