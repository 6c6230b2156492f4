// Package update is the bubbletea layer over the app core: three scenes
// (home, add-item, edit-item), a command palette, and delivery of scheduled
// notifications into the status bar.
package update

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/todueapp/todue/internal/app"
	"github.com/todueapp/todue/internal/model"
	"github.com/todueapp/todue/internal/notify"
	"github.com/todueapp/todue/internal/views"
)

type Scene string

const (
	SceneHome     Scene = "home"
	SceneAddItem  Scene = "add-item"
	SceneEditItem Scene = "edit-item"
)

// Route is an opaque navigation request; edit-item routes carry the id of
// the task being edited.
type Route struct {
	ID     Scene
	ItemID string
}

type NavigateMsg struct {
	Route Route
}

type DeliveryMsg struct {
	Delivery notify.Delivery
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Add           string
	Edit          string
	Toggle        string
	Delete        string
	CheckAll      string
	RemoveChecked string
	Reset         string
	Palette       string
	Help          string
	Quit          string
	Back          string
}

type Model struct {
	Scene       Scene
	Status      StatusBar
	HelpVisible bool
	PaletteOpen bool
	Keys        GlobalKeyMap
	Quitting    bool

	app        *app.App
	classifier model.Classifier
	deliveries <-chan notify.Delivery

	taskList     list.Model
	textInput    textinput.Model
	paletteInput textinput.Model
	editItemID   string
	snapVersion  uint64
}

type taskItem struct {
	task  model.Task
	level model.UrgencyLevel
}

func (i taskItem) Title() string {
	box := "[ ] "
	text := i.task.Text
	if i.task.Checked {
		box = "[x] "
		text = views.CheckedText(text)
	}
	return box + text
}

func (i taskItem) Description() string {
	badge := views.LevelBadge(i.level.Description(), i.level.Color())
	if i.task.DueAt == nil {
		return badge
	}
	return fmt.Sprintf("%s · due %s", badge, i.task.DueAt.Local().Format("Mon Jan 2 15:04"))
}

func (i taskItem) FilterValue() string { return i.task.Text }

func NewModel(a *app.App, deliveries <-chan notify.Delivery) Model {
	taskList := list.New(nil, list.NewDefaultDelegate(), 72, 18)
	taskList.Title = "Todo List"
	taskList.SetShowHelp(false)
	taskList.SetShowStatusBar(false)

	textInput := textinput.New()
	textInput.Placeholder = "What needs doing?"
	textInput.CharLimit = 200

	paletteInput := textinput.New()
	paletteInput.Placeholder = "/add buy milk · /check all · /notify overdue on"
	paletteInput.CharLimit = 200

	m := Model{
		Scene:        SceneHome,
		app:          a,
		classifier:   model.DefaultClassifier(),
		deliveries:   deliveries,
		taskList:     taskList,
		textInput:    textInput,
		paletteInput: paletteInput,
		Keys: GlobalKeyMap{
			Add:           "a",
			Edit:          "enter",
			Toggle:        " ",
			Delete:        "d",
			CheckAll:      "C",
			RemoveChecked: "D",
			Reset:         "R",
			Palette:       "/",
			Help:          "?",
			Quit:          "q",
			Back:          "esc",
		},
	}
	m.syncTaskList()
	return m
}

// syncTaskList rebuilds the visible list from the current snapshot in the
// classifier's deterministic order. Cheap change detection: skip when the
// snapshot version is unchanged.
func (m *Model) syncTaskList() {
	snap := m.app.Tasks.Snapshot()
	if snap.Version() == m.snapVersion && len(m.taskList.Items()) > 0 {
		return
	}
	m.snapVersion = snap.Version()

	now := time.Now().UTC()
	tasks := snap.Tasks()
	m.classifier.SortTasks(tasks, now)

	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t, level: m.classifier.LevelAt(t, now)})
	}
	m.taskList.SetItems(items)
}

func (m Model) selectedTask() (model.Task, bool) {
	item, ok := m.taskList.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.task, true
}
