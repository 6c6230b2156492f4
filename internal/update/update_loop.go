package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/todueapp/todue/internal/model"
	"github.com/todueapp/todue/internal/views"
)

func (m Model) Init() tea.Cmd {
	return m.waitForDelivery()
}

func (m Model) waitForDelivery() tea.Cmd {
	if m.deliveries == nil {
		return nil
	}
	ch := m.deliveries
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return nil
		}
		return DeliveryMsg{Delivery: d}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.taskList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case DeliveryMsg:
		n := msg.Delivery.Notification
		text := n.Message
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[:idx]
		}
		m.Status = StatusBar{Text: fmt.Sprintf("notification: %s — %s", n.Title, text)}
		return m, m.waitForDelivery()

	case NavigateMsg:
		return m.navigate(msg.Route), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) navigate(route Route) Model {
	switch route.ID {
	case SceneAddItem:
		m.Scene = SceneAddItem
		m.textInput.SetValue("")
		m.textInput.Focus()
	case SceneEditItem:
		task, ok := m.app.Tasks.Snapshot().Get(route.ItemID)
		if !ok {
			m.Status = StatusBar{Text: fmt.Sprintf("task %s not found", route.ItemID), IsError: true}
			return m
		}
		m.Scene = SceneEditItem
		m.editItemID = route.ItemID
		m.textInput.SetValue(task.Text)
		m.textInput.Focus()
	default:
		m.Scene = SceneHome
		m.editItemID = ""
		m.textInput.Blur()
		m.syncTaskList()
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.PaletteOpen {
		return m.handlePaletteKey(msg)
	}

	switch m.Scene {
	case SceneAddItem, SceneEditItem:
		return m.handleEditorKey(msg)
	}
	return m.handleHomeKey(msg)
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.HelpVisible {
		m.HelpVisible = false
		return m, nil
	}

	switch key {
	case m.Keys.Quit, "ctrl+c":
		m.Quitting = true
		return m, tea.Quit

	case m.Keys.Help:
		m.HelpVisible = true
		return m, nil

	case m.Keys.Palette:
		m.PaletteOpen = true
		m.paletteInput.SetValue("")
		m.paletteInput.Focus()
		return m, nil

	case m.Keys.Add:
		return m.navigate(Route{ID: SceneAddItem}), nil

	case m.Keys.Edit:
		if task, ok := m.selectedTask(); ok {
			return m.navigate(Route{ID: SceneEditItem, ItemID: task.ID}), nil
		}
		return m, nil

	case m.Keys.Toggle:
		if task, ok := m.selectedTask(); ok {
			checked := !task.Checked
			m.app.Tasks.Update(task.ID, model.Changes{Checked: &checked})
			m.syncTaskList()
		}
		return m, nil

	case m.Keys.Delete:
		if task, ok := m.selectedTask(); ok {
			m.app.Tasks.Remove(task.ID)
			m.Status = StatusBar{Text: "task removed"}
			m.syncTaskList()
		}
		return m, nil

	case m.Keys.CheckAll:
		snap := m.app.Tasks.Snapshot()
		ids := make([]string, 0, snap.Len())
		for id := range snap.All() {
			ids = append(ids, id)
		}
		checked := true
		m.app.Tasks.UpdateMany(ids, model.Changes{Checked: &checked})
		m.Status = StatusBar{Text: fmt.Sprintf("checked %d tasks", len(ids))}
		m.syncTaskList()
		return m, nil

	case m.Keys.RemoveChecked:
		snap := m.app.Tasks.Snapshot()
		var ids []string
		for id, task := range snap.All() {
			if task.Checked {
				ids = append(ids, id)
			}
		}
		m.app.Tasks.RemoveMany(ids)
		m.Status = StatusBar{Text: fmt.Sprintf("removed %d checked tasks", len(ids))}
		m.syncTaskList()
		return m, nil

	case m.Keys.Reset:
		m.resetDataset()
		return m, nil

	case "1", "2", "3", "4":
		levels := model.Levels()
		level := levels[int(key[0]-'1')]
		m.app.Settings.Toggle(level)
		state := "off"
		if m.app.Settings.Get().Enabled(level) {
			state = "on"
		}
		m.Status = StatusBar{Text: fmt.Sprintf("notify %s: %s", level, state)}
		return m, nil
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Back:
		return m.navigate(Route{ID: SceneHome}), nil

	case "enter":
		text := strings.TrimSpace(m.textInput.Value())
		if text == "" {
			m.Status = StatusBar{Text: "task text is empty", IsError: true}
			return m, nil
		}
		if m.Scene == SceneAddItem {
			m.app.Tasks.Add(text)
			m.Status = StatusBar{Text: "task added"}
		} else {
			if found := m.app.Tasks.Update(m.editItemID, model.Changes{Text: &text}); !found {
				m.Status = StatusBar{Text: "task vanished while editing", IsError: true}
			} else {
				m.Status = StatusBar{Text: "task updated"}
			}
		}
		return m.navigate(Route{ID: SceneHome}), nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) resetDataset() {
	m.app.Tasks.Reset(defaultDataset())
	m.Status = StatusBar{Text: "loaded example tasks"}
	m.syncTaskList()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	if m.HelpVisible {
		return views.RenderMarkdown(helpText)
	}

	var body string
	switch m.Scene {
	case SceneAddItem:
		body = "Add a task\n\n" + m.textInput.View()
	case SceneEditItem:
		body = "Edit task\n\n" + m.textInput.View()
	default:
		body = m.taskList.View()
	}
	if m.PaletteOpen {
		body += "\n\n> " + m.paletteInput.View()
	}

	return views.RenderApp(views.AppData{
		Header:     "todue · " + m.app.Icon(),
		Body:       body,
		StatusLine: m.Status.Text,
		IsError:    m.Status.IsError,
		Footer:     footerFor(m.Scene),
	})
}

func footerFor(scene Scene) string {
	switch scene {
	case SceneAddItem, SceneEditItem:
		return "enter save · esc cancel"
	default:
		return "a add · enter edit · space toggle · d delete · C check all · D sweep · R reset · 1-4 notify levels · / palette · ? help · q quit"
	}
}
