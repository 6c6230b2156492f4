package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/todueapp/todue/internal/commands"
	"github.com/todueapp/todue/internal/model"
	"github.com/todueapp/todue/internal/store"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Back:
		m.PaletteOpen = false
		m.paletteInput.Blur()
		return m, nil

	case "enter":
		input := m.paletteInput.Value()
		m.PaletteOpen = false
		m.paletteInput.Blur()

		cmd, err := commands.Parse(input)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		result, err := commands.Execute(cmd, m.paletteHandlers())
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: result.Message}
		m.syncTaskList()
		return m, nil
	}

	var cmd tea.Cmd
	m.paletteInput, cmd = m.paletteInput.Update(msg)
	return m, cmd
}

func (m *Model) paletteHandlers() commands.Handlers {
	return commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			id := m.app.Tasks.Add(a.Text)
			return commands.Result{Message: fmt.Sprintf("added %s", id)}, nil
		},
		Check: func(a commands.CheckArgs) (commands.Result, error) {
			checked := true
			if a.All {
				snap := m.app.Tasks.Snapshot()
				ids := make([]string, 0, snap.Len())
				for id := range snap.All() {
					ids = append(ids, id)
				}
				m.app.Tasks.UpdateMany(ids, model.Changes{Checked: &checked})
				return commands.Result{Message: fmt.Sprintf("checked %d tasks", len(ids))}, nil
			}
			if found := m.app.Tasks.Update(a.Target, model.Changes{Checked: &checked}); !found {
				return commands.Result{Message: fmt.Sprintf("no task %s", a.Target)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("checked %s", a.Target)}, nil
		},
		Uncheck: func(a commands.UncheckArgs) (commands.Result, error) {
			checked := false
			if found := m.app.Tasks.Update(a.Target, model.Changes{Checked: &checked}); !found {
				return commands.Result{Message: fmt.Sprintf("no task %s", a.Target)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("unchecked %s", a.Target)}, nil
		},
		Remove: func(a commands.RemoveArgs) (commands.Result, error) {
			if a.Checked {
				var ids []string
				for id, task := range m.app.Tasks.Snapshot().All() {
					if task.Checked {
						ids = append(ids, id)
					}
				}
				m.app.Tasks.RemoveMany(ids)
				return commands.Result{Message: fmt.Sprintf("removed %d checked tasks", len(ids))}, nil
			}
			if found := m.app.Tasks.Remove(a.Target); !found {
				return commands.Result{Message: fmt.Sprintf("no task %s", a.Target)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("removed %s", a.Target)}, nil
		},
		Reset: func() (commands.Result, error) {
			m.app.Tasks.Reset(defaultDataset())
			return commands.Result{Message: "loaded example tasks"}, nil
		},
		Notify: func(a commands.NotifyArgs) (commands.Result, error) {
			var level model.UrgencyLevel
			if err := level.UnmarshalText([]byte(a.Level)); err != nil {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: fmt.Sprintf("unknown level %q", a.Level),
				}
			}
			settings := m.app.Settings.Get()
			settings[level] = a.Enabled
			m.app.Settings.Set(settings)
			state := "off"
			if a.Enabled {
				state = "on"
			}
			return commands.Result{Message: fmt.Sprintf("notify %s: %s", level, state)}, nil
		},
		Remind: func(a commands.RemindArgs) (commands.Result, error) {
			at := time.Now().UTC().Add(a.In)
			if _, ok := m.app.Tasks.Snapshot().Get(a.Target); !ok {
				return commands.Result{Message: fmt.Sprintf("no task %s", a.Target)}, nil
			}
			if err := m.app.Remind(a.Target, at); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("reminder for %s at %s", a.Target, at.Local().Format("15:04"))}, nil
		},
	}
}

func defaultDataset() map[string]model.Task {
	return store.DefaultTasks(time.Now().UTC())
}
