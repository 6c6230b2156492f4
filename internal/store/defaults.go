package store

import (
	"time"

	"github.com/todueapp/todue/internal/model"
)

// DefaultTasks is the bundled dataset used when no persisted data exists
// and when the user loads the example list.
func DefaultTasks(now time.Time) map[string]model.Task {
	entries := []struct {
		id   string
		text string
		due  time.Duration
		none bool
	}{
		{id: "example-1", text: "Water the plants", due: -2 * time.Hour},
		{id: "example-2", text: "Pay the electricity bill", due: 6 * time.Hour},
		{id: "example-3", text: "Book dentist appointment", due: 3 * 24 * time.Hour},
		{id: "example-4", text: "Clean out the garage", none: true},
		{id: "example-5", text: "Renew passport", due: 30 * 24 * time.Hour},
	}

	out := make(map[string]model.Task, len(entries))
	for i, e := range entries {
		task := model.Task{
			ID:        e.id,
			Text:      e.text,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if !e.none {
			due := now.Add(e.due)
			task.DueAt = &due
		}
		out[e.id] = task
	}
	return out
}
