package model

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidTask = errors.New("model: invalid task")

// Task is a single todo item. ID is assigned at creation and never reused;
// CreatedAt breaks ordering ties between tasks of equal urgency.
type Task struct {
	ID        string
	Text      string
	Checked   bool
	DueAt     *time.Time
	CreatedAt time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	return nil
}

// Changes is a partial update applied over an existing Task. Nil fields are
// left untouched; ClearDueAt removes the due time regardless of DueAt.
type Changes struct {
	Text       *string
	Checked    *bool
	DueAt      *time.Time
	ClearDueAt bool
}

// Apply merges the changes into a copy of the task. The task's ID and
// CreatedAt are never modified.
func (c Changes) Apply(t Task) Task {
	out := t
	if c.Text != nil {
		out.Text = *c.Text
	}
	if c.Checked != nil {
		out.Checked = *c.Checked
	}
	if c.ClearDueAt {
		out.DueAt = nil
	} else if c.DueAt != nil {
		due := *c.DueAt
		out.DueAt = &due
	}
	return out
}

func (c Changes) IsZero() bool {
	return c.Text == nil && c.Checked == nil && c.DueAt == nil && !c.ClearDueAt
}
