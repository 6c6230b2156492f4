package notify

import (
	"strings"
	"time"

	"github.com/todueapp/todue/internal/model"
	"github.com/todueapp/todue/internal/store"
)

const summaryTitle = "Things to do"

// Composer turns the current task snapshot into at most one rolling
// summary notification plus per-task reminders, and hands them to the
// delivery engine.
type Composer struct {
	classifier model.Classifier
	engine     *Engine
}

func NewComposer(classifier model.Classifier, engine *Engine) *Composer {
	return &Composer{classifier: classifier, engine: engine}
}

type levelGroup struct {
	level model.UrgencyLevel
	tasks []model.Task
}

// Summarize builds the rolling summary for the given tasks. The second
// return value is false when nothing qualifies: checked tasks never count,
// and a task only counts when its level is enabled in settings.
func (c *Composer) Summarize(tasks []model.Task, settings store.Settings, now time.Time) (Notification, bool) {
	included := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Checked {
			continue
		}
		if !settings.Enabled(c.classifier.LevelAt(t, now)) {
			continue
		}
		included = append(included, t)
	}
	if len(included) == 0 {
		return Notification{}, false
	}

	c.classifier.SortTasks(included, now)

	var groups []levelGroup
	for _, t := range included {
		level := c.classifier.LevelAt(t, now)
		if len(groups) == 0 || groups[len(groups)-1].level != level {
			groups = append(groups, levelGroup{level: level})
		}
		last := &groups[len(groups)-1]
		last.tasks = append(last.tasks, t)
	}

	sections := make([]string, 0, len(groups))
	for _, g := range groups {
		lines := make([]string, 0, len(g.tasks)+1)
		lines = append(lines, g.level.Description()+":")
		for _, t := range g.tasks {
			lines = append(lines, t.Text)
		}
		sections = append(sections, strings.Join(lines, "\n • "))
	}

	n := baseNotification()
	n.ID = SummaryID
	n.Title = summaryTitle
	n.Color = groups[0].level.Color()
	// The short message shows only the most severe group; the expanded text
	// shows every group.
	n.Message = sections[0]
	n.BigText = strings.Join(sections, "\n")
	if len(included) > 1 {
		n.Number = len(included)
	}
	// The summary is silent and sticky: it is recomputed constantly and must
	// neither re-alert nor be swiped away.
	n.AutoCancel = false
	n.Ongoing = true
	n.Vibrate = false
	n.PlaySound = false
	n.SoundName = ""
	return n, true
}

// Recompute rebuilds the summary from one consistent snapshot and
// schedules it for immediate delivery, or clears a pending summary when no
// task qualifies.
func (c *Composer) Recompute(snap store.Snapshot, settings store.Settings, now time.Time) error {
	n, ok := c.Summarize(snap.Tasks(), settings, now)
	if !ok {
		c.engine.Cancel(SummaryID)
		return nil
	}
	return c.engine.Schedule(n, now)
}

// Reminder builds a single-task notification for delivery at the target
// time. The level is computed at that time, not at composition time, so
// the message matches what the task will be when the reminder appears.
func (c *Composer) Reminder(task model.Task, at time.Time) Notification {
	level := c.classifier.LevelAt(task, at)
	n := baseNotification()
	n.ID = task.ID
	n.Title = task.Text
	n.Message = "is " + level.Description()
	n.Color = level.Color()
	return n
}

// Remind schedules a reminder keyed by the task's own id, so it coexists
// with the summary and with reminders for other tasks.
func (c *Composer) Remind(task model.Task, at time.Time) error {
	return c.engine.Schedule(c.Reminder(task, at), at)
}

// IconName is the notification status icon for the current state: off when
// no level is enabled, active while any unchecked task remains.
func IconName(tasks []model.Task, settings store.Settings) string {
	enabled := false
	for _, level := range model.Levels() {
		if settings.Enabled(level) {
			enabled = true
			break
		}
	}
	if !enabled {
		return "notifications-off"
	}
	for _, t := range tasks {
		if !t.Checked {
			return "notifications-active"
		}
	}
	return "notifications"
}
