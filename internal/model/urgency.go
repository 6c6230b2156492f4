package model

import (
	"fmt"
	"sort"
	"time"
)

// UrgencyLevel classifies a task relative to a reference time. Higher values
// are more severe; the zero value is the least severe.
type UrgencyLevel int

const (
	LevelNone UrgencyLevel = iota
	LevelUpcoming
	LevelDueSoon
	LevelOverdue
)

var levelNames = map[UrgencyLevel]string{
	LevelNone:     "none",
	LevelUpcoming: "upcoming",
	LevelDueSoon:  "dueSoon",
	LevelOverdue:  "overdue",
}

var levelDescriptions = map[UrgencyLevel]string{
	LevelNone:     "unscheduled",
	LevelUpcoming: "upcoming",
	LevelDueSoon:  "due soon",
	LevelOverdue:  "overdue",
}

var levelColors = map[UrgencyLevel]string{
	LevelNone:     "#9E9E9E",
	LevelUpcoming: "#FFC107",
	LevelDueSoon:  "#FF9800",
	LevelOverdue:  "#F44336",
}

func (l UrgencyLevel) IsValid() bool {
	_, ok := levelNames[l]
	return ok
}

func (l UrgencyLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("UrgencyLevel(%d)", int(l))
}

// Description is the human-readable form used in notification text, e.g.
// a reminder message reads "is " + Description().
func (l UrgencyLevel) Description() string {
	if d, ok := levelDescriptions[l]; ok {
		return d
	}
	return levelDescriptions[LevelNone]
}

// Color is the display color associated with the level, as a hex string.
func (l UrgencyLevel) Color() string {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return levelColors[LevelNone]
}

func (l UrgencyLevel) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("model: unknown urgency level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *UrgencyLevel) UnmarshalText(raw []byte) error {
	for level, name := range levelNames {
		if name == string(raw) {
			*l = level
			return nil
		}
	}
	return fmt.Errorf("model: unknown urgency level %q", string(raw))
}

// Levels returns all levels ordered by descending severity.
func Levels() []UrgencyLevel {
	return []UrgencyLevel{LevelOverdue, LevelDueSoon, LevelUpcoming, LevelNone}
}

// Classifier maps a task's due time to an urgency level relative to a
// reference time. The horizons are inclusive: a task due within DueSoon of
// now is due soon, within Upcoming it is upcoming.
type Classifier struct {
	DueSoon  time.Duration
	Upcoming time.Duration
}

func DefaultClassifier() Classifier {
	return Classifier{
		DueSoon:  24 * time.Hour,
		Upcoming: 7 * 24 * time.Hour,
	}
}

// LevelAt is pure and monotonic: for a fixed due time, advancing now never
// lowers the returned severity. Tasks without a due time are LevelNone.
func (c Classifier) LevelAt(t Task, now time.Time) UrgencyLevel {
	if t.DueAt == nil {
		return LevelNone
	}
	until := t.DueAt.Sub(now)
	switch {
	case until <= 0:
		return LevelOverdue
	case until <= c.DueSoon:
		return LevelDueSoon
	case until <= c.Upcoming:
		return LevelUpcoming
	default:
		return LevelNone
	}
}

// SortTasks orders tasks for grouping and digest text: severity descending,
// then due time ascending, then creation time, then ID. The order is total,
// so repeated runs over the same snapshot produce identical output.
func (c Classifier) SortTasks(tasks []Task, now time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		li, lj := c.LevelAt(tasks[i], now), c.LevelAt(tasks[j], now)
		if li != lj {
			return li > lj
		}
		di, dj := tasks[i].DueAt, tasks[j].DueAt
		switch {
		case di != nil && dj != nil && !di.Equal(*dj):
			return di.Before(*dj)
		case di == nil && dj != nil:
			return false
		case di != nil && dj == nil:
			return true
		}
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
