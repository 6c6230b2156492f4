package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/todueapp/todue/internal/model"
)

// Blob encoding for task data and settings. Tasks serialize as a JSON
// object keyed by id, the same shape the data began life as; decoding is
// strict enough that a malformed blob surfaces as an error and the caller
// falls back to defaults.

type taskRecord struct {
	Text      string     `json:"text"`
	Checked   bool       `json:"checked"`
	DueAt     *time.Time `json:"dueAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func EncodeTasks(tasks map[string]model.Task) (string, error) {
	records := make(map[string]taskRecord, len(tasks))
	for id, t := range tasks {
		records[id] = taskRecord{
			Text:      t.Text,
			Checked:   t.Checked,
			DueAt:     t.DueAt,
			CreatedAt: t.CreatedAt,
		}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return string(raw), nil
}

func DecodeTasks(raw string) (map[string]model.Task, error) {
	var records map[string]taskRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	out := make(map[string]model.Task, len(records))
	for id, rec := range records {
		task := model.Task{
			ID:        id,
			Text:      rec.Text,
			Checked:   rec.Checked,
			CreatedAt: rec.CreatedAt,
		}
		if rec.DueAt != nil {
			due := *rec.DueAt
			task.DueAt = &due
		}
		out[id] = task
	}
	return out, nil
}

func EncodeSettings(settings map[model.UrgencyLevel]bool) (string, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	return string(raw), nil
}

func DecodeSettings(raw string) (map[model.UrgencyLevel]bool, error) {
	var settings map[model.UrgencyLevel]bool
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}
