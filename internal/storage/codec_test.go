package storage

import (
	"testing"
	"time"

	"github.com/todueapp/todue/internal/model"
)

func TestTasksRoundTrip(t *testing.T) {
	due := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	original := map[string]model.Task{
		"t1": {
			ID:        "t1",
			Text:      "Buy milk",
			Checked:   false,
			DueAt:     &due,
			CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		"t2": {
			ID:        "t2",
			Text:      "Call Bob",
			Checked:   true,
			CreatedAt: time.Date(2026, 3, 1, 8, 1, 0, 0, time.UTC),
		},
	}

	raw, err := EncodeTasks(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeTasks(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("len = %d, want %d", len(decoded), len(original))
	}
	for id, want := range original {
		got, ok := decoded[id]
		if !ok {
			t.Fatalf("task %s missing after round trip", id)
		}
		if got.ID != want.ID || got.Text != want.Text || got.Checked != want.Checked {
			t.Fatalf("task %s = %+v, want %+v", id, got, want)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("task %s created_at = %v, want %v", id, got.CreatedAt, want.CreatedAt)
		}
		switch {
		case want.DueAt == nil && got.DueAt != nil:
			t.Fatalf("task %s gained a due time", id)
		case want.DueAt != nil && (got.DueAt == nil || !got.DueAt.Equal(*want.DueAt)):
			t.Fatalf("task %s due = %v, want %v", id, got.DueAt, want.DueAt)
		}
	}
}

func TestDecodeTasksRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "not json", `[1,2,3]`, `"string"`} {
		if _, err := DecodeTasks(raw); err == nil {
			t.Fatalf("malformed blob %q accepted", raw)
		}
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	original := map[model.UrgencyLevel]bool{
		model.LevelOverdue:  true,
		model.LevelDueSoon:  true,
		model.LevelUpcoming: false,
		model.LevelNone:     false,
	}

	raw, err := EncodeSettings(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeSettings(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("len = %d, want %d", len(decoded), len(original))
	}
	for level, want := range original {
		if decoded[level] != want {
			t.Fatalf("level %s = %v, want %v", level, decoded[level], want)
		}
	}
}

func TestDecodeSettingsRejectsUnknownLevelKey(t *testing.T) {
	if _, err := DecodeSettings(`{"bogus": true}`); err == nil {
		t.Fatal("unknown level key accepted")
	}
}
