package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Keys used by the persistence layer. Task data and notification settings
// are persisted as independent blobs.
const (
	TasksKey    = "data"
	SettingsKey = "notifSettings"
)

// BlobStore is the key-value persistence collaborator: textual blobs keyed
// by name. Get returns ErrNotFound when the key has never been written.
type BlobStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
