package store

import (
	"context"
	"errors"

	"github.com/pyittinehtaung/pth-client/internal/model/chat"
)

// Common errors for snapshot store operations.
var (
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Adapter is the durable mirror of the in-memory client state. The session
// store writes through on every mutation and loads once at startup.
type Adapter interface {
	// Load returns the persisted snapshot, or (nil, nil) when no snapshot
	// has been written yet. A decode failure is returned as an error so
	// the caller can fall back to a fresh default state.
	Load(ctx context.Context) (*chat.Snapshot, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap *chat.Snapshot) error

	// Close releases any resources held by the adapter.
	Close() error
}
