package watcher

import "context"

// Watcher feeds recordings dropped into a folder to a handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one recording found in the watched folder.
type EventHandler func(ctx context.Context, filePath string) error
