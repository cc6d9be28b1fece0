package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
)

type Options struct {
	Dir           string
	MaxConcurrent int
	// Accept reports whether a file name is a recording to process.
	Accept func(name string) bool
	// SettleDelay is how long a file size must stay unchanged before processing.
	SettleDelay time.Duration
	// ProcessExisting queues recordings already in Dir when Start is called.
	ProcessExisting bool
}

// New creates a Watcher on opts.Dir with concurrency control
func New(opts Options, handler EventHandler, log logger.Logger) (Watcher, error) {
	if opts.Accept == nil {
		return nil, fmt.Errorf("watcher: Accept is required")
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(opts.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		opts:      opts,
		handler:   handler,
		logger:    log,
		watcher:   watcher,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
		inFlight:  make(map[string]struct{}),
	}, nil
}
