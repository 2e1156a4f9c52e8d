package tail

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WaitForFile blocks until path exists. The batch process creates its
// log file lazily and startup time varies, so there is no deadline
// beyond ctx.
//
// A directory watch cuts the latency when available; the poll ticker
// covers hosts where the watch cannot be established and the window
// between the initial stat and the watch registration.
func WaitForFile(ctx context.Context, path string, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var events chan fsnotify.Event
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		if werr := watcher.Add(filepath.Dir(path)); werr == nil {
			events = watcher.Events
		}
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-events: // nil channel when the watch is unavailable
		case <-ticker.C:
		}
	}
}
