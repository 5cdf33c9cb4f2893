package predictions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Store holds the current feed. A missing or broken feed leaves it empty.
type Store struct {
	dir    string
	logger *log.Logger

	mu          sync.RWMutex
	feed        Feed
	subscribers []chan Feed
}

// NewStore creates a store over dir and loads the newest feed.
func NewStore(dir string) *Store {
	s := &Store{
		dir:    dir,
		logger: log.New(log.Writer(), "[predictions] ", log.LstdFlags),
		feed:   Empty(),
	}
	s.Reload()
	return s
}

// Current returns the loaded feed.
func (s *Store) Current() Feed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feed
}

// Reload reads the newest feed and notifies subscribers.
func (s *Store) Reload() Feed {
	f, err := Load(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Printf("⊘ No prediction feed in %s", s.dir)
		} else {
			s.logger.Printf("⚠️  Failed to load prediction feed: %v", err)
		}
		f = Empty()
	} else {
		s.logger.Printf("✓ Loaded %s (%d games)", f.Source, len(f.Games))
	}

	s.mu.Lock()
	s.feed = f
	subs := append([]chan Feed(nil), s.subscribers...)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- f:
		default:
		}
	}
	return f
}

// Subscribe returns a channel receiving each reloaded feed. Slow readers
// miss intermediate feeds.
func (s *Store) Subscribe() <-chan Feed {
	ch := make(chan Feed, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

// Unsubscribe stops deliveries to a channel returned by Subscribe.
func (s *Store) Unsubscribe(ch <-chan Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// Watch reloads the feed whenever a .json file in the directory is
// created, written or renamed. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating predictions dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}
	s.logger.Printf("✓ Watching %s", s.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isFeedEvent(event) {
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Printf("⚠️  Watcher error: %v", err)
		}
	}
}

func isFeedEvent(e fsnotify.Event) bool {
	if filepath.Ext(e.Name) != ".json" {
		return false
	}
	return e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Rename) || e.Has(fsnotify.Remove)
}
