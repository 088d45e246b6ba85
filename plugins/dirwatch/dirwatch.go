// Package dirwatch provides a lifecycle service that watches a directory
// and reports debounced batches of changed files.
package dirwatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/svchost/pkg/lifecycle"
	"github.com/bft-labs/svchost/pkg/log"
)

// ErrWatcherClosed is returned by Execute when the watcher stops delivering
// events while the service is still running.
var ErrWatcherClosed = errors.New("watcher closed")

// Config holds configuration options for the directory watcher.
type Config struct {
	// Dir is the watched directory. It must exist when the service starts.
	Dir string

	// Patterns filter events by base name (filepath.Match syntax).
	// Empty matches everything.
	Patterns []string

	// DebounceDelay is the delay to wait after a change before reporting.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// OnChange receives the sorted base names changed since the last call.
	// When nil, changes are only logged.
	OnChange func(names []string)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Service watches Config.Dir with fsnotify.
type Service struct {
	cfg    Config
	logger log.Logger

	watcher *fsnotify.Watcher

	mu       sync.Mutex
	pending  map[string]struct{}
	debounce *time.Timer
}

// New creates a directory watcher service.
func New(cfg Config, logger log.Logger) *Service {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	logger = log.OrNop(logger)
	return &Service{
		cfg:     cfg,
		logger:  logger,
		pending: make(map[string]struct{}),
	}
}

// Setup creates the watcher. A missing directory is reported as
// lifecycle.ErrNotStarted since nothing has been acquired yet.
func (s *Service) Setup(ctx context.Context) error {
	info, err := os.Stat(s.cfg.Dir)
	if err != nil {
		return fmt.Errorf("%w: watch dir: %w", lifecycle.ErrNotStarted, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: watch dir %s is not a directory", lifecycle.ErrNotStarted, s.cfg.Dir)
	}
	if err := validatePatterns(s.cfg.Patterns); err != nil {
		return fmt.Errorf("%w: %w", lifecycle.ErrNotStarted, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.cfg.Dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.cfg.Dir, err)
	}
	s.watcher = watcher

	s.logger.Info("watching directory", log.String("dir", s.cfg.Dir))
	return nil
}

// Execute runs the event loop until ctx is canceled.
func (s *Service) Execute(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-s.watcher.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !s.matches(name) {
				continue
			}
			s.logger.Debug("directory event",
				log.String("file", name),
				log.String("op", event.Op.String()))
			s.queue(name)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			s.logger.Error("watcher error", log.Err(err))
		}
	}
}

// Teardown stops pending notifications and closes the watcher.
func (s *Service) Teardown(ctx context.Context) error {
	s.mu.Lock()
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

func (s *Service) queue(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[name] = struct{}{}
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.cfg.DebounceDelay, s.flush)
}

func (s *Service) flush() {
	s.mu.Lock()
	names := make([]string, 0, len(s.pending))
	for n := range s.pending {
		names = append(names, n)
	}
	s.pending = make(map[string]struct{})
	s.mu.Unlock()

	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	s.logger.Info("directory changed",
		log.String("dir", s.cfg.Dir),
		log.Int("files", len(names)))
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(names)
	}
}

func (s *Service) matches(name string) bool {
	if len(s.cfg.Patterns) == 0 {
		return true
	}
	for _, p := range s.cfg.Patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("pattern %q: %w", p, err)
		}
	}
	return nil
}

// Ensure Service implements lifecycle.Service.
var _ lifecycle.Service = (*Service)(nil)
