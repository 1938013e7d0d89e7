// Package jsonfile reads the pattern corpus from a JSON file and watches it
// for changes.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.CorpusSource  = (*Source)(nil)
	_ driven.CorpusWatcher = (*Source)(nil)
)

// DefaultDebounce coalesces the burst of events an editor produces on save.
const DefaultDebounce = 200 * time.Millisecond

// Source loads pattern records from a JSON array on disk.
type Source struct {
	path     string
	debounce time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// New creates a source for the JSON file at path.
func New(path string, opts ...Option) *Source {
	s := &Source{path: path, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the file path.
func (s *Source) Location() string {
	return s.path
}

// Load reads and decodes the corpus file. Any failure wraps domain.ErrCorpusInvalid.
func (s *Source) Load(ctx context.Context) ([]domain.PatternRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorpusInvalid, err)
	}
	defer f.Close()

	var records []domain.PatternRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrCorpusInvalid, filepath.Base(s.path), err)
	}
	return records, nil
}

// Watch calls onChange after the corpus file is written, created or replaced,
// once the events have been quiet for the debounce period. The directory is
// watched rather than the file so atomic renames are seen. Watch blocks until
// ctx is cancelled.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", s.path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug("Watching %s for changes", abs)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !relevant(ev.Op) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				logger.Info("Corpus file %s changed", abs)
				onChange()
			})
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("Corpus watcher overflow, some events were lost")
				continue
			}
			logger.Warn("Corpus watcher error: %v", err)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
