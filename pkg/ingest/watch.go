package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Enqueuer accepts ingestion jobs.
type Enqueuer interface {
	Enqueue(job Job) bool
}

// Remover drops a document's chunks from the index.
type Remover interface {
	DeleteDocument(ctx context.Context, documentID string) error
}

// WatchConfig configures a Watcher.
type WatchConfig struct {
	// Root is the directory to watch recursively.
	Root string

	// Template supplies TopicID, CourseID and chunking options for every
	// document loaded from Root.
	Template Document

	Queue Enqueuer

	// Remover, when set, removes chunks for deleted files.
	Remover Remover

	// Debounce is how long a file must be quiet before it is re-ingested.
	Debounce time.Duration

	Logger *zap.Logger
}

// Watcher re-ingests curriculum files under a directory as they change.
type Watcher struct {
	config  *WatchConfig
	watcher *fsnotify.Watcher
	pending map[string]time.Time
	logger  *zap.Logger
}

// NewWatcher creates a Watcher and registers every directory under Root.
func NewWatcher(c *WatchConfig) (*Watcher, error) {
	if c.Queue == nil {
		return nil, errors.New("watcher requires a queue")
	}
	info, err := os.Stat(c.Root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", c.Root)
	}
	if c.Debounce <= 0 {
		c.Debounce = defaultDebounce
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		config:  c,
		watcher: fw,
		pending: make(map[string]time.Time),
		logger:  c.Logger,
	}
	if err := w.addTree(c.Root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	ticker := time.NewTicker(w.config.Debounce / 2)
	defer ticker.Stop()

	w.logger.Info("watching curriculum directory", zap.String("root", w.config.Root))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watching new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
		if IsSupported(event.Name) {
			w.pending[event.Name] = time.Now()
		}

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if !IsSupported(event.Name) {
			return
		}
		delete(w.pending, event.Name)
		if w.config.Remover == nil {
			return
		}
		id := DocumentID(w.config.Root, event.Name)
		if err := w.config.Remover.DeleteDocument(ctx, id); err != nil {
			w.logger.Warn("removing deleted document", zap.String("document_id", id), zap.Error(err))
			return
		}
		w.logger.Info("removed document", zap.String("document_id", id))
	}
}

// flush enqueues files that have been quiet for the debounce window.
func (w *Watcher) flush(now time.Time) {
	for path, last := range w.pending {
		if now.Sub(last) < w.config.Debounce {
			continue
		}
		delete(w.pending, path)

		doc, err := LoadFile(w.config.Root, path, w.config.Template)
		if err != nil {
			w.logger.Warn("loading changed file", zap.String("path", path), zap.Error(err))
			continue
		}
		if !w.config.Queue.Enqueue(Job{Document: doc}) {
			w.logger.Warn("dropping changed file, queue full", zap.String("path", path))
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.config.Root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
