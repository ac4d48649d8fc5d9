// Package watch reports changes to the files behind a set of documents.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/reqtrace/config"
	"github.com/c360studio/reqtrace/source/parser"
	"github.com/c360studio/reqtrace/trace"
)

const (
	// changeChannelBuffer is the size of the change channel.
	changeChannelBuffer = 16

	// DefaultDebounceDelay is used when no delay is configured.
	DefaultDebounceDelay = 500 * time.Millisecond
)

// excludedDirs are never descended into when watching a glob root.
var excludedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Change is one debounce window's worth of file changes.
type Change struct {
	// Paths are the changed files, sorted.
	Paths []string

	// At is when the window was flushed.
	At time.Time
}

// target is what one document contributes to the watch set.
type target struct {
	file string // plain path, absolute
	glob string // glob pattern, absolute
	root string // directory to watch
}

// Watcher watches the directories holding document files and emits a
// Change per debounce window in which some document file changed content.
type Watcher struct {
	targets  []target
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// Debouncing: collect changes before emitting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Hash-based change detection
	hashMu sync.RWMutex
	hashes map[string]string

	changes chan Change

	droppedEvents atomic.Int64
}

// New creates a watcher over the files of docs. A zero debounce uses
// DefaultDebounceDelay and a nil logger slog.Default().
func New(docs []*trace.Document, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounceDelay
	}

	targets, err := targetsOf(docs)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		targets:  targets,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		changes:  make(chan Change, changeChannelBuffer),
	}, nil
}

func targetsOf(docs []*trace.Document) ([]target, error) {
	var targets []target
	for _, doc := range docs {
		paths := doc.Files
		if len(paths) == 0 {
			paths = []string{doc.Path}
		}
		for _, p := range paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, fmt.Errorf("document %s: %w", doc.ID, err)
			}
			if strings.ContainsAny(abs, "*?[{") {
				targets = append(targets, target{glob: filepath.ToSlash(abs), root: config.GlobRoot(abs)})
			} else {
				targets = append(targets, target{file: abs, root: filepath.Dir(abs)})
			}
		}
	}
	return targets, nil
}

// Changes returns the channel of changes. It is closed when the watcher
// stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start records the current content of every document file and begins
// watching. Events are processed until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.prime()

	watched := make(map[string]bool)
	for _, t := range w.targets {
		if watched[t.root] {
			continue
		}
		watched[t.root] = true

		if t.glob != "" {
			if err := w.addWatchesRecursive(t.root); err != nil {
				return err
			}
			continue
		}
		if err := w.watcher.Add(t.root); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", t.root,
				"error", err)
			continue
		}
		w.logger.Debug("Watching directory", "path", t.root)
	}

	go w.processEvents(ctx)

	w.logger.Info("Document watcher started",
		"directories", len(watched),
		"debounce", w.debounce)

	return nil
}

// Stop stops the watcher.
// The changes channel is closed by processEvents when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// DroppedEvents returns the number of changes dropped because nobody
// consumed the previous ones.
func (w *Watcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

// prime hashes the files that currently back the targets, so that a write
// with identical content is not reported.
func (w *Watcher) prime() {
	for _, t := range w.targets {
		files := []string{t.file}
		if t.glob != "" {
			var err error
			files, err = config.ResolveFiles(filepath.FromSlash(t.glob), "")
			if err != nil {
				w.logger.Warn("Failed to resolve glob", "pattern", t.glob, "error", err)
				continue
			}
		}
		for _, f := range files {
			if content, err := os.ReadFile(f); err == nil {
				w.setHash(f, parser.ContentHash(content))
			}
		}
	}
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) getHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) dropHash(path string) bool {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	_, ok := w.hashes[path]
	delete(w.hashes, path)
	return ok
}

// relevant reports whether path backs one of the targets.
func (w *Watcher) relevant(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, t := range w.targets {
		if t.file != "" && t.file == path {
			return true
		}
		if t.glob != "" {
			if ok, _ := doublestar.Match(t.glob, slashed); ok {
				return true
			}
		}
	}
	return false
}

// recursive reports whether dir lies under a glob root.
func (w *Watcher) recursive(dir string) bool {
	for _, t := range w.targets {
		if t.glob == "" {
			continue
		}
		if rel, err := filepath.Rel(t.root, dir); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// addWatchesRecursive adds watches to root and every directory below it.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		base := d.Name()
		if path != root && (excludedDirs[base] || strings.HasPrefix(base, ".")) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent records a single fsnotify event.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.recursive(path) {
				w.handleNewDirectory(path)
			}
			return
		}
	}

	if !w.relevant(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Document change detected",
		"path", path,
		"op", event.Op.String())
}

// handleNewDirectory watches a directory created under a glob root.
func (w *Watcher) handleNewDirectory(path string) {
	base := filepath.Base(path)
	if excludedDirs[base] || strings.HasPrefix(base, ".") {
		return
	}
	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
	}
}

// flushPending turns the accumulated events into at most one Change.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for _, path := range slices.Sorted(maps.Keys(toProcess)) {
		content, err := os.ReadFile(path)
		if err != nil {
			// Removed, renamed away or unreadable: the next scan reports it.
			if w.dropHash(path) {
				changed = append(changed, path)
			}
			continue
		}

		newHash := parser.ContentHash(content)
		if oldHash, ok := w.getHash(path); ok && oldHash == newHash {
			continue
		}
		w.setHash(path, newHash)
		changed = append(changed, path)
	}

	if len(changed) == 0 {
		return
	}
	w.send(Change{Paths: changed, At: time.Now()})
}

func (w *Watcher) send(change Change) {
	select {
	case w.changes <- change:
		w.logger.Debug("Sent change", "paths", len(change.Paths))
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Change channel full, dropping change",
			"paths", len(change.Paths),
			"total_dropped", dropped)
	}
}
