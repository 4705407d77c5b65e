package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/spokenlab/corpuskit/internal/api"
	"github.com/spokenlab/corpuskit/internal/metrics"
)

// Watcher monitors the corpus directory tree and keeps the loaded corpus in
// step with it: added or edited transcript/audio pairs are re-parsed and
// swapped in, deleted ones are removed.
type Watcher struct {
	svc      *Service
	scanner  *Scanner
	root     string
	debounce time.Duration
	log      zerolog.Logger

	watcher *fsnotify.Watcher

	// Debounce: coalesce rapid Create+Write events on the same file.
	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer

	eventsSeen   atomic.Int64
	filesUpdated atomic.Int64
	filesRemoved atomic.Int64
	status       atomic.Value // string: "starting", "watching", "stopped"
}

func newWatcher(svc *Service, scanner *Scanner, root string, debounce time.Duration) *Watcher {
	w := &Watcher{
		svc:            svc,
		scanner:        scanner,
		root:           root,
		debounce:       debounce,
		log:            svc.opts.Log.With().Str("component", "watcher").Logger(),
		debounceTimers: make(map[string]*time.Timer),
	}
	if w.debounce <= 0 {
		w.debounce = 500 * time.Millisecond
	}
	w.status.Store("starting")
	return w
}

// Start initializes the fsnotify watcher, registers every directory under the
// corpus root, and begins the event loop.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	dirCount := 0
	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("error walking directory")
			return nil // continue walking
		}
		if d.IsDir() {
			if addErr := fsw.Add(path); addErr != nil {
				w.log.Warn().Err(addErr).Str("path", path).Msg("failed to watch directory")
			} else {
				dirCount++
			}
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return err
	}

	w.log.Info().
		Int("directories", dirCount).
		Str("watch_dir", w.root).
		Msg("corpus watcher initialized")

	w.status.Store("watching")
	go w.watchLoop()
	return nil
}

// Stop closes the fsnotify watcher and drops pending debounce timers so no
// reload fires after shutdown.
func (w *Watcher) Stop() {
	w.status.Store("stopped")
	if w.watcher != nil {
		w.watcher.Close()
	}

	w.debounceMu.Lock()
	for path, t := range w.debounceTimers {
		t.Stop()
		delete(w.debounceTimers, path)
	}
	w.debounceMu.Unlock()

	w.log.Info().
		Int64("events_seen", w.eventsSeen.Load()).
		Int64("files_updated", w.filesUpdated.Load()).
		Int64("files_removed", w.filesRemoved.Load()).
		Msg("corpus watcher stopped")
}

// Status returns the current watcher status for the health endpoint.
func (w *Watcher) Status() *api.WatcherStatusData {
	s, _ := w.status.Load().(string)
	return &api.WatcherStatusData{
		Status:       s,
		WatchDir:     w.root,
		EventsSeen:   w.eventsSeen.Load(),
		FilesUpdated: w.filesUpdated.Load(),
		FilesRemoved: w.filesRemoved.Load(),
	}
}

// watchLoop is the main event loop that processes fsnotify events.
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.svc.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.eventsSeen.Add(1)
			metrics.WatcherEventsTotal.WithLabelValues(opLabel(event.Op)).Inc()

			// New directory: add it to the watch set so we catch files in
			// newly created speaker directories.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						w.log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
					} else {
						w.log.Debug().Str("path", event.Name).Msg("watching new directory")
					}
					continue
				}
			}

			if !w.scanner.Relevant(event.Name) {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

// schedule debounces per-path processing. Editors and copies emit bursts of
// Create+Write; the timer fires once the file has settled.
func (w *Watcher) schedule(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if t, ok := w.debounceTimers[path]; ok {
		t.Reset(w.debounce)
		return
	}

	w.debounceTimers[path] = time.AfterFunc(w.debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		w.sync(path)
	})
}

// sync re-resolves the pair for path's identifier inside its directory and
// applies the outcome: a surviving pair is re-parsed and swapped into the
// corpus, a vanished one is removed. Pairing is re-resolved from the whole
// directory because one event can change the winner, e.g. deleting a
// .TextGrid uncovers the .lab beneath it.
func (w *Watcher) sync(path string) {
	name := stemOf(path)
	if name == "" {
		return
	}

	jobs, err := w.scanner.ScanDir(filepath.Dir(path))
	if err != nil {
		// Directory itself is gone, so the identifier cannot survive.
		if w.svc.removeFile(name) {
			w.filesRemoved.Add(1)
		}
		return
	}

	for _, job := range jobs {
		if job.Name != name {
			continue
		}
		if err := w.svc.applyJob(job); err != nil {
			w.log.Warn().Err(err).Str("file", name).Msg("failed to reload changed file")
			return
		}
		w.filesUpdated.Add(1)
		return
	}

	if w.svc.removeFile(name) {
		w.filesRemoved.Add(1)
	}
}

// opLabel maps an fsnotify op to a bounded metric label.
func opLabel(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	default:
		return "other"
	}
}

// stemOf returns a path's base name with the extension removed.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
