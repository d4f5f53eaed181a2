// Package watch keeps scene manifests in sync with a directory tree.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	serr "scenefuse/internal/errors"
	"scenefuse/internal/log"

	"github.com/fsnotify/fsnotify"
)

// FileModification represents a file event detected by the watcher
type FileModification struct {
	Path      string
	Info      os.FileInfo // nil for removed or renamed paths
	Timestamp time.Time
	Op        fsnotify.Op
}

// Watcher monitors directory trees for file changes using fsnotify.
// Directories created below a watched tree are watched as well.
type Watcher struct {
	// Directories being watched
	directories []string

	// Channel to receive file modifications
	fileModChan chan FileModification

	// Channel to signal stop
	stopChan chan struct{}

	// Closed when the event loop has returned
	doneChan chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state and the directories list
	mutex sync.RWMutex

	// Whether the watcher is running
	running bool

	// Set once the fsnotify watcher has been closed
	closed bool
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		directories: []string{},
		fileModChan: make(chan FileModification, 64),
		stopChan:    make(chan struct{}),
		fsWatcher:   fsWatcher,
	}, nil
}

// AddDirectory adds a single directory to watch using fsnotify
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return serr.NewFileError("directory not found", dir, serr.FileNotFound, err)
		}
		return serr.NewFileError("error accessing directory", dir, serr.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return serr.NewFileError("path is not a directory", dir, serr.InvalidPath, nil)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mutex.Lock()
	found := false
	for _, existingDir := range w.directories {
		if existingDir == dir {
			found = true
			break
		}
	}
	if !found {
		w.directories = append(w.directories, dir)
	}
	w.mutex.Unlock()
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// AddTree watches root and every directory below it.
func (w *Watcher) AddTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.AddDirectory(path)
	})
}

// FileChannel returns the channel that delivers file modification events
func (w *Watcher) FileChannel() <-chan FileModification {
	return w.fileModChan
}

// Start begins the file watching process using fsnotify
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	if w.closed || w.doneChan != nil {
		w.mutex.Unlock()
		return fmt.Errorf("watcher cannot be restarted")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})
	stop, done := w.stopChan, w.doneChan
	w.mutex.Unlock()

	go func() {
		defer close(done)
		w.loop(stop)
	}()

	log.Debug("Watcher started.")
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event, stop)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-stop:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event, stop <-chan struct{}) {
	mod := FileModification{
		Path:      event.Name,
		Timestamp: time.Now(),
		Op:        event.Op,
	}

	switch {
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Deleted again before we got here.
			if !os.IsNotExist(err) {
				log.LogWithFields(log.F("file", event.Name), log.F("error", err)).Error("Error stating file")
			}
			return
		}
		if info.IsDir() {
			if !event.Op.Has(fsnotify.Create) {
				return
			}
			if err := w.AddTree(event.Name); err != nil {
				log.LogWithError(err).With(log.F("directory", event.Name)).Warn("Failed to watch new directory")
			}
		}
		mod.Info = info

	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		w.forget(event.Name)

	default:
		return
	}

	select {
	case w.fileModChan <- mod:
	case <-stop:
	default:
		log.LogWithFields(log.F("file", event.Name)).Warn("Event channel is full, dropped event")
	}
}

// forget drops dir from the directory list; fsnotify removes the watch itself.
func (w *Watcher) forget(dir string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	for i, existing := range w.directories {
		if existing == dir {
			w.directories = append(w.directories[:i], w.directories[i+1:]...)
			return
		}
	}
}

// Stop halts the file watching process and closes the event channel once
// the event loop has returned. A stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if !w.running {
		w.mutex.Unlock()
		return
	}
	w.running = false
	w.closed = true
	close(w.stopChan)
	done := w.doneChan
	w.mutex.Unlock()

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	<-done
	close(w.fileModChan)

	log.Debug("Watcher stopped.")
}

// Close releases the fsnotify watcher. A running watcher is stopped first.
// Closing twice is a no-op.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		w.Stop()
		return nil
	}
	if w.closed {
		w.mutex.Unlock()
		return nil
	}
	w.closed = true
	w.mutex.Unlock()

	close(w.fileModChan)
	return w.fsWatcher.Close()
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the list of directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
