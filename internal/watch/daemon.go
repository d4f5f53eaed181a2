package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"scenefuse/internal/afi"
	"scenefuse/internal/config"
	"scenefuse/internal/log"
	"scenefuse/internal/scene"
	"scenefuse/pkg/types"
)

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running          bool      // Whether the daemon is currently active
	Root             string    // Scan root
	Output           string    // Manifest directory
	WatchDirectories []string  // Directories being watched
	LastActivity     time.Time // Time of last file activity
	Syncs            int       // Completed regroup and export runs
	LastSync         SyncReport
}

// SyncReport describes one regroup and export run.
type SyncReport struct {
	Time     time.Time
	Scenes   int
	Files    int
	Exported []types.ExportResult
	Err      error
}

// Daemon regroups a directory tree and rewrites its scene manifests after
// file activity has been quiet for the configured interval.
type Daemon struct {
	root     string
	output   string
	interval time.Duration

	grouper *scene.Grouper
	watcher *Watcher

	// Protects the fields below
	mutex        sync.RWMutex
	timer        *time.Timer
	lastActivity time.Time
	syncs        int
	lastSync     SyncReport
	callback     func(SyncReport)
	running      bool

	// Serializes sync runs
	syncMu sync.Mutex
}

// NewDaemon creates a daemon for root. Manifests go to cfg.Output, or to
// root when no output directory is configured.
func NewDaemon(cfg *config.Config, g *scene.Grouper, root string) (*Daemon, error) {
	watcher, err := New()
	if err != nil {
		return nil, err
	}

	output := cfg.Output
	if output == "" {
		output = root
	}

	return &Daemon{
		root:     root,
		output:   output,
		interval: time.Duration(cfg.WatchMode.Interval) * time.Second,
		grouper:  g,
		watcher:  watcher,
	}, nil
}

// SetInterval overrides the quiet period before a sync.
func (d *Daemon) SetInterval(interval time.Duration) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.interval = interval
}

// SetCallback sets a function to be called after every sync
func (d *Daemon) SetCallback(cb func(SyncReport)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = cb
}

// Start watches the tree, runs an initial sync and begins processing
// events.
func (d *Daemon) Start() error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.mutex.Unlock()

	if err := d.watcher.AddTree(d.root); err != nil {
		d.setStopped()
		d.closeWatcher()
		return fmt.Errorf("error adding watch directory %s: %w", d.root, err)
	}
	if err := d.watcher.Start(); err != nil {
		d.setStopped()
		d.closeWatcher()
		return fmt.Errorf("error starting watcher: %w", err)
	}

	d.Sync(context.Background())

	go d.processEvents()

	log.LogWithFields(log.F("root", d.root), log.F("output", d.output),
		log.F("directories", len(d.watcher.GetDirectories()))).Info("Watching for scene changes")
	return nil
}

func (d *Daemon) setStopped() {
	d.mutex.Lock()
	d.running = false
	d.mutex.Unlock()
}

// Stop halts the daemon process
func (d *Daemon) Stop() {
	d.mutex.Lock()
	if !d.running {
		d.mutex.Unlock()
		d.closeWatcher()
		return
	}
	d.running = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mutex.Unlock()

	d.watcher.Stop()
}

func (d *Daemon) closeWatcher() {
	if err := d.watcher.Close(); err != nil {
		log.LogWithError(err).Warn("Error closing watcher")
	}
}

// Run starts the daemon and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return DaemonStatus{
		Running:          d.running,
		Root:             d.root,
		Output:           d.output,
		WatchDirectories: d.watcher.GetDirectories(),
		LastActivity:     d.lastActivity,
		Syncs:            d.syncs,
		LastSync:         d.lastSync,
	}
}

// processEvents debounces file modification events from the watcher
func (d *Daemon) processEvents() {
	for fileEvent := range d.watcher.FileChannel() {
		if d.ignored(fileEvent.Path) {
			continue
		}

		d.mutex.Lock()
		d.lastActivity = fileEvent.Timestamp
		if d.running {
			if d.timer == nil {
				d.timer = time.AfterFunc(d.interval, func() { d.Sync(context.Background()) })
			} else {
				d.timer.Reset(d.interval)
			}
		}
		d.mutex.Unlock()
	}
}

// ignored reports whether path is one of our own manifest writes.
func (d *Daemon) ignored(path string) bool {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(d.output) {
		return false
	}
	base := filepath.Base(path)
	return filepath.Ext(base) == afi.Ext || strings.HasPrefix(base, ".")
}

// Sync regroups the tree and rewrites every manifest.
func (d *Daemon) Sync(ctx context.Context) SyncReport {
	d.syncMu.Lock()
	defer d.syncMu.Unlock()

	report := SyncReport{Time: time.Now()}
	grouping, err := d.grouper.ScanDirectory(d.root)
	if err != nil {
		report.Err = err
	} else {
		report.Scenes = len(grouping)
		report.Files = grouping.FileCount()
		report.Exported, report.Err = afi.Export(ctx, d.output, grouping)
	}

	if report.Err != nil {
		log.LogWithError(report.Err).With(log.F("root", d.root)).Error("Scene sync failed")
	} else {
		log.LogWithFields(log.F("scenes", report.Scenes), log.F("files", report.Files),
			log.F("output", d.output)).Info("Scene manifests updated")
	}

	d.mutex.Lock()
	d.syncs++
	d.lastSync = report
	cb := d.callback
	d.mutex.Unlock()

	if cb != nil {
		cb(report)
	}
	return report
}
