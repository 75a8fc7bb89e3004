package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"circuitpy-sync/internal/filter"
	"circuitpy-sync/internal/logger"
	"circuitpy-sync/internal/watcher"
	"circuitpy-sync/pkg/models"
)

// ErrCopyFailed is the only failure a sync reports, whatever the cause.
var ErrCopyFailed = errors.New("copy failed")

// Syncer mirrors eligible files from the source directory onto the device.
// All copies happen on the goroutine that calls Run, one at a time.
type Syncer struct {
	config    *models.Config
	logger    *logger.Logger
	filter    *filter.Filter
	sourceDir string
	targetDir string
	events    chan models.SyncEvent
	watching  chan struct{}
}

func New(config *models.Config, logger *logger.Logger) *Syncer {
	sourceDir := absPath(config.SourceDir)

	return &Syncer{
		config:    config,
		logger:    logger,
		filter:    filter.New(sourceDir, config.ScriptName, config.Ignore),
		sourceDir: sourceDir,
		targetDir: absPath(config.TargetDir),
		watching:  make(chan struct{}),
	}
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Subscribe returns a channel carrying one event per copy attempt. It must be
// called before Run, which closes the channel on return. Sends block until the
// subscriber reads or the run's context is cancelled.
func (s *Syncer) Subscribe() <-chan models.SyncEvent {
	if s.events == nil {
		s.events = make(chan models.SyncEvent, 256)
	}
	return s.events
}

// Watching is closed once the change watcher is registered.
func (s *Syncer) Watching() <-chan struct{} {
	return s.watching
}

func (s *Syncer) SourceDir() string {
	return s.sourceDir
}

func (s *Syncer) TargetDir() string {
	return s.targetDir
}

// Start runs the syncer until SIGINT or SIGTERM.
func (s *Syncer) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := s.Run(ctx)

	s.logger.Info("Shutting down sync service...")
	return err
}

// Run performs the initial sync and then watches for changes until ctx is done.
func (s *Syncer) Run(ctx context.Context) error {
	defer s.closeEvents()

	if _, err := os.Stat(s.targetDir); err != nil {
		s.logger.Warn("Target directory %s is not available, is the device mounted? (%v)", s.targetDir, err)
	}

	s.InitialSync(ctx)
	if ctx.Err() != nil {
		return nil
	}

	return s.Watch(ctx)
}

// InitialSync copies every eligible file under the source directory once.
// Individual failures are logged and counted; the pass always runs to the end
// unless ctx is cancelled.
func (s *Syncer) InitialSync(ctx context.Context) (synced, failed int) {
	s.logger.Info("performing initial sync")

	err := filepath.WalkDir(s.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			if path == s.sourceDir {
				return err
			}
			s.logger.Warn("Failed to read %s: %v", path, err)
			return nil
		}

		if d.IsDir() {
			if path != s.sourceDir && s.filter.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !filter.RegularFile(path, d) || !s.filter.Eligible(path) {
			return nil
		}

		if event := s.SyncFile(ctx, path, models.PhaseInitial); event.Success {
			synced++
		} else {
			failed++
		}
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Info("Initial sync interrupted")
	default:
		s.logger.Error("Failed to walk source directory %s: %v", s.sourceDir, err)
	}

	s.logger.Info("initial sync finished (%d copied, %d failed)", synced, failed)
	return synced, failed
}

// Watch consumes change notifications for the source tree until ctx is done.
func (s *Syncer) Watch(ctx context.Context) error {
	fw, err := watcher.New(s.logger, s.filter.SkipDir)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.AddRecursive(s.sourceDir); err != nil {
		return fmt.Errorf("failed to watch source directory: %w", err)
	}

	s.logger.Info("watching %s for changes", s.sourceDir)
	s.logger.Info("press ctrl+c to stop")

	select {
	case <-s.watching:
	default:
		close(s.watching)
	}

	for path := range fw.Changes(ctx) {
		s.handleChange(ctx, path)
	}

	return nil
}

// handleChange syncs a notified path if it still names an eligible regular
// file. Deleted or renamed-away paths are dropped silently.
func (s *Syncer) handleChange(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		s.logger.Debug("Ignoring change to %s", path)
		return
	}

	if !s.filter.Eligible(path) {
		return
	}

	s.SyncFile(ctx, path, models.PhaseWatch)
}

// SyncFile copies one source file to its mirrored path under the target
// directory. Failures are logged and reported in the returned event only.
func (s *Syncer) SyncFile(ctx context.Context, path string, phase models.Phase) models.SyncEvent {
	event := models.SyncEvent{
		ID:           uuid.New().String(),
		Phase:        phase,
		RelativePath: path,
		Timestamp:    time.Now(),
	}

	task, err := models.NewSyncTask(s.sourceDir, s.targetDir, path)
	if err == nil {
		event.RelativePath = task.RelativePath
		event.Bytes, err = copyFile(task.SourcePath, task.TargetPath)
	} else {
		err = fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}

	if err != nil {
		event.Error = err.Error()
		s.logger.Error("error syncing: %s: %v", event.RelativePath, err)
	} else {
		event.Success = true
		s.logger.Info("synced: %s", event.RelativePath)
	}

	s.sendEvent(ctx, event)
	return event
}

// copyFile overwrites dst with the full contents of src, creating parent
// directories as needed. The source permission bits are applied to new files.
func copyFile(src, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("%w: failed to create target directory: %w", ErrCopyFailed, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to open source: %w", ErrCopyFailed, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to stat source: %w", ErrCopyFailed, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("%w: failed to open target: %w", ErrCopyFailed, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("%w: failed to write target: %w", ErrCopyFailed, err)
	}

	if err := out.Close(); err != nil {
		return n, fmt.Errorf("%w: failed to flush target: %w", ErrCopyFailed, err)
	}

	return n, nil
}

func (s *Syncer) sendEvent(ctx context.Context, event models.SyncEvent) {
	if s.events == nil {
		return
	}

	select {
	case s.events <- event:
	case <-ctx.Done():
		s.logger.Debug("Run cancelled, dropping event for %s", event.RelativePath)
	}
}

func (s *Syncer) closeEvents() {
	if s.events != nil {
		close(s.events)
	}
}
