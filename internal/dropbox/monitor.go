package dropbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Source is the remote file feed the monitor consumes. *Client satisfies it;
// tests substitute fakes.
type Source interface {
	GetNew(ctx context.Context, since time.Time) ([]FileEntry, error)
	Download(ctx context.Context, remotePath, localPath string) error
	LongPoll(ctx context.Context) (bool, error)
}

// Callback handles one downloaded file. The local copy is deleted after the
// callback returns, whatever the outcome.
type Callback func(entry FileEntry, localPath string) error

// Monitor polls the remote folder on an interval and hands each new file to
// the callback via a temporary local copy. The loop survives callback
// failures and panics alike; it only stops on Stop or context cancellation.
type Monitor struct {
	source   Source
	callback Callback
	interval time.Duration
	tempDir  string
	longPoll bool
	logger   *slog.Logger

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	lastCheck time.Time
	onCheck   func(time.Time)
}

// SetOnCheck registers a hook invoked after each completed fetch iteration.
// Must be called before Start.
func (m *Monitor) SetOnCheck(fn func(time.Time)) {
	m.mu.Lock()
	m.onCheck = fn
	m.mu.Unlock()
}

func NewMonitor(source Source, callback Callback, interval time.Duration, tempDir string, longPoll bool, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		source:   source,
		callback: callback,
		interval: interval,
		tempDir:  tempDir,
		longPoll: longPoll,
		logger:   logger,
	}
}

// Start launches the polling loop. Calling Start on a running monitor is a
// no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.logger.Debug("dropbox.monitor.already_running")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})

	m.logger.Info("dropbox.monitor.start", "interval", m.interval, "long_poll", m.longPoll)
	go m.loop(loopCtx)
}

// Stop cancels the loop and waits for it to drain. Safe to call when the
// monitor is not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	m.logger.Info("dropbox.monitor.stopped")
}

// LastCheck reports when the loop last finished a fetch iteration.
func (m *Monitor) LastCheck() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCheck
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)
	for {
		m.iterate(ctx)
		if ctx.Err() != nil {
			return
		}
		if !m.wait(ctx) {
			return
		}
	}
}

// iterate runs one fetch-and-process pass. Every failure path logs and
// returns; nothing here may terminate the loop.
func (m *Monitor) iterate(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("dropbox.monitor.panic", "panic", r)
		}
	}()

	m.mu.Lock()
	since := m.lastCheck
	m.mu.Unlock()

	entries, err := m.source.GetNew(ctx, since)
	checked := time.Now()
	if err != nil {
		m.logger.Warn("dropbox.monitor.fetch_failed", "error", err)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		m.processOne(ctx, entry)
	}

	m.mu.Lock()
	m.lastCheck = checked
	hook := m.onCheck
	m.mu.Unlock()
	if hook != nil {
		hook(checked)
	}
}

// processOne downloads a file, invokes the callback, and removes the local
// copy no matter how the callback ends.
func (m *Monitor) processOne(ctx context.Context, entry FileEntry) {
	localPath := filepath.Join(m.tempDir, uuid.New().String()+"_"+entry.Name)

	if err := m.source.Download(ctx, entry.Path, localPath); err != nil {
		m.logger.Warn("dropbox.monitor.download_failed", "path", entry.Path, "error", err)
		return
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("dropbox.monitor.temp_cleanup_failed", "path", localPath, "error", err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("dropbox.monitor.callback_panic", "name", entry.Name, "panic", r)
		}
	}()

	if err := m.callback(entry, localPath); err != nil {
		m.logger.Warn("dropbox.monitor.callback_failed", "name", entry.Name, "error", err)
		return
	}
	m.logger.Info("dropbox.monitor.processed", "name", entry.Name)
}

// wait blocks until the next iteration is due. Long-poll mode wakes early on
// a change notification; a long-poll error falls back to the plain sleep so
// persistent remote failures never busy-loop.
func (m *Monitor) wait(ctx context.Context) bool {
	if m.longPoll {
		changed, err := m.source.LongPoll(ctx)
		if err != nil {
			m.logger.Warn("dropbox.monitor.longpoll_failed", "error", err)
		} else if changed {
			return ctx.Err() == nil
		}
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(m.interval):
		return true
	}
}
