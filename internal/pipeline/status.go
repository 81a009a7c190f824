package pipeline

import (
	"sync"
	"time"
)

// historyBound caps the recent success and failure lists.
const historyBound = 20

// HistoryItem is one entry in the bounded recent-history lists.
type HistoryItem struct {
	Filename   string    `json:"filename"`
	ClientName string    `json:"client_name"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}

// StatusView is a point-in-time copy of the pipeline's aggregate state.
type StatusView struct {
	IsRunning      bool          `json:"is_running"`
	LastCheckTime  *time.Time    `json:"last_check_time,omitempty"`
	ProcessedCount int           `json:"processed_count"`
	FailedCount    int           `json:"failed_count"`
	RecentSuccess  []HistoryItem `json:"recent_success"`
	RecentFailures []HistoryItem `json:"recent_failures"`
}

// Status tracks aggregate run state. Mutated only by the pipeline; callers
// read snapshots.
type Status struct {
	mu        sync.Mutex
	running   bool
	lastCheck time.Time
	processed int
	failed    int
	successes []HistoryItem
	failures  []HistoryItem
}

func NewStatus() *Status { return &Status{} }

func (s *Status) SetRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

func (s *Status) SetLastCheck(t time.Time) {
	s.mu.Lock()
	s.lastCheck = t
	s.mu.Unlock()
}

func (s *Status) RecordSuccess(filename, clientName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.successes = appendBounded(s.successes, HistoryItem{
		Filename:   filename,
		ClientName: clientName,
		At:         time.Now(),
	})
}

func (s *Status) RecordFailure(filename, clientName, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
	s.failures = appendBounded(s.failures, HistoryItem{
		Filename:   filename,
		ClientName: clientName,
		Reason:     reason,
		At:         time.Now(),
	})
}

// Snapshot copies the current state. History slices are cloned so callers
// can't mutate internal state.
func (s *Status) Snapshot() StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := StatusView{
		IsRunning:      s.running,
		ProcessedCount: s.processed,
		FailedCount:    s.failed,
		RecentSuccess:  append([]HistoryItem(nil), s.successes...),
		RecentFailures: append([]HistoryItem(nil), s.failures...),
	}
	if !s.lastCheck.IsZero() {
		t := s.lastCheck
		view.LastCheckTime = &t
	}
	return view
}

// appendBounded keeps the most recent historyBound items, newest first.
func appendBounded(items []HistoryItem, item HistoryItem) []HistoryItem {
	items = append([]HistoryItem{item}, items...)
	if len(items) > historyBound {
		items = items[:historyBound]
	}
	return items
}
