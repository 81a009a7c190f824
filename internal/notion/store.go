package notion

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/damilare-ak/clinicnote/internal/common"
	"github.com/damilare-ak/clinicnote/internal/format"
)

// DefaultChunkLimit is the remote store's per-call rich-text size limit.
const DefaultChunkLimit = 2000

var reISODate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// EntryRef identifies a persisted session entry.
type EntryRef struct {
	PageID     string
	DatabaseID string
	Title      string
}

// Store is the document store adapter. It owns the client-name to database-id
// cache and serializes find-or-create per client name so two files for the
// same new client cannot race a duplicate database into existence.
type Store struct {
	api    API
	limit  int
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	cache   map[string]string
	perName map[string]*sync.Mutex
}

func NewStore(api API, chunkLimit int, logger *slog.Logger) *Store {
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:     api,
		limit:   chunkLimit,
		logger:  logger,
		now:     time.Now,
		cache:   make(map[string]string),
		perName: make(map[string]*sync.Mutex),
	}
}

// CollectionTitle derives the display title of a client's database.
func CollectionTitle(clientName string) string {
	return clientName + " Sessions"
}

// AddEntry persists one formatted note under the client's database,
// creating the database only when the find step returns nothing. The first
// chunk of blocks rides on the page create; remaining chunks are appended in
// order. Append failures are logged, not surfaced, since the entry already
// exists.
func (s *Store) AddEntry(ctx context.Context, clientName, filename string, note format.Note) (EntryRef, error) {
	if clientName == "" {
		clientName = "Unknown Client"
	}

	lock := s.lockFor(clientName)
	lock.Lock()
	dbID, err := s.findOrCreateCollection(ctx, clientName)
	lock.Unlock()
	if err != nil {
		return EntryRef{}, err
	}

	batches := chunkBlocks(splitOversized(note.Blocks, s.limit), s.limit)
	if len(batches) == 0 {
		batches = [][]format.Block{nil}
	}

	entryDate := s.entryDate(filename)
	pageID, err := s.api.CreatePage(ctx, dbID, note.Title, entryDate, filename, batches[0])
	if err != nil {
		s.logger.Error("notion.entry.create_failed", "client", clientName, "filename", filename, "error", err)
		return EntryRef{}, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	for i, batch := range batches[1:] {
		if err := s.api.AppendBlocks(ctx, pageID, batch); err != nil {
			s.logger.Warn("notion.entry.append_failed",
				"client", clientName, "page_id", pageID, "chunk", i+2, "error", err)
		}
	}

	s.logger.Info("notion.entry.ok",
		"client", clientName,
		"filename", filename,
		"page_id", pageID,
		"chunks", len(batches),
	)
	return EntryRef{PageID: pageID, DatabaseID: dbID, Title: note.Title}, nil
}

// FindCollection resolves a client's database id through the cache, falling
// back to a remote search on miss. Returns "" when no database exists.
func (s *Store) FindCollection(ctx context.Context, clientName string) (string, error) {
	s.mu.Lock()
	if id, ok := s.cache[clientName]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	id, err := s.api.SearchDatabase(ctx, CollectionTitle(clientName))
	if err != nil {
		return "", err
	}
	if id != "" {
		s.mu.Lock()
		s.cache[clientName] = id
		s.mu.Unlock()
	}
	return id, nil
}

// findOrCreateCollection runs under the per-client lock. The create path
// executes only when find comes back empty; both failing is the adapter's
// one hard failure.
func (s *Store) findOrCreateCollection(ctx context.Context, clientName string) (string, error) {
	id, findErr := s.FindCollection(ctx, clientName)
	if findErr != nil {
		s.logger.Warn("notion.collection.find_failed", "client", clientName, "error", findErr)
	}
	if id != "" {
		return id, nil
	}

	id, createErr := s.api.CreateDatabase(ctx, CollectionTitle(clientName))
	if createErr != nil {
		s.logger.Error("notion.collection.create_failed", "client", clientName, "error", createErr)
		return "", fmt.Errorf("%w: find (%v) and create (%v) both failed for %s",
			common.ErrStoreUnavailable, findErr, createErr, clientName)
	}

	s.mu.Lock()
	s.cache[clientName] = id
	s.mu.Unlock()
	s.logger.Info("notion.collection.created", "client", clientName, "database_id", id)
	return id, nil
}

func (s *Store) lockFor(clientName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.perName[clientName]
	if !ok {
		lock = &sync.Mutex{}
		s.perName[clientName] = lock
	}
	return lock
}

// entryDate prefers an ISO date embedded in the filename, else today.
func (s *Store) entryDate(filename string) time.Time {
	if m := reISODate.FindString(filename); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t
		}
	}
	return s.now()
}

// splitOversized breaks any block whose text exceeds the limit into several
// blocks of the same kind, preserving order.
func splitOversized(blocks []format.Block, limit int) []format.Block {
	out := make([]format.Block, 0, len(blocks))
	for _, b := range blocks {
		text := []rune(b.Text)
		if len(text) <= limit {
			out = append(out, b)
			continue
		}
		for start := 0; start < len(text); start += limit {
			end := start + limit
			if end > len(text) {
				end = len(text)
			}
			part := b
			part.Text = string(text[start:end])
			out = append(out, part)
		}
	}
	return out
}

// chunkBlocks groups blocks greedily into batches whose combined text stays
// within the limit. Every batch holds at least one block.
func chunkBlocks(blocks []format.Block, limit int) [][]format.Block {
	var batches [][]format.Block
	var current []format.Block
	size := 0
	for _, b := range blocks {
		n := len([]rune(b.Text))
		if len(current) > 0 && size+n > limit {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, b)
		size += n
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
