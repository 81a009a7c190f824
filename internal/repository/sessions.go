package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/damilare-ak/clinicnote/constants"
)

// SessionRecord is one row of processing history.
type SessionRecord struct {
	ID          string
	ClientName  string
	SessionDate string
	Filename    string
	ContentHash string
	Provider    string
	Status      constants.SessionStatus
	Error       string
	PageID      string
	CreatedAt   time.Time
}

// SessionRepo persists processing history and powers duplicate detection.
type SessionRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSessionRepo(db *sql.DB, logger *slog.Logger) *SessionRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRepo{db: db, logger: logger}
}

// HashContent fingerprints extracted transcript text for dedup.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// AlreadyProcessed reports whether a transcript with this content hash has
// already been processed successfully.
func (r *SessionRepo) AlreadyProcessed(ctx context.Context, contentHash string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE content_hash = ? AND status = ?`,
		contentHash, string(constants.SessionStatusProcessed),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query processed hash: %w", err)
	}
	return n > 0, nil
}

// Insert writes one history row. The ID is generated when absent.
func (r *SessionRepo) Insert(ctx context.Context, rec SessionRecord) (SessionRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions
		   (id, client_name, session_date, filename, content_hash, provider, status, error, page_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ClientName, rec.SessionDate, rec.Filename, rec.ContentHash,
		rec.Provider, string(rec.Status), rec.Error, rec.PageID, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("insert session: %w", err)
	}

	r.logger.Debug("repository.session_inserted",
		"id", rec.ID, "client", rec.ClientName, "status", rec.Status)
	return rec, nil
}

// Recent returns the newest rows, most recent first.
func (r *SessionRepo) Recent(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_name, session_date, filename, content_hash, provider, status, error, page_id, created_at
		   FROM sessions
		  ORDER BY created_at DESC, id
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var status string
		var created int64
		if err := rows.Scan(&rec.ID, &rec.ClientName, &rec.SessionDate, &rec.Filename,
			&rec.ContentHash, &rec.Provider, &status, &rec.Error, &rec.PageID, &created); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		rec.Status = constants.SessionStatus(status)
		rec.CreatedAt = time.Unix(created, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Counts returns the lifetime processed and failed totals.
func (r *SessionRepo) Counts(ctx context.Context) (processed, failed int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
		   COUNT(1) FILTER (WHERE status = ?),
		   COUNT(1) FILTER (WHERE status = ?)
		 FROM sessions`,
		string(constants.SessionStatusProcessed), string(constants.SessionStatusFailed),
	).Scan(&processed, &failed)
	if err != nil {
		return 0, 0, fmt.Errorf("query session counts: %w", err)
	}
	return processed, failed, nil
}

// All returns the full history oldest-first, for exports.
func (r *SessionRepo) All(ctx context.Context) ([]SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_name, session_date, filename, content_hash, provider, status, error, page_id, created_at
		   FROM sessions
		  ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query all sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var status string
		var created int64
		if err := rows.Scan(&rec.ID, &rec.ClientName, &rec.SessionDate, &rec.Filename,
			&rec.ContentHash, &rec.Provider, &status, &rec.Error, &rec.PageID, &created); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		rec.Status = constants.SessionStatus(status)
		rec.CreatedAt = time.Unix(created, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}
