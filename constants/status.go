package constants

// SessionStatus is the canonical status for rows in the sessions history table.
type SessionStatus string

// Stable values (store these exact strings in the DB).
const (
	SessionStatusQueued    SessionStatus = "QUEUED"    // accepted, waiting for the worker
	SessionStatusRunning   SessionStatus = "RUNNING"   // in progress
	SessionStatusProcessed SessionStatus = "PROCESSED" // note generated and stored
	SessionStatusFailed    SessionStatus = "FAILED"    // terminal failure
)
