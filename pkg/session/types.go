// Package session implements the durable session store (§3.2): a
// persistent record keyed by an unguessable identifier, whose lifecycle
// forms a strict state machine (PENDING -> (CONFIRMED -> DONE) |
// CANCELLED | EXPIRED). Every transition is backed by a conditional
// UPDATE so it is idempotent under retry.
//
// Grounded on the teacher's pkg/session/types.go for the Status enum and
// field-naming conventions, but reimplemented over pgx/pgxpool rather
// than an in-process map: the teacher's Session lived only in memory for
// the duration of one alert's processing, whereas a pending confirmation
// here must survive across HTTP requests (and process restarts) for up
// to an hour, so an in-memory store is never an acceptable substitute —
// see DESIGN.md.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// Session is a durable record of a pending (or resolved) confirmation.
type Session struct {
	SessionID       uuid.UUID
	UserID          string
	Status          Status
	PendingAction   map[string]any
	UserResponse    map[string]any
	ExecutionResult map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       time.Time
}

// DefaultTTL is the lifetime of a freshly created session (§3.2:
// "expires_at (default created_at + 1h)").
const DefaultTTL = time.Hour
