package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

// ErrNotFound is returned when a session_id has no matching row.
var ErrNotFound = errors.New("session not found")

// ErrNotPending is returned when a confirmation is attempted against a
// session that is no longer PENDING (§3.2: "A confirmation request for a
// non-existent or non-PENDING session fails with a distinguished error
// kind").
var ErrNotPending = errors.New("session is not pending")

// Store is the durable session store (§3.2, §6.3): a single Postgres
// table supporting insert-returning-id, lookup by id, and conditional
// status transitions. Grounded on the teacher's Manager (pkg/session's
// original in-memory map) for its method names and shape, reimplemented
// over pgxpool per the package doc's REDESIGN note.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts a new PENDING session with the given pending-action
// snapshot, normalising it first so every value is JSON-native (§4.8:
// "This normalisation is mandatory; without it, the database insert will
// fail and session_id will be null").
func (s *Store) Create(ctx context.Context, userID string, pendingAction map[string]any) (*Session, error) {
	normalized, ok := state.Normalize(pendingAction).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("create session: pending_action did not normalise to an object")
	}

	now := time.Now().UTC()
	sess := &Session{
		SessionID:     uuid.New(),
		UserID:        userID,
		Status:        StatusPending,
		PendingAction: normalized,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(DefaultTTL),
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO sessions (session_id, user_id, status, pending_action, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING session_id`,
		sess.SessionID, sess.UserID, string(sess.Status), normalized, sess.CreatedAt, sess.UpdatedAt, sess.ExpiresAt,
	).Scan(&sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("create session: insert: %w", err)
	}
	return sess, nil
}

// Get retrieves a session by id.
func (s *Store) Get(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	var sess Session
	var status string
	var userResponse, executionResult *map[string]any
	err := s.pool.QueryRow(ctx, `
		SELECT session_id, user_id, status, pending_action, user_response, execution_result, created_at, updated_at, expires_at
		FROM sessions WHERE session_id = $1`, sessionID,
	).Scan(&sess.SessionID, &sess.UserID, &status, &sess.PendingAction, &userResponse, &executionResult, &sess.CreatedAt, &sess.UpdatedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.Status = Status(status)
	if userResponse != nil {
		sess.UserResponse = *userResponse
	}
	if executionResult != nil {
		sess.ExecutionResult = *executionResult
	}
	return &sess, nil
}

// transition applies a conditional status update: only a row still in
// fromStatus is modified. The conditional UPDATE's row count is the sole
// source of truth for whether this call caused the transition — 0 rows
// affected always means this call made no progress, whether because the
// row had already left fromStatus (a concurrent call won the race, or a
// prior call already advanced it) or the row does not exist. Returns
// ErrNotPending in that case; a caller that wants "someone already made
// this transition happen" treated as success rather than an error should
// call transitionAllowingNoop instead (§3.2's idempotent-transition
// contract), not inspect current.Status itself — after a lost race,
// current.Status already reflects the winner's target status, not
// fromStatus, so comparing against fromStatus here would miss the race.
func (s *Store) transition(ctx context.Context, sessionID uuid.UUID, fromStatus, toStatus Status, userResponse, executionResult map[string]any) (*Session, error) {
	normalizedResponse := normalizeOptional(userResponse)
	normalizedResult := normalizeOptional(executionResult)

	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET status = $1, user_response = COALESCE($2, user_response), execution_result = COALESCE($3, execution_result), updated_at = now()
		WHERE session_id = $4 AND status = $5`,
		string(toStatus), normalizedResponse, normalizedResult, sessionID, string(fromStatus),
	)
	if err != nil {
		return nil, fmt.Errorf("transition session: %w", err)
	}

	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return current, ErrNotPending
	}
	return current, nil
}

// SavePendingAction overwrites a still-PENDING session's pending_action
// snapshot in place, without touching status. Used by the wizard engine's
// multi-turn persistence (§4.9): every turn that leaves wizard_active true
// re-saves wizard_type/wizard_step/wizard_data so the next request can
// reload it into a fresh runtime invocation and resume from the same step.
func (s *Store) SavePendingAction(ctx context.Context, sessionID uuid.UUID, pendingAction map[string]any) (*Session, error) {
	normalized, ok := state.Normalize(pendingAction).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("save pending action: pending_action did not normalise to an object")
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET pending_action = $1, updated_at = now()
		WHERE session_id = $2 AND status = $3`,
		normalized, sessionID, string(StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("save pending action: update: %w", err)
	}

	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return current, ErrNotPending
	}
	return current, nil
}

// CompleteWizard transitions a PENDING wizard session directly to DONE,
// storing the executor's result. Wizards have no separate confirmation
// step (collecting every step's answer is itself the confirmation), so
// this skips the CONFIRMED intermediate state that risky-action sessions
// pass through via Confirm then Complete.
func (s *Store) CompleteWizard(ctx context.Context, sessionID uuid.UUID, executionResult map[string]any) (*Session, error) {
	return s.transitionAllowingNoop(ctx, sessionID, StatusPending, StatusDone, nil, executionResult)
}

// CancelWizard transitions a PENDING wizard session to CANCELLED, mirroring
// Cancel's idempotence contract for the wizard's own cancellation keyword
// path (WizardEngine) rather than the confirm endpoint's.
func (s *Store) CancelWizard(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	return s.transitionAllowingNoop(ctx, sessionID, StatusPending, StatusCancelled, nil, nil)
}

func normalizeOptional(m map[string]any) any {
	if m == nil {
		return nil
	}
	return state.Normalize(m)
}

// Confirm transitions a PENDING session to CONFIRMED. Deliberately strict,
// not idempotent: the confirm endpoint needs this status transition itself
// to be the serialization point for two concurrent confirm requests (§5).
// Only one concurrent caller's conditional UPDATE can match, so the other
// gets ErrNotPending back and must report the stored settled outcome
// instead of proceeding to execute the action a second time.
func (s *Store) Confirm(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	return s.transition(ctx, sessionID, StatusPending, StatusConfirmed, nil, nil)
}

// Complete transitions a CONFIRMED session to DONE, storing the
// executor's result.
func (s *Store) Complete(ctx context.Context, sessionID uuid.UUID, executionResult map[string]any) (*Session, error) {
	return s.transitionAllowingNoop(ctx, sessionID, StatusConfirmed, StatusDone, nil, executionResult)
}

// Cancel transitions a PENDING session to CANCELLED, recording the
// user's decision. Idempotent per §4.11: "repeating the call on a
// non-PENDING session returns the prior outcome unchanged, never
// re-executing the mutation."
func (s *Store) Cancel(ctx context.Context, sessionID uuid.UUID, userResponse map[string]any) (*Session, error) {
	return s.transitionAllowingNoop(ctx, sessionID, StatusPending, StatusCancelled, userResponse, nil)
}

// transitionAllowingNoop behaves like transition but treats "already past
// fromStatus" as success rather than ErrNotPending, returning the
// session's actual current state — callers that need to distinguish "I
// made this transition happen" from "someone already did" should call
// transition directly.
func (s *Store) transitionAllowingNoop(ctx context.Context, sessionID uuid.UUID, fromStatus, toStatus Status, userResponse, executionResult map[string]any) (*Session, error) {
	sess, err := s.transition(ctx, sessionID, fromStatus, toStatus, userResponse, executionResult)
	if errors.Is(err, ErrNotPending) {
		return sess, nil
	}
	return sess, err
}
