// Package audit writes the append-only audit trail every mutating tool
// operation produces (§3.3, §6.5). Grounded on the teacher's
// transactional-write style in services/session_service.go: every write
// happens inside the caller's transaction, never its own.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

// masker redacts PII-shaped substrings (phone numbers, national-id-shaped
// digit runs, emails) out of a mutation's JSON-serialised before/after
// blobs before they reach the audit ledger (§3.8). Set once at startup by
// SetMasker; nil means masking is not configured and records are written
// verbatim.
var (
	maskerMu sync.RWMutex
	masker   interface{ Mask(string) string }
)

// SetMasker installs m as the audit package's masking collaborator. Meant
// to be called once, during startup wiring, before any concurrent Write
// calls begin — the same one-time convention llmclient.ApplyOverrides
// uses for its own package-level state.
func SetMasker(m interface{ Mask(string) string }) {
	maskerMu.Lock()
	defer maskerMu.Unlock()
	masker = m
}

func maskJSON(raw []byte) []byte {
	maskerMu.RLock()
	m := masker
	maskerMu.RUnlock()
	if m == nil {
		return raw
	}
	return []byte(m.Mask(string(raw)))
}

// Write inserts exactly one audit record within tx. before/after are
// normalised (pkg/state.Normalize) before marshalling so they are always
// valid JSON regardless of the domain value types (dates, decimals) the
// caller passes in, then masked as plain text — the teacher's own code-masker ran regex over the full JSON string
// rather than walking struct fields, and that shape carries over here.
func Write(ctx context.Context, tx pgx.Tx, userID, action, entityType string, entityID int64, before, after any) error {
	beforeJSON, err := json.Marshal(state.Normalize(before))
	if err != nil {
		return fmt.Errorf("audit: marshal before: %w", err)
	}
	afterJSON, err := json.Marshal(state.Normalize(after))
	if err != nil {
		return fmt.Errorf("audit: marshal after: %w", err)
	}
	beforeJSON = maskJSON(beforeJSON)
	afterJSON = maskJSON(afterJSON)

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (user_id, action, entity_type, entity_id, before, after, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, action, entityType, entityID, beforeJSON, afterJSON, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// Record is one row of the append-only audit ledger, as read back by the
// audit query endpoint (§4, supplemented feature).
type Record struct {
	AuditID    int64          `json:"audit_id"`
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// ListByEntity returns every audit record for the given entity, most
// recent first. Reads never audit themselves (§6.5).
func ListByEntity(ctx context.Context, pool *pgxpool.Pool, entityType string, entityID int64) ([]Record, error) {
	rows, err := pool.Query(ctx, `
		SELECT audit_id, user_id, action, entity_type, entity_id, before, after, timestamp
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY timestamp DESC`,
		entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: list by entity: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var before, after *map[string]any
		if err := rows.Scan(&r.AuditID, &r.UserID, &r.Action, &r.EntityType, &r.EntityID, &before, &after, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		if before != nil {
			r.Before = *before
		}
		if after != nil {
			r.After = *after
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows: %w", err)
	}
	return records, nil
}
