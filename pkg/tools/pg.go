package tools

import (
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PG implements Tooling against a pgx connection pool. Grounded on the
// teacher's services.SessionService (pkg/services/session_service.go): a
// thin struct wrapping the connection handle, one exported method per
// operation, each mutating method opening its own transaction and
// deferring rollback before an explicit commit.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG constructs a PG-backed Tooling implementation.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// canonicalEnum normalises enum-valued input to lower-case before
// insertion, per §4.2's "normalises enum-valued inputs to their canonical
// casing" invariant. Trip/booking status enums are upper-case by
// convention (SCHEDULED, CONFIRMED, ...); everything else in this schema
// is lower-case (vehicle/driver status, direction).
func canonicalEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
