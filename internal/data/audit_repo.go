package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/probeops/console/internal/data/pgxutil"
	"github.com/probeops/console/internal/ports"
)

// ErrAuditActionRequired is returned when an event carries no action.
var ErrAuditActionRequired = errors.New("audit action is required")

const defaultAuditLimit = 50

// AuditRepo persists auth lifecycle events in PostgreSQL.
type AuditRepo struct {
	DB *sql.DB
}

var _ ports.AuditTrail = (*AuditRepo)(nil)

// NewAuditRepo creates an AuditRepo over the shared connection pool.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db}
}

const auditColumns = `id, profile_id, user_id, username, action, detail, created_at`

// auditRow mirrors auth_audit_events for pgx row collection.
type auditRow struct {
	ID        int64     `db:"id"`
	ProfileID string    `db:"profile_id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Action    string    `db:"action"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

func (r auditRow) toEvent() ports.AuditEvent {
	return ports.AuditEvent{
		ID:        r.ID,
		ProfileID: r.ProfileID,
		UserID:    r.UserID,
		Username:  r.Username,
		Action:    ports.AuditAction(r.Action),
		Detail:    r.Detail,
		CreatedAt: r.CreatedAt,
	}
}

// Record inserts one event. The timestamp is assigned server-side unless the
// event already carries one.
func (r *AuditRepo) Record(ctx context.Context, event ports.AuditEvent) error {
	if event.Action == "" {
		return ErrAuditActionRequired
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO auth_audit_events (profile_id, user_id, username, action, detail, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, event.ProfileID, event.UserID, event.Username, string(event.Action), event.Detail, createdAt.UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("record audit event: %w", classifyPgError(err))
	}
	return nil
}

// Recent returns the newest events first. A non-positive limit falls back to
// the default page size.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]ports.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	var rowsOut []auditRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+auditColumns+` FROM auth_audit_events
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[auditRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", classifyPgError(err))
	}

	events := make([]ports.AuditEvent, len(rowsOut))
	for i, row := range rowsOut {
		events[i] = row.toEvent()
	}
	return events, nil
}

// RecentForProfile returns the newest events for one browser profile.
func (r *AuditRepo) RecentForProfile(ctx context.Context, profileID string, limit int) ([]ports.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	var rowsOut []auditRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+auditColumns+` FROM auth_audit_events
			WHERE profile_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`, profileID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[auditRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list audit events for profile: %w", classifyPgError(err))
	}

	events := make([]ports.AuditEvent, len(rowsOut))
	for i, row := range rowsOut {
		events[i] = row.toEvent()
	}
	return events, nil
}

// classifyPgError annotates common Postgres failure classes so callers see a
// hint beyond the raw SQLSTATE.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
		return fmt.Errorf("constraint violation (%s): %w", pgErr.ConstraintName, err)
	case pgErr.Code == pgerrcode.UndefinedTable:
		return fmt.Errorf("schema not migrated: %w", err)
	default:
		return err
	}
}
