package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centinela/sentinel-backend/internal/domain/audit"
	"github.com/centinela/sentinel-backend/internal/domain/errors"
)

// ActivityRepository implements the append-only activity log on
// PostgreSQL. There is deliberately no update or delete path; the table's
// only writes are inserts.
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a PostgreSQL activity repository.
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts one activity entry.
func (r *ActivityRepository) Append(ctx context.Context, entry *audit.ActivityEntry) error {
	query := `
		INSERT INTO activities (id, actor, kind, detail, metadata, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return errors.NewInternalError("failed to marshal activity metadata").WithCause(err)
	}

	_, err = r.db.Exec(ctx, query,
		entry.ID,
		entry.Actor,
		entry.Kind,
		entry.Detail,
		metadataJSON,
		entry.DurationMS,
		entry.CreatedAt,
	)
	if err != nil {
		return errors.NewInternalError("failed to append activity entry").WithCause(err)
	}
	return nil
}

// Query returns matching entries, newest first.
func (r *ActivityRepository) Query(ctx context.Context, filter audit.ActivityFilter) ([]*audit.ActivityEntry, error) {
	query := `
		SELECT id, actor, kind, detail, metadata, duration_ms, created_at
		FROM activities
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Actor != "" {
		query += fmt.Sprintf(" AND actor = $%d", argIdx)
		args = append(args, filter.Actor)
		argIdx++
	}
	if filter.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argIdx)
		args = append(args, filter.Kind)
		argIdx++
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.From)
		argIdx++
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.To)
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to query activities").WithCause(err)
	}
	defer rows.Close()

	var entries []*audit.ActivityEntry
	for rows.Next() {
		var (
			entry        audit.ActivityEntry
			metadataJSON []byte
		)
		if err := rows.Scan(
			&entry.ID, &entry.Actor, &entry.Kind, &entry.Detail,
			&metadataJSON, &entry.DurationMS, &entry.CreatedAt,
		); err != nil {
			return nil, errors.NewInternalError("failed to scan activity entry").WithCause(err)
		}
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, errors.NewInternalError("failed to unmarshal activity metadata").WithCause(err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to iterate activities").WithCause(err)
	}
	return entries, nil
}

// CountByActor counts the actor's entries over the whole log.
func (r *ActivityRepository) CountByActor(ctx context.Context, actor string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM activities WHERE actor = $1`, actor,
	).Scan(&count)
	if err != nil {
		return 0, errors.NewInternalError("failed to count activities").WithCause(err)
	}
	return count, nil
}
