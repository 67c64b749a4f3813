package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centinela/sentinel-backend/internal/domain/audit"
	"github.com/centinela/sentinel-backend/internal/domain/errors"
)

// SensitiveChangeRepository stores sensitive-change entries on PostgreSQL,
// append-only.
type SensitiveChangeRepository struct {
	db *pgxpool.Pool
}

// NewSensitiveChangeRepository creates a PostgreSQL sensitive-change
// repository.
func NewSensitiveChangeRepository(db *pgxpool.Pool) *SensitiveChangeRepository {
	return &SensitiveChangeRepository{db: db}
}

// Append inserts one sensitive-change entry.
func (r *SensitiveChangeRepository) Append(ctx context.Context, entry *audit.SensitiveChangeEntry) error {
	query := `
		INSERT INTO sensitive_changes (id, actor, kind, resource, old_value, new_value, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.Actor,
		string(entry.Kind),
		entry.Resource,
		entry.OldValue,
		entry.NewValue,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		return errors.NewInternalError("failed to append sensitive change").WithCause(err)
	}
	return nil
}

// Query returns matching entries, newest first.
func (r *SensitiveChangeRepository) Query(ctx context.Context, filter audit.ChangeFilter) ([]*audit.SensitiveChangeEntry, error) {
	query := `
		SELECT id, actor, kind, resource, old_value, new_value, reason, created_at
		FROM sensitive_changes
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
		args = append(args, string(filter.Kind))
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
		return nil, errors.NewInternalError("failed to query sensitive changes").WithCause(err)
	}
	defer rows.Close()

	var entries []*audit.SensitiveChangeEntry
	for rows.Next() {
		var (
			entry audit.SensitiveChangeEntry
			kind  string
		)
		if err := rows.Scan(
			&entry.ID, &entry.Actor, &kind, &entry.Resource,
			&entry.OldValue, &entry.NewValue, &entry.Reason, &entry.CreatedAt,
		); err != nil {
			return nil, errors.NewInternalError("failed to scan sensitive change").WithCause(err)
		}
		entry.Kind = audit.ChangeKind(kind)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to iterate sensitive changes").WithCause(err)
	}
	return entries, nil
}
