package database

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centinela/sentinel-backend/internal/domain/audit"
	"github.com/centinela/sentinel-backend/internal/domain/errors"
)

// AlertRepository stores alerts on PostgreSQL. Rows are inserted and
// flipped to resolved; nothing is ever deleted.
type AlertRepository struct {
	db *pgxpool.Pool
}

// NewAlertRepository creates a PostgreSQL alert repository.
func NewAlertRepository(db *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: db}
}

// Insert stores one alert.
func (r *AlertRepository) Insert(ctx context.Context, alert *audit.Alert) error {
	query := `
		INSERT INTO alerts (id, level, kind, message, actor, resource, resolved, resolved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		alert.ID,
		string(alert.Level),
		alert.Kind,
		alert.Message,
		alert.Actor,
		alert.Resource,
		alert.Resolved,
		alert.ResolvedAt,
		alert.CreatedAt,
	)
	if err != nil {
		return errors.NewInternalError("failed to insert alert").WithCause(err)
	}
	return nil
}

// GetByID retrieves one alert.
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*audit.Alert, error) {
	query := selectAlert + ` WHERE id = $1`
	return scanAlert(r.db.QueryRow(ctx, query, id))
}

// Query returns matching alerts, newest first.
func (r *AlertRepository) Query(ctx context.Context, filter audit.AlertFilter) ([]*audit.Alert, error) {
	query := selectAlert + ` WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Resolved != nil {
		query += fmt.Sprintf(" AND resolved = $%d", argIdx)
		args = append(args, *filter.Resolved)
		argIdx++
	}
	if filter.Level != "" {
		query += fmt.Sprintf(" AND level = $%d", argIdx)
		args = append(args, string(filter.Level))
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
		return nil, errors.NewInternalError("failed to query alerts").WithCause(err)
	}
	defer rows.Close()

	var alerts []*audit.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to iterate alerts").WithCause(err)
	}
	return alerts, nil
}

// Resolve flips the alert to resolved if it is not already, keeping the
// first resolution timestamp. Resolving twice returns the stored row
// unchanged.
func (r *AlertRepository) Resolve(ctx context.Context, id uuid.UUID) (*audit.Alert, error) {
	query := `
		UPDATE alerts
		SET resolved = TRUE,
		    resolved_at = COALESCE(resolved_at, NOW())
		WHERE id = $1
		RETURNING id, level, kind, message, actor, resource, resolved, resolved_at, created_at
	`
	return scanAlert(r.db.QueryRow(ctx, query, id))
}

const selectAlert = `
	SELECT id, level, kind, message, actor, resource, resolved, resolved_at, created_at
	FROM alerts`

func scanAlert(row rowScanner) (*audit.Alert, error) {
	var (
		alert audit.Alert
		level string
	)
	err := row.Scan(
		&alert.ID, &level, &alert.Kind, &alert.Message,
		&alert.Actor, &alert.Resource, &alert.Resolved,
		&alert.ResolvedAt, &alert.CreatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrAlertNotFound
		}
		return nil, errors.NewInternalError("failed to scan alert").WithCause(err)
	}
	alert.Level = audit.AlertLevel(level)
	return &alert, nil
}
