package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

type pgDispatchRepository struct {
	pool *pgxpool.Pool
}

// NewPgDispatchRepository returns a DispatchRepository backed by PostgreSQL.
func NewPgDispatchRepository(pool *pgxpool.Pool) DispatchRepository {
	return &pgDispatchRepository{pool: pool}
}

func (r *pgDispatchRepository) Record(ctx context.Context, d *domain.Dispatch) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dispatches
			(id, destination, message_key, notification_id, outcome, error_message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.Destination, d.MessageKey, d.NotificationID, d.Outcome, d.ErrorMessage, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

func (r *pgDispatchRepository) GetByMessageKey(ctx context.Context, key string) (*domain.Dispatch, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, destination, message_key, notification_id, outcome, error_message, created_at
		FROM dispatches WHERE message_key = $1`, key)

	d, err := scanDispatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return d, err
}

func (r *pgDispatchRepository) List(ctx context.Context, f domain.DispatchFilter) ([]*domain.Dispatch, int, error) {
	where, args := buildListWhere(f)
	offset := (f.Page - 1) * f.Limit

	var total int
	countQuery := "SELECT COUNT(*) FROM dispatches" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count dispatches: %w", err)
	}

	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`
		SELECT id, destination, message_key, notification_id, outcome, error_message, created_at
		FROM dispatches%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	var dispatches []*domain.Dispatch
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, 0, err
		}
		dispatches = append(dispatches, d)
	}
	return dispatches, total, rows.Err()
}

func buildListWhere(f domain.DispatchFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Destination != nil {
		args = append(args, *f.Destination)
		conds = append(conds, fmt.Sprintf("destination = $%d", len(args)))
	}
	if f.Outcome != nil {
		args = append(args, *f.Outcome)
		conds = append(conds, fmt.Sprintf("outcome = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanDispatch(row pgx.Row) (*domain.Dispatch, error) {
	var d domain.Dispatch
	if err := row.Scan(
		&d.ID, &d.Destination, &d.MessageKey, &d.NotificationID,
		&d.Outcome, &d.ErrorMessage, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}
