package repository

import (
	"context"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

// DispatchRepository persists the outcome of every publish attempt.
// The pgx implementation is in pg_dispatch_repo.go; the in-memory one in
// memory_dispatch_repo.go backs tests and database-less deployments.
type DispatchRepository interface {
	Record(ctx context.Context, d *domain.Dispatch) error
	GetByMessageKey(ctx context.Context, key string) (*domain.Dispatch, error)
	List(ctx context.Context, filter domain.DispatchFilter) ([]*domain.Dispatch, int, error)
}
