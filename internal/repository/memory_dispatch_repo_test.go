package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
	"github.com/notifyhub/ms-notification-kafka/internal/repository"
)

func strPtr(s string) *string { return &s }

func seed(t *testing.T, repo *repository.MemoryDispatchRepository) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []*domain.Dispatch{
		{ID: "1", Destination: domain.DestinationCreated, MessageKey: strPtr("k1"), Outcome: domain.OutcomeQueued, CreatedAt: base},
		{ID: "2", Destination: domain.DestinationDeleted, MessageKey: strPtr("k2"), Outcome: domain.OutcomeQueued, CreatedAt: base.Add(time.Minute)},
		{ID: "3", Destination: domain.DestinationCreated, Outcome: domain.OutcomeFailed, ErrorMessage: strPtr("boom"), CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, d := range entries {
		if err := repo.Record(context.Background(), d); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMemoryDispatchRepository_GetByMessageKey(t *testing.T) {
	repo := repository.NewMemoryDispatchRepository(0)
	seed(t, repo)

	d, err := repo.GetByMessageKey(context.Background(), "k2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != "2" {
		t.Fatalf("expected id=2, got %s", d.ID)
	}

	if _, err := repo.GetByMessageKey(context.Background(), "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryDispatchRepository_List(t *testing.T) {
	repo := repository.NewMemoryDispatchRepository(0)
	seed(t, repo)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		got, total, err := repo.List(ctx, domain.DispatchFilter{Page: 1, Limit: 10})
		if err != nil {
			t.Fatal(err)
		}
		if total != 3 || len(got) != 3 {
			t.Fatalf("expected 3 results, got total=%d len=%d", total, len(got))
		}
		if got[0].ID != "3" || got[2].ID != "1" {
			t.Fatalf("unexpected order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
		}
	})

	t.Run("filter by destination and outcome", func(t *testing.T) {
		dest := domain.DestinationCreated
		outcome := domain.OutcomeFailed
		got, total, _ := repo.List(ctx, domain.DispatchFilter{Destination: &dest, Outcome: &outcome, Page: 1, Limit: 10})
		if total != 1 || got[0].ID != "3" {
			t.Fatalf("expected only id=3, got total=%d", total)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		got, total, _ := repo.List(ctx, domain.DispatchFilter{Page: 2, Limit: 2})
		if total != 3 || len(got) != 1 {
			t.Fatalf("expected 1 item on page 2, got total=%d len=%d", total, len(got))
		}
		got, _, _ = repo.List(ctx, domain.DispatchFilter{Page: 5, Limit: 2})
		if len(got) != 0 {
			t.Fatalf("expected empty page, got %d", len(got))
		}
	})
}

func TestMemoryDispatchRepository_EvictsOldest(t *testing.T) {
	repo := repository.NewMemoryDispatchRepository(2)
	seed(t, repo)
	ctx := context.Background()

	if repo.Len() != 2 {
		t.Fatalf("expected 2 entries held, got %d", repo.Len())
	}
	if _, err := repo.GetByMessageKey(ctx, "k1"); err != domain.ErrNotFound {
		t.Fatalf("expected oldest entry k1 evicted, got %v", err)
	}
	if _, err := repo.GetByMessageKey(ctx, "k2"); err != nil {
		t.Fatalf("expected k2 kept, got %v", err)
	}

	got, total, _ := repo.List(ctx, domain.DispatchFilter{Page: 1, Limit: 10})
	if total != 2 || got[0].ID != "3" || got[1].ID != "2" {
		t.Fatalf("expected ids 3,2 after eviction, got total=%d", total)
	}

	if err := repo.Record(ctx, &domain.Dispatch{ID: "4", MessageKey: strPtr("k4"), Outcome: domain.OutcomeQueued}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetByMessageKey(ctx, "k2"); err != domain.ErrNotFound {
		t.Fatalf("expected k2 evicted after wrap-around, got %v", err)
	}
	if d, err := repo.GetByMessageKey(ctx, "k4"); err != nil || d.ID != "4" {
		t.Fatalf("expected k4 present, got %v", err)
	}
}
