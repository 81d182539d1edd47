package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
	"dirsubmit/internal/storetest"
)

func TestSnapshotWithoutCache(t *testing.T) {
	store := storetest.NewMemStore()
	store.PutJob(domain.Job{
		ID:                   "j1",
		CustomerID:           "cust-1",
		PackageTier:          domain.TierGrowth,
		Status:               domain.JobStatusInProgress,
		DirectoriesRequested: []string{"d1", "d2"},
		CreatedAt:            time.Now(),
	})
	_ = store.UpsertDirectoryResult(context.Background(), "j1", "d1", domain.ResultSubmitted, 1, nil)

	svc := NewService(store, nil, 0, zerolog.Nop())
	rows, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.JobID != "j1" || row.Requested != 2 || row.Completed != 1 {
		t.Fatalf("row = %+v", row)
	}
	if row.ProgressPct != 50 {
		t.Fatalf("progress = %.1f, want 50", row.ProgressPct)
	}
}

func TestSnapshotStoreErrorPropagates(t *testing.T) {
	store := storetest.NewMemStore()
	svc := NewService(store, nil, 0, zerolog.Nop())
	// An empty store is fine; it returns zero rows rather than an error.
	rows, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows from empty store", len(rows))
	}
}

func TestInvalidateWithoutCacheIsNoop(t *testing.T) {
	svc := NewService(storetest.NewMemStore(), nil, 0, zerolog.Nop())
	svc.Invalidate(context.Background())
}
