package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
	"dirsubmit/internal/storetest"
)

func seedJob(store *storetest.MemStore, id string, tier domain.PackageTier, createdAt time.Time, dirs ...string) {
	cfg := domain.TierConfigFor(tier)
	store.PutJob(domain.Job{
		ID:                   id,
		CustomerID:           "cust-" + id,
		PackageTier:          tier,
		PriorityScore:        cfg.PriorityScore,
		Status:               domain.JobStatusPending,
		DirectoriesRequested: dirs,
		Business:             domain.BusinessProfile{Name: "Acme"},
		CreatedAt:            createdAt,
	})
}

func TestSelectPendingPriorityOrder(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "starter", domain.TierStarter, base, "d1")
	seedJob(store, "enterprise", domain.TierEnterprise, base.Add(time.Hour), "d1")
	seedJob(store, "growth", domain.TierGrowth, base.Add(2*time.Hour), "d1")
	seedJob(store, "professional", domain.TierProfessional, base.Add(3*time.Hour), "d1")

	jobs, err := NewSelector(store, zerolog.Nop()).SelectPending(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("SelectPending returned error: %v", err)
	}
	want := []string{"enterprise", "professional", "growth", "starter"}
	if len(jobs) != len(want) {
		t.Fatalf("selected %d jobs, want %d", len(jobs), len(want))
	}
	for i, id := range want {
		if jobs[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, jobs[i].ID, id)
		}
	}
}

func TestSelectPendingFIFOWithinTier(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "second", domain.TierGrowth, base.Add(time.Minute), "d1")
	seedJob(store, "first", domain.TierGrowth, base, "d1")

	jobs, err := NewSelector(store, zerolog.Nop()).SelectPending(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("SelectPending returned error: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "first" || jobs[1].ID != "second" {
		t.Fatalf("got order %v, want first then second", []string{jobs[0].ID, jobs[1].ID})
	}
}

func TestSelectPendingExcludesClaimedJobs(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "claimed", domain.TierEnterprise, base, "d1")
	seedJob(store, "free", domain.TierStarter, base, "d1")

	jobs, err := NewSelector(store, zerolog.Nop()).SelectPending(context.Background(), 10, []string{"claimed"})
	if err != nil {
		t.Fatalf("SelectPending returned error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "free" {
		t.Fatalf("selected %v, want only the unclaimed job", jobs)
	}
}

func TestSelectPendingFinalizesEmptyJobs(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "empty", domain.TierEnterprise, base)
	seedJob(store, "real", domain.TierStarter, base, "d1")

	jobs, err := NewSelector(store, zerolog.Nop()).SelectPending(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("SelectPending returned error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "real" {
		t.Fatalf("selected %v, want only the job with directories", jobs)
	}
	empty, _ := store.Job("empty")
	if empty.Status != domain.JobStatusComplete {
		t.Fatalf("empty job status = %s, want complete", empty.Status)
	}
}

func TestSelectPendingStoreErrorPropagates(t *testing.T) {
	store := storetest.NewMemStore()
	store.FailFetch = errors.New("connection reset")

	if _, err := NewSelector(store, zerolog.Nop()).SelectPending(context.Background(), 10, nil); err == nil {
		t.Fatal("SelectPending returned nil, want store error")
	}
}

func TestSelectPendingHonorsLimit(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedJob(store, string(rune('a'+i)), domain.TierGrowth, base.Add(time.Duration(i)*time.Minute), "d1")
	}

	jobs, err := NewSelector(store, zerolog.Nop()).SelectPending(context.Background(), 3, nil)
	if err != nil {
		t.Fatalf("SelectPending returned error: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("selected %d jobs, want 3", len(jobs))
	}
}
