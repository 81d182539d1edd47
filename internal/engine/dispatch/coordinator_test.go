package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
	"dirsubmit/internal/engine/progress"
	"dirsubmit/internal/engine/queue"
	"dirsubmit/internal/storetest"
)

func nopLogger() zerolog.Logger { return zerolog.Nop() }

// stubRunner records which jobs ran and the concurrency high-water mark.
type stubRunner struct {
	mu      sync.Mutex
	ran     []string
	fail    map[string]error
	block   chan struct{}
	started chan string

	inFlight    int
	maxInFlight int
}

func newStubRunner() *stubRunner {
	return &stubRunner{fail: map[string]error{}}
}

func (r *stubRunner) Run(_ context.Context, job domain.Job) error {
	r.mu.Lock()
	r.ran = append(r.ran, job.ID)
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	block := r.block
	r.mu.Unlock()

	if r.started != nil {
		r.started <- job.ID
	}
	if block != nil {
		<-block
	}

	r.mu.Lock()
	r.inFlight--
	err := r.fail[job.ID]
	r.mu.Unlock()
	return err
}

func (r *stubRunner) runs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ran...)
}

func (r *stubRunner) ranSet() map[string]bool {
	set := map[string]bool{}
	for _, id := range r.runs() {
		set[id] = true
	}
	return set
}

func newCoordinator(store *storetest.MemStore, registry *TokenRegistry, runner Runner) *Coordinator {
	return NewCoordinator(
		queue.NewSelector(store, nopLogger()),
		registry,
		runner,
		progress.NewAggregator(store, nopLogger()),
		store,
		nopLogger(),
		Options{Interval: time.Hour, SelectLimit: 50},
	)
}

func seedJob(store *storetest.MemStore, id string, tier domain.PackageTier, createdAt time.Time) {
	cfg := domain.TierConfigFor(tier)
	store.PutJob(domain.Job{
		ID:                   id,
		CustomerID:           "cust-" + id,
		PackageTier:          tier,
		PriorityScore:        cfg.PriorityScore,
		Status:               domain.JobStatusPending,
		DirectoriesRequested: []string{"d1"},
		Business:             domain.BusinessProfile{Name: "Acme"},
		CreatedAt:            createdAt,
	})
}

func TestRunCycleBoundedByGlobalCap(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3", "e4", "e5"} {
		seedJob(store, id, domain.TierEnterprise, base.Add(time.Duration(i)*time.Minute))
	}

	registry := NewTokenRegistry(2)
	runner := newStubRunner()
	c := newCoordinator(store, registry, runner)

	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if got := runner.ranSet(); len(got) != 2 || !got["e1"] || !got["e2"] {
		t.Fatalf("ran %v, want the two oldest jobs", runner.runs())
	}
	if runner.maxInFlight > 2 {
		t.Fatalf("max in flight = %d, exceeded global cap 2", runner.maxInFlight)
	}
	if registry.Active() != 0 {
		t.Fatalf("active tokens = %d after cycle, want 0", registry.Active())
	}

	// Claimed jobs went in_progress, so the next cycle picks the next two.
	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("second RunCycle returned error: %v", err)
	}
	if got := runner.ranSet(); len(got) != 4 || !got["e3"] || !got["e4"] {
		t.Fatalf("ran %v, want e3 and e4 on the second cycle", runner.runs())
	}
}

func TestRunCycleRespectsPerTierCaps(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "s1", domain.TierStarter, base)
	seedJob(store, "s2", domain.TierStarter, base.Add(time.Minute))
	seedJob(store, "g1", domain.TierGrowth, base.Add(2*time.Minute))

	registry := NewTokenRegistry(10)
	runner := newStubRunner()
	c := newCoordinator(store, registry, runner)

	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	// Starter caps at one concurrent job, so s2 waits for the next cycle.
	got := runner.ranSet()
	if len(got) != 2 || !got["g1"] || !got["s1"] {
		t.Fatalf("ran %v, want g1 plus the oldest starter", runner.runs())
	}
}

func TestRunCyclePrefersHigherTiers(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// The starter job is older, but priority outranks arrival order.
	seedJob(store, "s1", domain.TierStarter, base)
	seedJob(store, "e1", domain.TierEnterprise, base.Add(time.Hour))

	registry := NewTokenRegistry(1)
	runner := newStubRunner()
	c := newCoordinator(store, registry, runner)

	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if got := runner.runs(); len(got) != 1 || got[0] != "e1" {
		t.Fatalf("ran %v, want only e1", got)
	}
}

func TestRunCycleSingleFlight(t *testing.T) {
	store := storetest.NewMemStore()
	seedJob(store, "e1", domain.TierEnterprise, time.Now())

	registry := NewTokenRegistry(5)
	runner := newStubRunner()
	runner.block = make(chan struct{})
	runner.started = make(chan string, 1)
	c := newCoordinator(store, registry, runner)

	done := make(chan error, 1)
	go func() { done <- c.RunCycle(context.Background()) }()
	<-runner.started

	// The overlapping tick is a no-op while the first cycle collects.
	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("overlapping RunCycle returned error: %v", err)
	}
	if got := runner.runs(); len(got) != 1 {
		t.Fatalf("overlapping cycle launched work: ran %v", got)
	}

	close(runner.block)
	if err := <-done; err != nil {
		t.Fatalf("first RunCycle returned error: %v", err)
	}
}

func TestRunCycleRejectsInvalidJobsWithoutCapacity(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.PutJob(domain.Job{
		ID:                   "bad-tier",
		PackageTier:          "platinum",
		PriorityScore:        1,
		Status:               domain.JobStatusPending,
		DirectoriesRequested: []string{"d1"},
		Business:             domain.BusinessProfile{Name: "Acme"},
		CreatedAt:            base,
	})
	store.PutJob(domain.Job{
		ID:                   "no-name",
		PackageTier:          domain.TierEnterprise,
		PriorityScore:        1,
		Status:               domain.JobStatusPending,
		DirectoriesRequested: []string{"d1"},
		CreatedAt:            base,
	})
	seedJob(store, "good", domain.TierEnterprise, base.Add(time.Minute))

	registry := NewTokenRegistry(1)
	runner := newStubRunner()
	c := newCoordinator(store, registry, runner)

	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if got := runner.runs(); len(got) != 1 || got[0] != "good" {
		t.Fatalf("ran %v, want only the valid job", got)
	}
	for _, id := range []string{"bad-tier", "no-name"} {
		job, _ := store.Job(id)
		if job.Status != domain.JobStatusFailed {
			t.Fatalf("%s status = %s, want failed", id, job.Status)
		}
	}
}

func TestClaimSkipsAlreadyClaimedJobWithinTier(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "e1", domain.TierEnterprise, base)
	seedJob(store, "e2", domain.TierEnterprise, base.Add(time.Minute))

	registry := NewTokenRegistry(5)
	if _, err := registry.Claim("e1", domain.TierEnterprise); err != nil {
		t.Fatalf("pre-claim failed: %v", err)
	}
	c := newCoordinator(store, registry, newStubRunner())

	e1, _ := store.Job("e1")
	e2, _ := store.Job("e2")
	launches := c.claim(context.Background(), []domain.Job{e1, e2}, registry.Available())
	if len(launches) != 1 || launches[0].job.ID != "e2" {
		t.Fatalf("launches = %+v, want e2 claimed despite e1's duplicate rejection", launches)
	}
}

func TestRunCycleIsolatesExecutorFailures(t *testing.T) {
	store := storetest.NewMemStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedJob(store, "e1", domain.TierEnterprise, base)
	seedJob(store, "e2", domain.TierEnterprise, base.Add(time.Minute))

	registry := NewTokenRegistry(5)
	runner := newStubRunner()
	runner.fail["e1"] = context.DeadlineExceeded
	c := newCoordinator(store, registry, runner)

	if err := c.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle returned error: %v", err)
	}
	if got := runner.runs(); len(got) != 2 {
		t.Fatalf("ran %v, want both jobs despite one failing", got)
	}
	if registry.Active() != 0 {
		t.Fatalf("active tokens = %d, want 0 after failure", registry.Active())
	}
	e2, _ := store.Job("e2")
	if e2.Status != domain.JobStatusInProgress {
		t.Fatalf("e2 status = %s, want in_progress", e2.Status)
	}
}
