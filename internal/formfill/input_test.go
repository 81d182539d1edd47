package formfill

import (
	"context"
	"testing"
	"time"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/automation/automationtest"
	"dirsubmit/internal/dirconfig"
)

func TestAtomicTypistWritesOnce(t *testing.T) {
	page := automationtest.NewPage()
	el := automation.Element{Ref: "name", Tag: "input", Visible: true, Enabled: true}

	if err := (AtomicTypist{}).Type(context.Background(), page, el, "Acme Co"); err != nil {
		t.Fatalf("Type returned error: %v", err)
	}
	if got := page.Filled["name"]; got != "Acme Co" {
		t.Fatalf("filled %q, want full value", got)
	}
}

func TestIncrementalTypistProgressivePrefixes(t *testing.T) {
	page := automationtest.NewPage()
	el := automation.Element{Ref: "name", Tag: "input", Visible: true, Enabled: true}

	var sleeps int
	typist := IncrementalTypist{
		Sleep: func(context.Context, time.Duration) error {
			sleeps++
			return nil
		},
	}
	if err := typist.Type(context.Background(), page, el, "Côté"); err != nil {
		t.Fatalf("Type returned error: %v", err)
	}
	if got := page.Filled["name"]; got != "Côté" {
		t.Fatalf("final value %q, want Côté", got)
	}
	// One pause between each pair of keystrokes, none after the last.
	if sleeps != 3 {
		t.Fatalf("sleeps = %d, want 3", sleeps)
	}
}

func TestIncrementalTypistStopsOnCancel(t *testing.T) {
	page := automationtest.NewPage()
	el := automation.Element{Ref: "name", Tag: "input", Visible: true, Enabled: true}

	ctx, cancel := context.WithCancel(context.Background())
	typist := IncrementalTypist{
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}
	if err := typist.Type(ctx, page, el, "abc"); err == nil {
		t.Fatal("Type returned nil, want context error")
	}
}

func TestTypistFor(t *testing.T) {
	if _, ok := TypistFor(dirconfig.InputIncremental).(IncrementalTypist); !ok {
		t.Fatal("incremental strategy did not select IncrementalTypist")
	}
	if _, ok := TypistFor(dirconfig.InputAtomic).(AtomicTypist); !ok {
		t.Fatal("atomic strategy did not select AtomicTypist")
	}
	if _, ok := TypistFor("").(AtomicTypist); !ok {
		t.Fatal("unset strategy did not default to AtomicTypist")
	}
}
