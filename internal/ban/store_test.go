package ban

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestStore creates a Store backed by an in-process miniredis instance.
func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client), mr
}

func TestIsSuspended_NotSuspended(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	suspended, remaining, reason, err := store.IsSuspended(ctx, "fp_clean")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suspended {
		t.Errorf("expected not suspended, got suspended (remaining=%d reason=%q)", remaining, reason)
	}
}

func TestSuspendAndCheck(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fp := "fp_suspend_check"

	if err := store.Suspend(ctx, fp, 30*time.Second, "spam"); err != nil {
		t.Fatalf("Suspend() error: %v", err)
	}

	suspended, remaining, reason, err := store.IsSuspended(ctx, fp)
	if err != nil {
		t.Fatalf("IsSuspended() error: %v", err)
	}
	if !suspended {
		t.Fatal("expected suspended")
	}
	if reason != "spam" {
		t.Errorf("reason = %q, want %q", reason, "spam")
	}
	if remaining <= 0 || remaining > 30 {
		t.Errorf("remaining = %d, want in (0, 30]", remaining)
	}
}

func TestLift(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fp := "fp_lift"

	if err := store.Suspend(ctx, fp, time.Minute, "reported"); err != nil {
		t.Fatalf("Suspend() error: %v", err)
	}
	if err := store.Lift(ctx, fp); err != nil {
		t.Fatalf("Lift() error: %v", err)
	}

	suspended, _, _, err := store.IsSuspended(ctx, fp)
	if err != nil {
		t.Fatalf("IsSuspended() error: %v", err)
	}
	if suspended {
		t.Error("expected suspension lifted")
	}
}

func TestSuspension_Expires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	fp := "fp_expiry"

	if err := store.Suspend(ctx, fp, 10*time.Second, "spam"); err != nil {
		t.Fatalf("Suspend() error: %v", err)
	}

	mr.FastForward(11 * time.Second)

	suspended, _, _, err := store.IsSuspended(ctx, fp)
	if err != nil {
		t.Fatalf("IsSuspended() error: %v", err)
	}
	if suspended {
		t.Error("expected suspension to have expired")
	}
}

func TestStrike_Escalation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fp := "fp_escalate"

	// First two strikes: counted, no suspension yet.
	for i := 1; i <= 2; i++ {
		suspended, _, err := store.Strike(ctx, fp, "rejected_submission")
		if err != nil {
			t.Fatalf("Strike() #%d error: %v", i, err)
		}
		if suspended {
			t.Fatalf("strike #%d triggered suspension before threshold", i)
		}
	}

	want := []time.Duration{Suspend15Min, Suspend1Hour, Suspend24Hour, Suspend24Hour}
	for i, wantDur := range want {
		suspended, dur, err := store.Strike(ctx, fp, "rejected_submission")
		if err != nil {
			t.Fatalf("Strike() error: %v", err)
		}
		if !suspended {
			t.Fatalf("strike #%d past threshold did not suspend", i+3)
		}
		if dur != wantDur {
			t.Errorf("strike #%d duration = %v, want %v", i+3, dur, wantDur)
		}
	}

	count, err := store.StrikeCount(ctx, fp)
	if err != nil {
		t.Fatalf("StrikeCount() error: %v", err)
	}
	if count != 6 {
		t.Errorf("StrikeCount() = %d, want 6", count)
	}
}

func TestStrike_CounterExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	fp := "fp_counter_ttl"

	if _, _, err := store.Strike(ctx, fp, "spam"); err != nil {
		t.Fatalf("Strike() error: %v", err)
	}

	mr.FastForward(StrikesTTL + time.Second)

	count, err := store.StrikeCount(ctx, fp)
	if err != nil {
		t.Fatalf("StrikeCount() error: %v", err)
	}
	if count != 0 {
		t.Errorf("StrikeCount() = %d after TTL, want 0", count)
	}
}
