package scheduler

import (
	"context"
	"testing"
	"time"
)

type fakeDeleter struct {
	calls   int
	cutoffs []time.Time
}

func (f *fakeDeleter) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoffs = append(f.cutoffs, cutoff)
	return 1, nil
}

func TestPruneUsesRetentionCutoff(t *testing.T) {
	store := &fakeDeleter{}
	p := NewPruner(store, 24*time.Hour, time.Hour)

	before := time.Now().UTC().Add(-24 * time.Hour)
	p.prune()
	after := time.Now().UTC().Add(-24 * time.Hour)

	if store.calls != 1 {
		t.Fatalf("expected one delete call, got %d", store.calls)
	}
	cutoff := store.cutoffs[0]
	if cutoff.Before(before) || cutoff.After(after) {
		t.Fatalf("cutoff %v not within expected window", cutoff)
	}
}

func TestStartDisabledWithoutMaxAge(t *testing.T) {
	store := &fakeDeleter{}
	p := NewPruner(store, 0, time.Hour)

	if err := p.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Stop()

	if store.calls != 0 {
		t.Fatalf("disabled pruner must not delete anything")
	}
}
