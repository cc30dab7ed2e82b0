package storage

import (
	"context"
	"testing"

	"opsin/internal/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	pop := model.Population{
		VersionedRecord: Stamp(),
		ID:              "run-a",
		Generator:       "mcg16807",
		Seed:            7,
		Spec:            model.SamplingSpec{StartNM: 380, StepNM: 1, Count: 3},
		Bundles:         []model.Bundle{{}},
	}
	if err := store.SavePopulation(ctx, pop); err != nil {
		t.Fatalf("save population: %v", err)
	}

	got, ok, err := store.GetPopulation(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get population: ok=%v err=%v", ok, err)
	}
	if got.Seed != 7 || len(got.Bundles) != 1 {
		t.Fatalf("population mismatch: %+v", got)
	}

	if _, ok, _ := store.GetPopulation(ctx, "missing"); ok {
		t.Fatal("missing population should not be found")
	}
}

func TestMemoryStoreListRunsOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}

	records := []model.RunRecord{
		{VersionedRecord: Stamp(), RunID: "old", CreatedAtUTC: "2026-08-01T00:00:00Z"},
		{VersionedRecord: Stamp(), RunID: "new", CreatedAtUTC: "2026-08-20T00:00:00Z"},
		{VersionedRecord: Stamp(), RunID: "mid", CreatedAtUTC: "2026-08-10T00:00:00Z"},
	}
	for _, r := range records {
		if err := store.SaveRun(ctx, r); err != nil {
			t.Fatalf("save run %s: %v", r.RunID, err)
		}
	}

	listed, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"new", "mid", "old"}
	for i, w := range want {
		if listed[i].RunID != w {
			t.Fatalf("position %d: got %s, want %s", i, listed[i].RunID, w)
		}
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun(ctx, model.RunRecord{VersionedRecord: Stamp(), RunID: "r"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	listed, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Fatalf("reset left %d runs", len(listed))
	}
}

func TestFactoryRejectsUnknownKind(t *testing.T) {
	if _, err := NewStore("etcd", ""); err == nil {
		t.Fatal("expected unsupported-backend error")
	}
}
