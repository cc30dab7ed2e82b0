package opsin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"opsin/internal/model"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

var smallObserver = ObserverSpec{
	AgeYears:        32,
	PupilDiameterMM: 3,
	FieldSizeDeg:    10,
	StartNM:         400,
	StepNM:          10,
	Samples:         31,
}

func TestNominal(t *testing.T) {
	client := testClient(t)
	bundle, err := client.Nominal(context.Background(), NominalRequest{Observer: smallObserver})
	if err != nil {
		t.Fatal(err)
	}
	if len(bundle.EnergyNormalized) != model.ReceptorRows {
		t.Fatalf("rows: %d", len(bundle.EnergyNormalized))
	}
	if len(bundle.EnergyNormalized[0]) != 31 {
		t.Fatalf("columns: %d", len(bundle.EnergyNormalized[0]))
	}
}

func TestResampleSavesAndLists(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	summary, err := client.Resample(ctx, ResampleRequest{
		Observer: smallObserver,
		Count:    4,
		Seed:     42,
		RunID:    "test-run",
		Save:     true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.RunID != "test-run" || summary.Summary.Count != 4 {
		t.Fatalf("summary: %+v", summary)
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != "test-run" || runs[0].Count != 4 {
		t.Fatalf("runs: %+v", runs)
	}
}

func TestResampleWithoutSaveLeavesStoreEmpty(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.Resample(ctx, ResampleRequest{
		Observer: smallObserver,
		Count:    2,
		Seed:     1,
	}); err != nil {
		t.Fatal(err)
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("unsaved run leaked into the store: %+v", runs)
	}
}

func TestResampleRejectsNegativeCount(t *testing.T) {
	client := testClient(t)
	_, err := client.Resample(context.Background(), ResampleRequest{
		Observer: smallObserver,
		Count:    -1,
	})
	if err == nil {
		t.Fatal("expected invalid-count error")
	}
}

func TestResampleRejectsUnknownGenerator(t *testing.T) {
	client := testClient(t)
	_, err := client.Resample(context.Background(), ResampleRequest{
		Observer:  smallObserver,
		Count:     1,
		Generator: "twister",
	})
	if err == nil {
		t.Fatal("expected unknown-generator error")
	}
}

func TestExportLatest(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.Resample(ctx, ResampleRequest{
		Observer: smallObserver,
		Count:    2,
		Seed:     3,
		RunID:    "export-run",
		Save:     true,
	}); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	summary, err := client.Export(ctx, ExportRequest{Latest: true, OutDir: outDir})
	if err != nil {
		t.Fatal(err)
	}
	if summary.RunID != "export-run" {
		t.Fatalf("exported run: %s", summary.RunID)
	}
	if _, err := os.Stat(filepath.Join(summary.Directory, "summary.json")); err != nil {
		t.Fatalf("missing exported summary: %v", err)
	}
}

func TestSingleDrawRunSavesAndExports(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	summary, err := client.Resample(ctx, ResampleRequest{
		Observer: smallObserver,
		Count:    1,
		Seed:     5,
		RunID:    "single-draw",
		Save:     true,
	})
	if err != nil {
		t.Fatalf("single-draw resample: %v", err)
	}
	if summary.Summary.Lens.SD != 0 {
		t.Fatalf("single-draw lens sd: %g", summary.Summary.Lens.SD)
	}

	exported, err := client.Export(ctx, ExportRequest{Latest: true, OutDir: t.TempDir()})
	if err != nil {
		t.Fatalf("single-draw export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(exported.Directory, "summary.json")); err != nil {
		t.Fatalf("missing exported summary: %v", err)
	}
}

func TestExportNeedsRunIDOrLatest(t *testing.T) {
	client := testClient(t)
	if _, err := client.Export(context.Background(), ExportRequest{}); err == nil {
		t.Fatal("expected run-id error")
	}
}

func TestSweepThroughClient(t *testing.T) {
	client := testClient(t)
	points, err := client.Sweep(context.Background(), SweepRequest{
		Observer:  smallObserver,
		Dimension: "macular",
		Values:    []float64{-25, 25},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("points: %d", len(points))
	}
}

func TestObserverSpecDefaults(t *testing.T) {
	spec, obs := ObserverSpec{}.Resolve()
	if spec.StartNM != 380 || spec.StepNM != 1 || spec.Count != 401 {
		t.Fatalf("default axis: %+v", spec)
	}
	if obs.AgeYears != 32 || obs.PupilDiameterMM != 3 || obs.FieldSizeDeg != 10 {
		t.Fatalf("default observer: %+v", obs)
	}
}
