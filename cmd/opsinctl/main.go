package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"opsin/internal/stats"
	"opsin/internal/storage"
	"opsin/internal/streams"
	"opsin/internal/sweep"
	opsinapi "opsin/pkg/opsin"
)

const artifactsDir = "artifacts"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "nominal":
		return runNominal(ctx, args[1:])
	case "resample":
		return runResample(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: opsinctl <init|reset|nominal|resample|sweep|runs|export> [flags]", msg)
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath, artifacts *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "opsin.db", "sqlite database path")
	artifacts = fs.String("artifacts", artifactsDir, "artifacts directory")
	return
}

func observerFlags(fs *flag.FlagSet) *opsinapi.ObserverSpec {
	spec := &opsinapi.ObserverSpec{}
	fs.Float64Var(&spec.AgeYears, "age", 32, "observer age in years")
	fs.Float64Var(&spec.PupilDiameterMM, "pupil", 3, "pupil diameter in mm")
	fs.Float64Var(&spec.FieldSizeDeg, "field", 10, "field size in degrees")
	fs.Float64Var(&spec.StartNM, "start", 380, "first wavelength in nm")
	fs.Float64Var(&spec.StepNM, "step", 1, "wavelength step in nm")
	fs.IntVar(&spec.Samples, "samples", 401, "number of wavelength samples")
	return spec
}

func newClient(storeKind, dbPath, artifacts string) (*opsinapi.Client, error) {
	return opsinapi.New(opsinapi.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifacts,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath, artifacts := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifacts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath, artifacts := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifacts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}
	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runNominal(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("nominal", flag.ContinueOnError)
	obs := observerFlags(fs)
	outDir := fs.String("out", artifactsDir, "output directory for CSV files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient("memory", "", *outDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	bundle, err := client.Nominal(ctx, opsinapi.NominalRequest{Observer: *obs})
	if err != nil {
		return err
	}

	spec, _ := obs.Resolve()
	if err := stats.WriteBundleCSV(*outDir, "nominal", spec, bundle); err != nil {
		return err
	}
	fmt.Printf("nominal sensitivities written to %s\n", *outDir)
	return nil
}

func runResample(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resample", flag.ContinueOnError)
	storeKind, dbPath, artifacts := storeFlags(fs)
	obs := observerFlags(fs)
	count := fs.Int("n", 1000, "number of stochastic draws")
	generator := fs.String("generator", streams.DefaultGenerator, "random-stream generator: mcg16807|pcg")
	seed := fs.Uint64("seed", 1, "root seed for the stream bank")
	runID := fs.String("run-id", "", "run identifier (derived when empty)")
	verbose := fs.Bool("v", false, "print progress every 200 draws")
	save := fs.Bool("save", true, "persist the population and run record")
	configPath := fs.String("config", "", "YAML run configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := opsinapi.ResampleRequest{
		Observer:  *obs,
		Count:     *count,
		Generator: *generator,
		Seed:      *seed,
		RunID:     *runID,
		Verbose:   *verbose,
		Save:      *save,
	}
	if *configPath != "" {
		loaded, err := loadResampleConfig(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	}

	client, err := newClient(*storeKind, *dbPath, *artifacts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Resample(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d draws, lens mean=%.3f sd=%.3f, macular mean=%.3f sd=%.3f, clamped=%d\n",
		summary.RunID, summary.Summary.Count,
		summary.Summary.Lens.Mean, summary.Summary.Lens.SD,
		summary.Summary.Macular.Mean, summary.Summary.Macular.SD,
		summary.Summary.Clamped)
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	obs := observerFlags(fs)
	dim := fs.String("dim", string(sweep.DimLensDensity), "dimension: lens|macular|density-l|density-m|density-s|shift-l|shift-m|shift-s|age")
	from := fs.Float64("from", -50, "first sweep value")
	to := fs.Float64("to", 50, "last sweep value")
	steps := fs.Int("steps", 11, "number of evenly spaced sweep values")
	values := fs.String("values", "", "explicit comma-separated values (overrides from/to/steps)")
	outDir := fs.String("out", artifactsDir, "output directory for CSV files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var vals []float64
	if *values != "" {
		for _, field := range strings.Split(*values, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("parse sweep value %q: %w", field, err)
			}
			vals = append(vals, v)
		}
	} else {
		if *steps < 1 {
			return fmt.Errorf("sweep needs at least one step, got %d", *steps)
		}
		vals = sweep.Span(*from, *to, *steps)
	}

	client, err := newClient("memory", "", *outDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	points, err := client.Sweep(ctx, opsinapi.SweepRequest{
		Observer:  *obs,
		Dimension: *dim,
		Values:    vals,
	})
	if err != nil {
		return err
	}

	spec, _ := obs.Resolve()
	for _, p := range points {
		prefix := fmt.Sprintf("sweep_%s_%g", *dim, p.Value)
		if err := stats.WriteBundleCSV(*outDir, prefix, spec, p.Bundle); err != nil {
			return err
		}
	}
	fmt.Printf("sweep %s: %d points written to %s\n", *dim, len(points), *outDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath, artifacts := storeFlags(fs)
	limit := fs.Int("limit", 20, "maximum number of runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifacts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, opsinapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no stored runs")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s  %s  generator=%s seed=%d n=%d age=%g field=%g\n",
			item.RunID, item.CreatedAtUTC, item.Generator, item.Seed, item.Count,
			item.Observer.AgeYears, item.Observer.FieldSizeDeg)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind, dbPath, artifacts := storeFlags(fs)
	runID := fs.String("run-id", "", "run to export")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", "", "output directory (defaults to artifacts dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifacts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, opsinapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported run %s to %s\n", summary.RunID, summary.Directory)
	return nil
}
