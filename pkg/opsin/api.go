// Package opsin is the programmatic surface of the photoreceptor
// sensitivity simulator: nominal curves, stochastic population resampling,
// parametric sweeps, and run persistence/export.
package opsin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opsin/internal/model"
	"opsin/internal/resample"
	"opsin/internal/stats"
	"opsin/internal/storage"
	"opsin/internal/streams"
	"opsin/internal/sweep"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "opsin.db"
)

// Observer defaults: a 32-year-old standard observer, 3 mm pupil, 10 degree
// field, 380-780 nm at 1 nm.
var (
	defaultObserver = model.Observer{AgeYears: 32, PupilDiameterMM: 3, FieldSizeDeg: 10}
	defaultSampling = model.SamplingSpec{StartNM: 380, StepNM: 1, Count: 401}
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

type Client struct {
	store        storage.Store
	artifactsDir string
}

// ObserverSpec is the request-side observer/axis description shared by all
// operations. Zero fields take the defaults above.
type ObserverSpec struct {
	AgeYears        float64
	PupilDiameterMM float64
	FieldSizeDeg    float64
	StartNM         float64
	StepNM          float64
	Samples         int
}

type ResampleRequest struct {
	Observer  ObserverSpec
	Count     int
	Generator string
	Seed      uint64
	RunID     string
	Verbose   bool
	Save      bool
}

type ResampleSummary struct {
	RunID   string
	Summary stats.Summary
}

type NominalRequest struct {
	Observer ObserverSpec
}

type SweepRequest struct {
	Observer  ObserverSpec
	Dimension string
	Values    []float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Generator    string
	Seed         uint64
	Count        int
	Observer     model.Observer
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	return c.store.Reset(ctx)
}

// Nominal computes the reference observer's bundle without any resampling.
func (c *Client) Nominal(_ context.Context, req NominalRequest) (model.Bundle, error) {
	spec, obs := req.Observer.Resolve()
	return resample.Nominal(spec, obs)
}

// Resample runs a stochastic population draw. With Save set, the population
// and its run record go to the store under the run ID.
func (c *Client) Resample(ctx context.Context, req ResampleRequest) (ResampleSummary, error) {
	spec, obs := req.Observer.Resolve()
	if req.Count == 0 {
		req.Count = resample.DefaultCount
	}
	if req.Generator == "" {
		req.Generator = streams.DefaultGenerator
	}

	cfg := resample.Config{
		Count:     req.Count,
		Generator: req.Generator,
		Seed:      req.Seed,
	}
	if req.Verbose {
		cfg.Progress = func(done, total int) {
			fmt.Printf("resample: %d/%d draws\n", done, total)
		}
	}

	driver, err := resample.New(spec, obs, cfg)
	if err != nil {
		return ResampleSummary{}, err
	}

	pop, err := driver.Run(ctx)
	if err != nil {
		return ResampleSummary{}, err
	}

	now := time.Now().UTC()
	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("%s-%d-%d", req.Generator, req.Seed, now.Unix())
	}
	pop.ID = runID
	pop.VersionedRecord = storage.Stamp()

	summary := stats.Summarize(pop)

	if req.Save {
		if err := c.store.Init(ctx); err != nil {
			return ResampleSummary{}, err
		}
		record := model.RunRecord{
			VersionedRecord: storage.Stamp(),
			RunID:           runID,
			CreatedAtUTC:    now.Format(time.RFC3339),
			Generator:       pop.Generator,
			Seed:            pop.Seed,
			Count:           len(pop.Bundles),
			Observer:        obs,
			LensMean:        summary.Lens.Mean,
			LensSD:          summary.Lens.SD,
			MacularMean:     summary.Macular.Mean,
			MacularSD:       summary.Macular.SD,
		}
		if err := c.store.SavePopulation(ctx, pop); err != nil {
			return ResampleSummary{}, err
		}
		if err := c.store.SaveRun(ctx, record); err != nil {
			return ResampleSummary{}, err
		}
		if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
			RunID:        runID,
			Generator:    pop.Generator,
			Seed:         pop.Seed,
			Count:        len(pop.Bundles),
			AgeYears:     obs.AgeYears,
			FieldSizeDeg: obs.FieldSizeDeg,
			CreatedAtUTC: record.CreatedAtUTC,
		}); err != nil {
			return ResampleSummary{}, err
		}
	}

	return ResampleSummary{RunID: runID, Summary: summary}, nil
}

// Sweep builds a deterministic parametric variation along one dimension.
func (c *Client) Sweep(_ context.Context, req SweepRequest) ([]sweep.Point, error) {
	spec, obs := req.Observer.Resolve()
	return sweep.Run(spec, obs, sweep.Config{
		Dimension: sweep.Dimension(req.Dimension),
		Values:    req.Values,
	})
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}
	items := make([]RunItem, 0, len(records))
	for _, r := range records {
		items = append(items, RunItem{
			RunID:        r.RunID,
			CreatedAtUTC: r.CreatedAtUTC,
			Generator:    r.Generator,
			Seed:         r.Seed,
			Count:        r.Count,
			Observer:     r.Observer,
		})
	}
	return items, nil
}

// Export writes a stored run's artifacts (parameters, summary, mean matrix)
// to the artifacts directory or req.OutDir.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("run id or -latest is required")
	}
	if err := c.store.Init(ctx); err != nil {
		return ExportSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		records, err := c.store.ListRuns(ctx)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(records) == 0 {
			return ExportSummary{}, errors.New("no stored runs")
		}
		runID = records[0].RunID
	}

	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run %s not found", runID)
	}
	pop, ok, err := c.store.GetPopulation(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("population %s not found", runID)
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = c.artifactsDir
	}
	dir, err := stats.WriteRunArtifacts(outDir, record, pop)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: dir}, nil
}

// Resolve fills defaults and returns the concrete sampling axis and
// observer record.
func (o ObserverSpec) Resolve() (model.SamplingSpec, model.Observer) {
	spec := model.SamplingSpec{StartNM: o.StartNM, StepNM: o.StepNM, Count: o.Samples}
	if spec.StartNM == 0 {
		spec.StartNM = defaultSampling.StartNM
	}
	if spec.StepNM == 0 {
		spec.StepNM = defaultSampling.StepNM
	}
	if spec.Count == 0 {
		spec.Count = defaultSampling.Count
	}
	obs := model.Observer{
		AgeYears:        o.AgeYears,
		PupilDiameterMM: o.PupilDiameterMM,
		FieldSizeDeg:    o.FieldSizeDeg,
	}
	if obs.AgeYears == 0 {
		obs.AgeYears = defaultObserver.AgeYears
	}
	if obs.PupilDiameterMM == 0 {
		obs.PupilDiameterMM = defaultObserver.PupilDiameterMM
	}
	if obs.FieldSizeDeg == 0 {
		obs.FieldSizeDeg = defaultObserver.FieldSizeDeg
	}
	return spec, obs
}
