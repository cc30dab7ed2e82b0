// Package resample runs stochastic individual-observer draws through the
// physiological model and assembles the resulting population of sensitivity
// bundles.
package resample

import (
	"context"
	"errors"
	"fmt"

	"opsin/internal/model"
	"opsin/internal/sampler"
	"opsin/internal/streams"
)

// DefaultCount is the number of draws when a run does not say otherwise.
const DefaultCount = 1000

// How often the progress callback fires, in draws.
const progressEvery = 200

var ErrInvalidCount = errors.New("draw count must be a positive integer")

// Config parameterizes one resampling run.
type Config struct {
	// Count is the number of draws; must be at least 1.
	Count int
	// Generator names the random-stream family; streams.DefaultGenerator
	// when empty.
	Generator string
	// Seed roots every per-dimension stream.
	Seed uint64
	// Progress, when non-nil, is called every 200 completed draws and once
	// at the end. It has no effect on computed values.
	Progress func(done, total int)
}

// Driver owns the stream bank for the lifetime of one run. Streams advance
// across draws and are never reseeded, so the whole run is reproducible from
// (generator, seed) while no single draw is reproducible in isolation.
type Driver struct {
	spec model.SamplingSpec
	obs  model.Observer
	cfg  Config
	bank *streams.Bank
}

// New validates the configuration and seeds the stream bank. All validation
// happens before any stream exists. Callers wanting the default draw count
// pass DefaultCount explicitly; a zero or negative count is invalid here.
func New(spec model.SamplingSpec, obs model.Observer, cfg Config) (*Driver, error) {
	if cfg.Count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, cfg.Count)
	}
	bank, err := streams.NewBank(cfg.Generator, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return &Driver{spec: spec, obs: obs, cfg: cfg, bank: bank}, nil
}

// Run executes the configured number of draws in order. Any transform
// failure aborts the whole run with the draw index; no partial population is
// returned. Cancellation between draws likewise discards everything done so
// far.
func (d *Driver) Run(ctx context.Context) (model.Population, error) {
	pop := model.Population{
		Spec:      d.spec,
		Observer:  d.obs,
		Generator: d.bank.Generator(),
		Seed:      d.cfg.Seed,
		Bundles:   make([]model.Bundle, 0, d.cfg.Count),
	}

	for i := 1; i <= d.cfg.Count; i++ {
		if err := ctx.Err(); err != nil {
			return model.Population{}, fmt.Errorf("draw %d: %w", i, err)
		}

		trial := sampler.Draw(d.bank)
		bundle, err := Assemble(d.spec, d.obs, trial)
		if err != nil {
			return model.Population{}, fmt.Errorf("draw %d: %w", i, err)
		}
		pop.Bundles = append(pop.Bundles, bundle)

		if d.cfg.Progress != nil && (i%progressEvery == 0 || i == d.cfg.Count) {
			d.cfg.Progress(i, d.cfg.Count)
		}
	}
	return pop, nil
}
