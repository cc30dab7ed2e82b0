package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	opsinapi "opsin/pkg/opsin"
)

// resampleConfig mirrors ResampleRequest for YAML run files. Count is
// decoded as a raw node so a non-integer value is rejected as invalid
// configuration instead of being truncated.
type resampleConfig struct {
	Count     yaml.Node `yaml:"count"`
	Generator string    `yaml:"generator"`
	Seed      uint64    `yaml:"seed"`
	RunID     string    `yaml:"run_id"`
	Verbose   bool      `yaml:"verbose"`
	Save      *bool     `yaml:"save"`

	Age     float64 `yaml:"age_years"`
	Pupil   float64 `yaml:"pupil_diameter_mm"`
	Field   float64 `yaml:"field_size_deg"`
	Start   float64 `yaml:"start_nm"`
	Step    float64 `yaml:"step_nm"`
	Samples int     `yaml:"samples"`
}

func loadResampleConfig(path string) (opsinapi.ResampleRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return opsinapi.ResampleRequest{}, err
	}

	var cfg resampleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return opsinapi.ResampleRequest{}, fmt.Errorf("parse %s: %w", path, err)
	}

	req := opsinapi.ResampleRequest{
		Observer: opsinapi.ObserverSpec{
			AgeYears:        cfg.Age,
			PupilDiameterMM: cfg.Pupil,
			FieldSizeDeg:    cfg.Field,
			StartNM:         cfg.Start,
			StepNM:          cfg.Step,
			Samples:         cfg.Samples,
		},
		Generator: cfg.Generator,
		Seed:      cfg.Seed,
		RunID:     cfg.RunID,
		Verbose:   cfg.Verbose,
		Save:      true,
	}
	if cfg.Save != nil {
		req.Save = *cfg.Save
	}

	if !cfg.Count.IsZero() {
		// yaml.v3 truncates a float when decoding into an int, so the node's
		// tag is checked before decoding.
		if cfg.Count.Tag != "!!int" {
			return opsinapi.ResampleRequest{}, fmt.Errorf("draw count must be an integer, got %s", cfg.Count.Value)
		}
		var count int
		if err := cfg.Count.Decode(&count); err != nil {
			return opsinapi.ResampleRequest{}, fmt.Errorf("draw count must be an integer: %w", err)
		}
		req.Count = count
	}
	return req, nil
}
