package storage

import (
	"errors"
	"testing"

	"opsin/internal/model"
)

func TestPopulationCodecRoundTrip(t *testing.T) {
	pop := model.Population{
		VersionedRecord: Stamp(),
		ID:              "run-1",
		Generator:       "mcg16807",
		Seed:            42,
		Spec:            model.SamplingSpec{StartNM: 380, StepNM: 2, Count: 2},
		Observer:        model.Observer{AgeYears: 32, PupilDiameterMM: 3, FieldSizeDeg: 10},
		Bundles: []model.Bundle{{
			Isomerizations: [][]float64{{1, 2}},
			Sampled: model.TrialDifferences{
				Cone: model.IndividualDifferences{LensDensity: -3.5},
			},
		}},
	}

	data, err := EncodePopulation(pop)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodePopulation(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != pop.ID || got.Seed != pop.Seed {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Bundles[0].Sampled.Cone.LensDensity != -3.5 {
		t.Fatal("sampled parameters lost in round trip")
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	pop := model.Population{ID: "run-1"} // zero schema/codec versions
	data, err := EncodePopulation(pop)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodePopulation(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("got %v, want ErrVersionMismatch", err)
	}
}

func TestRunRecordCodec(t *testing.T) {
	record := model.RunRecord{
		VersionedRecord: Stamp(),
		RunID:           "run-2",
		Generator:       "pcg",
		Count:           5,
		LensSD:          18.7,
	}
	data, err := EncodeRun(record)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeRun(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != "run-2" || got.LensSD != 18.7 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
