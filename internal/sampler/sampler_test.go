package sampler

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/stat"

	"opsin/internal/streams"
)

func newBank(t *testing.T, seed uint64) *streams.Bank {
	t.Helper()
	bank, err := streams.NewBank(streams.GeneratorMCG16807, seed)
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	return bank
}

func TestDrawSharesWholeEyeDeviations(t *testing.T) {
	bank := newBank(t, 1)
	for i := 0; i < 20; i++ {
		trial := Draw(bank)
		if trial.Cone.LensDensity != trial.Melanopsin.LensDensity ||
			trial.Cone.LensDensity != trial.Rod.LensDensity {
			t.Fatalf("draw %d: lens deviation not shared across classes", i)
		}
		if trial.Cone.MacularDensity != trial.Melanopsin.MacularDensity ||
			trial.Cone.MacularDensity != trial.Rod.MacularDensity {
			t.Fatalf("draw %d: macular deviation not shared across classes", i)
		}
	}
}

func TestDrawKeepsMelanopsinAndRodFixed(t *testing.T) {
	bank := newBank(t, 2)
	for i := 0; i < 20; i++ {
		trial := Draw(bank)
		for _, rec := range []struct {
			name string
			diff []float64
		}{
			{"melanopsin density", trial.Melanopsin.PhotopigmentDensity},
			{"melanopsin shift", trial.Melanopsin.LambdaMaxShift},
			{"rod density", trial.Rod.PhotopigmentDensity},
			{"rod shift", trial.Rod.LambdaMaxShift},
		} {
			if len(rec.diff) != 1 || rec.diff[0] != 0 {
				t.Fatalf("draw %d: %s not fixed at zero: %v", i, rec.name, rec.diff)
			}
		}
	}
}

func TestDrawConeVectorShapes(t *testing.T) {
	bank := newBank(t, 3)
	trial := Draw(bank)
	if len(trial.Cone.PhotopigmentDensity) != 3 || len(trial.Cone.LambdaMaxShift) != 3 {
		t.Fatalf("cone record wants 3 values per vector, got %d and %d",
			len(trial.Cone.PhotopigmentDensity), len(trial.Cone.LambdaMaxShift))
	}
	if trial.Cone.ShiftType != "linear" {
		t.Fatalf("stochastic draws must use the linear shift mode, got %q", trial.Cone.ShiftType)
	}
}

func TestDrawReproducibility(t *testing.T) {
	a := newBank(t, 11)
	b := newBank(t, 11)
	for i := 0; i < 50; i++ {
		ta, tb := Draw(a), Draw(b)
		if !reflect.DeepEqual(ta, tb) {
			t.Fatalf("draw %d differs between identically seeded banks", i)
		}
	}
}

func TestDrawDistributions(t *testing.T) {
	const n = 4000
	bank := newBank(t, 5)

	lens := make([]float64, n)
	macular := make([]float64, n)
	shiftS := make([]float64, n)
	for i := 0; i < n; i++ {
		trial := Draw(bank)
		lens[i] = trial.Cone.LensDensity
		macular[i] = trial.Cone.MacularDensity
		shiftS[i] = trial.Cone.LambdaMaxShift[2]
	}

	cases := []struct {
		name   string
		xs     []float64
		wantSD float64
	}{
		{"lens", lens, LensSD},
		{"macular", macular, MacularSD},
		{"shift S", shiftS, ShiftSSD},
	}
	for _, c := range cases {
		mean := stat.Mean(c.xs, nil)
		sd := stat.StdDev(c.xs, nil)
		if math.Abs(mean) > c.wantSD/10 {
			t.Errorf("%s: sample mean %g too far from 0", c.name, mean)
		}
		if math.Abs(sd-c.wantSD) > c.wantSD/10 {
			t.Errorf("%s: sample sd %g, want about %g", c.name, sd, c.wantSD)
		}
	}
}
