package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SamplingSpec defines an ordered, evenly spaced wavelength axis in
// nanometers. It is fixed at receptor construction and shared by every draw.
type SamplingSpec struct {
	StartNM float64 `json:"start_nm"`
	StepNM  float64 `json:"step_nm"`
	Count   int     `json:"count"`
}

// Wavelengths materializes the axis.
func (s SamplingSpec) Wavelengths() []float64 {
	out := make([]float64, s.Count)
	for i := range out {
		out[i] = s.StartNM + float64(i)*s.StepNM
	}
	return out
}

// Observer holds the demographic parameters of the modeled observer. They
// parameterize the physiological model but are never resampled.
type Observer struct {
	AgeYears        float64 `json:"age_years"`
	PupilDiameterMM float64 `json:"pupil_diameter_mm"`
	FieldSizeDeg    float64 `json:"field_size_deg"`
}

// ShiftMode selects how a peak-wavelength shift is applied to the
// photopigment template.
type ShiftMode string

const (
	ShiftModeLinear ShiftMode = "linear"
	ShiftModeLog    ShiftMode = "log"
)

// Fixed row order of every sensitivity matrix. Consumers depend on it.
const (
	RowConeL = iota
	RowConeM
	RowConeS
	RowMelanopsin
	RowRod
	ReceptorRows
)

// ConeSubtypes is the number of cone rows at the top of every matrix.
const ConeSubtypes = 3

// RowLabels names the matrix rows in their fixed order.
var RowLabels = [ReceptorRows]string{"L", "M", "S", "Melanopsin", "Rod"}

// IndividualDifferences is one receptor class's deviation record from the
// reference observer. Lens and macular deviations are percent deviations
// shared across classes within a trial; photopigment density deviations
// (percent) and peak-wavelength shifts (nm) carry one entry per cone subtype
// for the cone class and a single zero entry for melanopsin and rod.
type IndividualDifferences struct {
	LensDensity         float64   `json:"dlens"`
	MacularDensity      float64   `json:"dmac"`
	PhotopigmentDensity []float64 `json:"dphotopigment"`
	LambdaMaxShift      []float64 `json:"lambda_max_shift_nm"`
	ShiftType           ShiftMode `json:"shift_type,omitempty"`
}

// TrialDifferences groups the per-class parameter records drawn for one trial.
type TrialDifferences struct {
	Cone       IndividualDifferences `json:"cone"`
	Melanopsin IndividualDifferences `json:"melanopsin"`
	Rod        IndividualDifferences `json:"rod"`
}

// Bundle is the multi-representation sensitivity set produced by one draw.
// The five matrices share shape: ReceptorRows x SamplingSpec.Count, rows in
// the fixed L, M, S, melanopsin, rod order. Sampled holds the parameters the
// draw requested; Adjusted holds the values the physiological model actually
// used after clamping.
type Bundle struct {
	Isomerizations        [][]float64      `json:"isomerizations"`
	Absorptions           [][]float64      `json:"absorptions"`
	AbsorptionsNormalized [][]float64      `json:"absorptions_normalized"`
	Energy                [][]float64      `json:"energy"`
	EnergyNormalized      [][]float64      `json:"energy_normalized"`
	Sampled               TrialDifferences `json:"sampled"`
	Adjusted              TrialDifferences `json:"adjusted"`
}

// Population is the ordered result of one resampling run. Bundle index is the
// draw identity; there is no other persistent identity.
type Population struct {
	VersionedRecord
	ID        string       `json:"id"`
	Spec      SamplingSpec `json:"spec"`
	Observer  Observer     `json:"observer"`
	Generator string       `json:"generator"`
	Seed      uint64       `json:"seed"`
	Bundles   []Bundle     `json:"bundles"`
}

// RunRecord summarizes one stored resampling run for listing.
type RunRecord struct {
	VersionedRecord
	RunID        string   `json:"run_id"`
	CreatedAtUTC string   `json:"created_at_utc"`
	Generator    string   `json:"generator"`
	Seed         uint64   `json:"seed"`
	Count        int      `json:"count"`
	Observer     Observer `json:"observer"`
	LensMean     float64  `json:"lens_mean"`
	LensSD       float64  `json:"lens_sd"`
	MacularMean  float64  `json:"macular_mean"`
	MacularSD    float64  `json:"macular_sd"`
}
