package main

import (
	"math"

	"github.com/pthm-cable/hawkdove/config"
)

// ParamSpec defines a single tunable parameter. All tunables are integer
// config fields; the optimizer works on a continuous relaxation.
type ParamSpec struct {
	Name string // Human-readable name
	Path string // Config path for logging
	Min  float64
	Max  float64
}

// ParamVector holds the parameters being tuned, in optimizer order.
type ParamVector struct {
	Specs []ParamSpec
}

// allSpecs lists every parameter calibrate knows how to tune.
var allSpecs = []ParamSpec{
	{Name: "fight_cost", Path: "energy.fight_cost", Min: 0, Max: 200},
	{Name: "loss_per_round", Path: "energy.loss_per_round", Min: 0, Max: 40},
	{Name: "required_for_reproduction", Path: "energy.required_for_reproduction", Min: 50, Max: 1000},
}

// NewParamVector selects the named parameters. Unknown names are reported
// through ok=false.
func NewParamVector(names []string) (pv *ParamVector, unknown string, ok bool) {
	pv = &ParamVector{}
	for _, name := range names {
		found := false
		for _, spec := range allSpecs {
			if spec.Name == name {
				pv.Specs = append(pv.Specs, spec)
				found = true
				break
			}
		}
		if !found {
			return nil, name, false
		}
	}
	return pv, "", true
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds every value and rounds it to the integer the config will hold.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Round(math.Min(math.Max(v[i], spec.Min), spec.Max))
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg and recomputes derived fields.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		v := int(clamped[i])
		switch spec.Name {
		case "fight_cost":
			cfg.Energy.FightCost = v
		case "loss_per_round":
			cfg.Energy.LossPerRound = v
		case "required_for_reproduction":
			cfg.Energy.RequiredForReproduction = v
		}
	}
	cfg.ComputeDerived()
}

// ExtractFromConfig reads the current values of the tuned parameters.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "fight_cost":
			out[i] = float64(cfg.Energy.FightCost)
		case "loss_per_round":
			out[i] = float64(cfg.Energy.LossPerRound)
		case "required_for_reproduction":
			out[i] = float64(cfg.Energy.RequiredForReproduction)
		}
	}
	return out
}
