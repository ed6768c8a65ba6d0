package scoring

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights scales each reward term.
type Weights struct {
	Victory          float64 `yaml:"victory"`
	Defeat           float64 `yaml:"defeat"`
	BossDamage       float64 `yaml:"boss_damage"`
	HullDamage       float64 `yaml:"hull_damage"`
	HazardCleanup    float64 `yaml:"hazard_cleanup"`
	SystemRepair     float64 `yaml:"system_repair"`
	HealthRestore    float64 `yaml:"health_restore"`
	SituationResolve float64 `yaml:"situation_resolve"`
	Pickup           float64 `yaml:"pickup"`
	Drop             float64 `yaml:"drop"`
	Defensive        float64 `yaml:"defensive"`
	Survival         float64 `yaml:"survival"`
	Turn             float64 `yaml:"turn"`
	StepPerAP        float64 `yaml:"step_per_ap"`
}

// DefaultWeights returns the training defaults. Drop must stay above
// Pickup+Survival so pick-up/drop loops lose reward.
func DefaultWeights() Weights {
	return Weights{
		Victory:          1000,
		Defeat:           -200,
		BossDamage:       5,
		HullDamage:       10,
		HazardCleanup:    1.5,
		SystemRepair:     1.5,
		HealthRestore:    0.5,
		SituationResolve: 5,
		Pickup:           0.4,
		Drop:             0.6,
		Defensive:        0.5,
		Survival:         0.1,
		Turn:             2.2,
		StepPerAP:        0.1,
	}
}

// DecodeWeights overlays YAML from r onto the defaults. Keys absent from
// the document keep their default value.
func DecodeWeights(r io.Reader) (Weights, error) {
	w := DefaultWeights()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil && err != io.EOF {
		return Weights{}, fmt.Errorf("decode scoring weights: %w", err)
	}
	return w, nil
}

// LoadWeights reads a YAML weights file.
func LoadWeights(path string) (Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return Weights{}, fmt.Errorf("open scoring weights: %w", err)
	}
	defer f.Close()
	return DecodeWeights(f)
}
