// Package tuning loads the runtime parameters shared by the server and the
// local tools from configs/tuning.yaml.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Area          []int   `yaml:"area"`
	ViewRadius    int     `yaml:"view_radius"`
	DayLength     int     `yaml:"day_length"`
	EpisodeLength int     `yaml:"episode_length"`
	TaskTimeout   int     `yaml:"task_timeout_steps"`
	CarryOverProb float64 `yaml:"carry_over_prob"`
	DummyBits     int     `yaml:"dummy_bits"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	if len(t.Area) != 2 {
		return t, fmt.Errorf("tuning.yaml: area must be [width, height], got %v", t.Area)
	}
	return t, nil
}

// Defaults returns the built-in tuning used when no file is present.
func Defaults() Tuning {
	var t Tuning
	t.applyDefaults()
	return t
}

func (t *Tuning) applyDefaults() {
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = "1.0"
	}
	if len(t.Area) == 0 {
		t.Area = []int{64, 64}
	}
	if t.ViewRadius <= 0 {
		t.ViewRadius = 4
	}
	if t.DayLength <= 0 {
		t.DayLength = 300
	}
	if t.EpisodeLength <= 0 {
		t.EpisodeLength = 1500
	}
	if t.TaskTimeout <= 0 {
		t.TaskTimeout = 300
	}
	if t.CarryOverProb <= 0 || t.CarryOverProb > 1 {
		t.CarryOverProb = 0.5
	}
	if t.DummyBits <= 0 {
		t.DummyBits = 10
	}
}
