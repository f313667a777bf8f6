// Package user holds the properties of the simulated worker.
package user

import (
	"encoding/json"
	"fmt"
	"os"
)

// PathResolver locates files inside an experiment result directory.
// Implemented by experiment.Config.
type PathResolver interface {
	Path(filename string) string
}

// Properties describe the worker: reward sensitivities, time budget and
// starting reputation. Session-scoped and shared read-only across
// episodes.
type Properties struct {
	// Multipliers for the reward function.
	InterestingnessSensitivity float64 `json:"interestingness_sensitivity"`
	PayoutSensitivity          float64 `json:"payout_sensitivity"`
	TimeSensitivity            float64 `json:"time_sensitivity"`

	// TimeBudget is how much time the worker can spend on the platform;
	// it is consumed by answer and switch time costs.
	TimeBudget      float64 `json:"time_budget"`
	StartReputation float64 `json:"start_reputation"`

	// Time costs per action kind.
	RandomAnswerTime      float64 `json:"random_answer_time"`
	IntentionalAnswerTime float64 `json:"intentional_answer_time"`
	SwitchTaskTime        float64 `json:"switch_task_time"`
}

// Option overrides one of the defaulted worker timings.
type Option func(*Properties)

// WithSwitchTaskTime sets the time cost of switching between tasks.
func WithSwitchTaskTime(t float64) Option {
	return func(p *Properties) { p.SwitchTaskTime = t }
}

// WithAnswerTimes sets the time costs of negligent and diligent answers.
func WithAnswerTimes(random, intentional float64) Option {
	return func(p *Properties) {
		p.RandomAnswerTime = random
		p.IntentionalAnswerTime = intentional
	}
}

// NewProperties builds a worker profile with the default answer timings
// (negligent 0.1, diligent 1, switch 1).
func NewProperties(interestingnessSensitivity, payoutSensitivity, timeSensitivity, timeBudget, startReputation float64, opts ...Option) *Properties {
	p := &Properties{
		InterestingnessSensitivity: interestingnessSensitivity,
		PayoutSensitivity:          payoutSensitivity,
		TimeSensitivity:            timeSensitivity,
		TimeBudget:                 timeBudget,
		StartReputation:            startReputation,
		RandomAnswerTime:           0.1,
		IntentionalAnswerTime:      1,
		SwitchTaskTime:             1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

const propertiesFile = "user_properties.json"

// Save writes the worker profile as a flat key-value record into the
// experiment directory.
func (p *Properties) Save(dir PathResolver) error {
	data, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal user properties: %w", err)
	}
	return os.WriteFile(dir.Path(propertiesFile), data, 0o644)
}

// LoadProperties reads a worker profile previously written with Save.
func LoadProperties(dir PathResolver) (*Properties, error) {
	data, err := os.ReadFile(dir.Path(propertiesFile))
	if err != nil {
		return nil, err
	}
	p := &Properties{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("unmarshal user properties: %w", err)
	}
	return p, nil
}
