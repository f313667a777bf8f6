package task

import (
	"encoding/json"
	"fmt"
	"os"
)

// NumClasses is the number of label classes every task uses.
const NumClasses = 10

// PathResolver locates files inside an experiment result directory.
// Implemented by experiment.Config.
type PathResolver interface {
	Path(filename string) string
}

// TaskProperties is the numeric profile of one task for one episode.
// The behavior of a task is all grouped in the Task type; properties
// are immutable once created by a distribution.
type TaskProperties struct {
	Payout             float64
	Expertise          float64
	Effort             float64
	Interestingness    float64
	TargetNumInstances float64
	NumClasses         int
}

// NewTaskProperties bundles a task profile with the fixed class count.
func NewTaskProperties(payout, expertise, effort, interestingness, targetNumInstances float64) TaskProperties {
	return TaskProperties{
		Payout:             payout,
		Expertise:          expertise,
		Effort:             effort,
		Interestingness:    interestingness,
		TargetNumInstances: targetNumInstances,
		NumClasses:         NumClasses,
	}
}

// AntiCheatSettings configure the methods to deter cheating: hidden
// gold questions (quality assurance / qa questions) and the reputation
// system. One instance is shared read-only by every task in every
// episode.
type AntiCheatSettings struct {
	// QAFalseMax is the maximum number of hidden gold questions the
	// worker can answer incorrectly before being banned from a task
	// (exclusive, i.e. the counter must stay strictly below it).
	QAFalseMax int `json:"qa_false_max"`
	// QAModeProb is the probability of introducing a hidden gold
	// question instead of a real labeling question.
	QAModeProb float64 `json:"qa_mode_prob"`
	// ReputationPunishment is the reputation delta for an incorrectly
	// answered gold question (-0.05 decreases reputation by 0.05).
	ReputationPunishment float64 `json:"reputation_punishment"`
	// ReputationBonus is the reputation delta for a correctly answered
	// gold question.
	ReputationBonus float64 `json:"reputation_bonus"`
	// MinReputation is the minimum reputation before the worker is
	// banned from a task.
	MinReputation float64 `json:"min_reputation"`
}

const antiCheatSettingsFile = "anti_cheat_settings.json"

// Save writes the settings as a flat key-value record into the
// experiment directory.
func (s *AntiCheatSettings) Save(dir PathResolver) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal anti-cheat settings: %w", err)
	}
	return os.WriteFile(dir.Path(antiCheatSettingsFile), data, 0o644)
}

// LoadAntiCheatSettings reads settings previously written with Save.
func LoadAntiCheatSettings(dir PathResolver) (*AntiCheatSettings, error) {
	data, err := os.ReadFile(dir.Path(antiCheatSettingsFile))
	if err != nil {
		return nil, err
	}
	settings := &AntiCheatSettings{}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("unmarshal anti-cheat settings: %w", err)
	}
	return settings, nil
}
