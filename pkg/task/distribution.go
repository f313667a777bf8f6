package task

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat/distuv"
)

// PropertiesDistribution represents a task-giver that provides the
// properties of a task in each episode. The variant set is closed:
// BetaDistribution, CustomBetaDistribution and FixedDistribution.
type PropertiesDistribution interface {
	// CreateProperties draws the task profile for a fresh episode.
	CreateProperties(rng *rand.Rand) TaskProperties
	// String returns a stable, deterministic description of the
	// task-giver (type name plus sorted field:value pairs).
	String() string
}

func init() {
	gob.Register(&BetaDistribution{})
	gob.Register(&CustomBetaDistribution{})
	gob.Register(&FixedDistribution{})
}

func sampleBeta(rng *rand.Rand, alpha, beta float64) float64 {
	return distuv.Beta{Alpha: alpha, Beta: beta, Src: rng}.Rand()
}

// BetaParams are the two shape parameters of a beta distribution.
type BetaParams struct {
	A float64
	B float64
}

// BetaDistribution draws every property from fixed beta shapes.
type BetaDistribution struct{}

func (d *BetaDistribution) CreateProperties(rng *rand.Rand) TaskProperties {
	return NewTaskProperties(
		sampleBeta(rng, 10, 10),
		sampleBeta(rng, 40, 10),
		sampleBeta(rng, 10, 10),
		sampleBeta(rng, 10, 10)-0.5,
		sampleBeta(rng, 10, 10)*100,
	)
}

func (d *BetaDistribution) String() string {
	return "BetaDistribution"
}

// CustomBetaDistribution draws the properties from beta distributions
// with caller-supplied shape parameters. All values are in [0,1]; the
// target instance count is scaled up by TargetNumInstancesScale.
type CustomBetaDistribution struct {
	Payout                  BetaParams
	Expertise               BetaParams
	Effort                  BetaParams
	Interestingness         BetaParams
	TargetNumInstances      BetaParams
	TargetNumInstancesScale float64
}

// NewCustomBetaDistribution returns a custom task-giver with the same
// default shapes as BetaDistribution.
func NewCustomBetaDistribution() *CustomBetaDistribution {
	return &CustomBetaDistribution{
		Payout:                  BetaParams{10, 10},
		Expertise:               BetaParams{40, 10},
		Effort:                  BetaParams{10, 10},
		Interestingness:         BetaParams{10, 10},
		TargetNumInstances:      BetaParams{10, 10},
		TargetNumInstancesScale: 100,
	}
}

func (d *CustomBetaDistribution) CreateProperties(rng *rand.Rand) TaskProperties {
	return NewTaskProperties(
		sampleBeta(rng, d.Payout.A, d.Payout.B),
		sampleBeta(rng, d.Expertise.A, d.Expertise.B),
		sampleBeta(rng, d.Effort.A, d.Effort.B),
		sampleBeta(rng, d.Interestingness.A, d.Interestingness.B)-0.5,
		sampleBeta(rng, d.TargetNumInstances.A, d.TargetNumInstances.B)*d.TargetNumInstancesScale,
	)
}

func (d *CustomBetaDistribution) String() string {
	return fmt.Sprintf(
		"CustomBetaDistribution(effort:(%g,%g);expertise:(%g,%g);interestingness:(%g,%g);payout:(%g,%g);target_num_instances:(%g,%g);target_num_instances_scale:%g)",
		d.Effort.A, d.Effort.B,
		d.Expertise.A, d.Expertise.B,
		d.Interestingness.A, d.Interestingness.B,
		d.Payout.A, d.Payout.B,
		d.TargetNumInstances.A, d.TargetNumInstances.B,
		d.TargetNumInstancesScale,
	)
}

// FixedDistribution returns the same task profile every episode and
// consumes no randomness. For a more controlled environment.
type FixedDistribution struct {
	Payout             float64
	Expertise          float64
	Effort             float64
	Interestingness    float64
	TargetNumInstances float64
}

// NewFixedDistribution returns a fixed task-giver with the default
// profile used in controlled experiments.
func NewFixedDistribution() *FixedDistribution {
	return &FixedDistribution{
		Payout:             0.5,
		Expertise:          0.8,
		Effort:             0.5,
		Interestingness:    0.5,
		TargetNumInstances: 50,
	}
}

func (d *FixedDistribution) CreateProperties(rng *rand.Rand) TaskProperties {
	// Interestingness is centered around 0 like in the beta variants.
	return NewTaskProperties(d.Payout, d.Expertise, d.Effort, d.Interestingness-0.5, d.TargetNumInstances)
}

func (d *FixedDistribution) String() string {
	return fmt.Sprintf(
		"FixedDistribution(effort:%g;expertise:%g;interestingness:%g;payout:%g;target_num_instances:%g)",
		d.Effort, d.Expertise, d.Interestingness, d.Payout, d.TargetNumInstances,
	)
}

const (
	distributionsGobFile = "task_properties_distributions.gob"
	distributionsTxtFile = "task_properties_distributions.txt"
)

// SaveDistributions stores a list of task-givers both in
// machine-readable (gob) and human-readable form. The text form is for
// inspection only and is never parsed back.
func SaveDistributions(list []PropertiesDistribution, dir PathResolver) error {
	var text bytes.Buffer
	for _, d := range list {
		text.WriteString(d.String())
		text.WriteString("\n")
	}
	if err := os.WriteFile(dir.Path(distributionsTxtFile), text.Bytes(), 0o644); err != nil {
		return err
	}

	var blob bytes.Buffer
	if err := gob.NewEncoder(&blob).Encode(&list); err != nil {
		return fmt.Errorf("encode distributions: %w", err)
	}
	return os.WriteFile(dir.Path(distributionsGobFile), blob.Bytes(), 0o644)
}

// LoadDistributions reconstructs a list of task-givers stored with
// SaveDistributions.
func LoadDistributions(dir PathResolver) ([]PropertiesDistribution, error) {
	data, err := os.ReadFile(dir.Path(distributionsGobFile))
	if err != nil {
		return nil, err
	}
	var list []PropertiesDistribution
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode distributions: %w", err)
	}
	return list, nil
}
