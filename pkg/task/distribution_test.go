package task

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// dirResolver implements PathResolver over a plain directory.
type dirResolver string

func (d dirResolver) Path(filename string) string {
	return filepath.Join(string(d), filename)
}

func TestBetaDistribution(t *testing.T) {
	t.Run("deterministic under a seed", func(t *testing.T) {
		dist := &BetaDistribution{}
		first := dist.CreateProperties(testRNG(42))
		second := dist.CreateProperties(testRNG(42))
		if first != second {
			t.Errorf("same seed must yield identical properties:\n%+v\n%+v", first, second)
		}
	})

	t.Run("properties land in the expected ranges", func(t *testing.T) {
		dist := &BetaDistribution{}
		rng := testRNG(42)
		for i := 0; i < 50; i++ {
			props := dist.CreateProperties(rng)
			if props.Payout <= 0 || props.Payout >= 1 {
				t.Errorf("payout out of (0,1): %v", props.Payout)
			}
			if props.Interestingness <= -0.5 || props.Interestingness >= 0.5 {
				t.Errorf("interestingness out of (-0.5,0.5): %v", props.Interestingness)
			}
			if props.TargetNumInstances <= 0 || props.TargetNumInstances >= 100 {
				t.Errorf("target volume out of (0,100): %v", props.TargetNumInstances)
			}
			if props.NumClasses != NumClasses {
				t.Errorf("expected %d classes, got %d", NumClasses, props.NumClasses)
			}
		}
	})
}

func TestFixedDistribution(t *testing.T) {
	t.Run("constant values with centered interestingness", func(t *testing.T) {
		dist := NewFixedDistribution()
		props := dist.CreateProperties(testRNG(1))
		want := NewTaskProperties(0.5, 0.8, 0.5, 0, 50)
		if props != want {
			t.Errorf("unexpected fixed properties: got %+v, want %+v", props, want)
		}
	})

	t.Run("consumes no randomness", func(t *testing.T) {
		used := testRNG(9)
		untouched := testRNG(9)
		NewFixedDistribution().CreateProperties(used)
		if used.Float64() != untouched.Float64() {
			t.Error("fixed distribution must not consume randomness")
		}
	})
}

func TestDistributionStrings(t *testing.T) {
	cases := []struct {
		dist PropertiesDistribution
		want string
	}{
		{&BetaDistribution{}, "BetaDistribution"},
		{
			NewCustomBetaDistribution(),
			"CustomBetaDistribution(effort:(10,10);expertise:(40,10);interestingness:(10,10);payout:(10,10);target_num_instances:(10,10);target_num_instances_scale:100)",
		},
		{
			NewFixedDistribution(),
			"FixedDistribution(effort:0.5;expertise:0.8;interestingness:0.5;payout:0.5;target_num_instances:50)",
		},
	}
	for _, c := range cases {
		if got := c.dist.String(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}

func TestSaveLoadDistributions(t *testing.T) {
	dir := dirResolver(t.TempDir())
	list := []PropertiesDistribution{
		&BetaDistribution{},
		NewCustomBetaDistribution(),
		NewFixedDistribution(),
	}

	if err := SaveDistributions(list, dir); err != nil {
		t.Fatalf("SaveDistributions failed: %v", err)
	}

	loaded, err := LoadDistributions(dir)
	if err != nil {
		t.Fatalf("LoadDistributions failed: %v", err)
	}
	if !reflect.DeepEqual(list, loaded) {
		t.Errorf("round-trip mismatch:\n%v\n%v", list, loaded)
	}

	text, err := os.ReadFile(dir.Path("task_properties_distributions.txt"))
	if err != nil {
		t.Fatalf("text rendering missing: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(text), "\n"), "\n")
	if len(lines) != len(list) {
		t.Fatalf("expected %d lines, got %d", len(list), len(lines))
	}
	for i, d := range list {
		if lines[i] != d.String() {
			t.Errorf("line %d: got %q, want %q", i, lines[i], d.String())
		}
	}
}

func TestAntiCheatSettingsSaveLoad(t *testing.T) {
	dir := dirResolver(t.TempDir())
	settings := &AntiCheatSettings{
		QAFalseMax:           3,
		QAModeProb:           0.1,
		ReputationPunishment: -0.05,
		ReputationBonus:      0.05,
		MinReputation:        0.3,
	}

	if err := settings.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadAntiCheatSettings(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *settings {
		t.Errorf("round-trip mismatch: got %+v, want %+v", loaded, settings)
	}
}
