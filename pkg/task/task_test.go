package task

import (
	"math/rand/v2"
	"testing"
)

func testAntiCheat() *AntiCheatSettings {
	return &AntiCheatSettings{
		QAFalseMax:           2,
		QAModeProb:           1.0,
		ReputationPunishment: -0.05,
		ReputationBonus:      0.05,
		MinReputation:        0.0,
	}
}

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func wrongAnswer(t *Task) int {
	return (t.CurrentInstance().TrueLabel + 1) % NumClasses
}

func TestTaskQualityControl(t *testing.T) {
	t.Run("incorrect qa answer punishes and counts", func(t *testing.T) {
		tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 50), testAntiCheat())
		rng := testRNG(1)

		tk.GiveNewInstance(rng)
		if tk.Mode() != ModeQualityControl {
			t.Fatalf("expected quality control mode with QAModeProb=1, got %v", tk.Mode())
		}

		change := tk.ReceiveAnswer(wrongAnswer(tk))
		if change != -0.05 {
			t.Errorf("expected reputation punishment -0.05, got %v", change)
		}
		if tk.QAFalseCounter() != 1 {
			t.Errorf("expected qa false counter 1, got %d", tk.QAFalseCounter())
		}
		if tk.LastResponseType() != "qa_incorrect" {
			t.Errorf("unexpected response type %q", tk.LastResponseType())
		}
		if tk.RealInstanceCounter() != 0 {
			t.Errorf("qa round must not count as real instance, got %d", tk.RealInstanceCounter())
		}
	})

	t.Run("correct qa answer grants bonus", func(t *testing.T) {
		tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 50), testAntiCheat())
		rng := testRNG(1)

		tk.GiveNewInstance(rng)
		change := tk.ReceiveAnswer(tk.CurrentInstance().TrueLabel)
		if change != 0.05 {
			t.Errorf("expected reputation bonus 0.05, got %v", change)
		}
		if tk.QAFalseCounter() != 0 {
			t.Errorf("correct qa answer must not count as false, got %d", tk.QAFalseCounter())
		}
		if tk.LastResponseType() != "qa_correct" {
			t.Errorf("unexpected response type %q", tk.LastResponseType())
		}
	})

	t.Run("exceeding qa false threshold deactivates", func(t *testing.T) {
		tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 50), testAntiCheat())
		rng := testRNG(7)

		tk.GiveNewInstance(rng)
		tk.ReceiveAnswer(wrongAnswer(tk))
		if !tk.IsActive(1.0) {
			t.Fatal("task must stay active after the first failed qa answer")
		}

		tk.GiveNewInstance(rng)
		tk.ReceiveAnswer(wrongAnswer(tk))
		if tk.IsActive(1.0) {
			t.Error("task must deactivate on the second failed qa answer")
		}
	})
}

func TestTaskLabelMode(t *testing.T) {
	antiCheat := testAntiCheat()
	antiCheat.QAModeProb = 0 // every question is a real labeling question

	t.Run("label answers never touch reputation", func(t *testing.T) {
		tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 50), antiCheat)
		rng := testRNG(3)

		tk.GiveNewInstance(rng)
		if tk.Mode() != ModeLabel {
			t.Fatalf("expected label mode with QAModeProb=0, got %v", tk.Mode())
		}

		if change := tk.ReceiveAnswer(tk.CurrentInstance().TrueLabel); change != 0 {
			t.Errorf("correct label answer must return delta 0, got %v", change)
		}
		if tk.LastResponseType() != "correct" {
			t.Errorf("unexpected response type %q", tk.LastResponseType())
		}

		tk.GiveNewInstance(rng)
		if change := tk.ReceiveAnswer(wrongAnswer(tk)); change != 0 {
			t.Errorf("incorrect label answer must return delta 0, got %v", change)
		}
		if tk.LastResponseType() != "incorrect" {
			t.Errorf("unexpected response type %q", tk.LastResponseType())
		}
		if tk.RealInstanceCounter() != 2 {
			t.Errorf("expected 2 real instances, got %d", tk.RealInstanceCounter())
		}
	})

	t.Run("target volume deactivates", func(t *testing.T) {
		tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 1), antiCheat)
		rng := testRNG(3)

		tk.GiveNewInstance(rng)
		tk.ReceiveAnswer(tk.CurrentInstance().TrueLabel)
		if tk.IsActive(1.0) {
			t.Error("task must deactivate once the target volume is reached")
		}
	})

	t.Run("answer is recorded on the instance", func(t *testing.T) {
		tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 50), antiCheat)
		rng := testRNG(3)

		tk.GiveNewInstance(rng)
		tk.ReceiveAnswer(4)
		in := tk.CurrentInstance()
		if !in.Labeled || in.AssignedLabel != 4 {
			t.Errorf("expected assigned label 4, got %+v", in)
		}
	})
}

func TestTaskIsActive(t *testing.T) {
	antiCheat := testAntiCheat()
	antiCheat.MinReputation = 0.3
	tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 50), antiCheat)

	if tk.IsActive(0.2) {
		t.Error("task must be inactive below the minimum reputation")
	}
	if !tk.IsActive(0.3) {
		t.Error("task must be active at exactly the minimum reputation")
	}
}

func TestTaskCounters(t *testing.T) {
	antiCheat := testAntiCheat()
	antiCheat.QAModeProb = 0.5
	antiCheat.QAFalseMax = 1000
	tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 1000), antiCheat)
	rng := testRNG(11)

	for i := 0; i < 100; i++ {
		tk.GiveNewInstance(rng)
		tk.ReceiveAnswer(rng.IntN(NumClasses))
		if tk.RealInstanceCounter() > tk.InstanceCounter() {
			t.Fatalf("real instance counter %d exceeds instance counter %d",
				tk.RealInstanceCounter(), tk.InstanceCounter())
		}
	}
	if tk.InstanceCounter() != 100 {
		t.Errorf("expected 100 rounds, got %d", tk.InstanceCounter())
	}
}

func TestReceiveAnswerBeforeInstancePanics(t *testing.T) {
	tk := New(NewTaskProperties(0.5, 0.8, 0.5, 0, 50), testAntiCheat())

	defer func() {
		if recover() == nil {
			t.Error("expected panic when answering before any instance was given")
		}
	}()
	tk.ReceiveAnswer(0)
}
