package task

import (
	"fmt"
	"math/rand/v2"
)

// Mode says what kind of question the task handed out last.
type Mode int

const (
	// ModeUnset means no instance has been handed out yet.
	ModeUnset Mode = iota
	// ModeQualityControl marks a hidden, known-answer gold question.
	ModeQualityControl
	// ModeLabel marks an actual labeling (unknown answer) question.
	ModeLabel
)

// Task is the per-task-giver state machine. Each round it decides
// whether to pose a hidden quality-control question or a real labeling
// question, grades the answer, and tracks how far the worker is from
// being banned or done. A Task lives for exactly one episode.
type Task struct {
	properties TaskProperties
	antiCheat  *AntiCheatSettings

	mode            Mode
	currentInstance Instance

	instanceCounter     int // rounds of labeling the worker has done
	realInstanceCounter int // without the QA instances
	qaFalseCounter      int // QA instances answered incorrectly

	lastResponseType string // what the last response was (correct, failed qa, ...)
}

// New wraps a task profile and the shared anti-cheat settings into a
// fresh task.
func New(properties TaskProperties, antiCheat *AntiCheatSettings) *Task {
	return &Task{
		properties:       properties,
		antiCheat:        antiCheat,
		lastResponseType: "not-set",
	}
}

// GiveNewInstance draws the next question: with probability QAModeProb
// a hidden gold question, otherwise a real labeling question. The
// previous instance is discarded.
func (t *Task) GiveNewInstance(rng *rand.Rand) {
	if rng.Float64() < t.antiCheat.QAModeProb {
		t.mode = ModeQualityControl
		t.currentInstance = t.nextKnownAnswerInstance(rng)
	} else {
		t.mode = ModeLabel
		t.currentInstance = t.nextUnlabeledInstance(rng)
	}
}

// No persistent labeled corpus is modeled, so an "unlabeled" instance
// carries a hidden ground-truth label drawn the same way as a gold
// question. The caller never sees it; it is used for grading only.
func (t *Task) nextUnlabeledInstance(rng *rand.Rand) Instance {
	return t.nextKnownAnswerInstance(rng)
}

func (t *Task) nextKnownAnswerInstance(rng *rand.Rand) Instance {
	return Instance{TrueLabel: rng.IntN(t.properties.NumClasses)}
}

// ReceiveAnswer grades the worker's answer to the current instance and
// returns the resulting reputation delta. The caller applies and clamps
// the delta; the task never touches worker reputation directly.
// Calling ReceiveAnswer before any GiveNewInstance is a programmer
// error and panics.
func (t *Task) ReceiveAnswer(answer int) float64 {
	if t.mode == ModeUnset {
		panic("task: ReceiveAnswer called before GiveNewInstance")
	}

	t.instanceCounter++
	t.currentInstance.Assign(answer)

	var reputationChange float64
	switch t.mode {
	case ModeQualityControl:
		if answer != t.currentInstance.TrueLabel {
			t.qaFalseCounter++
			reputationChange = t.antiCheat.ReputationPunishment
			t.lastResponseType = "qa_incorrect"
		} else {
			reputationChange = t.antiCheat.ReputationBonus
			t.lastResponseType = "qa_correct"
		}
	case ModeLabel:
		// Real answers track labeling progress but never touch
		// reputation; trust is assessed via gold questions only.
		t.realInstanceCounter++
		if answer != t.currentInstance.TrueLabel {
			t.lastResponseType = "incorrect"
		} else {
			t.lastResponseType = "correct"
		}
	}

	return reputationChange
}

// IsActive reports whether the task still accepts answers: under its
// target volume, under its QA-failure cap, and with the worker's
// reputation above the task-giver's minimum. Pure, no side effects.
func (t *Task) IsActive(currentUserReputation float64) bool {
	return float64(t.realInstanceCounter) < t.properties.TargetNumInstances &&
		t.qaFalseCounter < t.antiCheat.QAFalseMax &&
		currentUserReputation >= t.antiCheat.MinReputation
}

// Properties returns the task profile drawn for this episode.
func (t *Task) Properties() TaskProperties { return t.properties }

// Mode returns the kind of the current question.
func (t *Task) Mode() Mode { return t.mode }

// CurrentInstance returns the question handed out last.
func (t *Task) CurrentInstance() Instance { return t.currentInstance }

// InstanceCounter returns how many rounds the worker has done on this
// task, QA rounds included.
func (t *Task) InstanceCounter() int { return t.instanceCounter }

// RealInstanceCounter returns the rounds without the QA instances.
func (t *Task) RealInstanceCounter() int { return t.realInstanceCounter }

// QAFalseCounter returns how many gold questions were answered
// incorrectly.
func (t *Task) QAFalseCounter() int { return t.qaFalseCounter }

// LastResponseType describes the last graded answer, for logging.
func (t *Task) LastResponseType() string { return t.lastResponseType }

func (t *Task) String() string {
	return fmt.Sprintf("Task (%d instances labeled with %d real instances and %d QA answers failed)",
		t.instanceCounter, t.realInstanceCounter, t.qaFalseCounter)
}
