// Package environment models a crowdworking labeling platform as a
// stochastic, turn-based RL environment.
package environment

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"crowdsim/pkg/task"
	"crowdsim/pkg/user"
)

// Action indices understood by Step. Actions at ActionSwitchTask0 and
// above switch to task (action - ActionSwitchTask0).
const (
	ActionQuit              = 0
	ActionAnswerNegligently = 1
	ActionAnswerDiligently  = 2
	ActionSwitchTask0       = 3
)

// NoTaskSelected is the current-task value when the worker is not
// working on any task. The observation vector emits it literally.
const NoTaskSelected = -1

// Episode end reasons reported in StepResult.Info["end_reason"].
const (
	EndReasonUserQuit   = "user_quit"
	EndReasonTimeBudget = "end_of_user_time_budget"
)

var (
	// ErrInvalidAction is returned by Step for indices outside the
	// action space.
	ErrInvalidAction = errors.New("environment: action outside action space")
	// ErrNotSeeded is returned by Reset when Seed has not been called.
	ErrNotSeeded = errors.New("environment: Seed must be called before Reset")
	// ErrNotReset is returned by Step before the first Reset.
	ErrNotReset = errors.New("environment: Reset must be called before Step")
)

// StepResult is what one environment transition hands back to the
// agent.
type StepResult struct {
	Observation []float64
	Reward      float64
	Done        bool
	Info        map[string]string
}

// Env is the crowdworking platform as a turn-based environment: the
// agent picks among quitting, answering the current question
// negligently or diligently, and switching between tasks, while the
// environment tracks reputation, time budget and per-task state.
//
// All randomness flows through the single generator installed by Seed;
// given an identical seed and action sequence, the observation, reward
// and termination sequences are bit-identical.
type Env struct {
	userProperties *user.Properties
	distributions  []task.PropertiesDistribution
	antiCheat      *task.AntiCheatSettings

	numTasks int

	// ActionSpace samples uniform random actions for scripted rollouts;
	// it is reseeded together with the environment.
	ActionSpace *Discrete

	tasks []*task.Task
	// taskDistMap maps task slot index to the index of the distribution
	// that created it. The slots are shuffled every episode so the
	// agent cannot learn which slot belongs to which task-giver; the
	// map lets analysis recover the assignment.
	taskDistMap []int

	currentTask int
	reputation  float64
	timeSpent   float64
	lastAction  int

	rng *rand.Rand
}

// New builds an environment over one task slot per distribution. Seed
// must be called before the first Reset.
func New(userProperties *user.Properties, distributions []task.PropertiesDistribution, antiCheat *task.AntiCheatSettings) *Env {
	numTasks := len(distributions)
	return &Env{
		userProperties: userProperties,
		distributions:  distributions,
		antiCheat:      antiCheat,
		numTasks:       numTasks,
		ActionSpace:    NewDiscrete(3 + numTasks),
		currentTask:    NoTaskSelected,
		reputation:     -1,
		lastAction:     -1,
	}
}

// Seed (re)initializes the environment's generator and the action
// space's sampler for reproducibility.
func (e *Env) Seed(seed uint64) {
	e.rng = rand.New(rand.NewPCG(seed, seed))
	e.ActionSpace.Seed(seed)
}

// Reset starts a new episode: every task-giver draws fresh task
// properties, the tasks are assigned to shuffled slots, and the worker
// state is reinitialized. Returns the initial observation.
func (e *Env) Reset() ([]float64, error) {
	if e.rng == nil {
		return nil, ErrNotSeeded
	}

	newTasks := make([]*task.Task, 0, e.numTasks)
	for _, dist := range e.distributions {
		newTasks = append(newTasks, task.New(dist.CreateProperties(e.rng), e.antiCheat))
	}

	// Shuffle the tasks so that even with differing task-givers the
	// agent cannot tell which is which, but keep the mapping so the
	// originating distribution of each slot stays recoverable.
	e.tasks = make([]*task.Task, e.numTasks)
	e.taskDistMap = make([]int, e.numTasks)
	for slot, distIdx := range e.rng.Perm(e.numTasks) {
		e.tasks[slot] = newTasks[distIdx]
		e.taskDistMap[slot] = distIdx
	}

	e.currentTask = NoTaskSelected
	e.lastAction = -1
	e.timeSpent = 0
	e.reputation = e.userProperties.StartReputation

	return e.createObservation(), nil
}

// Step executes one worker action and returns the transition.
func (e *Env) Step(action int) (StepResult, error) {
	if e.tasks == nil {
		return StepResult{}, ErrNotReset
	}
	if !e.ActionSpace.Contains(action) {
		return StepResult{}, fmt.Errorf("%w: %d", ErrInvalidAction, action)
	}
	e.lastAction = action

	info := map[string]string{}

	// Worker quits: reward for using the remaining time for something
	// else.
	if action == ActionQuit {
		reward := (e.userProperties.TimeBudget - e.timeSpent) * e.userProperties.TimeSensitivity
		info["end_reason"] = EndReasonUserQuit
		return StepResult{e.createObservation(), reward, true, info}, nil
	}

	// Worker ran out of time. Checked against the time accumulated
	// before this action.
	if e.timeSpent > e.userProperties.TimeBudget {
		info["end_reason"] = EndReasonTimeBudget
		return StepResult{e.createObservation(), 0, true, info}, nil
	}

	if action == ActionAnswerNegligently || action == ActionAnswerDiligently {
		return e.stepAnswer(action, info), nil
	}
	return e.stepSwitch(action, info), nil
}

func (e *Env) stepAnswer(action int, info map[string]string) StepResult {
	// No task selected, or the selected task no longer hands out
	// questions; answering does not make sense.
	if e.currentTask == NoTaskSelected || !e.tasks[e.currentTask].IsActive(e.reputation) {
		e.timeSpent += e.userProperties.RandomAnswerTime
		return StepResult{e.createObservation(), -1, false, info}
	}

	current := e.tasks[e.currentTask]
	props := current.Properties()

	rewardPayout := e.userProperties.PayoutSensitivity * props.Payout

	var timeSpent, reward float64
	var answer int
	if action == ActionAnswerNegligently {
		timeSpent = e.userProperties.RandomAnswerTime
		answer = e.rng.IntN(props.NumClasses)
		reward = rewardPayout // only monetary reward
	} else {
		timeSpent = e.userProperties.IntentionalAnswerTime * props.Effort
		if e.rng.Float64() < props.Expertise {
			answer = current.CurrentInstance().TrueLabel
		} else {
			answer = e.rng.IntN(props.NumClasses)
		}
		// monetary + interestingness reward
		reward = rewardPayout + e.userProperties.InterestingnessSensitivity*props.Interestingness
	}
	e.timeSpent += timeSpent

	reputationChange := current.ReceiveAnswer(answer)
	e.reputation = clamp01(e.reputation + reputationChange)

	// The task-giver bans the worker or has run out of questions and no
	// longer supplies new ones.
	if !current.IsActive(e.reputation) {
		e.currentTask = NoTaskSelected
	} else {
		current.GiveNewInstance(e.rng)
	}

	return StepResult{e.createObservation(), reward, false, info}
}

func (e *Env) stepSwitch(action int, info map[string]string) StepResult {
	previous := e.currentTask
	target := action - ActionSwitchTask0

	// The switch is charged even when it fails.
	e.timeSpent += e.userProperties.SwitchTaskTime

	// Switching to an inactive task never leaves the worker on it.
	if !e.tasks[target].IsActive(e.reputation) {
		e.currentTask = NoTaskSelected
		return StepResult{e.createObservation(), -1, false, info}
	}

	e.currentTask = target

	// Switching to the task the worker is already on is redundant and
	// penalized, but still draws a fresh question. An agent can use it
	// to buy a new question within the same task.
	reward := 0.0
	if previous == target {
		reward = -1
	}
	e.tasks[target].GiveNewInstance(e.rng)

	return StepResult{e.createObservation(), reward, false, info}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NumTasks returns the number of task slots per episode.
func (e *Env) NumTasks() int { return e.numTasks }

// NumActions returns the size of the action space.
func (e *Env) NumActions() int { return 3 + e.numTasks }

// TaskAt returns the task in the given slot of the current episode.
func (e *Env) TaskAt(slot int) *task.Task { return e.tasks[slot] }

// TaskDistributionMap returns a copy of the slot-to-distribution-index
// mapping of the current episode. It is a bijection over the slots.
func (e *Env) TaskDistributionMap() []int {
	m := make([]int, len(e.taskDistMap))
	copy(m, e.taskDistMap)
	return m
}

// CurrentTask returns the selected task slot or NoTaskSelected.
func (e *Env) CurrentTask() int { return e.currentTask }

// Reputation returns the worker's current reputation in [0,1].
func (e *Env) Reputation() float64 { return e.reputation }

// TimeSpent returns the time the worker has consumed this episode.
func (e *Env) TimeSpent() float64 { return e.timeSpent }

// LastAction returns the last action passed to Step, or -1.
func (e *Env) LastAction() int { return e.lastAction }

// UserProperties returns the worker profile driving the rewards.
func (e *Env) UserProperties() *user.Properties { return e.userProperties }

// AntiCheatSettings returns the shared anti-cheat configuration.
func (e *Env) AntiCheatSettings() *task.AntiCheatSettings { return e.antiCheat }

// Distributions returns the task-givers, in construction order.
func (e *Env) Distributions() []task.PropertiesDistribution { return e.distributions }

// ActionToStr maps an action index to its name representation, e.g. 0
// to "QUIT" or 1 to "ANSWER NEGLIGENTLY". Unknown indices map to "".
func ActionToStr(actionIdx int) string {
	switch {
	case actionIdx == ActionQuit:
		return "QUIT"
	case actionIdx == ActionAnswerNegligently:
		return "ANSWER NEGLIGENTLY"
	case actionIdx == ActionAnswerDiligently:
		return "ANSWER DILIGENTLY"
	case actionIdx >= ActionSwitchTask0:
		return fmt.Sprintf("SWITCH TO TASK %d", actionIdx-ActionSwitchTask0)
	}
	return ""
}
