// Package agent provides the policies that drive the environment. The
// actual learning algorithm is a black box behind the Agent interface;
// the implementations here exist for scripted and smoke-test rollouts.
package agent

import (
	"github.com/google/uuid"

	"crowdsim/pkg/environment"
)

// Agent selects the next action from an observation.
type Agent interface {
	ID() string
	Act(obs []float64) int
}

// RandomAgent samples uniformly from the environment's action space, so
// a whole rollout is reproduced by the environment's Seed call.
type RandomAgent struct {
	id    string
	space *environment.Discrete
}

// NewRandomAgent creates a random policy over the given action space.
func NewRandomAgent(space *environment.Discrete) *RandomAgent {
	return &RandomAgent{
		id:    "agent-" + uuid.New().String(),
		space: space,
	}
}

func (a *RandomAgent) ID() string { return a.id }

func (a *RandomAgent) Act(obs []float64) int {
	return a.space.Sample()
}

// ScriptedAgent replays a fixed sequence of actions and quits once the
// script is exhausted.
type ScriptedAgent struct {
	id      string
	actions []int
	next    int
}

// NewScriptedAgent creates a policy that plays the given actions in
// order.
func NewScriptedAgent(actions []int) *ScriptedAgent {
	return &ScriptedAgent{
		id:      "agent-" + uuid.New().String(),
		actions: actions,
	}
}

func (a *ScriptedAgent) ID() string { return a.id }

func (a *ScriptedAgent) Act(obs []float64) int {
	if a.next >= len(a.actions) {
		return environment.ActionQuit
	}
	action := a.actions[a.next]
	a.next++
	return action
}
