package environment

import (
	"fmt"
	"math"
	"strings"
)

// createObservation derives the part of the environment visible to the
// worker. For each task slot, five values: payout, rounds of labeling
// already done (-1 if the task is not active), then expertise, effort
// and interestingness (-1 each until the worker has tried the task at
// least once). Followed by the current task index, the worker's
// reputation, the time budget and the time spent so far.
//
// The rounds field and the property gate both read the QA-inclusive
// instance counter, so a just-deactivated task keeps reporting its last
// properties for one frame. Downstream policies may depend on this.
func (e *Env) createObservation() []float64 {
	obs := make([]float64, 0, 5*e.numTasks+4)

	for _, t := range e.tasks {
		obs = append(obs, t.Properties().Payout)
		if t.IsActive(e.reputation) {
			obs = append(obs, float64(t.InstanceCounter()))
		} else {
			obs = append(obs, -1)
		}
		if t.InstanceCounter() > 0 {
			props := t.Properties()
			obs = append(obs, props.Expertise, props.Effort, props.Interestingness)
		} else {
			obs = append(obs, -1, -1, -1)
		}
	}

	obs = append(obs,
		float64(e.currentTask),
		e.reputation,
		e.userProperties.TimeBudget,
		e.timeSpent,
	)
	return obs
}

// ObservationBounds returns the lower and upper bounds of every
// observation component.
func (e *Env) ObservationBounds() (low, high []float64) {
	inf := math.Inf(1)
	low = make([]float64, 0, 5*e.numTasks+4)
	high = make([]float64, 0, 5*e.numTasks+4)
	for i := 0; i < e.numTasks; i++ {
		low = append(low, 0, -1, -1, -1, -1)
		high = append(high, 1, inf, inf, inf, inf)
	}
	low = append(low, -1, 0, 0, 0)
	high = append(high, float64(e.numTasks), 1, inf, inf)
	return low, high
}

// ObservationString formats an observation into a human-readable
// multi-line block. Diagnostic only.
func (e *Env) ObservationString(obs []float64) string {
	var b strings.Builder
	b.WriteString("Observation:\n")
	for i := 0; i < e.numTasks; i++ {
		skip := i * 5
		fmt.Fprintf(&b, "  Task %d:\n", i)
		fmt.Fprintf(&b, "      payout %v | rounds %v\n", obs[skip], obs[skip+1])
		fmt.Fprintf(&b, "      expert %v | effort %v | interest %v\n", obs[skip+2], obs[skip+3], obs[skip+4])
	}
	base := e.numTasks * 5
	fmt.Fprintf(&b, "  current task: %v\n", obs[base])
	fmt.Fprintf(&b, "  reputation: %v\n", obs[base+1])
	fmt.Fprintf(&b, "  time: %v/%v\n", obs[base+3], obs[base+2])
	return b.String()
}

// Render prints the current observation. Only the "text" mode is
// supported; other modes are ignored.
func (e *Env) Render(mode string) {
	if mode != "text" {
		return
	}
	fmt.Print(e.ObservationString(e.createObservation()))
}
