package experiment

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"crowdsim/pkg/agent"
	"crowdsim/pkg/environment"
	"crowdsim/pkg/task"
	"crowdsim/pkg/trace"
)

// EpisodeStats summarizes one finished episode.
type EpisodeStats struct {
	Episode         int
	Steps           int
	TotalReward     float64
	EndReason       string
	FinalReputation float64
	TimeSpent       float64
}

// Runner drives an agent through episodes of the environment and logs
// the results into the experiment directory: the settings files before
// the first episode and one CSV row per episode.
type Runner struct {
	env      *environment.Env
	agent    agent.Agent
	cfg      *Config
	episodes int
	maxSteps int
	recorder *trace.Recorder
	verbose  bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEpisodes sets how many episodes to run.
func WithEpisodes(n int) RunnerOption {
	return func(r *Runner) { r.episodes = n }
}

// WithMaxSteps bounds the steps per episode for policies that never
// quit.
func WithMaxSteps(n int) RunnerOption {
	return func(r *Runner) { r.maxSteps = n }
}

// WithRecorder feeds every transition into the given trace recorder.
func WithRecorder(rec *trace.Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithVerbose renders the observation after every step.
func WithVerbose() RunnerOption {
	return func(r *Runner) { r.verbose = true }
}

// NewRunner creates a runner for the given environment, agent and
// experiment config. By default it runs one episode of at most 10000
// steps.
func NewRunner(env *environment.Env, a agent.Agent, cfg *Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		env:      env,
		agent:    a,
		cfg:      cfg,
		episodes: 1,
		maxSteps: 10000,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the configured number of episodes, honoring ctx
// cancellation between steps.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.saveSettings(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	statsFile, err := os.Create(r.cfg.Path("episodes.csv"))
	if err != nil {
		return fmt.Errorf("create stats file: %w", err)
	}
	defer statsFile.Close()

	w := csv.NewWriter(statsFile)
	if err := w.Write([]string{"episode", "steps", "total_reward", "end_reason", "final_reputation", "time_spent"}); err != nil {
		return err
	}

	for ep := 1; ep <= r.episodes; ep++ {
		stats, err := r.runEpisode(ctx, ep)
		if err != nil {
			return err
		}
		log.Printf("episode %d (%s): %d steps, total reward %.3f, end reason %s",
			ep, r.agent.ID(), stats.Steps, stats.TotalReward, stats.EndReason)

		if err := w.Write([]string{
			strconv.Itoa(stats.Episode),
			strconv.Itoa(stats.Steps),
			strconv.FormatFloat(stats.TotalReward, 'g', -1, 64),
			stats.EndReason,
			strconv.FormatFloat(stats.FinalReputation, 'g', -1, 64),
			strconv.FormatFloat(stats.TimeSpent, 'g', -1, 64),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (r *Runner) runEpisode(ctx context.Context, episode int) (EpisodeStats, error) {
	obs, err := r.env.Reset()
	if err != nil {
		return EpisodeStats{}, err
	}

	stats := EpisodeStats{Episode: episode}
	for step := 1; step <= r.maxSteps; step++ {
		select {
		case <-ctx.Done():
			return EpisodeStats{}, ctx.Err()
		default:
		}

		action := r.agent.Act(obs)
		result, err := r.env.Step(action)
		if err != nil {
			return EpisodeStats{}, fmt.Errorf("episode %d step %d: %w", episode, step, err)
		}

		stats.Steps = step
		stats.TotalReward += result.Reward
		if r.recorder != nil {
			r.recorder.Store(fmt.Sprintf("episode %d step %d: %s reward=%.3f",
				episode, step, environment.ActionToStr(action), result.Reward))
		}
		if r.verbose {
			r.env.Render("text")
		}

		obs = result.Observation
		if result.Done {
			stats.EndReason = result.Info["end_reason"]
			break
		}
	}
	if stats.EndReason == "" {
		stats.EndReason = "max_steps"
	}

	stats.FinalReputation = r.env.Reputation()
	stats.TimeSpent = r.env.TimeSpent()
	return stats, nil
}

// saveSettings persists the worker profile, the anti-cheat settings and
// the task-giver list next to the results, so a run can be reconstructed
// exactly.
func (r *Runner) saveSettings() error {
	if err := r.env.UserProperties().Save(r.cfg); err != nil {
		return err
	}
	if err := r.env.AntiCheatSettings().Save(r.cfg); err != nil {
		return err
	}
	return task.SaveDistributions(r.env.Distributions(), r.cfg)
}
