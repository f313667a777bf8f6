package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"crowdsim/pkg/agent"
	"crowdsim/pkg/environment"
	"crowdsim/pkg/experiment"
	"crowdsim/pkg/task"
	"crowdsim/pkg/trace"
	"crowdsim/pkg/user"
)

var (
	flagName     string
	flagSeed     uint64
	flagEpisodes int
	flagMaxSteps int
	flagTasks    int
	flagVerbose  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "crowdsim",
		Short: "crowdsim simulates a crowdworking labeling platform as a deterministic, turn-based environment.",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run episodes with a random worker policy and log the results",
		RunE:  runExperiment,
	}
	runCmd.Flags().StringVar(&flagName, "name", "crowdsim-run", "name of the experiment result directory")
	runCmd.Flags().Uint64Var(&flagSeed, "seed", 42, "random seed for the environment and action sampler")
	runCmd.Flags().IntVar(&flagEpisodes, "episodes", 10, "number of episodes to run")
	runCmd.Flags().IntVar(&flagMaxSteps, "max-steps", 10000, "step cutoff per episode")
	runCmd.Flags().IntVar(&flagTasks, "tasks", 4, "number of concurrently available tasks")
	runCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "render the observation after every step")

	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.Execute()
}

func runExperiment(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		cancel()
	}()

	baseDir := os.Getenv("CROWDSIM_EXP_DIR")
	if baseDir == "" {
		baseDir = "exp"
	}

	cfg, err := experiment.Create(flagName, baseDir, false)
	if err != nil {
		return fmt.Errorf("failed to create experiment: %v", err)
	}
	cfg.Params["seed"] = flagSeed
	cfg.Params["episodes"] = flagEpisodes
	cfg.Params["max_steps"] = flagMaxSteps
	cfg.Params["num_tasks"] = flagTasks
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %v", err)
	}

	distributions := make([]task.PropertiesDistribution, 0, flagTasks)
	for i := 0; i < flagTasks; i++ {
		distributions = append(distributions, &task.BetaDistribution{})
	}

	userProps := user.NewProperties(1, 1, 1, 100, 0.5)
	antiCheat := &task.AntiCheatSettings{
		QAFalseMax:           3,
		QAModeProb:           0.1,
		ReputationPunishment: -0.05,
		ReputationBonus:      0.05,
		MinReputation:        0.3,
	}

	env := environment.New(userProps, distributions, antiCheat)
	env.Seed(flagSeed)

	worker := agent.NewRandomAgent(env.ActionSpace)
	log.Printf("Created %s", worker.ID())

	recorder := trace.NewRecorder(200)
	opts := []experiment.RunnerOption{
		experiment.WithEpisodes(flagEpisodes),
		experiment.WithMaxSteps(flagMaxSteps),
		experiment.WithRecorder(recorder),
	}
	if flagVerbose {
		opts = append(opts, experiment.WithVerbose())
	}
	runner := experiment.NewRunner(env, worker, cfg, opts...)

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("experiment failed: %v", err)
	}

	for _, line := range recorder.Tail(10) {
		log.Println(line)
	}
	log.Printf("Results written to %s", cfg.Dir())
	return nil
}
