package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"modelbench/internal"
	"modelbench/internal/config"
	"modelbench/internal/testkit"
)

// Runs the contract fixture server: the training server's HTTP surface with
// canned, deterministic results. Useful for demos and client development.
func main() {
	var (
		trials      int
		seed        int64
		failedEvery int
		failModels  string
	)

	cmd := &cobra.Command{
		Use:   "modelbench-fixture",
		Short: "Serve the training API with deterministic canned results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			fixture := testkit.NewFixtureServer(testkit.FixtureConfig{
				Trials:           trials,
				Seed:             seed,
				FailedTrialEvery: failedEvery,
				FailModels:       splitList(failModels),
				GinMode:          cfg.Server.GinMode,
			}, internal.NewDefaultLogger())
			return fixture.Run(":" + cfg.Server.Port)
		},
	}

	cmd.Flags().IntVar(&trials, "trials", testkit.DefaultFixtureConfig().Trials, "Trials reported per model")
	cmd.Flags().Int64Var(&seed, "seed", testkit.DefaultFixtureConfig().Seed, "Seed for trial scores and parameters")
	cmd.Flags().IntVar(&failedEvery, "failed-trial-every", 0, "Report every n-th trial as null (0 disables)")
	cmd.Flags().StringVar(&failModels, "fail-models", "", "Comma-separated models that fail to train")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
