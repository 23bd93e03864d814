package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aquamon/aquamon/internal/aqua"
	"github.com/aquamon/aquamon/internal/check"
)

var checkFailFast bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one poll cycle and print the emissions",
	Long: `Poll every configured Aqua instance once and print the resulting
gauges and service checks to stdout instead of pushing them to a backend.
Useful for validating credentials and seeing exactly what a cycle emits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := GetLogger()
		cfg := GetConfig()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var failed int
		for i := range cfg.Instances {
			inst := &cfg.Instances[i]
			rec := check.NewRecorder()
			runner := check.NewRunner(inst, aqua.NewClient(inst, log), rec, log)

			err := runner.Run(ctx)
			report := rec.Report()

			fmt.Printf("=== %s\n", inst.Name)
			for _, hc := range report.Checks {
				fmt.Printf("%s %s %s\n", hc.Name, hc.Status, formatTags(hc.Tags))
			}
			for _, m := range report.Metrics {
				fmt.Printf("%s %g %s\n", m.Name, m.Value, formatTags(m.Tags))
			}

			if err != nil {
				failed++
				if checkFailFast {
					return fmt.Errorf("instance %q failed: %w", inst.Name, err)
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d instances failed", failed, len(cfg.Instances))
		}
		return nil
	},
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	return "[" + strings.Join(tags, ",") + "]"
}

func init() {
	checkCmd.Flags().BoolVar(&checkFailFast, "fail-fast", false, "stop at the first failing instance")

	rootCmd.AddCommand(checkCmd)
}
