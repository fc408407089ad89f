package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/trestle/internal/cli"
	"github.com/aretw0/trestle/internal/presentation/graph"
	"github.com/aretw0/trestle/internal/presentation/tui"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/aretw0/trestle/pkg/observability"
	"github.com/spf13/cobra"
)

// errRunFailed reports a run in which a command failed or was skipped.
var errRunFailed = errors.New("run did not complete successfully")

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [-- --alias value ...]",
	Short: "Run every phase of the definition file",
	Long: `Binds parameters from --set and raw flags after "--", fills the remaining persistent ones
from --profile, runs every phase and prints the report. Exits non-zero when a command failed
or was skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, _ := cmd.Flags().GetString("profile")
		save, _ := cmd.Flags().GetBool("save")
		sets, _ := cmd.Flags().GetStringArray("set")
		metricsFile, _ := cmd.Flags().GetString("metrics-file")
		mermaid, _ := cmd.Flags().GetBool("graph")
		if save && profile == "" {
			return fmt.Errorf("--save requires --profile")
		}

		store, closeStore, err := cli.OpenStore(settings.Store)
		if err != nil {
			return err
		}
		defer closeStore()

		metrics := observability.NewMetrics()
		out := cmd.OutOrStdout()
		eng, err := cli.CreateEngine(settings, cli.EngineOptions{
			Logger: logger,
			Hooks:  observability.Chain(metrics.Hooks(), observability.LogHooks(logger)),
			Store:  store,
			Out:    out,
		})
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.Bind(eng, sets, args); err != nil {
			return err
		}
		if profile != "" {
			if err := eng.LoadConfig(ctx, profile); err != nil && !(save && errors.Is(err, domain.ErrProfileNotFound)) {
				return err
			}
		}

		report, runErr := eng.Run(ctx)
		if sig := ctx.Signal(); sig != nil {
			logger.Warn("run interrupted", "signal", sig.String())
		}

		if mermaid {
			fmt.Fprint(out, graph.GenerateMermaid(eng.Phases(), eng.Commands(), &graph.Overlay{Statuses: graph.StatusesFromReport(report)}))
		} else {
			tui.NewPrinter(out, cli.Profile(out)).Report(report)
		}

		if metricsFile != "" {
			if err := metrics.WriteToTextfile(metricsFile); err != nil {
				logger.Error("failed to write metrics", "err", err)
			}
		}
		if save && runErr == nil {
			if err := eng.SaveConfig(ctx, profile); err != nil {
				return err
			}
		}

		if runErr != nil {
			return runErr
		}
		if !report.OK() {
			return errRunFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArray("set", nil, "Bind a parameter: name=value (repeatable)")
	runCmd.Flags().StringP("profile", "p", "", "Load persistent parameters from a saved profile")
	runCmd.Flags().Bool("save", false, "Save persistent parameters to --profile after the run")
	runCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file (textfile format)")
	runCmd.Flags().Bool("graph", false, "Print the command graph with run results instead of the report")
}
