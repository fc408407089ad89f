package main

import (
	"fmt"

	"github.com/aretw0/trestle/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the definition file for consistency",
	Long: `Loads and registers every definition, then resolves every phase. Reports invalid or
conflicting definitions and dependency cycles. Actions are not required to be available.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := cli.CreateEngine(settings, cli.EngineOptions{Lenient: true, Logger: logger})
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if _, err := eng.Plan(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d parameters, %d commands, %d cycles\n",
			settings.File, len(eng.Parameters()), len(eng.Commands()), len(eng.Cycles()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
