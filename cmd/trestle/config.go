package main

import (
	"fmt"
	"sort"

	"github.com/aretw0/trestle/internal/cli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage saved parameter profiles",
	Long:  `List, show and delete the profiles written by "run --profile NAME --save".`,
}

var configLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := cli.OpenStore(settings.Store)
		if err != nil {
			return err
		}
		defer closeStore()

		profiles, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing profiles: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved profiles found.")
			return nil
		}
		sort.Strings(profiles)
		for _, p := range profiles {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+p)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <profile>",
	Short: "Print the values of a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := cli.OpenStore(settings.Store)
		if err != nil {
			return err
		}
		defer closeStore()

		values, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading profile '%s': %w", args[0], err)
		}
		data, err := yaml.Marshal(values)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete <profile>...",
	Aliases: []string{"rm"},
	Short:   "Delete one or more saved profiles",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := cli.OpenStore(settings.Store)
		if err != nil {
			return err
		}
		defer closeStore()

		failed := 0
		for _, profile := range args {
			if err := store.Delete(cmd.Context(), profile); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", profile, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed profile '%s'\n", profile)
		}
		if failed > 0 {
			return fmt.Errorf("%d profile(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configLsCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configDeleteCmd)
}
