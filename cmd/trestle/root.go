package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/trestle/internal/cli"
	"github.com/aretw0/trestle/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	v          = cli.NewViper()
	configFile string
	settings   cli.Settings
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trestle",
	Short: "Trestle is a declarative command orchestration engine",
	Long: `Trestle runs commands declared in a definition file (YAML, JSON or TOML): it validates
them, orders them by their constraints, groups them into phases and binds their parameters.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = cli.LoadSettings(v, configFile)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(settings.LogLevel)
		if err != nil {
			return err
		}
		logger = logging.NewSplit(cmd.ErrOrStderr(), cmd.ErrOrStderr(), level, settings.Quiet)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Settings file (default .trestle.yaml)")
	flags.StringP("file", "f", "trestle.yaml", "Definition file")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.BoolP("quiet", "q", false, "Only log errors")
	flags.StringSlice("phases", []string{"setup", "main", "teardown"}, "Phases in execution order")
	flags.String("default-phase", "main", "Phase of commands that do not declare one")
	flags.String("programs", "programs.yaml", "Allow-listed programs for exec entries")
	flags.Bool("allow-exec", false, "Allow exec entries that are not allow-listed programs")
	flags.String("store", "file", "Profile store: memory, file or redis")
	flags.String("store-path", ".trestle/profiles", "Directory of the file profile store")
	flags.String("redis-addr", "localhost:6379", "Address of the redis profile store")

	bind(v, map[string]string{
		"file":             "file",
		"log_level":        "log-level",
		"quiet":            "quiet",
		"phases":           "phases",
		"default_phase":    "default-phase",
		"programs":         "programs",
		"allow_exec":       "allow-exec",
		"store.backend":    "store",
		"store.path":       "store-path",
		"store.redis_addr": "redis-addr",
	})
}

func bind(v *viper.Viper, keys map[string]string) {
	for key, flag := range keys {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
