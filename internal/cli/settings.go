package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the CLI configuration, merged from defaults, .trestle.yaml, TRESTLE_* environment
// variables and flags (highest precedence last).
type Settings struct {
	LogLevel     string        `mapstructure:"log_level"`
	Quiet        bool          `mapstructure:"quiet"`
	File         string        `mapstructure:"file"`
	Phases       []string      `mapstructure:"phases"`
	DefaultPhase string        `mapstructure:"default_phase"`
	Programs     string        `mapstructure:"programs"`
	AllowExec    bool          `mapstructure:"allow_exec"`
	Store        StoreSettings `mapstructure:"store"`
}

// StoreSettings selects and configures the profile store.
type StoreSettings struct {
	Backend   string        `mapstructure:"backend"` // memory, file or redis
	Path      string        `mapstructure:"path"`
	RedisAddr string        `mapstructure:"redis_addr"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// NewViper returns a viper instance with the CLI defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("log_level", "warn")
	v.SetDefault("quiet", false)
	v.SetDefault("file", "trestle.yaml")
	v.SetDefault("phases", []string{"setup", "main", "teardown"})
	v.SetDefault("default_phase", "main")
	v.SetDefault("programs", "programs.yaml")
	v.SetDefault("allow_exec", false)
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", ".trestle/profiles")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.prefix", "trestle:config:")
	v.SetDefault("store.ttl", time.Duration(0))

	v.SetConfigName(".trestle")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TRESTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads the config file, if any, and decodes the merged settings.
// configFile overrides the .trestle.yaml lookup when set.
func LoadSettings(v *viper.Viper, configFile string) (Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return s, nil
}
