// Package config provides configuration loading, validation and hot reload.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables,
// validates it, and returns the resulting Config alongside the viper
// instance used for it.
func Load() (*Config, *viper.Viper, error) {
	if err := godotenv.Load(".env.local", ".env"); err != nil {
		// missing env files are fine
		_ = err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	if err := Validate(&cfg); err != nil {
		return nil, nil, err
	}

	return &cfg, v, nil
}

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

// Balance is a live view of the hot-reloadable game section. Readers always
// see a complete, validated GameConfig.
type Balance struct {
	current atomic.Pointer[GameConfig]
}

// NewBalance seeds a Balance with the initial game configuration.
func NewBalance(game GameConfig) *Balance {
	b := &Balance{}
	b.current.Store(&game)
	return b
}

// Game returns the current game configuration.
func (b *Balance) Game() GameConfig {
	return *b.current.Load()
}

// Watch re-reads the config file whenever it changes on disk and swaps the
// game section in. Invalid edits are logged and ignored; the previous
// balance stays in effect.
func (b *Balance) Watch(v *viper.Viper, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			log.Warn("config reload failed, keeping previous balance", "file", e.Name, "error", err)
			return
		}

		if err := Validate(&cfg); err != nil {
			log.Warn("config reload rejected, keeping previous balance", "file", e.Name, "error", err)
			return
		}

		game := cfg.Game
		b.current.Store(&game)
		log.Info("game balance reloaded", "file", e.Name)
	})
	v.WatchConfig()
}
