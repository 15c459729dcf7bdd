package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the Mega Clicker bot.
type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Logger LoggerConfig `mapstructure:"logger"`
	Sentry SentryConfig `mapstructure:"sentry"`
	Bot    BotConfig    `mapstructure:"bot" validate:"required"`
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db" validate:"required"`
	Redis  RedisConfig  `mapstructure:"redis" validate:"required"`
	Jobs   JobsConfig   `mapstructure:"jobs"`
	Ads    AdsConfig    `mapstructure:"ads"`
	Game   GameConfig   `mapstructure:"game" validate:"required"`
}

// LoggerConfig controls log output format, level and rotation.
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// BotConfig holds Telegram connection settings.
type BotConfig struct {
	Token       string        `mapstructure:"token" validate:"required"`
	Username    string        `mapstructure:"username"`
	Mode        string        `mapstructure:"mode" validate:"omitempty,oneof=polling webhook"`
	Timeout     time.Duration `mapstructure:"timeout"`
	DefaultLang string        `mapstructure:"default_lang"`
}

// ServerConfig holds settings for the metrics/health HTTP server.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DSN renders the lib/pq connection string.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode,
	)
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host          string `mapstructure:"host" validate:"required"`
	Port          string `mapstructure:"port" validate:"required"`
	User          string `mapstructure:"user" validate:"required"`
	Password      string `mapstructure:"password" validate:"required"`
	Name          string `mapstructure:"name" validate:"required"`
	SSLMode       string `mapstructure:"ssl_mode"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// RedisConfig holds connection settings for the snapshot store.
type RedisConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// JobsConfig controls the background job worker and scheduler.
type JobsConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Concurrency        int    `mapstructure:"concurrency"`
	LeaderboardRefresh string `mapstructure:"leaderboard_refresh"`
	LeaderboardSize    int    `mapstructure:"leaderboard_size"`
}

// AdsConfig describes the optional rewarded-advertisement gateway.
type AdsConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ProviderURL string        `mapstructure:"provider_url" validate:"required_if=Enabled true,omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// GameConfig carries the balance knobs of the economy engine. The section is
// hot-reloadable: file edits apply to subsequent operations without a restart.
type GameConfig struct {
	LevelThresholds []int64 `mapstructure:"level_thresholds" validate:"required,min=2"`
	BaseClickPower  int64   `mapstructure:"base_click_power" validate:"required,min=1"`

	ClickBoostCost   int64   `mapstructure:"click_boost_cost" validate:"required,min=1"`
	AutoBoostCost    int64   `mapstructure:"auto_boost_cost" validate:"required,min=1"`
	PassiveBoostCost int64   `mapstructure:"passive_boost_cost" validate:"required,min=1"`
	CostRatio        float64 `mapstructure:"cost_ratio" validate:"required,gt=1"`

	PowerUpSpawnMin time.Duration `mapstructure:"powerup_spawn_min" validate:"required"`
	PowerUpSpawnMax time.Duration `mapstructure:"powerup_spawn_max" validate:"required,gtefield=PowerUpSpawnMin"`
	PowerUpFlight   time.Duration `mapstructure:"powerup_flight" validate:"required"`
	BoostDuration   time.Duration `mapstructure:"boost_duration" validate:"required"`
	BoostMultiplier float64       `mapstructure:"boost_multiplier" validate:"required,gt=1"`

	DailyRewardBase int64 `mapstructure:"daily_reward_base" validate:"required,min=1"`
	DailyRewardStep int64 `mapstructure:"daily_reward_step" validate:"min=0"`

	ReferralBonus int64 `mapstructure:"referral_bonus" validate:"required,min=1"`

	TapsPerSecond int `mapstructure:"taps_per_second" validate:"required,min=1"`
	TapBurst      int `mapstructure:"tap_burst" validate:"required,min=1"`
}
