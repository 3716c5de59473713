package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Database DatabaseConfig  `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Chip     ChipConfig      `mapstructure:"chip"`
	Rewards  RewardsConfig   `mapstructure:"rewards"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Accounts []AccountConfig `mapstructure:"accounts"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
	AdminKey      string `mapstructure:"admin_key"`
	// AdminAddress is the single recognized administrator identity for
	// price and reward mutations.
	AdminAddress string `mapstructure:"admin_address"`
}

type DatabaseConfig struct {
	DSN                string `mapstructure:"dsn"`
	AuditRetentionDays int    `mapstructure:"audit_retention_days"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	PriceCacheTTLSeconds  int    `mapstructure:"price_cache_ttl_seconds"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
}

type ChipConfig struct {
	// NativeUnitPrice seeds the price config at first boot when no admin
	// has initialized it yet; zero leaves initialization to the API.
	NativeUnitPrice uint64 `mapstructure:"native_unit_price"`
}

type RewardsConfig struct {
	// SlotBonuses are the placement payouts in display units, first place
	// first, e.g. ["2.5", "1", "0.3"].
	SlotBonuses []string `mapstructure:"slot_bonuses"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type AccountConfig struct {
	ID      string  `mapstructure:"id"`
	Name    string  `mapstructure:"name"`
	APIKey  string  `mapstructure:"api_key"`
	Address string  `mapstructure:"address"`
	QPS     float64 `mapstructure:"qps"`
	Burst   int     `mapstructure:"burst"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. CHIPGATE_AUTH_ADMIN_KEY
	viper.SetEnvPrefix("chipgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("auth.require_api_key", false)
	viper.SetDefault("auth.admin_key", "")
	viper.SetDefault("redis.price_cache_ttl_seconds", 5)
	viper.SetDefault("redis.idempotency_ttl_seconds", 86400)
	viper.SetDefault("database.audit_retention_days", 30)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	// 0.01 of the base unit at 9 decimals
	viper.SetDefault("chip.native_unit_price", 10_000_000)
	viper.SetDefault("rewards.slot_bonuses", []string{"2.5", "1", "0.3"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
