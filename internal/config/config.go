package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	SnapshotBackend string        `mapstructure:"SNAPSHOT_BACKEND"`
	SnapshotPath    string        `mapstructure:"SNAPSHOT_PATH"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	KafkaBrokers    []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic      string        `mapstructure:"KAFKA_TOPIC"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	MedSweepEvery   time.Duration `mapstructure:"MED_SWEEP_INTERVAL"`
	MedResetWindow  time.Duration `mapstructure:"MED_RESET_WINDOW"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SNAPSHOT_BACKEND", "file")
	v.SetDefault("SNAPSHOT_PATH", "data/ward_snapshot.json")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("KAFKA_TOPIC", "ward-timeline")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MED_SWEEP_INTERVAL", "10s")
	v.SetDefault("MED_RESET_WINDOW", "3h")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("SESSION_TTL")
	v.BindEnv("SNAPSHOT_BACKEND")
	v.BindEnv("SNAPSHOT_PATH")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("KAFKA_BROKERS")
	v.BindEnv("KAFKA_TOPIC")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MED_SWEEP_INTERVAL")
	v.BindEnv("MED_RESET_WINDOW")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.KafkaBrokers == nil {
		if brokers := v.GetString("KAFKA_BROKERS"); brokers != "" {
			cfg.KafkaBrokers = strings.Split(brokers, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. The dev secret
// fallback only exists in development; everywhere else a real JWT_SECRET
// is mandatory, as is DATABASE_URL for the postgres snapshot backend.
func (c *Config) Validate() error {
	switch c.SnapshotBackend {
	case "file":
		if c.SnapshotPath == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required when SNAPSHOT_BACKEND is \"file\"")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SNAPSHOT_BACKEND is \"postgres\"")
		}
	default:
		return fmt.Errorf("SNAPSHOT_BACKEND must be \"file\" or \"postgres\", got %q", c.SnapshotBackend)
	}

	if c.JWTSecret == "" && !c.IsDev() {
		return fmt.Errorf("JWT_SECRET is required outside development (ENV=%q)", c.Env)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.MedSweepEvery <= 0 {
		return fmt.Errorf("MED_SWEEP_INTERVAL must be positive, got %s", c.MedSweepEvery)
	}
	if c.MedResetWindow <= 0 {
		return fmt.Errorf("MED_RESET_WINDOW must be positive, got %s", c.MedResetWindow)
	}
	return nil
}
