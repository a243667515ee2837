package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Cities     CitiesConfig     `mapstructure:"cities"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SimulationConfig controls the mock journey and the globe animation.
type SimulationConfig struct {
	SeedLat         float64 `mapstructure:"seed_lat"`
	SeedLon         float64 `mapstructure:"seed_lon"`
	RandomSeed      uint64  `mapstructure:"random_seed"` // 0 = time-based
	FrameIntervalMS int     `mapstructure:"frame_interval_ms"`
	Spin            float64 `mapstructure:"spin"`
	Animate         bool    `mapstructure:"animate"`
	DemoRuns        int     `mapstructure:"demo_runs"`
	DemoDelayMS     int     `mapstructure:"demo_delay_ms"`
	DemoIntervalMS  int     `mapstructure:"demo_interval_ms"`
}

// CitiesConfig selects where reference cities come from: "builtin", "file", or "postgres".
type CitiesConfig struct {
	Source string `mapstructure:"source"`
	File   string `mapstructure:"file"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from .env, an optional config file, and environment variables.
func Load(service string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GLOBETROTTER_SIMULATION_DEMO_RUNS → simulation.demo_runs
	v.SetEnvPrefix("GLOBETROTTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("simulation.seed_lat", 40.7128)
	v.SetDefault("simulation.seed_lon", -74.0060)
	v.SetDefault("simulation.random_seed", 0)
	v.SetDefault("simulation.frame_interval_ms", 33)
	v.SetDefault("simulation.spin", 0.002)
	v.SetDefault("simulation.animate", true)
	v.SetDefault("simulation.demo_runs", 3)
	v.SetDefault("simulation.demo_delay_ms", 1000)
	v.SetDefault("simulation.demo_interval_ms", 1000)
	v.SetDefault("cities.source", "builtin")
	v.SetDefault("cities.file", "configs/cities.yaml")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "globetrotter")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "globetrotter")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if c.Simulation.SeedLat < -85 || c.Simulation.SeedLat > 85 {
		errs = append(errs, fmt.Sprintf("simulation.seed_lat must be within [-85, 85], got %v", c.Simulation.SeedLat))
	}
	if c.Simulation.FrameIntervalMS <= 0 {
		errs = append(errs, "simulation.frame_interval_ms must be positive")
	}
	if c.Simulation.DemoRuns < 0 {
		errs = append(errs, "simulation.demo_runs must not be negative")
	}
	if c.Simulation.DemoDelayMS < 0 || c.Simulation.DemoIntervalMS < 0 {
		errs = append(errs, "simulation demo delays must not be negative")
	}

	switch c.Cities.Source {
	case "builtin":
	case "file":
		if c.Cities.File == "" {
			errs = append(errs, "cities.file is required when cities.source is file")
		}
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("cities.source must be builtin, file, or postgres, got %q", c.Cities.Source))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
