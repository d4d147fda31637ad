package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/airportdist/internal/core/domain"
	"github.com/samirrijal/airportdist/internal/pkg/geospatial"
)

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Airports  AirportsConfig  `mapstructure:"airports"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AirportsConfig describes the dataset and how it is queried by default.
type AirportsConfig struct {
	CSVPath      string          `mapstructure:"csv_path"`
	Reference    ReferenceConfig `mapstructure:"reference"`
	DefaultTypes []string        `mapstructure:"default_types"`
	PageSize     int             `mapstructure:"page_size"`
	Workers      int             `mapstructure:"workers"`
}

type ReferenceConfig struct {
	Name string  `mapstructure:"name"`
	Lon  float64 `mapstructure:"lon"`
	Lat  float64 `mapstructure:"lat"`
}

// Point converts the configured reference into the domain type.
func (r ReferenceConfig) Point() domain.ReferencePoint {
	return domain.ReferencePoint{
		Name:     r.Name,
		Location: domain.GeoPoint{Lat: r.Lat, Lon: r.Lon},
	}
}

// Types parses DefaultTypes.
func (a AirportsConfig) Types() ([]domain.AirportType, error) {
	return domain.ParseAirportTypes(strings.Join(a.DefaultTypes, ","))
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("airports.csv_path", "assets/airports.csv")
	v.SetDefault("airports.reference.name", "default")
	v.SetDefault("airports.reference.lon", 45.0)
	v.SetDefault("airports.reference.lat", 45.0)
	v.SetDefault("airports.default_types", []string{string(domain.AirportTypeLarge)})
	v.SetDefault("airports.page_size", 50)
	v.SetDefault("airports.workers", 0)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "airportdist")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "airportdist")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "airport-ingest")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("metrics.pushgateway_url", "")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: AIRPORTDIST_AIRPORTS_REFERENCE_LAT → airports.reference.lat
	v.SetEnvPrefix("AIRPORTDIST")
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

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.Airports.CSVPath == "" {
		errs = append(errs, "airports.csv_path is required")
	}
	ref := geospatial.GeoPoint{Lon: c.Airports.Reference.Lon, Lat: c.Airports.Reference.Lat}
	if err := ref.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("airports.reference: %v", err))
	}
	if _, err := c.Airports.Types(); err != nil {
		errs = append(errs, fmt.Sprintf("airports.default_types: %v", err))
	}
	if c.Airports.PageSize <= 0 || c.Airports.PageSize > 500 {
		errs = append(errs, fmt.Sprintf("airports.page_size must be 1-500, got %d", c.Airports.PageSize))
	}
	if c.Airports.Workers < 0 {
		errs = append(errs, "airports.workers must not be negative")
	}
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
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
