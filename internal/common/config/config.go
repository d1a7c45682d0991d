// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Catalog      CatalogConfig           `mapstructure:"catalog"`
	Sizing       SizingConfig            `mapstructure:"sizing"`
	Events       EventsConfig            `mapstructure:"events"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	RegistryPath string                  `mapstructure:"registry_path"`
	MetricsAddr  string                  `mapstructure:"metrics_address"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Catalog sources.
const (
	CatalogSourceFixtures = "fixtures"
	CatalogSourcePostgres = "postgres"
)

// CatalogConfig selects where products and size tables come from.
type CatalogConfig struct {
	Source      string `mapstructure:"source"`
	FixturesDir string `mapstructure:"fixtures_dir"`
	CacheTTL    int    `mapstructure:"cache_ttl"` // seconds, 0 disables the Redis cache
}

// SizingConfig tunes how tables are checked before they reach the engine.
type SizingConfig struct {
	StrictTables bool `mapstructure:"strict_tables"`
}

// EventsConfig configures the optional SNS topic that receives session events.
type EventsConfig struct {
	SNSTopicARN string `mapstructure:"sns_topic_arn"`
	Region      string `mapstructure:"region"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// TimeoutDuration returns the job timeout as a time.Duration.
func (w WorkerConfig) TimeoutDuration() time.Duration {
	return GetDuration(w.Timeout)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// UsesPostgres reports whether any component needs a database connection.
func (c *Config) UsesPostgres() bool {
	return c.Catalog.Source == CatalogSourcePostgres || c.Database.Postgres.Host != ""
}

// UsesRedis reports whether the tables cache is configured.
func (c *Config) UsesRedis() bool {
	return c.Catalog.CacheTTL > 0 && c.Database.Redis.Address != ""
}

// PublishesEvents reports whether session events go to SNS.
func (c *Config) PublishesEvents() bool {
	return c.Events.SNSTopicARN != ""
}
