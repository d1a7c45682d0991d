package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const fixturesConfig = `
app:
  name: sizing-workers
camunda:
  broker_address: localhost:26500
  plaintext: true
catalog:
  source: fixtures
  fixtures_dir: configs/fixtures
sizing:
  strict_tables: true
workers:
  calculate-size:
    enabled: true
    max_jobs_active: 20
  save-measurement-session:
    enabled: false
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, fixturesConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost:26500", cfg.Camunda.BrokerAddress)
	assert.True(t, cfg.Camunda.Plaintext)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)
	assert.Equal(t, CatalogSourceFixtures, cfg.Catalog.Source)
	assert.True(t, cfg.Sizing.StrictTables)
	assert.Equal(t, "configs/activity-registry.json", cfg.RegistryPath)
	assert.Equal(t, ":8080", cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.UsesPostgres())
	assert.False(t, cfg.UsesRedis())
	assert.False(t, cfg.PublishesEvents())

	calc := GetWorkerConfig(cfg, "calculate-size")
	assert.Equal(t, 20, calc.MaxJobsActive)
	assert.Equal(t, 30000, calc.Timeout)
	assert.Equal(t, 3, calc.MaxRetries)
	assert.Equal(t, 30*time.Second, calc.TimeoutDuration())

	assert.True(t, IsWorkerEnabled(cfg, "calculate-size"))
	assert.False(t, IsWorkerEnabled(cfg, "save-measurement-session"))
	assert.True(t, IsWorkerEnabled(cfg, "list-products"), "unknown workers default to enabled")
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("DATABASE_POSTGRES_HOST", "db.internal")
	t.Setenv("DATABASE_POSTGRES_DATABASE", "sizing")
	t.Setenv("DB_USER", "sizing")
	t.Setenv("SIZING_STRICT_TABLES", "false")

	cfg, err := LoadFromFile(writeConfig(t, fixturesConfig))
	require.NoError(t, err)

	assert.Equal(t, CatalogSourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "sizing", cfg.Database.Postgres.User)
	assert.False(t, cfg.Sizing.StrictTables)
	assert.True(t, cfg.UsesPostgres())
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "host=db.internal port=5432")
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("SIZING_REDIS_ADDR", "cache:6379")

	cfg, err := LoadFromFile(writeConfig(t, fixturesConfig+`
database:
  redis:
    address: ${SIZING_REDIS_ADDR}
`))
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.Database.Redis.Address)
}

func TestLoadFromFile_UnsetPlaceholderDisablesEvents(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, fixturesConfig+`
events:
  sns_topic_arn: ${SIZING_UNSET_TOPIC_FOR_TEST}
`))
	require.NoError(t, err)
	assert.False(t, cfg.PublishesEvents())
}

func TestLoadFromFile_EventsRegionDefault(t *testing.T) {
	t.Setenv("EVENTS_SNS_TOPIC_ARN", "arn:aws:sns:eu-west-1:123456789012:measurement-sessions")

	cfg, err := LoadFromFile(writeConfig(t, fixturesConfig))
	require.NoError(t, err)

	assert.True(t, cfg.PublishesEvents())
	assert.Equal(t, "eu-west-1", cfg.Events.Region)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "catalog:\n  source: fixtures\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "unknown catalog source",
			body:    "camunda:\n  broker_address: zeebe:26500\ncatalog:\n  source: s3\n",
			wantErr: "catalog.source must be",
		},
		{
			name:    "postgres source without host",
			body:    "camunda:\n  broker_address: zeebe:26500\ncatalog:\n  source: postgres\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "cache without redis",
			body:    "camunda:\n  broker_address: zeebe:26500\ncatalog:\n  cache_ttl: 60\n",
			wantErr: "database.redis.address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
