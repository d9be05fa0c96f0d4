package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_FileValuesAndDefaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
loading:
  load_rate: 30
  life_support: [oxygen, water]
simulation:
  tick_rate: 4
  timeout: 30s
database:
  type: sqlite
  path: ":memory:"
`)

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Loading.LoadRate)
	assert.Equal(t, []string{"oxygen", "water"}, cfg.Loading.LifeSupport)
	assert.Equal(t, 5, cfg.Loading.MaxRetryAttempts)
	assert.Equal(t, 10.0, cfg.Loading.HoldFullMarginKg)
	assert.Equal(t, 4.0, cfg.Simulation.TickRate)
	assert.Equal(t, 30*time.Second, cfg.Simulation.Timeout)
	assert.Equal(t, 1000, cfg.Simulation.MaxTicks)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
loading:
  load_rate: 30
`)
	t.Setenv("SL_LOADING_LOAD_RATE", "40")

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.Loading.LoadRate)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
loading:
  load_rate: -5
`)

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'loading.load_rate' failed validation: gt=0")
}

func TestLoadConfig_FileOutputRequiresPath(t *testing.T) {
	path := writeConfig(t, `
logging:
  output: file
`)

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.file_path")
}

func TestLoadConfigOrDefault_FallsBackOnError(t *testing.T) {
	path := writeConfig(t, `
loading:
  max_retry_attempts: -1
`)

	cfg := config.LoadConfigOrDefault(path)

	assert.Equal(t, 5, cfg.Loading.MaxRetryAttempts)
	assert.Equal(t, 20.0, cfg.Loading.LoadRate)
}

func TestLoadingConfig_Options(t *testing.T) {
	// Arrange
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Loading.LifeSupport = []string{"water", "amount:42"}
	catalog := resource.DefaultCatalog()

	// Act
	opts, err := cfg.Loading.Options(catalog)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20.0, opts.LoadRate)
	assert.Equal(t, 5, opts.MaxRetryAttempts)
	assert.Equal(t, 10.0, opts.HoldFullMargin)
	assert.Equal(t, 0.01, opts.SmallestLoad)
	assert.Equal(t, 0.1, opts.BackgroundStrengthModifier)
	assert.Equal(t, []resource.ResourceID{resource.Water, resource.Amount(42)}, opts.LifeSupport)
	assert.Same(t, catalog, opts.Catalog)
}

func TestLoadingConfig_OptionsRejectsUnknownLifeSupport(t *testing.T) {
	cfg := config.LoadingConfig{LifeSupport: []string{"nitrogen"}}

	_, err := cfg.Options(resource.DefaultCatalog())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nitrogen")
}

func TestLoggingConfig_OpenOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supplyload.log")
	cfg := config.LoggingConfig{Output: "file", FilePath: path}

	w, closeFn, err := cfg.OpenOutput()
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestLoadConfig_RejectsMalformedLifeSupportReference(t *testing.T) {
	path := writeConfig(t, `
loading:
  life_support: [oxygen, "amount:lots"]
`)

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading.life_support[1]")
	assert.Contains(t, err.Error(), "resource_ref")
}

func TestLoadConfig_RejectsRelativeMetricsPath(t *testing.T) {
	path := writeConfig(t, `
metrics:
  path: metrics
`)

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics.path")
}

func TestLoadConfig_DatabaseURLImpliesPostgres(t *testing.T) {
	// Arrange
	path := writeConfig(t, "database:\n  type: sqlite\n")
	t.Setenv("DATABASE_URL", "postgres://loader:secret@db:5432/supplyload")

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://loader:secret@db:5432/supplyload", cfg.Database.DSN())
	assert.False(t, cfg.Database.InMemory())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		want     string
		inMemory bool
	}{
		{"sqlite default", config.SQLite(""), ":memory:", true},
		{"sqlite memory", config.SQLite(":memory:"), ":memory:", true},
		{"sqlite file", config.SQLite("loading.db"), "loading.db", false},
		{
			name: "postgres fields",
			cfg: config.DatabaseConfig{
				Type: "postgres", Host: "db", Port: 5432, User: "loader",
				Password: "pw", Name: "supplyload", SSLMode: "disable",
			},
			want: "host=db port=5432 user=loader password=pw dbname=supplyload sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
			assert.Equal(t, tt.inMemory, tt.cfg.InMemory())
		})
	}
}

func TestMetricsConfig_Address(t *testing.T) {
	cfg := config.MetricsConfig{Host: "localhost", Port: 9090}

	assert.Equal(t, "localhost:9090", cfg.Address())
}

func TestValidator_ResourceReferences(t *testing.T) {
	type entry struct {
		ID   string `yaml:"id" validate:"resource_id"`
		Name string `yaml:"name" validate:"resource_name"`
		Ref  string `yaml:"ref" validate:"resource_ref"`
	}
	v := config.NewValidator()

	assert.NoError(t, v.Validate(&entry{ID: "item:50", Name: "drill bit", Ref: "water"}))
	assert.NoError(t, v.Validate(&entry{ID: "amount:2", Name: "oxygen", Ref: "item:1001"}))

	err := v.Validate(&entry{ID: "50", Name: "item:50", Ref: "gas:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'id' failed validation: resource_id")
	assert.Contains(t, err.Error(), "field 'name' failed validation: resource_name")
	assert.Contains(t, err.Error(), "field 'ref' failed validation: resource_ref")
}
