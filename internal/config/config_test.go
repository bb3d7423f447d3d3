package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SHADOW_DATABASE_URL", "")

	cfg, err := Load(New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Zero(t, cfg.Database.StatementTimeout)
	assert.False(t, cfg.Migrate.Force)
	assert.Error(t, cfg.Validate(), "no url")
	assert.NoError(t, cfg.ValidateOutput())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SCHEMAPLAN_DATABASE_URL", "postgres://app@localhost/app")
	t.Setenv("SCHEMAPLAN_DATABASE_NAMESPACES", "public, audit")
	t.Setenv("SCHEMAPLAN_DATABASE_STATEMENT_TIMEOUT", "30s")
	t.Setenv("SCHEMAPLAN_MIGRATE_DRY_RUN", "true")

	cfg, err := Load(New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://app@localhost/app", cfg.Database.URL)
	assert.Equal(t, []string{"public", "audit"}, cfg.Database.Namespaces)
	assert.Equal(t, 30*time.Second, cfg.Database.StatementTimeout)
	assert.True(t, cfg.Migrate.DryRun)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnvFallback(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SHADOW_DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	require.NoError(t, os.Unsetenv("SHADOW_DATABASE_URL"))

	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("DATABASE_URL=mysql://root@localhost:3306/shop\nSHADOW_DATABASE_URL=mysql://root@localhost:3306/shadow\n"), 0o600))

	cfg, err := Load(New(), env)
	require.NoError(t, err)
	assert.Equal(t, "mysql://root@localhost:3306/shop", cfg.Database.URL)
	assert.Equal(t, "mysql://root@localhost:3306/shadow", cfg.Shadow.URL)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemaplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  url: file:dev.db
  namespaces: [main]
output:
  format: markdown
log:
  level: debug
  format: json
`), 0o600))

	v := New()
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "file:dev.db", cfg.Database.URL)
	assert.Equal(t, []string{"main"}, cfg.Database.Namespaces)
	assert.Equal(t, "markdown", cfg.Output.Format)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{URL: "postgres://localhost/db"},
			Log:      LogConfig{Level: "info", Format: "text"},
			Output:   OutputConfig{Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "unknown format", mutate: func(c *Config) { c.Output.Format = "html" }, want: "invalid format"},
		{name: "file and dir", mutate: func(c *Config) { c.Output.File, c.Output.Dir = "a", "b" }, want: "both"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "chatty" }, want: "log level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, want: "log format"},
		{name: "missing url", mutate: func(c *Config) { c.Database.URL = "" }, want: "database url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())
}

func TestShadowServerURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "database server by default",
			cfg:  Config{Database: DatabaseConfig{URL: "postgres://u:p@db:5432/app?sslmode=disable"}},
			want: "postgres://u:p@db:5432/app?sslmode=disable",
		},
		{
			name: "shadow server wins",
			cfg: Config{
				Database: DatabaseConfig{URL: "mysql://root@prod:3306/app"},
				Shadow:   ShadowConfig{URL: "mysql://root@scratch:3306/tmp"},
			},
			want: "mysql://root@scratch:3306/tmp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ShadowServerURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := (&Config{}).ShadowServerURL()
	assert.Error(t, err)
}
