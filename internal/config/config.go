// Package config loads schemaplan settings from flags, environment, a config
// file and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tordrt/schemaplan/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. SCHEMAPLAN_DATABASE_URL.
const EnvPrefix = "SCHEMAPLAN"

// OutputFormats lists every accepted output.format.
var OutputFormats = []string{"text", "markdown", "yaml", "summary", "steps", "sql"}

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Shadow   ShadowConfig   `mapstructure:"shadow"`
	Migrate  MigrateConfig  `mapstructure:"migrate"`
	Log      LogConfig      `mapstructure:"log"`
	Output   OutputConfig   `mapstructure:"output"`
}

type DatabaseConfig struct {
	URL        string   `mapstructure:"url"`
	Namespaces []string `mapstructure:"namespaces"`
	// StatementTimeout bounds each command's database work. Zero means none.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

type ShadowConfig struct {
	URL string `mapstructure:"url"`
}

type MigrateConfig struct {
	Force  bool `mapstructure:"force"`
	DryRun bool `mapstructure:"dry_run"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
	Dir    string `mapstructure:"dir"`
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("database.url", "")
	v.SetDefault("database.namespaces", []string{})
	v.SetDefault("database.statement_timeout", "0s")
	v.SetDefault("shadow.url", "")
	v.SetDefault("migrate.force", false)
	v.SetDefault("migrate.dry_run", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.file", "")
	v.SetDefault("output.dir", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads the config file at path, or $HOME/.schemaplan.yaml when path
// is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".schemaplan")
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && (path != "" || !errors.As(err, &notFound)) {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load loads .env files into the environment and decodes v. DATABASE_URL and
// SHADOW_DATABASE_URL fill in URLs that are still unset.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	loadEnv(envFiles...)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Shadow.URL == "" {
		cfg.Shadow.URL = os.Getenv("SHADOW_DATABASE_URL")
	}
	cfg.Database.Namespaces = splitList(cfg.Database.Namespaces)
	return &cfg, nil
}

// loadEnv reads .env files. Missing files are silently ignored and variables
// already set win.
func loadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// splitList accepts both list values and a single comma-separated string,
// which is what an environment variable yields.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects unknown formats and levels and a missing database URL.
func (c *Config) Validate() error {
	if err := c.ValidateOutput(); err != nil {
		return err
	}
	if c.Database.URL == "" {
		return fmt.Errorf("a database url is required (--url, %s_DATABASE_URL or DATABASE_URL)", EnvPrefix)
	}
	return nil
}

// ValidateOutput checks the output and logging settings only.
func (c *Config) ValidateOutput() error {
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s", c.Output.Format, strings.Join(OutputFormats, ", "))
	}
	if c.Output.File != "" && c.Output.Dir != "" {
		return fmt.Errorf("cannot use both an output file and an output directory")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if !slices.Contains(logging.Formats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("invalid log format '%s'. Valid formats: %s", c.Log.Format, strings.Join(logging.Formats, ", "))
	}
	if c.Database.StatementTimeout < 0 {
		return fmt.Errorf("statement timeout cannot be negative")
	}
	return nil
}

// ShadowServerURL returns the server throwaway shadow databases are created
// on: the shadow URL, or the database URL when no shadow URL is set.
func (c *Config) ShadowServerURL() (string, error) {
	if c.Shadow.URL != "" {
		return c.Shadow.URL, nil
	}
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	return "", fmt.Errorf("no shadow or database url to derive a shadow database from")
}
