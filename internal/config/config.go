// Package config loads schemastore settings. Sources are applied in order,
// each overriding the last: built-in defaults, an optional YAML file, an
// optional .env file, then SCHEMASTORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/koustreak/schemastore/internal/database"
	"github.com/koustreak/schemastore/internal/errs"
	"github.com/koustreak/schemastore/internal/filestore"
	"github.com/koustreak/schemastore/internal/logger"
	"go.yaml.in/yaml/v3"
)

const envPrefix = "SCHEMASTORE_"

// Config is the full application configuration.
type Config struct {
	Database  database.Config  `yaml:"database"`
	Log       logger.Config    `yaml:"log"`
	HTTP      HTTPConfig       `yaml:"http"`
	FileStore filestore.Config `yaml:"filestore"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in defaults: MySQL on localhost, info JSON logs,
// API on :8080.
func Default() Config {
	db := database.DefaultConfig("localhost", "schemastore", "root", "")
	db.QueryTimeout = 30 * time.Second
	return Config{
		Database: db,
		Log:      *logger.DefaultConfig(),
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		FileStore: filestore.Config{Provider: filestore.ProviderMinIO},
	}
}

// Load builds a Config from defaults, path (skipped when empty), envFile
// (skipped when empty or missing) and the environment.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("cannot read config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("cannot parse config file %s", path), err)
		}
	}

	if envFile != "" {
		// Load never overrides variables already set in the process.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("cannot read env file %s", envFile), err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "DRIVER"); ok {
		cfg.Database.Driver = database.Driver(v)
	}
	str("HOST", &cfg.Database.Host)
	str("DATABASE", &cfg.Database.Database)
	str("USER", &cfg.Database.User)
	str("PASSWORD", &cfg.Database.Password)
	str("SSLMODE", &cfg.Database.SSLMode)
	if v, ok := os.LookupEnv(envPrefix + "PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, envPrefix+"PORT must be a number", err)
		}
		cfg.Database.Port = port
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("HTTP_ADDR", &cfg.HTTP.Addr)

	if v, ok := os.LookupEnv(envPrefix + "FILESTORE_PROVIDER"); ok {
		cfg.FileStore.Provider = filestore.Provider(v)
	}
	str("FILESTORE_ROOT", &cfg.FileStore.Root)
	str("MINIO_ENDPOINT", &cfg.FileStore.Endpoint)
	str("MINIO_ACCESS_KEY", &cfg.FileStore.AccessKey)
	str("MINIO_SECRET_KEY", &cfg.FileStore.SecretKey)
	str("MINIO_BUCKET", &cfg.FileStore.Bucket)
	str("MINIO_PREFIX", &cfg.FileStore.Prefix)
	return nil
}

// Validate rejects configurations no store could be built from.
func (c Config) Validate() error {
	switch c.Database.DriverOrDefault() {
	case database.DriverMySQL, database.DriverPostgres, database.DriverSQLite:
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "database name is required")
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return errs.Newf(errs.ErrKindInvalidInput, "database port %d out of range", c.Database.Port)
	}
	switch c.FileStore.Provider {
	case "", filestore.ProviderMinIO, filestore.ProviderLocal:
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unknown filestore provider %q", c.FileStore.Provider)
	}
	return nil
}
