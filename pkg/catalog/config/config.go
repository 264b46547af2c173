package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/storage-catalog/pkg/catalog"
	"github.com/tendant/storage-catalog/pkg/catalog/repo/memory"
	repopg "github.com/tendant/storage-catalog/pkg/catalog/repo/postgres"
	repos3 "github.com/tendant/storage-catalog/pkg/catalog/repo/s3"
)

// Repository backends
const (
	RepositoryMemory   = "memory"
	RepositoryPostgres = "postgres"
	RepositoryS3       = "s3"
)

// ServerConfig represents server configuration for the storage catalog
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// BaseURL is prepended to entity links, e.g. "https://catalog.example.com".
	BaseURL      string `env:"CATALOG_BASE_URL" env-default:""`
	APIKeySHA256 string `env:"API_KEY_SHA256" env-default:""`

	// Repository configuration
	RepositoryType string `env:"CATALOG_REPOSITORY" env-default:"memory"` // "memory", "postgres", "s3"
	DatabaseURL    string `env:"DATABASE_URL" env-default:""`
	DBSchema       string `env:"CATALOG_DB_SCHEMA" env-default:"catalog"`
	S3             S3Config

	EnableEventLogging bool `env:"ENABLE_EVENT_LOGGING" env-default:"true"`
}

// S3Config configures the S3 repository backend
type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Bucket          string `env:"AWS_S3_BUCKET" env-default:""`
	Prefix          string `env:"AWS_S3_PREFIX" env-default:"storage-services"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
}

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load reads the environment and then applies the supplied options.
func Load(opts ...Option) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// WithRepository selects the repository backend.
func WithRepository(kind string) Option {
	return func(c *ServerConfig) error {
		c.RepositoryType = kind
		return nil
	}
}

// WithDatabaseURL sets the Postgres connection string and selects the
// postgres backend.
func WithDatabaseURL(url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = url
		c.RepositoryType = RepositoryPostgres
		return nil
	}
}

// WithBaseURL sets the prefix used for entity links.
func WithBaseURL(url string) Option {
	return func(c *ServerConfig) error {
		c.BaseURL = url
		return nil
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.RepositoryType {
	case RepositoryMemory:
	case RepositoryPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
		if !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
			return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'postgresql://...')", c.DatabaseURL)
		}
	case RepositoryS3:
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using the s3 repository")
		}
	default:
		return fmt.Errorf("repository must be 'memory', 'postgres' or 's3', got %q", c.RepositoryType)
	}

	return nil
}

// HrefPrefix returns the collection URL entity links are built from.
func (c *ServerConfig) HrefPrefix() string {
	return strings.TrimRight(c.BaseURL, "/") + catalog.DefaultHrefPrefix
}

// BuildService creates a catalog.Service from the configuration. The
// returned close function releases the repository's resources.
func (c *ServerConfig) BuildService(ctx context.Context) (catalog.Service, func(), error) {
	repo, closeRepo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	options := []catalog.Option{
		catalog.WithRepository(repo),
		catalog.WithHrefBuilder(catalog.NewHrefBuilder(c.HrefPrefix())),
	}
	if c.EnableEventLogging {
		options = append(options, catalog.WithEventSink(catalog.NewLogEventSink(nil)))
	}

	svc, err := catalog.New(options...)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}
	return svc, closeRepo, nil
}

func (c *ServerConfig) buildRepository(ctx context.Context) (catalog.Repository, func(), error) {
	noop := func() {}

	switch c.RepositoryType {
	case RepositoryPostgres:
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := repopg.EnsureSchema(ctx, pool, c.DBSchema); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repopg.New(pool, c.DBSchema), pool.Close, nil
	case RepositoryS3:
		repo, err := repos3.New(repos3.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			Prefix:          c.S3.Prefix,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create S3 repository: %w", err)
		}
		return repo, noop, nil
	default:
		return memory.New(), noop, nil
	}
}
