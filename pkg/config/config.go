package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Store struct {
		Driver string `env:"STORE_DRIVER" env-default:"sqlite"`
		Path   string `env:"STORE_PATH" env-default:"./data/story-explorer.db"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	API struct {
		BaseURL string        `env:"API_BASE_URL" env-default:"https://story-api.dicoding.dev/v1"`
		Timeout time.Duration `env:"API_TIMEOUT" env-default:"15s"`
	}
	Interceptor struct {
		Port            int      `env:"INTERCEPTOR_PORT" env-default:"8081"`
		CachePath       string   `env:"INTERCEPTOR_CACHE_PATH" env-default:"./data/response-cache.db"`
		Generation      string   `env:"INTERCEPTOR_GENERATION" env-default:"story-explorer-v1"`
		AppOrigin       string   `env:"INTERCEPTOR_APP_ORIGIN" env-default:"http://localhost:8080"`
		TileHosts       []string `env:"INTERCEPTOR_TILE_HOSTS" env-separator:"," env-default:"maptiler.com"`
		CoreAssets      []string `env:"INTERCEPTOR_CORE_ASSETS" env-separator:"," env-default:"/,/app.bundle.js,/icons/icon-192x192.png,/icons/icon-512x512.png"`
		OfflineFallback string   `env:"INTERCEPTOR_OFFLINE_FALLBACK" env-default:"/"`
		InstallWorkers  int      `env:"INTERCEPTOR_INSTALL_WORKERS" env-default:"4"`
		BackgroundSync  bool     `env:"INTERCEPTOR_BACKGROUND_SYNC" env-default:"true"`
	}
	Connectivity struct {
		ProbeURL string        `env:"CONNECTIVITY_PROBE_URL"`
		Interval time.Duration `env:"CONNECTIVITY_INTERVAL" env-default:"15s"`
		Timeout  time.Duration `env:"CONNECTIVITY_TIMEOUT" env-default:"3s"`
	}
	Sync struct {
		TriggerEvery time.Duration `env:"SYNC_TRIGGER_EVERY" env-default:"10s"`
		TriggerBurst int           `env:"SYNC_TRIGGER_BURST" env-default:"3"`
	}
	Telemetry struct {
		Enabled bool `env:"OTEL_ENABLED" env-default:"false"`
		Stdout  bool `env:"OTEL_STDOUT" env-default:"false"`
	}
}

var (
	once    sync.Once
	cfg     *Config
	loadErr error
)

// New returns the process-wide configuration, reading the environment once.
func New() (*Config, error) {
	once.Do(func() {
		cfg, loadErr = Load()
	})
	return cfg, loadErr
}

// Load reads a fresh configuration from the environment.
func Load() (*Config, error) {
	c := &Config{}
	if err := cleanenv.ReadEnv(c); err != nil {
		help, _ := cleanenv.GetDescription(c, nil)
		return nil, fmt.Errorf("failed to read configuration: %w\n%s", err, help)
	}
	if c.Connectivity.ProbeURL == "" {
		c.Connectivity.ProbeURL = c.API.BaseURL
	}
	return c, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
