package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"brightspace-helper/internal/application"
	"brightspace-helper/internal/components/chrono"
	"brightspace-helper/internal/components/telemetry"
	"brightspace-helper/internal/overrides"
	"brightspace-helper/internal/scrapers/d2l"
	"brightspace-helper/lib/configutil"
	configlibsql "brightspace-helper/lib/configutil/libsql"
	"brightspace-helper/lib/restyutil"
)

type CacheConfig struct {
	GradeMinutes    int `json:"grade_minutes"`
	UpcomingMinutes int `json:"upcoming_minutes"`
	ModelMinutes    int `json:"model_minutes"`
}

type ResolveConfig struct {
	Retries int `json:"retries"`
	DelayMs int `json:"delay_ms"`
}

type Config struct {
	BaseUrl           string              `json:"base_url"`
	Cookie            string              `json:"cookie"`
	Cache             CacheConfig         `json:"cache"`
	MaxUpcoming       int                 `json:"max_upcoming"`
	RequestsPerSecond float64             `json:"requests_per_second"`
	Overrides         configlibsql.Struct `json:"overrides"`
	Resolve           ResolveConfig       `json:"resolve"`
}

// options maps the config onto the service options, fields left out of the config fall back
// to application.Options.WithDefaults.
func (c Config) options() application.Options {
	return application.Options{
		GradeTTL:       time.Duration(c.Cache.GradeMinutes) * time.Minute,
		UpcomingTTL:    time.Duration(c.Cache.UpcomingMinutes) * time.Minute,
		ModelTTL:       time.Duration(c.Cache.ModelMinutes) * time.Minute,
		MaxUpcoming:    c.MaxUpcoming,
		ResolveRetries: c.Resolve.Retries,
		ResolveDelay:   time.Duration(c.Resolve.DelayMs) * time.Millisecond,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, err
	}
	if cfg.BaseUrl == "" {
		return Config{}, fmt.Errorf("base_url is required")
	}
	return cfg, nil
}

// openStore returns the configured override store backed by memory, or memory alone when no
// database is configured. closeStore releases the database, if any.
func openStore(ctx context.Context, cfg configlibsql.Struct, time chrono.TimeAPI, tel telemetry.API) (store overrides.Store, closeStore func() error, err error) {
	memory := overrides.NewMemoryStore()
	if cfg.IsEmpty() {
		slog.Debug("no overrides database configured, overrides last until exit")
		return memory, func() error { return nil }, nil
	}

	db, err := cfg.OpenDB()
	if err != nil {
		return nil, nil, fmt.Errorf("open overrides db: %w", err)
	}
	sqlStore, err := overrides.NewSQLStore(ctx, db, time)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init overrides db: %w", err)
	}
	return overrides.NewFallbackStore(sqlStore, memory, tel), db.Close, nil
}

// NewService builds the service the commands use, closeStore must be called once they are done.
func NewService(ctx context.Context, cfg Config, dumpDir string) (service *application.Service, closeStore func() error, err error) {
	tel := telemetry.SlogAPI{}
	clock := chrono.NewStandardTime(nil)

	opts := d2l.ClientOptions{
		BaseUrl:           cfg.BaseUrl,
		Cookie:            cfg.Cookie,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
	if dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return nil, nil, fmt.Errorf("create dump dir: %w", err)
		}
		opts.Dump = output
	}
	client, err := d2l.NewClient(opts, tel)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := openStore(ctx, cfg.Overrides, clock, tel)
	if err != nil {
		return nil, nil, err
	}

	return application.NewService(client, store, clock, tel, cfg.options()), closeStore, nil
}
