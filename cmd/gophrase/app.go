package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ZaguanLabs/gophrase"
	"github.com/ZaguanLabs/gophrase/cache"
	"github.com/ZaguanLabs/gophrase/internal/config"
	"github.com/ZaguanLabs/gophrase/internal/logger"
	"github.com/ZaguanLabs/gophrase/provider"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

// app is the wired application for one command invocation.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *cache.Store
	closers []func() error
}

// setup loads configuration, applies flag overrides and opens the cache.
func (c *cli) setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(config.Options{Path: c.configPath, EnvFile: c.envFile})
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	c.applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return nil, withCode(exitUsage, err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger.Init(cmd.ErrOrStderr(), logger.ParseLevel(cfg.Log.Level), cfg.Log.Format),
	}

	persister, closer, err := openPersister(cfg.Cache)
	if err != nil {
		return nil, withCode(exitUsage, zerr.With(zerr.Wrap(err, "failed to open cache"), "backend", cfg.Cache.Backend))
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.store = cache.NewStore(cmd.Context(), persister,
		cache.WithExpiration(cfg.Cache.Expiration),
		cache.WithLogger(a.logger),
	)
	return a, nil
}

// applyFlags copies explicitly set flags over the loaded configuration.
func (c *cli) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("cache-backend") {
		cfg.Cache.Backend = c.cacheBackend
	}
	if flags.Changed("cache-path") {
		cfg.Cache.Path = c.cachePath
	}
	if flags.Changed("expiration") {
		cfg.Cache.Expiration = c.expiration
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("provider") {
		cfg.Provider.Name = c.providerName
	}
	if flags.Changed("model") {
		cfg.Provider.Model = c.model
	}
}

func openPersister(cfg config.CacheConfig) (cache.Persister, func() error, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return cache.NewFilePersister(cfg.Path), nil, nil
	case config.BackendSQLite:
		p, err := cache.NewSQLitePersister(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.BackendRedis:
		p, err := cache.NewRedisPersister(cache.RedisConfig{URL: cfg.RedisURL, KeyPrefix: cfg.KeyPrefix})
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.BackendMemory:
		return cache.NewMemoryPersister(), nil, nil
	default:
		return nil, nil, zerr.With(config.ErrInvalidConfig, "backend", cfg.Backend)
	}
}

// newTranslator builds the provider chain and the gateway around the store.
func (a *app) newTranslator(newProvider ProviderFactory, observer gophrase.Observer) (*gophrase.Translator, error) {
	pc := a.cfg.Provider
	p, err := newProvider(provider.Config{
		Provider:    pc.Name,
		APIKey:      pc.APIKey,
		Model:       pc.Model,
		MaxTokens:   pc.MaxTokens,
		Temperature: pc.Temperature,
		BaseURL:     pc.BaseURL,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create provider"), "provider", pc.Name)
	}

	if pc.RequestsPerMinute > 0 {
		p = gophrase.NewRateLimitedProvider(p, gophrase.RateLimitConfig{RequestsPerMinute: pc.RequestsPerMinute})
	}
	if pc.MaxRetries > 0 {
		retry := gophrase.DefaultRetryConfig()
		retry.MaxRetries = pc.MaxRetries
		p = gophrase.NewRetryableProvider(p, retry)
	}

	opts := []gophrase.TranslatorOption{
		gophrase.WithCache(a.store),
		gophrase.WithLogger(a.logger),
	}
	if observer != nil {
		opts = append(opts, gophrase.WithObserver(observer))
	}
	return gophrase.NewTranslator(p, opts...), nil
}

func (a *app) close() {
	var errs []error
	for _, closer := range a.closers {
		errs = append(errs, closer())
	}
	if err := errors.Join(errs...); err != nil {
		zerr.Log(context.Background(), a.logger, zerr.Wrap(err, "failed to close cache"))
	}
}
