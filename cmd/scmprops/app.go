// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/scmprops/scmprops/internal/eventbus"
	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/query"
	"github.com/scmprops/scmprops/internal/repository"
	"github.com/scmprops/scmprops/internal/search"
	"github.com/scmprops/scmprops/internal/store"
)

// RepositoryStore is the repository.Manager the CLI writes through.
type RepositoryStore interface {
	repository.Manager
	Create(ctx context.Context, repo repository.Repository) error
	SetArchived(ctx context.Context, id string, archived bool) error
	ByName(ctx context.Context, namespace, name string) (repository.Repository, error)
}

// Backend bundles the stores behind the services.
type Backend struct {
	Repositories RepositoryStore
	Properties   property.Store
	Configs      predefined.Store
	Index        search.Index
	IndexLog     search.IndexLog
	// Ping reports whether the storage is reachable. May be nil.
	Ping func(ctx context.Context) error
	// Close releases the connections. May be nil.
	Close func()
}

// BackendOpener connects a Backend for cfg.
type BackendOpener func(ctx context.Context, cfg Config) (*Backend, error)

func openPostgres(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.DatabaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database_url is required (flag --database-url, config file or DATABASE_URL)")
	}
	pool, err := store.Connect(ctx, cfg.DatabaseURL, store.ConnectOptions{
		Timeout: cfg.ConnectTimeout,
		Retries: cfg.ConnectRetries,
		Backoff: store.DefaultConnectOptions().Backoff,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{
		Repositories: store.NewRepositoryStore(pool),
		Properties:   store.NewPropertyStore(pool),
		Configs:      store.NewConfigStore(pool),
		Index:        store.NewSearchIndex(pool),
		IndexLog:     store.NewIndexLog(pool),
		Ping:         pool.Ping,
		Close:        pool.Close,
	}, nil
}

// app wires the services on top of a Backend. Every command gets the same
// wiring, so property changes made from the CLI update the index as well.
type app struct {
	backend      *Backend
	dispatcher   *eventbus.Dispatcher
	keys         *predefined.Service
	properties   *property.Service
	synchronizer *search.Synchronizer
	engine       *query.Engine
}

func newApp(b *Backend, cfg Config, logger *slog.Logger) (*app, error) {
	dispatcher := eventbus.NewDispatcher(logger)
	keys := predefined.NewService(b.Configs)
	properties := property.NewService(b.Properties, keys, dispatcher, b.Repositories)

	synchronizer := search.NewSynchronizer(b.Index, b.IndexLog, properties, b.Repositories, logger)
	synchronizer.Register(dispatcher)

	matcher, err := query.NewMatcher(cfg.GlobCacheSize)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("glob_cache_size", cfg.GlobCacheSize).Wrap(err)
	}

	return &app{
		backend:      b,
		dispatcher:   dispatcher,
		keys:         keys,
		properties:   properties,
		synchronizer: synchronizer,
		engine:       query.NewEngine(b.Repositories, properties, matcher),
	}, nil
}

// run opens the backend, builds the app and calls fn with it.
func (c *cli) run(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	backend, err := c.deps.OpenBackend(ctx, c.cfg)
	if err != nil {
		return err
	}
	if backend.Close != nil {
		defer backend.Close()
	}

	a, err := newApp(backend, c.cfg, c.logger)
	if err != nil {
		return err
	}
	return fn(ctx, a)
}

// repository resolves "namespace/name".
func (a *app) repository(ctx context.Context, fullName string) (repository.Repository, error) {
	namespace, name, err := repository.ParseFullName(fullName)
	if err != nil {
		return repository.Repository{}, err
	}
	return a.backend.Repositories.ByName(ctx, namespace, name)
}
