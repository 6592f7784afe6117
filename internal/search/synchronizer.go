// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/scmprops/scmprops/internal/eventbus"
	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/repository"
)

// CodeIndexStoreFailed marks failed index or index log writes.
const CodeIndexStoreFailed = "INDEX_STORE_FAILED"

var tracer = otel.Tracer("scmprops/search")

// ErrIndexStoreFailed is wrapped by every index write failure.
var ErrIndexStoreFailed = errors.New("search index operation failed")

// PropertyReader returns the properties of a repository, defaults included.
// *property.Service satisfies it.
type PropertyReader interface {
	Get(ctx context.Context, repo repository.Repository) ([]property.CustomProperty, error)
}

// Synchronizer writes index entries in reaction to property and repository events.
// It never reads the index to decide what to delete.
type Synchronizer struct {
	index  Index
	log    IndexLog
	props  PropertyReader
	repos  repository.Manager
	logger *slog.Logger
}

// NewSynchronizer creates a Synchronizer. A nil logger uses slog.Default.
func NewSynchronizer(index Index, log IndexLog, props PropertyReader, repos repository.Manager, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		index:  index,
		log:    log,
		props:  props,
		repos:  repos,
		logger: logger,
	}
}

// Register subscribes the synchronizer to every event it reacts to.
func (s *Synchronizer) Register(d *eventbus.Dispatcher) {
	eventbus.Subscribe(d, "search.created", s.OnCreated)
	eventbus.Subscribe(d, "search.updated", s.OnUpdated)
	eventbus.Subscribe(d, "search.deleted", s.OnDeleted)
	eventbus.Subscribe(d, "search.reindex_repository", s.OnReindexRequested)
	eventbus.Subscribe(d, "search.imported", s.OnImported)
	eventbus.Subscribe(d, "search.started", s.OnStarted)
}

// OnCreated stores one entry per value of the new property.
func (s *Synchronizer) OnCreated(ctx context.Context, event property.Created) error {
	s.logger.DebugContext(ctx, "storing created custom property",
		"repository_id", event.Repository.ID,
		"key", event.Property.Key)
	return s.store(ctx, event.Repository, event.Property)
}

// OnUpdated deletes the entries of the previous property, if any, then stores
// the entries of the new one. Values present in both are deleted and stored again.
func (s *Synchronizer) OnUpdated(ctx context.Context, event property.Updated) error {
	s.logger.DebugContext(ctx, "storing updated custom property",
		"repository_id", event.Repository.ID,
		"key", event.Property.Key)
	if event.Previous != nil {
		if err := s.delete(ctx, event.Repository, *event.Previous); err != nil {
			return err
		}
	}
	return s.store(ctx, event.Repository, event.Property)
}

// OnDeleted removes one entry per value of the deleted property.
func (s *Synchronizer) OnDeleted(ctx context.Context, event property.Deleted) error {
	s.logger.DebugContext(ctx, "removing deleted custom property",
		"repository_id", event.Repository.ID,
		"key", event.Property.Key)
	return s.delete(ctx, event.Repository, event.Property)
}

// OnReindexRequested rebuilds the entries of one repository.
func (s *Synchronizer) OnReindexRequested(ctx context.Context, event repository.ReindexRequested) error {
	return s.ReindexRepository(ctx, event.Repository)
}

// OnImported indexes a successfully imported repository.
func (s *Synchronizer) OnImported(ctx context.Context, event repository.Imported) error {
	if event.Failed {
		return nil
	}
	s.logger.DebugContext(ctx, "indexing imported repository", "repository_id", event.Repository.ID)
	return s.indexRepository(ctx, event.Repository)
}

// OnStarted rebuilds the whole index when its schema version is outdated.
func (s *Synchronizer) OnStarted(ctx context.Context, _ eventbus.Started) error {
	_, err := s.ReindexAll(ctx, false)
	return err
}

// ReindexRepository deletes every entry of repo and indexes its stored properties again.
func (s *Synchronizer) ReindexRepository(ctx context.Context, repo repository.Repository) error {
	defer observeReindex("repository", time.Now())
	s.logger.DebugContext(ctx, "reindexing custom properties", "repository_id", repo.ID)

	if err := s.index.DeleteByRepository(ctx, repo.ID); err != nil {
		return indexFailed("delete by repository", err, "repository_id", repo.ID)
	}
	recordOperation("delete_repository")
	return s.indexRepository(ctx, repo)
}

// ReindexAll rebuilds the index from every repository unless the logged schema
// version equals SchemaVersion. force skips the version check. It reports
// whether a rebuild happened.
func (s *Synchronizer) ReindexAll(ctx context.Context, force bool) (rebuilt bool, err error) {
	ctx, span := tracer.Start(ctx, "search.reindex_all",
		trace.WithAttributes(attribute.Bool("reindex.forced", force)),
	)
	defer func() {
		span.SetAttributes(attribute.Bool("reindex.rebuilt", rebuilt))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	version, logged, err := s.log.Version(ctx, SchemaTag)
	if err != nil {
		return false, indexFailed("read index log", err)
	}
	if !force && logged && version == SchemaVersion {
		s.logger.DebugContext(ctx, "search index is up to date", "version", version)
		return false, nil
	}

	s.logger.InfoContext(ctx, "reindexing all custom properties",
		"logged", logged,
		"logged_version", version,
		"current_version", SchemaVersion,
		"forced", force)
	defer observeReindex("all", time.Now())

	if err := s.index.DeleteAll(ctx); err != nil {
		return false, indexFailed("delete all", err)
	}
	recordOperation("delete_all")

	repos, err := s.repos.All(ctx)
	if err != nil {
		return false, err
	}
	for _, repo := range repos {
		if err := s.indexRepository(ctx, repo); err != nil {
			return false, err
		}
	}

	if err := s.log.Log(ctx, SchemaTag, SchemaVersion); err != nil {
		return false, indexFailed("write index log", err)
	}
	s.logger.InfoContext(ctx, "search index rebuilt", "repositories", len(repos), "version", SchemaVersion)
	return true, nil
}

// indexRepository stores the entries of every stored property of repo.
// Synthesized defaults are not indexed.
func (s *Synchronizer) indexRepository(ctx context.Context, repo repository.Repository) error {
	props, err := s.props.Get(ctx, repo)
	if err != nil {
		return err
	}
	for _, prop := range props {
		if prop.IsDefault {
			continue
		}
		if err := s.store(ctx, repo, prop); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) store(ctx context.Context, repo repository.Repository, prop property.CustomProperty) error {
	for _, value := range prop.Values() {
		entry := Entry{
			ID:        EntryID{RepositoryID: repo.ID, Key: prop.Key, Value: value},
			Namespace: repo.Namespace,
			ACL:       ReadPermission(repo.ID),
			Document:  NewIndexedProperty(prop.Key, value),
		}
		if err := s.index.Store(ctx, entry); err != nil {
			return indexFailed("store", err, "entry", entry.ID.String())
		}
		recordOperation("store")
	}
	return nil
}

func (s *Synchronizer) delete(ctx context.Context, repo repository.Repository, prop property.CustomProperty) error {
	for _, value := range prop.Values() {
		id := EntryID{RepositoryID: repo.ID, Key: prop.Key, Value: value}
		if err := s.index.Delete(ctx, id); err != nil {
			return indexFailed("delete", err, "entry", id.String())
		}
		recordOperation("delete")
	}
	return nil
}

func indexFailed(operation string, err error, kv ...any) error {
	return oops.Code(CodeIndexStoreFailed).
		With("operation", operation).
		With(kv...).
		Wrapf(errors.Join(ErrIndexStoreFailed, err), "search index %s failed", operation)
}
