// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package storetest provides in-memory implementations of the store
// interfaces for unit tests.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/scmprops/scmprops/internal/eventbus"
	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/repository"
	"github.com/scmprops/scmprops/internal/search"
)

// Properties is an in-memory property.Store.
type Properties struct {
	mu    sync.Mutex
	repos map[string]map[string]property.CustomProperty
	// Err, when set, is returned by every call.
	Err error
	// RemoveErr, when set, is returned by Remove only.
	RemoveErr error
}

// NewProperties creates an empty property store.
func NewProperties() *Properties {
	return &Properties{repos: make(map[string]map[string]property.CustomProperty)}
}

// Get implements property.Store.
func (p *Properties) Get(_ context.Context, repositoryID, key string) (property.CustomProperty, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return property.CustomProperty{}, false, p.Err
	}
	prop, ok := p.repos[repositoryID][key]
	return prop, ok, nil
}

// GetAll implements property.Store.
func (p *Properties) GetAll(_ context.Context, repositoryID string) (map[string]property.CustomProperty, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	all := make(map[string]property.CustomProperty, len(p.repos[repositoryID]))
	for k, v := range p.repos[repositoryID] {
		all[k] = v
	}
	return all, nil
}

// Put implements property.Store.
func (p *Properties) Put(_ context.Context, repositoryID string, prop property.CustomProperty) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if p.repos[repositoryID] == nil {
		p.repos[repositoryID] = make(map[string]property.CustomProperty)
	}
	p.repos[repositoryID][prop.Key] = prop
	return nil
}

// Remove implements property.Store.
func (p *Properties) Remove(_ context.Context, repositoryID, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if p.RemoveErr != nil {
		return p.RemoveErr
	}
	delete(p.repos[repositoryID], key)
	return nil
}

// Configs is an in-memory predefined.Store.
type Configs struct {
	mu         sync.Mutex
	global     *predefined.GlobalConfig
	namespaces map[string]predefined.NamespaceConfig
	Err        error
}

// NewConfigs creates a store holding no configuration.
func NewConfigs() *Configs {
	return &Configs{namespaces: make(map[string]predefined.NamespaceConfig)}
}

// GlobalConfig implements predefined.Store.
func (c *Configs) GlobalConfig(context.Context) (predefined.GlobalConfig, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return predefined.GlobalConfig{}, false, c.Err
	}
	if c.global == nil {
		return predefined.GlobalConfig{}, false, nil
	}
	return *c.global, true, nil
}

// SetGlobalConfig implements predefined.Store.
func (c *Configs) SetGlobalConfig(_ context.Context, cfg predefined.GlobalConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.global = &cfg
	return nil
}

// NamespaceConfig implements predefined.Store.
func (c *Configs) NamespaceConfig(_ context.Context, namespace string) (predefined.NamespaceConfig, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return predefined.NamespaceConfig{}, false, c.Err
	}
	cfg, ok := c.namespaces[namespace]
	return cfg, ok, nil
}

// SetNamespaceConfig implements predefined.Store.
func (c *Configs) SetNamespaceConfig(_ context.Context, namespace string, cfg predefined.NamespaceConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.namespaces[namespace] = cfg
	return nil
}

// Repositories is an in-memory repository.Manager.
type Repositories struct {
	mu    sync.Mutex
	repos map[string]repository.Repository
}

// NewRepositories creates a manager holding repos.
func NewRepositories(repos ...repository.Repository) *Repositories {
	r := &Repositories{repos: make(map[string]repository.Repository)}
	for _, repo := range repos {
		r.repos[repo.ID] = repo
	}
	return r
}

// Add stores repo, replacing one with the same ID.
func (r *Repositories) Add(repo repository.Repository) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repos[repo.ID] = repo
}

// Create stores repo unless its full name is taken.
func (r *Repositories) Create(_ context.Context, repo repository.Repository) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.repos {
		if existing.FullName() == repo.FullName() {
			return repository.AlreadyExists(repo.Namespace, repo.Name)
		}
	}
	r.repos[repo.ID] = repo
	return nil
}

// SetArchived changes the archived flag of the repository with id.
func (r *Repositories) SetArchived(_ context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	repo, ok := r.repos[id]
	if !ok {
		return repository.NotFound(id)
	}
	repo.Archived = archived
	r.repos[id] = repo
	return nil
}

// ByName returns the repository with namespace and name.
func (r *Repositories) ByName(_ context.Context, namespace, name string) (repository.Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, repo := range r.repos {
		if repo.Namespace == namespace && repo.Name == name {
			return repo, nil
		}
	}
	return repository.Repository{}, repository.NotFound(namespace + "/" + name)
}

// All implements repository.Manager.
func (r *Repositories) All(context.Context) ([]repository.Repository, error) {
	return r.filter(func(repository.Repository) bool { return true }), nil
}

// Get implements repository.Manager.
func (r *Repositories) Get(_ context.Context, id string) (repository.Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	repo, ok := r.repos[id]
	if !ok {
		return repository.Repository{}, repository.NotFound(id)
	}
	return repo, nil
}

// ByNamespace implements repository.Manager.
func (r *Repositories) ByNamespace(_ context.Context, namespace string) ([]repository.Repository, error) {
	return r.filter(func(repo repository.Repository) bool { return repo.Namespace == namespace }), nil
}

func (r *Repositories) filter(keep func(repository.Repository) bool) []repository.Repository {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Repository
	for _, repo := range r.repos {
		if keep(repo) {
			out = append(out, repo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out
}

// Index is an in-memory search.Index that also records every write.
type Index struct {
	mu      sync.Mutex
	entries map[search.EntryID]search.Entry

	Stored              []search.EntryID
	Deleted             []search.EntryID
	DeletedRepositories []string
	DeleteAllCalls      int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[search.EntryID]search.Entry)}
}

// Store implements search.Index.
func (x *Index) Store(_ context.Context, entry search.Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[entry.ID] = entry
	x.Stored = append(x.Stored, entry.ID)
	return nil
}

// Delete implements search.Index.
func (x *Index) Delete(_ context.Context, id search.EntryID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.entries, id)
	x.Deleted = append(x.Deleted, id)
	return nil
}

// DeleteByRepository implements search.Index.
func (x *Index) DeleteByRepository(_ context.Context, repositoryID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id := range x.entries {
		if id.RepositoryID == repositoryID {
			delete(x.entries, id)
		}
	}
	x.DeletedRepositories = append(x.DeletedRepositories, repositoryID)
	return nil
}

// DeleteAll implements search.Index.
func (x *Index) DeleteAll(context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = make(map[search.EntryID]search.Entry)
	x.DeleteAllCalls++
	return nil
}

// Entries implements search.Index.
func (x *Index) Entries(_ context.Context, repositoryID string) ([]search.Entry, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var out []search.Entry
	for id, entry := range x.entries {
		if id.RepositoryID == repositoryID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID.Key != out[j].ID.Key {
			return out[i].ID.Key < out[j].ID.Key
		}
		return out[i].ID.Value < out[j].ID.Value
	})
	return out, nil
}

// Properties returns the "key=value" documents of a repository, sorted.
func (x *Index) Properties(repositoryID string) []string {
	entries, _ := x.Entries(context.Background(), repositoryID)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Document.Property)
	}
	return out
}

// ResetOps forgets the recorded writes but keeps the entries.
func (x *Index) ResetOps() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.Stored, x.Deleted, x.DeletedRepositories, x.DeleteAllCalls = nil, nil, nil, 0
}

// IndexLog is an in-memory search.IndexLog.
type IndexLog struct {
	mu       sync.Mutex
	versions map[string]int
}

// NewIndexLog creates an empty index log.
func NewIndexLog() *IndexLog {
	return &IndexLog{versions: make(map[string]int)}
}

// Version implements search.IndexLog.
func (l *IndexLog) Version(_ context.Context, tag string) (int, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.versions[tag]
	return v, ok, nil
}

// Log implements search.IndexLog.
func (l *IndexLog) Log(_ context.Context, tag string, version int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.versions[tag] = version
	return nil
}

// Events records published events.
type Events struct {
	mu     sync.Mutex
	events []eventbus.Event
}

// Publish implements eventbus.Publisher.
func (e *Events) Publish(_ context.Context, event eventbus.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

// All returns the events published so far.
func (e *Events) All() []eventbus.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]eventbus.Event(nil), e.events...)
}

// Reset forgets the recorded events.
func (e *Events) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = nil
}
