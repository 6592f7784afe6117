// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package query finds repositories by glob patterns over their custom properties.
package query

import (
	"context"

	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/repository"
)

// PropertyReader returns the properties of a repository, defaults included.
type PropertyReader interface {
	Get(ctx context.Context, repo repository.Repository) ([]property.CustomProperty, error)
}

// Result is a matching repository with all of its properties.
type Result struct {
	Repository repository.Repository
	Properties []property.CustomProperty
}

// Engine evaluates filters against every repository.
type Engine struct {
	repos   repository.Manager
	props   PropertyReader
	matcher *Matcher
}

// NewEngine creates an Engine.
func NewEngine(repos repository.Manager, props PropertyReader, matcher *Matcher) *Engine {
	return &Engine{repos: repos, props: props, matcher: matcher}
}

// FindRepositoriesWithProperties returns the repositories matching filter in
// the order of repository.Manager.All.
//
// A repository matches when each specified predicate family (key, value,
// pair) is satisfied by at least one of its properties; the families may be
// satisfied by different properties.
func (e *Engine) FindRepositoriesWithProperties(ctx context.Context, filter Filter) ([]Result, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	repos, err := e.repos.All(ctx)
	if err != nil {
		return nil, err
	}

	keyMatch := filter.keyPredicate(e.matcher)
	valueMatch := filter.valuePredicate(e.matcher)
	pairMatch := filter.pairPredicate(e.matcher)

	results := make([]Result, 0, len(repos))
	for _, repo := range repos {
		if filter.ExcludeArchived && repo.Archived {
			continue
		}
		props, err := e.props.Get(ctx, repo)
		if err != nil {
			return nil, err
		}
		if filter.hasPropertyPredicate() && !matches(props, keyMatch, valueMatch, pairMatch) {
			continue
		}
		results = append(results, Result{Repository: repo, Properties: props})
	}
	return results, nil
}

func matches(props []property.CustomProperty, keyMatch, valueMatch, pairMatch predicate) bool {
	var key, value, pair bool
	for _, p := range props {
		key = key || keyMatch(p)
		value = value || valueMatch(p)
		pair = pair || pairMatch(p)
		if key && value && pair {
			return true
		}
	}
	return false
}
