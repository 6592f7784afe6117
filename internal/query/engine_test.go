// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmprops/scmprops/internal/eventbus"
	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/query"
	"github.com/scmprops/scmprops/internal/repository"
	"github.com/scmprops/scmprops/internal/storetest"
	"github.com/scmprops/scmprops/pkg/errutil"
)

var (
	r1 = repository.Repository{ID: "r1", Namespace: "space", Name: "one"}
	r2 = repository.Repository{ID: "r2", Namespace: "space", Name: "two"}
	r3 = repository.Repository{ID: "r3", Namespace: "space", Name: "three", Archived: true}
)

func newEngine(t *testing.T, props map[repository.Repository][]property.CustomProperty, keys map[string]predefined.Key) *query.Engine {
	t.Helper()
	ctx := context.Background()
	manager := storetest.NewRepositories()
	configs := predefined.NewService(storetest.NewConfigs())
	if keys != nil {
		cfg := predefined.DefaultGlobalConfig()
		cfg.PredefinedKeys = keys
		require.NoError(t, configs.SetGlobalConfig(ctx, cfg))
	}
	svc := property.NewService(storetest.NewProperties(), configs, eventbus.NewDispatcher(nil), manager)
	for repo, list := range props {
		manager.Add(repo)
		for _, p := range list {
			require.NoError(t, svc.Create(ctx, repo, p))
		}
	}
	matcher, err := query.NewMatcher(query.DefaultCacheSize)
	require.NoError(t, err)
	return query.NewEngine(manager, svc, matcher)
}

func names(results []query.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Repository.Name)
	}
	return out
}

func TestEngine_GlobScenario(t *testing.T) {
	engine := newEngine(t, map[repository.Repository][]property.CustomProperty{
		r1: {{Key: "lang", Value: "java"}, {Key: "timeout", Value: "1000"}},
		r2: {{Key: "lang", Value: "go"}, {Key: "timeout", Value: "1000"}},
	}, nil)

	tests := []struct {
		name   string
		filter query.Filter
		want   []string
	}{
		{"key glob", query.Filter{Key: "la*"}, []string{"one", "two"}},
		{"pair glob", query.Filter{KeyValuePair: "lang=j*"}, []string{"one"}},
		{"value glob", query.Filter{Value: "*1000"}, []string{"one", "two"}},
		{"no predicate", query.Filter{}, []string{"one", "two"}},
		{"families on different properties", query.Filter{Key: "timeout", Value: "go"}, []string{"two"}},
		{"nothing matches", query.Filter{Key: "owner"}, []string{}},
		{"case insensitive", query.Filter{KeyValuePair: "LANG=JAVA"}, []string{"one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := engine.FindRepositoriesWithProperties(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(results))
		})
	}
}

func TestEngine_MultiValueGlobs(t *testing.T) {
	engine := newEngine(t, map[repository.Repository][]property.CustomProperty{
		r1: {{Key: "lang", Value: "Java\tGo"}},
		r2: {{Key: "lang", Value: "Go"}, {Key: "other", Value: "Java"}},
	}, nil)

	tests := []struct {
		name   string
		filter query.Filter
		want   []string
	}{
		{"every term on one property", query.Filter{Value: "java\tgo"}, []string{"one"}},
		{"any segment satisfies a term", query.Filter{Value: "g?"}, []string{"one", "two"}},
		{"pair with several terms", query.Filter{KeyValuePair: "lang=j*\tgo"}, []string{"one"}},
		{"pair splits on first equals", query.Filter{KeyValuePair: "l*=go"}, []string{"one", "two"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := engine.FindRepositoriesWithProperties(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(results))
		})
	}
}

func TestEngine_ExcludeArchivedAndDefaults(t *testing.T) {
	engine := newEngine(t, map[repository.Repository][]property.CustomProperty{
		r1: {},
		r3: {},
	}, map[string]predefined.Key{"lang": {Mode: predefined.ModeDefault, DefaultValue: "Java"}})

	results, err := engine.FindRepositoriesWithProperties(context.Background(), query.Filter{KeyValuePair: "lang=java"})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three"}, names(results), "synthesized defaults are searchable")

	results, err = engine.FindRepositoriesWithProperties(context.Background(), query.Filter{ExcludeArchived: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, names(results))
}

func TestEngine_InvalidPair(t *testing.T) {
	engine := newEngine(t, nil, nil)

	for _, pair := range []string{"lang", "lang=", "=java"} {
		_, err := engine.FindRepositoriesWithProperties(context.Background(), query.Filter{KeyValuePair: pair})
		require.ErrorIs(t, err, query.ErrInvalidFilter, pair)
		errutil.AssertErrorCode(t, err, query.CodeInvalidFilter)
	}
}
