// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package property_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/property"
	"github.com/scmprops/scmprops/internal/repository"
)

func TestService_MissingMandatoryProperties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]predefined.Key{
		"a":        {Mode: predefined.ModeMandatory},
		"b":        {Mode: predefined.ModeMandatory},
		"optional": {},
	}, heartOfGold)
	require.NoError(t, f.svc.Create(ctx, heartOfGold, property.CustomProperty{Key: "a", Value: "1"}))

	missing, err := f.svc.MissingMandatoryProperties(ctx, []repository.Repository{heartOfGold})
	require.NoError(t, err)
	assert.Equal(t, map[string][]repository.Repository{"b": {heartOfGold}}, missing)

	keys, err := f.svc.MissingMandatoryPropertiesForRepository(ctx, heartOfGold)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestService_MissingMandatoryPropertiesUsesNamespaceKeys(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]predefined.Key{"owner": {Mode: predefined.ModeMandatory}}, heartOfGold, vogon)
	require.NoError(t, f.configs.SetNamespaceConfig(ctx, vogon.Namespace, predefined.NamespaceConfig{
		PredefinedKeys: map[string]predefined.Key{
			"owner":  {Mode: predefined.ModeNone},
			"poetry": {Mode: predefined.ModeMandatory},
		},
	}))

	all, err := f.svc.MissingMandatoryPropertiesAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]repository.Repository{
		"owner":  {heartOfGold},
		"poetry": {vogon},
	}, all)

	ns, err := f.svc.MissingMandatoryPropertiesForNamespace(ctx, vogon.Namespace)
	require.NoError(t, err)
	assert.Equal(t, map[string][]repository.Repository{"poetry": {vogon}}, ns)
}

func TestService_MissingMandatoryPropertiesNoneMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]predefined.Key{"owner": {Mode: predefined.ModeMandatory}}, heartOfGold)
	require.NoError(t, f.svc.Create(ctx, heartOfGold, property.CustomProperty{Key: "owner", Value: "zaphod"}))

	keys, err := f.svc.MissingMandatoryPropertiesForRepository(ctx, heartOfGold)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
