// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package predefined_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmprops/scmprops/internal/predefined"
	"github.com/scmprops/scmprops/internal/storetest"
	"github.com/scmprops/scmprops/pkg/errutil"
)

const validDocument = `
enabled: true
enable_namespace_config: true
predefined_keys:
  lang:
    mode: MULTIPLE_CHOICE
    allowed_values: [Java, Go, C]
  owner:
    mode: MANDATORY
namespaces:
  platform:
    predefined_keys:
      tier:
        mode: DEFAULT
        default_value: gold
        allowed_values: [gold, silver]
`

func TestGenerateSchema(t *testing.T) {
	data, err := predefined.GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, predefined.SchemaID, schema["$id"])
	assert.Contains(t, string(data), "MULTIPLE_CHOICE")
}

func TestLoadDocument(t *testing.T) {
	doc, err := predefined.LoadDocument([]byte(validDocument))
	require.NoError(t, err)

	assert.True(t, doc.Enabled)
	assert.Equal(t, predefined.ModeMultipleChoice, doc.PredefinedKeys["lang"].Mode)
	assert.Equal(t, []string{"Java", "Go", "C"}, doc.PredefinedKeys["lang"].AllowedValues)
	assert.Equal(t, "gold", doc.Namespaces["platform"].PredefinedKeys["tier"].DefaultValue)
}

func TestLoadDocument_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not yaml", "enabled: [unclosed"},
		{"unknown mode", "enabled: true\nenable_namespace_config: false\npredefined_keys:\n  lang:\n    mode: SOMETIMES\n"},
		{"wrong type", "enabled: maybe\nenable_namespace_config: false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := predefined.LoadDocument([]byte(tt.data))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, predefined.CodeInvalidDocument)
		})
	}
}

func TestDocument_Apply(t *testing.T) {
	ctx := context.Background()
	svc := predefined.NewService(storetest.NewConfigs())
	doc, err := predefined.LoadDocument([]byte(validDocument))
	require.NoError(t, err)

	require.NoError(t, doc.Apply(ctx, svc))

	keys, err := svc.AllPredefinedKeys(ctx, "platform")
	require.NoError(t, err)
	assert.Equal(t, []string{"lang", "owner", "tier"}, predefined.SortedNames(keys))
}

func TestDocument_ApplyRejectsInvalidNamespaceBeforeWriting(t *testing.T) {
	ctx := context.Background()
	svc := predefined.NewService(storetest.NewConfigs())
	doc := &predefined.Document{
		Enabled:               true,
		EnableNamespaceConfig: true,
		PredefinedKeys:        map[string]predefined.Key{"owner": {Mode: predefined.ModeMandatory}},
		Namespaces: map[string]predefined.NamespaceDocument{
			"alpha":  {PredefinedKeys: map[string]predefined.Key{"tier": {Mode: predefined.ModeNone}}},
			"broken": {PredefinedKeys: map[string]predefined.Key{"lang": {Mode: predefined.ModeMultipleChoice}}},
		},
	}

	err := doc.Apply(ctx, svc)

	require.ErrorIs(t, err, predefined.ErrInvalidMultipleChoice)
	errutil.AssertErrorContext(t, err, "namespace", "broken")

	global, err := svc.GlobalConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, predefined.DefaultGlobalConfig(), global)
	alpha, err := svc.NamespaceConfig(ctx, "alpha")
	require.NoError(t, err)
	assert.Empty(t, alpha.PredefinedKeys)
}
