// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package predefined

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID identifies the predefined key document schema.
const SchemaID = "https://scmprops.dev/schemas/predefined-keys.schema.json"

// Document is the YAML file format administrators use to manage predefined keys.
type Document struct {
	Enabled               bool                         `json:"enabled" yaml:"enabled"`
	EnableNamespaceConfig bool                         `json:"enable_namespace_config" yaml:"enable_namespace_config"`
	PredefinedKeys        map[string]Key               `json:"predefined_keys,omitempty" yaml:"predefined_keys,omitempty"`
	Namespaces            map[string]NamespaceDocument `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
}

// NamespaceDocument holds the predefined keys of one namespace in a Document.
type NamespaceDocument struct {
	PredefinedKeys map[string]Key `json:"predefined_keys,omitempty" yaml:"predefined_keys,omitempty"`
}

var (
	compiledSchemaOnce sync.Once
	compiledSchema     *jschema.Schema
	compiledSchemaErr  error
)

// GenerateSchema generates the JSON Schema of Document.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Document{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Predefined custom property keys"
	schema.Description = "Global and namespace scoped predefined keys for repository custom properties"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

func getCompiledSchema() (*jschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		schemaBytes, err := GenerateSchema()
		if err != nil {
			compiledSchemaErr = err
			return
		}
		var schemaData any
		if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
			compiledSchemaErr = fmt.Errorf("failed to parse schema JSON: %w", err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("predefined-keys.schema.json", schemaData); err != nil {
			compiledSchemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile("predefined-keys.schema.json")
	})
	return compiledSchema, compiledSchemaErr
}

// LoadDocument validates YAML data against the document schema and decodes it.
func LoadDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, oops.Code(CodeInvalidDocument).Errorf("predefined key document is empty")
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, oops.Code(CodeInvalidDocument).With("stage", "parse").Wrapf(err, "invalid YAML")
	}

	sch, err := getCompiledSchema()
	if err != nil {
		return nil, oops.Code(CodeInvalidDocument).With("stage", "compile schema").Wrap(err)
	}
	if err := sch.Validate(jsonValue(raw)); err != nil {
		return nil, oops.Code(CodeInvalidDocument).With("stage", "validate").Wrapf(err, "schema validation failed")
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code(CodeInvalidDocument).With("stage", "decode").Wrap(err)
	}
	return &doc, nil
}

// GlobalConfig returns the global part of the document.
func (d *Document) GlobalConfig() GlobalConfig {
	keys := d.PredefinedKeys
	if keys == nil {
		keys = map[string]Key{}
	}
	return GlobalConfig{
		Enabled:               d.Enabled,
		EnableNamespaceConfig: d.EnableNamespaceConfig,
		PredefinedKeys:        keys,
	}
}

// Validate checks the global keys and the keys of every namespace without
// storing anything.
func (d *Document) Validate() error {
	if err := validateKeys("", d.PredefinedKeys); err != nil {
		return err
	}
	for _, namespace := range slices.Sorted(maps.Keys(d.Namespaces)) {
		if err := validateKeys(namespace, d.Namespaces[namespace].PredefinedKeys); err != nil {
			return oops.With("namespace", namespace).Wrap(err)
		}
	}
	return nil
}

// Apply stores the document through svc: the global configuration first, then
// each namespace in name order. The whole document is validated up front, so a
// rejected namespace leaves the stored configuration untouched.
func (d *Document) Apply(ctx context.Context, svc *Service) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := svc.SetGlobalConfig(ctx, d.GlobalConfig()); err != nil {
		return err
	}
	for _, namespace := range slices.Sorted(maps.Keys(d.Namespaces)) {
		cfg := NamespaceConfig{PredefinedKeys: d.Namespaces[namespace].PredefinedKeys}
		if err := svc.SetNamespaceConfig(ctx, namespace, cfg); err != nil {
			return oops.With("namespace", namespace).Wrap(err)
		}
	}
	return nil
}

// jsonValue converts YAML decoded data into the types the schema validator
// understands. Non-string map keys, as produced by keys like `1:` or `yes:`,
// are stringified.
func jsonValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = jsonValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	default:
		return val
	}
}
