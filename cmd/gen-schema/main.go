// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Command gen-schema writes the JSON Schema of the predefined key document.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/scmprops/scmprops/internal/predefined"
)

func main() {
	outPath := pflag.StringP("out", "o", filepath.Join("schemas", "predefined-keys.schema.json"), "output file")
	pflag.Parse()

	if err := generate(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s\n", *outPath)
}

func generate(outPath string) error {
	schema, err := predefined.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generating schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
