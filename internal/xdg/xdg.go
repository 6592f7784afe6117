// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package xdg resolves XDG Base Directory paths for scmprops.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "scmprops"

// ConfigFileName is the default configuration file name inside ConfigDir.
const ConfigFileName = "config.yaml"

// PredefinedKeysFileName is the default predefined-key document inside ConfigDir.
const PredefinedKeysFileName = "predefined-keys.yaml"

func baseDir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return base, nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", oops.With("env", env).Wrapf(err, "resolve home directory")
		}
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// ConfigDir returns $XDG_CONFIG_HOME/scmprops, falling back to ~/.config/scmprops.
func ConfigDir() (string, error) {
	base, err := baseDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// StateDir returns $XDG_STATE_HOME/scmprops, falling back to ~/.local/state/scmprops.
func StateDir() (string, error) {
	base, err := baseDir("XDG_STATE_HOME", ".local", "state")
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// ConfigFile returns the default path of the CLI configuration file.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// PredefinedKeysFile returns the default path of the predefined-key document.
func PredefinedKeysFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PredefinedKeysFileName), nil
}

// EnsureDir creates path and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.With("path", path).Wrapf(err, "create directory")
	}
	return nil
}
