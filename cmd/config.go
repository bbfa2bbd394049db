// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// fileConfig mirrors the keys accepted in a jetiscope.toml file.
// Flags given on the command line always win over file values.
type fileConfig struct {
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
}

// applyConfigFile overlays values from --config (or the default location)
// onto flags the user did not set explicitly.
func applyConfigFile(cmd *cobra.Command) error {
	path := configPath
	if path == "" {
		path = defaultConfigPath()
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	flags := cmd.Root().PersistentFlags()

	if meta.IsDefined("port") && !flags.Changed("port") {
		port := strings.TrimSpace(raw.Port)
		if port != "" {
			portName = port
		}
	}

	if meta.IsDefined("baud") && !flags.Changed("baud") {
		if raw.Baud <= 0 {
			return fmt.Errorf("config %s: baud must be positive, got %d", path, raw.Baud)
		}
		baudRate = raw.Baud
	}

	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "jetiscope", "jetiscope.toml")
}
