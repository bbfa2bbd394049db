// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	portName   string
	baudRate   int
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "jetiscope",
	Short: "JETI EX Bus protocol analyzer",
	Long: `Jetiscope - A CLI tool for monitoring and analyzing JETI EX Bus traffic.

Decodes the half-duplex EX Bus stream between an RC receiver (master) and
its slave devices: servo channel frames, telemetry polls and telemetry
responses carrying EX sensor data.

Typical workflows:
  Live view:   jetiscope watch --port /dev/ttyUSB0 --baud 125000
  Record:      jetiscope record --port /dev/ttyUSB0 -o flight.jscp
  Replay:      jetiscope decode flight.jscp --stats
  Dashboard:   jetiscope monitor --port /dev/ttyUSB0
  Streaming:   jetiscope serve --port /dev/ttyUSB0 --listen :8080

Defaults can be placed in a TOML config file (see --config).`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogger()
		return applyConfigFile(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 125000, "Baud rate (125000 or 250000 for EX Bus)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
