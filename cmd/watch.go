// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcwire/jetiscope/pkg/exbus"
)

var watchInvalidOnly bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Display decoded EX Bus traffic as it arrives",
	Long: `Continuously decode and display EX Bus frames as they arrive.

Each line shows the frame's time range on the wire, a short classification
label, and the decoded payload: channel values in microseconds, telemetry
poll ids, or sensor metadata and readings.

Invalid frames are shown with their rejection reason so that wiring or
timing problems are visible immediately.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchInvalidOnly, "invalid-only", false, "Only show rejected frames")
}

func runWatch(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info().Str("connection", connInfo).Msg("watching EX Bus traffic, press Ctrl+C to exit")

	color := stdoutIsTerminal()
	decoder := exbus.NewDecoder()
	samp := newSampler(baudRate)
	buf := make([]byte, 128)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			log.Error().Err(err).Msg("read error")
			continue
		}

		for _, s := range samp.stamp(buf[:n]) {
			for _, r := range decoder.Feed(s) {
				if watchInvalidOnly && r.Class != exbus.ClassInvalid {
					continue
				}
				fmt.Println(renderResult(r, color))
			}
		}
	}
}
