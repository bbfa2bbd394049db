// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcwire/jetiscope/pkg/capture"
	"github.com/rcwire/jetiscope/pkg/exbus"
)

var decodeStats bool

var decodeCmd = &cobra.Command{
	Use:   "decode <capture-file>",
	Short: "Replay a capture file and print decoded frames",
	Long: `Replay a capture recorded with 'jetiscope record' through the decoder
and print every frame annotation, exactly as 'watch' would have shown it
live. Replaying the same capture always yields the same output.

With --stats, a summary of frame counts, classifications and rejection
reasons is printed at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeStats, "stats", false, "Print summary statistics after replay")
}

func runDecode(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open capture file: %w", err)
	}
	defer f.Close()

	r, err := capture.NewReader(f)
	if err != nil {
		return fmt.Errorf("read capture header: %w", err)
	}

	color := stdoutIsTerminal()
	decoder := exbus.NewDecoder()
	stats := exbus.NewStatistics()

	for {
		s, err := r.ReadSample()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("read sample: %w", err)
		}

		stats.AddBytes(1)
		for _, res := range decoder.Feed(s) {
			stats.Update(res)
			fmt.Println(renderResult(res, color))
		}
	}

	if decodeStats {
		fmt.Println()
		fmt.Print(stats.String())
	}

	return nil
}
