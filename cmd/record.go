// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcwire/jetiscope/pkg/capture"
)

var recordOutput string

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record raw EX Bus bytes to a capture file",
	Long: `Record the raw timestamped byte stream from the serial port into a
capture file for later replay with 'jetiscope decode'.

The capture stores every byte with its wire time range, so a replay
reproduces exactly the frames, rejects and noise seen live.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "exbus.jscp", "Capture file to write")
}

func runRecord(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Create(recordOutput)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer f.Close()

	w, err := capture.NewWriter(f, baudRate)
	if err != nil {
		return fmt.Errorf("write capture header: %w", err)
	}

	log.Info().Str("connection", connInfo).Str("file", recordOutput).
		Msg("recording, press Ctrl+C to stop")

	// Closing the port unblocks the pending Read so the loop can drain
	// and finish cleanly.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	stopping := make(chan struct{})
	go func() {
		<-stop
		close(stopping)
		conn.Close()
	}()
	stopped := func() bool {
		select {
		case <-stopping:
			return true
		default:
			return false
		}
	}

	samp := newSampler(baudRate)
	buf := make([]byte, 128)
	var total uint64

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if stopped() {
				break
			}
			log.Error().Err(err).Msg("read error")
			continue
		}

		for _, s := range samp.stamp(buf[:n]) {
			if err := w.WriteSample(s); err != nil {
				return fmt.Errorf("write sample: %w", err)
			}
			total++
		}
	}

	log.Info().Uint64("bytes", total).Str("file", recordOutput).Msg("capture complete")
	return nil
}
