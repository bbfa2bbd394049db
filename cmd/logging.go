// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// initLogger routes zerolog through a console writer on stderr so that
// decoded output on stdout stays clean for piping.
func initLogger() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", "jetiscope").Logger()
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
	log.Logger = logger
}
