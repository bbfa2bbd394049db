// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors
//
// Jetiscope - JETI EX Bus Protocol Analyzer
//
// A CLI tool for monitoring, recording and decoding JETI EX Bus traffic
// in human-readable format.

package main

import (
	"fmt"
	"os"

	"github.com/rcwire/jetiscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
