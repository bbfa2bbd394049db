// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rcwire/jetiscope/pkg/exbus"
)

var (
	channelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	requestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	telemetryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	invalidStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// stdoutIsTerminal reports whether stdout is attached to a terminal.
// Colored output is suppressed when piping into files or other tools.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// renderResult formats one result line, colored by classification when
// color is enabled.
func renderResult(r exbus.Result, color bool) string {
	line := exbus.FormatResult(r)
	if !color {
		return line
	}

	switch r.Class {
	case exbus.ClassChannelData:
		return channelStyle.Render(line)
	case exbus.ClassTelemetryRequest:
		return requestStyle.Render(line)
	case exbus.ClassTelemetryText, exbus.ClassTelemetryData:
		return telemetryStyle.Render(line)
	default:
		return invalidStyle.Render(line)
	}
}
