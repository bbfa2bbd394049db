// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import (
	"fmt"
	"sort"
	"time"
)

// Statistics accumulates frame and error counts over a decode session.
// It is plain accumulation for the CLI and TUI to render; the decoder
// itself never touches it.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	BytesTotal      uint64
	FramesTotal     uint64
	FramesValid     uint64
	ChannelFrames   uint64
	RequestFrames   uint64
	TextFrames      uint64
	DataFrames      uint64
	InvalidFrames   uint64
	RejectsByReason map[Reason]uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec wall clock
	ErrorRate float64 // rejects/sec wall clock
}

// NewStatistics creates a statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:       now,
		LastUpdateTime:  now,
		RejectsByReason: make(map[Reason]uint64),
	}
}

// AddBytes accounts for raw stream bytes delivered to the decoder.
func (s *Statistics) AddBytes(n int) {
	s.BytesTotal += uint64(n)
}

// Update folds one decode result into the counters.
func (s *Statistics) Update(r Result) {
	s.FramesTotal++
	switch r.Class {
	case ClassChannelData:
		s.FramesValid++
		s.ChannelFrames++
	case ClassTelemetryRequest:
		s.FramesValid++
		s.RequestFrames++
	case ClassTelemetryText:
		s.FramesValid++
		s.TextFrames++
	case ClassTelemetryData:
		s.FramesValid++
		s.DataFrames++
	case ClassInvalid:
		s.InvalidFrames++
		s.RejectsByReason[r.Reason]++
	}
	s.LastUpdateTime = time.Now()
}

// CalculateRates recomputes the wall-clock frame and error rates.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.FramesTotal) / elapsed
		s.ErrorRate = float64(s.InvalidFrames) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, invalidPercent float64
	if s.FramesTotal > 0 {
		validPercent = float64(s.FramesValid) * 100.0 / float64(s.FramesTotal)
		invalidPercent = float64(s.InvalidFrames) * 100.0 / float64(s.FramesTotal)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Bytes:           %8d\n", s.BytesTotal)
	result += fmt.Sprintf("Total Frames:    %8d\n", s.FramesTotal)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.FramesValid, validPercent)
	if s.ChannelFrames > 0 {
		result += fmt.Sprintf("  Channel Data:     %5d\n", s.ChannelFrames)
	}
	if s.RequestFrames > 0 {
		result += fmt.Sprintf("  Telemetry Polls:  %5d\n", s.RequestFrames)
	}
	if s.TextFrames > 0 {
		result += fmt.Sprintf("  Text Telemetry:   %5d\n", s.TextFrames)
	}
	if s.DataFrames > 0 {
		result += fmt.Sprintf("  Data Telemetry:   %5d\n", s.DataFrames)
	}
	if s.InvalidFrames > 0 {
		result += fmt.Sprintf("Invalid Frames:  %8d (%.1f%%)\n", s.InvalidFrames, invalidPercent)
		reasons := make([]string, 0, len(s.RejectsByReason))
		for reason := range s.RejectsByReason {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			result += fmt.Sprintf("  %-18s %5d\n", reason+":", s.RejectsByReason[Reason(reason)])
		}
	}
	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset clears all counters.
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.BytesTotal = 0
	s.FramesTotal = 0
	s.FramesValid = 0
	s.ChannelFrames = 0
	s.RequestFrames = 0
	s.TextFrames = 0
	s.DataFrames = 0
	s.InvalidFrames = 0
	s.RejectsByReason = make(map[Reason]uint64)
	s.FrameRate = 0
	s.ErrorRate = 0
}
