// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

// decodeChannels decodes a channel-data block: a flat run of 2-byte
// little-endian unsigned values, one per channel, in transmission
// order. Values are raw wire units (1/8 µs); out-of-range values pass
// through untouched, range interpretation is a presentation concern.
func decodeChannels(f *Frame) (Packet, Reason) {
	block := f.Block()
	values := make([]uint16, 0, len(block)/2)
	for i := 0; i+1 < len(block); i += 2 {
		values = append(values, uint16(block[i])|uint16(block[i+1])<<8)
	}
	return ChannelData{Values: values}, ""
}

// ChannelMicroseconds converts a raw channel value to its servo pulse
// width in microseconds.
func ChannelMicroseconds(v uint16) float64 {
	return float64(v) / 8.0
}
