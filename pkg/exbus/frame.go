// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import "time"

// Sample is one byte of the input stream together with its bus timing.
// Timestamps are offsets from the start of the capture; the upstream
// serial decoder guarantees they increase monotonically.
type Sample struct {
	Value byte
	Start time.Duration
	End   time.Duration
}

// Frame is a candidate EX Bus frame: a contiguous byte range cut out of
// the stream by the Synchronizer. It is created speculatively from a
// header-byte match, finalized once its declared length has arrived,
// and consumed exactly once by the validator and a type decoder.
type Frame struct {
	data  []byte
	start time.Duration
	end   time.Duration
}

// Start returns the arrival time of the frame's first byte.
func (f *Frame) Start() time.Duration {
	return f.start
}

// End returns the arrival time of the frame's last byte.
func (f *Frame) End() time.Duration {
	return f.end
}

// Bytes returns the complete frame, header through CRC.
func (f *Frame) Bytes() []byte {
	return f.data
}

// Header returns the frame's header byte.
func (f *Frame) Header() byte {
	return f.data[0]
}

// Flag returns the response-expected flag byte.
func (f *Frame) Flag() byte {
	return f.data[offFlag]
}

// DeclaredLength returns the frame's self-declared total length.
func (f *Frame) DeclaredLength() int {
	return int(f.data[offLength])
}

// PacketID returns the sequence id the slave echoes in its response.
func (f *Frame) PacketID() uint8 {
	return f.data[offPacketID]
}

// DataID returns the data identifier selecting the block format.
func (f *Frame) DataID() uint8 {
	return f.data[offDataID]
}

// Block returns the frame's data block. The validator guarantees the
// declared block length fits inside the frame before decoders see it.
func (f *Frame) Block() []byte {
	n := int(f.data[offBlockLen])
	return f.data[offBlock : offBlock+n]
}

// blockFits reports whether the declared block length lies within the
// frame, leaving room for the trailing CRC.
func (f *Frame) blockFits() bool {
	return offBlock+int(f.data[offBlockLen])+2 <= len(f.data)
}

// CRC returns the transmitted frame CRC (little-endian trailer).
func (f *Frame) CRC() uint16 {
	n := len(f.data)
	return uint16(f.data[n-2]) | uint16(f.data[n-1])<<8
}
