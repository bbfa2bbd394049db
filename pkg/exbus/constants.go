// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

// Package exbus decodes the JETI EX Bus serial protocol: a half-duplex
// RC link carrying control-channel data from a master to a slave and
// EX telemetry from a slave back to the master.
//
// The package is a pure protocol state machine. It consumes an ordered
// byte stream with per-byte timing, resynchronizes on frame boundaries,
// gates every payload behind the frame CRC, and decodes each packet
// into structured, labeled results for timeline display. It performs no
// I/O and holds no state beyond one Decoder instance per byte stream.
package exbus

// Frame header bytes (offset 0)
const (
	HeaderMaster     = 0x3E // master frame, no response expected
	HeaderMasterPoll = 0x3D // master frame, slave should respond
	HeaderSlave      = 0x3B // slave response frame
)

// Header flag bytes (offset 1)
const (
	FlagResponse   = 0x01 // response expected, or frame is a response
	FlagNoResponse = 0x03
)

// Data identifiers (offset 4)
const (
	DataIDChannels  = 0x31
	DataIDTelemetry = 0x3A
	DataIDJetiBox   = 0x3B
)

// Frame size limits. The smallest well-formed frame is a telemetry
// request (6 header bytes plus CRC16); the length byte caps frames at
// 64 bytes on the wire.
const (
	MinFrameSize = 8
	MaxFrameSize = 64
)

// Fixed offsets within a frame
const (
	offFlag     = 1
	offLength   = 2
	offPacketID = 3
	offDataID   = 4
	offBlockLen = 5
	offBlock    = 6
)

// EX telemetry sub-packet layout (within the data block, separator
// byte already stripped by the EX Bus framing)
const (
	exStartNibble   = 0x0F
	exOffTypeLen    = 1
	exOffManufID    = 2
	exOffDeviceID   = 4
	exOffReserved   = 6
	exOffRecords    = 7
	exHeaderSize    = 7 // start byte through reserved byte
	exSubTypeText   = 0
	exSubTypeData   = 1
	exSubTypeMsg    = 2
	exTextNameShift = 3
	exTextUnitMask  = 0x07
)

// Synchronizer states
const (
	stateScanning = iota
	stateAccumulating
)
