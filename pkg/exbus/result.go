// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import "time"

// Classification identifies what a completed frame turned out to be.
type Classification int

const (
	ClassInvalid Classification = iota
	ClassChannelData
	ClassTelemetryRequest
	ClassTelemetryText
	ClassTelemetryData
)

// String returns the classification name used in labels.
func (c Classification) String() string {
	switch c {
	case ClassChannelData:
		return "ChannelData"
	case ClassTelemetryRequest:
		return "TelemetryRequest"
	case ClassTelemetryText:
		return "TelemetryTextResponse"
	case ClassTelemetryData:
		return "TelemetryDataResponse"
	default:
		return "Invalid"
	}
}

// Reason names why a frame attempt was rejected. Reasons surface
// verbatim as the label of an Invalid result; corruption is reported,
// never repaired.
type Reason string

const (
	ReasonLengthImplausible Reason = "length-implausible"
	ReasonCRCMismatch       Reason = "crc-mismatch"
	ReasonLengthMismatch    Reason = "length-mismatch"
	ReasonUnknownType       Reason = "unknown-type"
	ReasonUnknownSubtype    Reason = "unknown-subtype"
	ReasonTruncatedField    Reason = "truncated-field"
	ReasonRecordOverrun     Reason = "record-overrun"
	ReasonExCRCMismatch     Reason = "ex-crc-mismatch"
)

// Packet is the closed set of decoded frame payloads. The concrete
// types below are the only implementations.
type Packet interface {
	Classification() Classification
}

// ChannelData is an ordered set of channel values in transmission
// order. Values are raw wire units (1/8 µs); no reordering or range
// clamping is applied.
type ChannelData struct {
	Values []uint16
}

// Classification implements Packet.
func (ChannelData) Classification() Classification { return ClassChannelData }

// TelemetryRequest is a master poll for slave telemetry. The packet id
// correlates the poll with the slave's eventual response; EX Bus is
// point-to-point, so no further addressing exists on the wire.
type TelemetryRequest struct {
	PacketID uint8
	DataID   uint8
}

// Classification implements Packet.
func (TelemetryRequest) Classification() Classification { return ClassTelemetryRequest }

// TelemetryText is a text-format EX telemetry sub-packet: sensor
// name/unit metadata records.
type TelemetryText struct {
	Manufacturer uint16
	Device       uint16
	Records      []TextRecord
}

// Classification implements Packet.
func (TelemetryText) Classification() Classification { return ClassTelemetryText }

// TelemetryData is a data-format EX telemetry sub-packet: binary sensor
// readings.
type TelemetryData struct {
	Manufacturer uint16
	Device       uint16
	Records      []SensorRecord
}

// Classification implements Packet.
func (TelemetryData) Classification() Classification { return ClassTelemetryData }

// TextRecord is one sensor description from a text sub-packet.
type TextRecord struct {
	SensorID uint8
	Name     string
	Unit     string
}

// SensorRecord is one binary sensor reading from a data sub-packet.
// Value is the raw sign-extended integer; Exponent gives how many of
// its low-order decimal digits are fractional. The pair is kept intact
// so downstream consumers choose their own precision. For the timedate
// and gps types Value holds the undecoded little-endian bit pattern
// and Exponent is zero; FormatSensorValue knows their layouts.
type SensorRecord struct {
	SensorID uint8
	Type     uint8
	Value    int64
	Exponent uint8
}

// Result is the externally visible decode record for one frame
// attempt: a time range, display labels, and the classification.
// Results are emitted exactly once, in arrival order, and never
// mutated afterwards.
type Result struct {
	Start  time.Duration
	End    time.Duration
	Short  string
	Long   string
	Class  Classification
	Reason Reason // set only when Class == ClassInvalid
	Packet Packet // nil when Class == ClassInvalid
}
