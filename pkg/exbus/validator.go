// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

// typeKey pairs a frame's header byte with its data identifier. The
// packetDecoders table below is the single source of truth for which
// combinations the analyzer understands; adding a packet type means
// adding a table row, not touching the state machine.
type typeKey struct {
	header byte
	dataID byte
}

var packetDecoders = map[typeKey]func(*Frame) (Packet, Reason){
	{HeaderMaster, DataIDChannels}:      decodeChannels,
	{HeaderMasterPoll, DataIDTelemetry}: decodeTelemetryRequest,
	{HeaderSlave, DataIDTelemetry}:      decodeTelemetryResponse,
}

// Validate checks a candidate frame's structural integrity: declared
// length against the accumulated byte count, the block length against
// the frame bounds, the trailing CRC, and whether the header/data-ID
// pair is a known packet type. It returns the empty reason for a frame
// that may be handed to a type decoder.
func Validate(f *Frame) Reason {
	// The synchronizer already cut the frame to its declared length;
	// re-checking guards against a disagreement caused by malformed
	// data between the length read and finalization.
	if len(f.Bytes()) != f.DeclaredLength() || len(f.Bytes()) < MinFrameSize {
		return ReasonLengthMismatch
	}
	if !f.blockFits() {
		return ReasonLengthMismatch
	}
	data := f.Bytes()
	if Checksum(data[:len(data)-2]) != f.CRC() {
		return ReasonCRCMismatch
	}
	if f.Flag() != FlagResponse && f.Flag() != FlagNoResponse {
		return ReasonUnknownType
	}
	if _, ok := packetDecoders[typeKey{f.Header(), f.DataID()}]; !ok {
		// Covers JetiBox frames too; decoding them is out of scope.
		return ReasonUnknownType
	}
	return ""
}

// DecodePacket decodes a frame that passed Validate into its typed
// payload. A non-empty reason rejects the frame as a whole; no partial
// payload is ever surfaced.
func DecodePacket(f *Frame) (Packet, Reason) {
	decode, ok := packetDecoders[typeKey{f.Header(), f.DataID()}]
	if !ok {
		return nil, ReasonUnknownType
	}
	return decode(f)
}
