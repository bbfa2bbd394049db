// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

// Frame encoding: how a conformant sender produces EX Bus frames. The
// analyzer itself only reads the bus; the encoder exists for test
// vectors and synthetic captures, and doubles as executable
// documentation of the wire format.

// EncodeFrame assembles a raw frame around the given data block,
// filling in the declared length and the trailing CRC.
func EncodeFrame(header, flag, packetID, dataID byte, block []byte) []byte {
	frame := make([]byte, 0, offBlock+len(block)+2)
	frame = append(frame, header, flag, byte(offBlock+len(block)+2), packetID, dataID, byte(len(block)))
	frame = append(frame, block...)
	crc := Checksum(frame)
	return append(frame, byte(crc), byte(crc>>8))
}

// EncodeChannels builds a master channel-data frame.
func EncodeChannels(packetID byte, values []uint16) []byte {
	block := make([]byte, 0, len(values)*2)
	for _, v := range values {
		block = append(block, byte(v), byte(v>>8))
	}
	return EncodeFrame(HeaderMaster, FlagNoResponse, packetID, DataIDChannels, block)
}

// EncodeTelemetryRequest builds a master telemetry poll.
func EncodeTelemetryRequest(packetID byte) []byte {
	return EncodeFrame(HeaderMasterPoll, FlagResponse, packetID, DataIDTelemetry, nil)
}

// EncodeTextResponse builds a slave response carrying a text-format EX
// telemetry sub-packet.
func EncodeTextResponse(packetID byte, manufacturer, device uint16, records []TextRecord) []byte {
	var body []byte
	for _, r := range records {
		body = append(body, r.SensorID, byte(len(r.Name))<<exTextNameShift|byte(len(r.Unit)))
		body = append(body, r.Name...)
		body = append(body, r.Unit...)
	}
	block := encodeEXPacket(exSubTypeText, manufacturer, device, body)
	return EncodeFrame(HeaderSlave, FlagResponse, packetID, DataIDTelemetry, block)
}

// EncodeDataResponse builds a slave response carrying a data-format EX
// telemetry sub-packet.
func EncodeDataResponse(packetID byte, manufacturer, device uint16, records []SensorRecord) []byte {
	var body []byte
	for _, r := range records {
		body = append(body, EncodeSensorRecord(r)...)
	}
	block := encodeEXPacket(exSubTypeData, manufacturer, device, body)
	return EncodeFrame(HeaderSlave, FlagResponse, packetID, DataIDTelemetry, block)
}

// EncodeSensorRecord encodes one binary sensor record, the inverse of
// the data decoder. Sensor ids above 15 use the extended-id form.
func EncodeSensorRecord(r SensorRecord) []byte {
	vt := valueTypes[r.Type]
	out := make([]byte, 0, 2+vt.dataBytes)
	if r.SensorID > 0 && r.SensorID < 16 {
		out = append(out, r.SensorID<<4|r.Type)
	} else {
		out = append(out, r.Type, r.SensorID)
	}

	var raw uint32
	if vt.bits == 0 {
		raw = uint32(r.Value)
	} else {
		valueBits := uint(8*vt.dataBytes - 3)
		raw = uint32(r.Value) & (1<<valueBits - 1)
		raw |= uint32(r.Exponent&0x3) << valueBits
		if r.Value < 0 {
			raw |= 1 << (uint(8*vt.dataBytes) - 1)
		}
	}
	for i := 0; i < vt.dataBytes; i++ {
		out = append(out, byte(raw>>(8*uint(i))))
	}
	return out
}

func encodeEXPacket(subType byte, manufacturer, device uint16, body []byte) []byte {
	// Length counts everything after the type/length byte, CRC8
	// included.
	exLen := byte(5 + len(body) + 1)
	block := make([]byte, 0, 2+int(exLen))
	block = append(block, exStartNibble, subType<<6|exLen)
	block = append(block,
		byte(manufacturer), byte(manufacturer>>8),
		byte(device), byte(device>>8),
		0x00)
	block = append(block, body...)
	return append(block, checksum8(block[exOffTypeLen:]))
}
