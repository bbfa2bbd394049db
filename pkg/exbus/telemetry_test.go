// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, frame []byte) Result {
	t.Helper()
	results, _ := feedBytes(NewDecoder(), frame, 0)
	require.Len(t, results, 1)
	return results[0]
}

func TestDataTelemetry_SignedInt14(t *testing.T) {
	frame := EncodeDataResponse(0x11, 0xA409, 0x0001, []SensorRecord{
		{SensorID: 1, Type: TypeInt14, Value: -123, Exponent: 2},
	})

	r := decodeOne(t, frame)
	require.Equal(t, ClassTelemetryData, r.Class)

	pkt := r.Packet.(TelemetryData)
	require.Len(t, pkt.Records, 1)
	rec := pkt.Records[0]
	assert.Equal(t, uint8(1), rec.SensorID)
	assert.Equal(t, int64(-123), rec.Value)
	assert.Equal(t, uint8(2), rec.Exponent)
	assert.Equal(t, "-1.23", FormatSensorValue(rec))
}

func TestDataTelemetry_WireEncodingInt14(t *testing.T) {
	// -123 with exponent 2: value bits 0x1F85 (two's complement),
	// exponent bits 10, sign bit set -> bytes 85 DF little-endian.
	rec := EncodeSensorRecord(SensorRecord{SensorID: 1, Type: TypeInt14, Value: -123, Exponent: 2})
	assert.Equal(t, []byte{0x11, 0x85, 0xDF}, rec)

	value, exp := decodeIntValue([]byte{0x85, 0xDF})
	assert.Equal(t, int64(-123), value)
	assert.Equal(t, uint8(2), exp)
}

func TestDataTelemetry_ValueWidths(t *testing.T) {
	tests := []struct {
		name  string
		rec   SensorRecord
		label string
	}{
		{"int6 positive", SensorRecord{SensorID: 2, Type: TypeInt6, Value: 7, Exponent: 0}, "7"},
		{"int6 negative", SensorRecord{SensorID: 2, Type: TypeInt6, Value: -15, Exponent: 1}, "-1.5"},
		{"int14 max", SensorRecord{SensorID: 3, Type: TypeInt14, Value: 8191, Exponent: 0}, "8191"},
		{"int22 altitude", SensorRecord{SensorID: 4, Type: TypeInt22, Value: 425000, Exponent: 1}, "42500.0"},
		{"int30 negative", SensorRecord{SensorID: 5, Type: TypeInt30, Value: -100000000, Exponent: 3}, "-100000.000"},
		{"fraction only", SensorRecord{SensorID: 6, Type: TypeInt14, Value: 5, Exponent: 2}, "0.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := EncodeDataResponse(0x01, 0xA409, 0x0001, []SensorRecord{tt.rec})
			r := decodeOne(t, frame)
			require.Equal(t, ClassTelemetryData, r.Class)

			pkt := r.Packet.(TelemetryData)
			require.Len(t, pkt.Records, 1)
			assert.Equal(t, tt.rec, pkt.Records[0])
			assert.Equal(t, tt.label, FormatSensorValue(pkt.Records[0]))
		})
	}
}

func TestDataTelemetry_MultipleRecordsInOrder(t *testing.T) {
	records := []SensorRecord{
		{SensorID: 1, Type: TypeInt14, Value: 1250, Exponent: 2},
		{SensorID: 2, Type: TypeInt6, Value: -4, Exponent: 0},
		{SensorID: 3, Type: TypeInt22, Value: -98765, Exponent: 1},
	}
	frame := EncodeDataResponse(0x01, 0xA409, 0x0001, records)

	r := decodeOne(t, frame)
	require.Equal(t, ClassTelemetryData, r.Class)
	assert.Equal(t, records, r.Packet.(TelemetryData).Records)
}

func TestDataTelemetry_ExtendedSensorID(t *testing.T) {
	records := []SensorRecord{
		{SensorID: 200, Type: TypeInt14, Value: 42, Exponent: 0},
	}
	frame := EncodeDataResponse(0x01, 0xA409, 0x0001, records)

	r := decodeOne(t, frame)
	require.Equal(t, ClassTelemetryData, r.Class)
	assert.Equal(t, records, r.Packet.(TelemetryData).Records)
}

// A record whose declared width runs past the payload rejects the
// whole frame; no partial records appear.
func TestDataTelemetry_RecordOverrun(t *testing.T) {
	good := EncodeSensorRecord(SensorRecord{SensorID: 1, Type: TypeInt14, Value: 10, Exponent: 0})
	// int30 header followed by a single data byte instead of four
	truncated := []byte{0x20 | TypeInt30, 0x01}
	block := encodeEXPacket(exSubTypeData, 0xA409, 0x0001, append(good, truncated...))
	frame := EncodeFrame(HeaderSlave, FlagResponse, 0x01, DataIDTelemetry, block)

	r := decodeOne(t, frame)
	assert.Equal(t, ClassInvalid, r.Class)
	assert.Equal(t, ReasonRecordOverrun, r.Reason)
	assert.Nil(t, r.Packet)
}

func TestDataTelemetry_UnknownTypeCodeRejected(t *testing.T) {
	block := encodeEXPacket(exSubTypeData, 0xA409, 0x0001, []byte{0x17, 0x00, 0x00})
	frame := EncodeFrame(HeaderSlave, FlagResponse, 0x01, DataIDTelemetry, block)

	r := decodeOne(t, frame)
	assert.Equal(t, ClassInvalid, r.Class)
	assert.Equal(t, ReasonRecordOverrun, r.Reason)
}

func TestTextTelemetry_NameAndUnit(t *testing.T) {
	frame := EncodeTextResponse(0x01, 0xA409, 0x0001, []TextRecord{
		{SensorID: 4, Name: "Altitude", Unit: "m"},
	})

	r := decodeOne(t, frame)
	require.Equal(t, ClassTelemetryText, r.Class)

	pkt := r.Packet.(TelemetryText)
	assert.Equal(t, uint16(0xA409), pkt.Manufacturer)
	assert.Equal(t, uint16(0x0001), pkt.Device)
	require.Len(t, pkt.Records, 1)
	assert.Equal(t, TextRecord{SensorID: 4, Name: "Altitude", Unit: "m"}, pkt.Records[0])
}

// A declared name length past the remaining payload rejects the frame.
func TestTextTelemetry_TruncatedField(t *testing.T) {
	// id 4, name length 20, unit length 1, but only 3 text bytes follow
	body := []byte{0x04, 20<<exTextNameShift | 1, 'A', 'l', 't'}
	block := encodeEXPacket(exSubTypeText, 0xA409, 0x0001, body)
	frame := EncodeFrame(HeaderSlave, FlagResponse, 0x01, DataIDTelemetry, block)

	r := decodeOne(t, frame)
	assert.Equal(t, ClassInvalid, r.Class)
	assert.Equal(t, ReasonTruncatedField, r.Reason)
	assert.Nil(t, r.Packet)
}

func TestTelemetry_MessageSubtypeRejected(t *testing.T) {
	block := encodeEXPacket(exSubTypeMsg, 0xA409, 0x0001, []byte{0x00, 0x01, 0x02})
	frame := EncodeFrame(HeaderSlave, FlagResponse, 0x01, DataIDTelemetry, block)

	r := decodeOne(t, frame)
	assert.Equal(t, ClassInvalid, r.Class)
	assert.Equal(t, ReasonUnknownSubtype, r.Reason)
}

// The inner EX CRC8 gates record decoding just like the frame CRC16
// gates the frame.
func TestTelemetry_InnerCRCMismatch(t *testing.T) {
	block := encodeEXPacket(exSubTypeData, 0xA409, 0x0001,
		EncodeSensorRecord(SensorRecord{SensorID: 1, Type: TypeInt6, Value: 1}))
	block[len(block)-1] ^= 0xFF
	frame := EncodeFrame(HeaderSlave, FlagResponse, 0x01, DataIDTelemetry, block)

	r := decodeOne(t, frame)
	assert.Equal(t, ClassInvalid, r.Class)
	assert.Equal(t, ReasonExCRCMismatch, r.Reason)
}

func TestTelemetry_TimeDateAndGPS(t *testing.T) {
	// 15:42:07 -> b2=15, b1=42, b0=7
	timeRec := SensorRecord{SensorID: 1, Type: TypeTimeDate, Value: int64(15)<<16 | 42<<8 | 7}
	// 26.03.2025 -> b2=26|0x20, b1=3, b0=25
	dateRec := SensorRecord{SensorID: 2, Type: TypeTimeDate, Value: int64(26|0x20)<<16 | 3<<8 | 25}

	frame := EncodeDataResponse(0x01, 0xA409, 0x0001, []SensorRecord{timeRec, dateRec})
	r := decodeOne(t, frame)
	require.Equal(t, ClassTelemetryData, r.Class)

	pkt := r.Packet.(TelemetryData)
	require.Len(t, pkt.Records, 2)
	assert.Equal(t, "15:42:07", FormatSensorValue(pkt.Records[0]))
	assert.Equal(t, "26.03.2025", FormatSensorValue(pkt.Records[1]))
}

func TestTelemetry_GPSCoordinate(t *testing.T) {
	// 48° 7.380' E -> minutes*1000 = 7380, degrees 48, longitude bit
	raw := uint32(7380) | uint32(48)<<16 | 1<<29
	rec := SensorRecord{SensorID: 3, Type: TypeGPS, Value: int64(raw)}

	frame := EncodeDataResponse(0x01, 0xA409, 0x0001, []SensorRecord{rec})
	r := decodeOne(t, frame)
	require.Equal(t, ClassTelemetryData, r.Class)

	pkt := r.Packet.(TelemetryData)
	require.Len(t, pkt.Records, 1)
	assert.Equal(t, "48.123000°E", FormatSensorValue(pkt.Records[0]))
}
