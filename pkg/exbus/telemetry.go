// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

// Sensor value type codes carried in the low nibble of a data record's
// leading byte.
const (
	TypeInt6     = 0
	TypeInt14    = 1
	TypeInt22    = 4
	TypeTimeDate = 5
	TypeInt30    = 8
	TypeGPS      = 9
)

// valueType describes one entry of the protocol's fixed value type
// table: how many data bytes a record of that type occupies and how
// wide its signed value is.
type valueType struct {
	name      string
	dataBytes int
	bits      int // signed value width; 0 for special encodings
}

var valueTypes = map[uint8]valueType{
	TypeInt6:     {"int6", 1, 6},
	TypeInt14:    {"int14", 2, 14},
	TypeInt22:    {"int22", 3, 22},
	TypeTimeDate: {"timedate", 3, 0},
	TypeInt30:    {"int30", 4, 30},
	TypeGPS:      {"gps", 4, 0},
}

// decodeTelemetryRequest surfaces the correlation fields of a master
// poll: the packet id the slave echoes in its response and the data
// identifier naming what is being polled. Nothing else is on the wire.
func decodeTelemetryRequest(f *Frame) (Packet, Reason) {
	return TelemetryRequest{PacketID: f.PacketID(), DataID: f.DataID()}, ""
}

// decodeTelemetryResponse unwraps the EX telemetry sub-packet carried
// in a slave response block and dispatches on its sub-type. The
// dispatcher interprets no record payload of its own.
func decodeTelemetryResponse(f *Frame) (Packet, Reason) {
	block := f.Block()
	if len(block) < exHeaderSize+1 {
		return nil, ReasonTruncatedField
	}
	if block[0]&0x0F != exStartNibble {
		return nil, ReasonUnknownSubtype
	}

	typeLen := block[exOffTypeLen]
	subType := typeLen >> 6
	// The 6-bit length counts every byte after the type/length byte,
	// CRC8 included.
	if exOffTypeLen+1+int(typeLen&0x3F) != len(block) {
		return nil, ReasonLengthMismatch
	}
	if checksum8(block[exOffTypeLen:len(block)-1]) != block[len(block)-1] {
		return nil, ReasonExCRCMismatch
	}

	manufacturer := uint16(block[exOffManufID]) | uint16(block[exOffManufID+1])<<8
	device := uint16(block[exOffDeviceID]) | uint16(block[exOffDeviceID+1])<<8
	region := block[exOffRecords : len(block)-1]

	switch subType {
	case exSubTypeText:
		records, reason := decodeTextRecords(region)
		if reason != "" {
			return nil, reason
		}
		return TelemetryText{Manufacturer: manufacturer, Device: device, Records: records}, ""
	case exSubTypeData:
		records, reason := decodeSensorRecords(region)
		if reason != "" {
			return nil, reason
		}
		return TelemetryData{Manufacturer: manufacturer, Device: device, Records: records}, ""
	default:
		// Message sub-packets are out of scope.
		return nil, ReasonUnknownSubtype
	}
}

// decodeTextRecords decodes length-prefixed sensor name/unit records.
// Every declared length is checked against the remaining region before
// it is consumed.
func decodeTextRecords(region []byte) ([]TextRecord, Reason) {
	var records []TextRecord
	cur := 0
	for cur < len(region) {
		if cur+2 > len(region) {
			return nil, ReasonTruncatedField
		}
		id := region[cur]
		nameLen := int(region[cur+1] >> exTextNameShift)
		unitLen := int(region[cur+1] & exTextUnitMask)
		cur += 2
		if cur+nameLen+unitLen > len(region) {
			return nil, ReasonTruncatedField
		}
		name := string(region[cur : cur+nameLen])
		cur += nameLen
		unit := string(region[cur : cur+unitLen])
		cur += unitLen
		records = append(records, TextRecord{SensorID: id, Name: name, Unit: unit})
	}
	return records, ""
}

// decodeSensorRecords decodes back-to-back binary sensor records. The
// cursor must land exactly on the region end; a record whose declared
// width overruns the region rejects the whole frame, because one
// misaligned record corrupts the interpretation of every record after
// it. Nothing partially decoded is returned.
func decodeSensorRecords(region []byte) ([]SensorRecord, Reason) {
	var records []SensorRecord
	cur := 0
	for cur < len(region) {
		head := region[cur]
		cur++
		id := head >> 4
		code := head & 0x0F
		vt, ok := valueTypes[code]
		if !ok {
			return nil, ReasonRecordOverrun
		}
		sensorID := id
		if id == 0 {
			// Sensor id 0 flags an extended id carried in the next byte.
			if cur >= len(region) {
				return nil, ReasonRecordOverrun
			}
			sensorID = region[cur]
			cur++
		}
		if cur+vt.dataBytes > len(region) {
			return nil, ReasonRecordOverrun
		}
		data := region[cur : cur+vt.dataBytes]
		cur += vt.dataBytes

		rec := SensorRecord{SensorID: sensorID, Type: code}
		switch code {
		case TypeTimeDate, TypeGPS:
			rec.Value = int64(rawLE(data))
		default:
			rec.Value, rec.Exponent = decodeIntValue(data)
		}
		records = append(records, rec)
	}
	return records, ""
}

// decodeIntValue extracts a signed telemetry value from its
// little-endian data bytes. The top three bits of the most significant
// byte carry the sign and a 2-bit decimal exponent; the sign bit and
// the remaining value bits form an (8n-2)-bit two's-complement number.
func decodeIntValue(data []byte) (int64, uint8) {
	raw := rawLE(data)
	valueBits := uint(8*len(data) - 3)
	exponent := uint8((raw >> valueBits) & 0x3)
	value := int64(raw & (1<<valueBits - 1))
	if raw>>(uint(8*len(data))-1) != 0 {
		value -= 1 << valueBits
	}
	return value, exponent
}

func rawLE(data []byte) uint32 {
	var raw uint32
	for i, b := range data {
		raw |= uint32(b) << (8 * uint(i))
	}
	return raw
}
