// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import (
	"fmt"
	"strconv"
	"strings"
)

// shortLabel returns the compact tag rendered above the waveform.
func shortLabel(p Packet) string {
	switch p.(type) {
	case ChannelData:
		return "Mstr:Ch"
	case TelemetryRequest:
		return "Mstr:Tlm?"
	case TelemetryText:
		return "Slv:TlmTxt"
	case TelemetryData:
		return "Slv:TlmData"
	default:
		return "Pkt"
	}
}

// longLabel returns the expanded description for the data table.
func longLabel(p Packet) string {
	switch pkt := p.(type) {
	case ChannelData:
		return formatChannels(pkt)
	case TelemetryRequest:
		return fmt.Sprintf("poll id=0x%02X data=0x%02X", pkt.PacketID, pkt.DataID)
	case TelemetryText:
		return formatTextRecords(pkt)
	case TelemetryData:
		return formatSensorRecords(pkt)
	default:
		return ""
	}
}

func formatChannels(pkt ChannelData) string {
	parts := make([]string, len(pkt.Values))
	for i, v := range pkt.Values {
		parts[i] = fmt.Sprintf("Ch%d:%d (%.1fus)", i+1, v, ChannelMicroseconds(v))
	}
	return strings.Join(parts, ", ")
}

func formatTextRecords(pkt TelemetryText) string {
	parts := make([]string, len(pkt.Records))
	for i, r := range pkt.Records {
		if r.Unit == "" {
			parts[i] = fmt.Sprintf("id=%d %q", r.SensorID, r.Name)
		} else {
			parts[i] = fmt.Sprintf("id=%d %q [%s]", r.SensorID, r.Name, r.Unit)
		}
	}
	return fmt.Sprintf("mfg=0x%04X dev=0x%04X %s",
		pkt.Manufacturer, pkt.Device, strings.Join(parts, ", "))
}

func formatSensorRecords(pkt TelemetryData) string {
	parts := make([]string, len(pkt.Records))
	for i, r := range pkt.Records {
		parts[i] = fmt.Sprintf("id=%d %s=%s", r.SensorID, valueTypes[r.Type].name, FormatSensorValue(r))
	}
	return fmt.Sprintf("mfg=0x%04X dev=0x%04X %s",
		pkt.Manufacturer, pkt.Device, strings.Join(parts, ", "))
}

// FormatSensorValue renders a sensor record as display text, inserting
// the decimal point at the position the record's exponent dictates.
// The underlying integer is never rounded.
func FormatSensorValue(r SensorRecord) string {
	switch r.Type {
	case TypeTimeDate:
		return formatTimeDate(uint32(r.Value))
	case TypeGPS:
		return formatCoordinate(uint32(r.Value))
	default:
		return insertDecimal(r.Value, r.Exponent)
	}
}

// insertDecimal renders v with exp low-order digits behind the decimal
// point: insertDecimal(-123, 2) == "-1.23".
func insertDecimal(v int64, exp uint8) string {
	if exp == 0 {
		return strconv.FormatInt(v, 10)
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	if len(digits) <= int(exp) {
		digits = strings.Repeat("0", int(exp)-len(digits)+1) + digits
	}
	cut := len(digits) - int(exp)
	return sign + digits[:cut] + "." + digits[cut:]
}

// formatTimeDate renders a timedate record. Bit 5 of the third data
// byte selects date (day.month.year) over time (h:m:s).
func formatTimeDate(raw uint32) string {
	b0 := uint8(raw)
	b1 := uint8(raw >> 8)
	b2 := uint8(raw >> 16)
	if b2&0x20 != 0 {
		return fmt.Sprintf("%02d.%02d.%04d", b2&0x1F, b1, 2000+uint16(b0))
	}
	return fmt.Sprintf("%02d:%02d:%02d", b2&0x1F, b1, b0)
}

// formatCoordinate renders a gps record: low 16 bits are minutes
// scaled by 1000, the next 9 bits degrees, bit 29 selects longitude
// and bit 30 the negative hemisphere.
func formatCoordinate(raw uint32) string {
	minutes := float64(raw&0xFFFF) / 1000.0
	degrees := float64((raw >> 16) & 0x1FF)
	value := degrees + minutes/60.0
	hemi := "N"
	if raw&(1<<29) != 0 {
		hemi = "E"
		if raw&(1<<30) != 0 {
			hemi = "W"
		}
	} else if raw&(1<<30) != 0 {
		hemi = "S"
	}
	return fmt.Sprintf("%.6f°%s", value, hemi)
}

// FormatResult renders one decode result for line-oriented output.
func FormatResult(r Result) string {
	return fmt.Sprintf("[%12.6fms] %-11s %s",
		float64(r.Start.Microseconds())/1000.0, r.Short, r.Long)
}
