// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import "testing"

func TestChecksum_Empty(t *testing.T) {
	if crc := Checksum(nil); crc != 0x0000 {
		t.Errorf("CRC of empty data should be 0x0000, got 0x%04X", crc)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "ASCII '123456789'",
			data:     []byte("123456789"),
			expected: 0x2189, // CRC-16/KERMIT check value
		},
		{
			name:     "single zero byte",
			data:     []byte{0x00},
			expected: 0x0000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crc := Checksum(tt.data)
			if crc != tt.expected {
				t.Errorf("CRC mismatch: expected 0x%04X, got 0x%04X", tt.expected, crc)
			}
		})
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	data := []byte{0x3E, 0x03, 0x18, 0x01, 0x31, 0x10}
	crc1 := Checksum(data)
	crc2 := Checksum(data)
	if crc1 != crc2 {
		t.Errorf("CRC should be deterministic: 0x%04X != 0x%04X", crc1, crc2)
	}
}

// Flipping any single byte of a frame must change the checksum.
func TestChecksum_DetectsSingleByteCorruption(t *testing.T) {
	frame := EncodeChannels(0x01, []uint16{1500, 1500, 1000, 2000})
	body := frame[:len(frame)-2]
	good := Checksum(body)

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		if Checksum(mutated) == good {
			t.Errorf("corruption at byte %d not detected", i)
		}
	}
}

func TestChecksum8_KnownValue(t *testing.T) {
	// CRC-8 (poly 0x07, init 0x00) check value
	if crc := checksum8([]byte("123456789")); crc != 0xF4 {
		t.Errorf("CRC8 check value mismatch: got 0x%02X, want 0xF4", crc)
	}
	if crc := checksum8(nil); crc != 0x00 {
		t.Errorf("CRC8 of empty data should be 0x00, got 0x%02X", crc)
	}
}
