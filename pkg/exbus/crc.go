// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import "github.com/sigurn/crc16"

// EX Bus frames carry a CRC-16-CCITT in its reflected form (polynomial
// 0x1021 bit-reversed, initial value 0x0000), better known as
// CRC-16/KERMIT. Check value for "123456789" is 0x2189.
var crcTable = crc16.MakeTable(crc16.CRC16_KERMIT)

// Checksum computes the EX Bus frame CRC over the given bytes. Defined
// for all inputs including the empty slice.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// EX telemetry sub-packet CRC-8 configuration
const crc8Polynomial = 0x07

// checksum8 computes the CRC-8 carried at the end of every EX telemetry
// sub-packet (polynomial 0x07, initial value 0x00).
func checksum8(data []byte) uint8 {
	var crc uint8
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crc8Polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
