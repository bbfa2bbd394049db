// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func frameFromBytes(data []byte) *Frame {
	return &Frame{
		data:  data,
		start: 0,
		end:   time.Duration(len(data)) * byteTime,
	}
}

func TestValidate_AcceptsConformantFrames(t *testing.T) {
	frames := [][]byte{
		EncodeChannels(0x01, []uint16{12000, 12000}),
		EncodeTelemetryRequest(0x68),
		EncodeTextResponse(0x69, 0xA409, 0x0001, []TextRecord{{SensorID: 0, Name: "Tx", Unit: ""}}),
	}
	for _, data := range frames {
		assert.Empty(t, Validate(frameFromBytes(data)), "frame % X", data)
	}
}

func TestValidate_Rejections(t *testing.T) {
	crcFlipped := EncodeChannels(0x01, []uint16{12000})
	crcFlipped[len(crcFlipped)-2] ^= 0x01

	// Payload mutation without fixing the CRC is also a CRC mismatch.
	payloadFlipped := EncodeChannels(0x01, []uint16{12000})
	payloadFlipped[offBlock] ^= 0x40

	// Declared length disagrees with the accumulated byte count.
	lengthLied := EncodeChannels(0x01, []uint16{12000})
	lengthLied = append(lengthLied, 0x00)

	// Block length field points past the frame end.
	blockLied := EncodeChannels(0x01, []uint16{12000})
	blockLied[offBlockLen] = 0xFF

	jetiBox := EncodeFrame(HeaderMasterPoll, FlagResponse, 0x01, DataIDJetiBox, []byte{0x01})
	badFlag := EncodeFrame(HeaderMaster, 0x07, 0x01, DataIDChannels, []byte{0x00, 0x2E})
	badDataID := EncodeFrame(HeaderMaster, FlagNoResponse, 0x01, 0x77, []byte{0x00})

	tests := []struct {
		name   string
		data   []byte
		reason Reason
	}{
		{"crc trailer flipped", crcFlipped, ReasonCRCMismatch},
		{"payload byte flipped", payloadFlipped, ReasonCRCMismatch},
		{"declared length mismatch", lengthLied, ReasonLengthMismatch},
		{"block overruns frame", blockLied, ReasonLengthMismatch},
		{"jetibox data id", jetiBox, ReasonUnknownType},
		{"unknown flag", badFlag, ReasonUnknownType},
		{"unknown data id", badDataID, ReasonUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reason, Validate(frameFromBytes(tt.data)))
		})
	}
}
