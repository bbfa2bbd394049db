// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchronizer_CompletesFrame(t *testing.T) {
	frame := EncodeChannels(0x01, []uint16{1500, 1501})

	s := NewSynchronizer()
	var frames []*Frame
	ts := time.Duration(0)
	for _, b := range frame {
		fs, drops := s.Push(Sample{Value: b, Start: ts, End: ts + byteTime})
		require.Empty(t, drops)
		frames = append(frames, fs...)
		ts += byteTime
	}

	require.Len(t, frames, 1)
	assert.Equal(t, frame, frames[0].Bytes())
	assert.Equal(t, time.Duration(0), frames[0].Start())
	assert.Equal(t, ts, frames[0].End())
}

// An implausible declared length costs exactly the header byte; the
// bytes that followed it are re-examined.
func TestSynchronizer_ImplausibleLengthDropsOneByte(t *testing.T) {
	frame := EncodeChannels(0x05, []uint16{2000})

	// Candidate [0x3E 0xFF 0x00] declares length zero. Its tail
	// (0xFF 0x00) holds no header byte, so scanning resumes cleanly at
	// the real frame.
	stream := append([]byte{0x3E, 0xFF, 0x00}, frame...)

	d := NewDecoder()
	results, _ := feedBytes(d, stream, 0)

	require.Len(t, results, 2)
	assert.Equal(t, ReasonLengthImplausible, results[0].Reason)
	assert.Equal(t, ClassChannelData, results[1].Class)
	// Only the single header byte is covered by the drop result.
	assert.Equal(t, byteTime, results[0].End-results[0].Start)
}

// A header byte hiding inside a failed candidate's tail must still
// open the frame that follows it.
func TestSynchronizer_RescansTailAfterDrop(t *testing.T) {
	frame := EncodeChannels(0x05, []uint16{2000, 2001})

	// Candidate [0x3D frame[0] frame[1]]: declared length frame[1] is
	// 0x03, implausible, so 0x3D is dropped and the tail starting with
	// the real header byte is rescanned.
	require.Equal(t, byte(0x03), frame[1])
	stream := append([]byte{0x3D}, frame...)

	d := NewDecoder()
	results, _ := feedBytes(d, stream, 0)

	require.Len(t, results, 2)
	assert.Equal(t, ReasonLengthImplausible, results[0].Reason)
	assert.Equal(t, ClassChannelData, results[1].Class)
}

// Byte accounting: every delivered byte is either part of exactly one
// completed frame, an individually reported drop, or inter-frame noise.
// Frames are never duplicated and never lose bytes.
func TestSynchronizer_ByteAccounting(t *testing.T) {
	seed := fuzzSeed(t)
	rng := rand.New(rand.NewSource(seed))

	var stream []byte
	wantFrameBytes := 0
	for i := 0; i < 200; i++ {
		if rng.Intn(3) == 0 {
			// noise run without header bytes
			for j := rng.Intn(8); j > 0; j-- {
				b := byte(rng.Intn(256))
				for isHeader(b) {
					b = byte(rng.Intn(256))
				}
				stream = append(stream, b)
			}
			continue
		}
		frame := EncodeChannels(byte(i), randomChannels(rng))
		stream = append(stream, frame...)
		wantFrameBytes += len(frame)
	}

	s := NewSynchronizer()
	gotFrameBytes := 0
	frames := 0
	ts := time.Duration(0)
	for _, b := range stream {
		fs, drops := s.Push(Sample{Value: b, Start: ts, End: ts + byteTime})
		for _, f := range fs {
			gotFrameBytes += len(f.Bytes())
			frames++
		}
		gotFrameBytes += len(drops)
		ts += byteTime
	}

	assert.Equal(t, wantFrameBytes, gotFrameBytes)
	assert.NotZero(t, frames)
}

func randomChannels(rng *rand.Rand) []uint16 {
	values := make([]uint16, 4+rng.Intn(13)) // 4..16 channels
	for i := range values {
		values[i] = uint16(8000 + rng.Intn(8001)) // 1000..2000 µs
	}
	return values
}

// fuzzSeed returns the seed from FUZZ_SEED, or the current time, and
// logs it for reproducibility.
func fuzzSeed(t *testing.T) int64 {
	if env := os.Getenv("FUZZ_SEED"); env != "" {
		if seed, err := strconv.ParseInt(env, 10, 64); err == nil {
			return seed
		}
	}
	seed := time.Now().UnixNano()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return seed
}
