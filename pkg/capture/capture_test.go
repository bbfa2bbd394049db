// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package capture

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcwire/jetiscope/pkg/exbus"
)

func TestRoundTrip(t *testing.T) {
	samples := []exbus.Sample{
		{Value: 0x3E, Start: 0, End: 80 * time.Microsecond},
		{Value: 0x03, Start: 80 * time.Microsecond, End: 160 * time.Microsecond},
		{Value: 0xFF, Start: 1 * time.Millisecond, End: 1*time.Millisecond + 80*time.Microsecond},
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, 125000)
	require.NoError(t, err)
	for _, s := range samples {
		require.NoError(t, w.WriteSample(s))
	}

	r, err := NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 125000, r.Header().BaudRate)

	for _, want := range samples {
		got, err := r.ReadSample()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = r.ReadSample()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_RejectsForeignFile(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{0x00, 0x01, 0x02}))
	assert.Error(t, err)
}

func TestReader_RejectsWrongMagic(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 250000)
	require.NoError(t, err)
	_ = w

	data := buf.Bytes()
	// Corrupt the magic string in place.
	idx := bytes.Index(data, []byte(Magic))
	require.GreaterOrEqual(t, idx, 0)
	data[idx] = 'X'

	_, err = NewReader(bytes.NewReader(data))
	assert.Error(t, err)
}
