// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

// Package capture reads and writes timestamped byte-stream captures.
//
// A capture file is a CBOR sequence: one header followed by one record
// per bus byte, each carrying the byte value and its start/end offsets
// in nanoseconds from the beginning of the capture. Captures stand in
// for a live serial port, so a bus session can be recorded once and
// replayed through the decoder any number of times.
package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/rcwire/jetiscope/pkg/exbus"
)

const (
	// Magic identifies jetiscope capture files.
	Magic = "JSCP"
	// Version of the capture format written by this package.
	Version = 1
)

// Header opens every capture file.
type Header struct {
	Magic    string `cbor:"1,keyasint"`
	Version  int    `cbor:"2,keyasint"`
	BaudRate int    `cbor:"3,keyasint"`
}

// record is one bus byte with nanosecond timing offsets.
type record struct {
	Value byte  `cbor:"1,keyasint"`
	Start int64 `cbor:"2,keyasint"`
	End   int64 `cbor:"3,keyasint"`
}

// Writer streams samples into a capture file.
type Writer struct {
	enc *cbor.Encoder
}

// NewWriter writes the capture header and returns a sample writer.
func NewWriter(w io.Writer, baudRate int) (*Writer, error) {
	enc := cbor.NewEncoder(w)
	hdr := Header{Magic: Magic, Version: Version, BaudRate: baudRate}
	if err := enc.Encode(hdr); err != nil {
		return nil, fmt.Errorf("write capture header: %w", err)
	}
	return &Writer{enc: enc}, nil
}

// WriteSample appends one bus byte to the capture.
func (w *Writer) WriteSample(s exbus.Sample) error {
	rec := record{Value: s.Value, Start: int64(s.Start), End: int64(s.End)}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("write capture record: %w", err)
	}
	return nil
}

// Reader replays samples from a capture file.
type Reader struct {
	dec    *cbor.Decoder
	header Header
}

// NewReader validates the capture header and returns a sample reader.
func NewReader(r io.Reader) (*Reader, error) {
	dec := cbor.NewDecoder(r)
	var hdr Header
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("not a capture file (magic %q)", hdr.Magic)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("unsupported capture version %d", hdr.Version)
	}
	return &Reader{dec: dec, header: hdr}, nil
}

// Header returns the capture file header.
func (r *Reader) Header() Header {
	return r.header
}

// ReadSample returns the next bus byte, or io.EOF at the end of the
// capture.
func (r *Reader) ReadSample() (exbus.Sample, error) {
	var rec record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return exbus.Sample{}, io.EOF
		}
		return exbus.Sample{}, fmt.Errorf("read capture record: %w", err)
	}
	return exbus.Sample{
		Value: rec.Value,
		Start: time.Duration(rec.Start),
		End:   time.Duration(rec.End),
	}, nil
}
