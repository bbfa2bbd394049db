// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

// Decoder is the full EX Bus pipeline: synchronizer, validator, type
// decoders, annotation emitter. One Decoder owns one logical byte
// stream; it has no shared state, never blocks, and emits results in
// arrival order, which is also timestamp order.
type Decoder struct {
	sync *Synchronizer
}

// NewDecoder creates a decoder for a fresh byte stream.
func NewDecoder() *Decoder {
	return &Decoder{sync: NewSynchronizer()}
}

// Reset discards any partially accumulated frame.
func (d *Decoder) Reset() {
	d.sync.Reset()
}

// Feed processes one byte of the stream. It returns a result for every
// frame attempt the byte completed: usually none, one when a frame
// closed, and one per header byte discarded by the implausible-length
// rule. Rejections are reported, never repaired; the only recovery is
// resynchronizing to the next header byte.
func (d *Decoder) Feed(b Sample) []Result {
	frames, drops := d.sync.Push(b)
	if len(frames) == 0 && len(drops) == 0 {
		return nil
	}
	results := make([]Result, 0, len(frames)+len(drops))
	for _, drop := range drops {
		results = append(results, annotateDrop(drop))
	}
	for _, f := range frames {
		results = append(results, decodeFrame(f))
	}
	return results
}

// decodeFrame gates a candidate frame behind the validator and runs
// the matching type decoder. Invalid frames never reach a decoder.
func decodeFrame(f *Frame) Result {
	if reason := Validate(f); reason != "" {
		return annotateReject(f, reason)
	}
	pkt, reason := DecodePacket(f)
	if reason != "" {
		return annotateReject(f, reason)
	}
	return annotate(f, pkt)
}
