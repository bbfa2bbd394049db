// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

// Synchronizer locates frame boundaries inside a continuous byte
// stream. EX Bus frames carry no end sentinel; the only cues are the
// header byte and the self-declared length field, so the synchronizer
// opens a candidate on every header match and closes it when the
// declared byte count has arrived. Resynchronization is forward-only:
// after a completed frame scanning resumes at the next byte, and a
// candidate with an implausible length costs exactly one dropped byte.
type Synchronizer struct {
	state   int
	pending []Sample
}

// NewSynchronizer creates a synchronizer in the Scanning state.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{state: stateScanning}
}

// Reset discards any open candidate and returns to Scanning.
func (s *Synchronizer) Reset() {
	s.state = stateScanning
	s.pending = s.pending[:0]
}

// Push folds one byte into the state machine. It returns any candidate
// frames completed by this byte and any header bytes dropped by the
// implausible-length rule. Both slices are almost always empty; Push
// never blocks and holds no work back between calls.
func (s *Synchronizer) Push(b Sample) (frames []*Frame, drops []Sample) {
	s.push(b, &frames, &drops)
	return frames, drops
}

func (s *Synchronizer) push(b Sample, frames *[]*Frame, drops *[]Sample) {
	switch s.state {
	case stateScanning:
		if isHeader(b.Value) {
			s.pending = append(s.pending[:0], b)
			s.state = stateAccumulating
		}

	case stateAccumulating:
		s.pending = append(s.pending, b)
		if len(s.pending) == offLength+1 {
			declared := int(b.Value)
			if declared < MinFrameSize || declared > MaxFrameSize {
				// Drop the header byte only. The bytes that followed it
				// are re-examined so a genuine frame starting inside the
				// failed candidate is not lost.
				*drops = append(*drops, s.pending[0])
				tail := append([]Sample(nil), s.pending[1:]...)
				s.Reset()
				for _, t := range tail {
					s.push(t, frames, drops)
				}
				return
			}
		}
		if len(s.pending) > offLength && len(s.pending) == int(s.pending[offLength].Value) {
			*frames = append(*frames, s.finalize())
		}
	}
}

// finalize cuts the accumulated samples into a Frame and resumes
// scanning at the byte after it.
func (s *Synchronizer) finalize() *Frame {
	data := make([]byte, len(s.pending))
	for i, p := range s.pending {
		data[i] = p.Value
	}
	f := &Frame{
		data:  data,
		start: s.pending[0].Start,
		end:   s.pending[len(s.pending)-1].End,
	}
	s.Reset()
	return f
}

func isHeader(b byte) bool {
	return b == HeaderMaster || b == HeaderMasterPoll || b == HeaderSlave
}
