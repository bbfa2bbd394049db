// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package exbus

// The annotation emitter maps every frame attempt, accepted or
// rejected, onto the labeled-range output contract consumed by the
// timeline host. One Result per attempt, no protocol logic here.

func annotate(f *Frame, p Packet) Result {
	return Result{
		Start:  f.Start(),
		End:    f.End(),
		Short:  shortLabel(p),
		Long:   longLabel(p),
		Class:  p.Classification(),
		Packet: p,
	}
}

func annotateReject(f *Frame, reason Reason) Result {
	return Result{
		Start:  f.Start(),
		End:    f.End(),
		Short:  "Invalid",
		Long:   string(reason),
		Class:  ClassInvalid,
		Reason: reason,
	}
}

// annotateDrop reports a header byte discarded because its candidate
// frame declared an implausible length. Surfacing the drop keeps the
// stream's byte accounting exact; nothing is thrown away silently.
func annotateDrop(b Sample) Result {
	return Result{
		Start:  b.Start,
		End:    b.End,
		Short:  "Invalid",
		Long:   string(ReasonLengthImplausible),
		Class:  ClassInvalid,
		Reason: ReasonLengthImplausible,
	}
}
