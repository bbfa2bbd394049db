// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/rcwire/jetiscope/pkg/exbus"
)

// Connection provides a common interface for reading bytes from a source
type Connection interface {
	io.Reader
	io.Closer
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// OpenSerialConnection opens a serial port in the 8N1 framing EX Bus uses
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenConnection opens the serial connection configured by flags
func OpenConnection() (Connection, string, error) {
	if portName == "" {
		return nil, "", fmt.Errorf("--port must be specified")
	}

	conn, err := OpenSerialConnection(portName, baudRate)
	if err != nil {
		return nil, "", err
	}

	return conn, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
}

// sampler timestamps raw reads relative to a capture origin. Bytes in a
// single read are back-dated by the nominal wire duration of one byte
// (10 bit times at 8N1), which keeps frame start/end annotations close
// to their true position even when the OS delivers reads in bursts.
type sampler struct {
	origin  time.Time
	perByte time.Duration
}

func newSampler(baud int) *sampler {
	return &sampler{
		origin:  time.Now(),
		perByte: time.Duration(10 * int64(time.Second) / int64(baud)),
	}
}

func (s *sampler) stamp(buf []byte) []exbus.Sample {
	readEnd := time.Since(s.origin)
	samples := make([]exbus.Sample, len(buf))
	for i, b := range buf {
		end := readEnd - s.perByte*time.Duration(len(buf)-1-i)
		samples[i] = exbus.Sample{
			Value: b,
			Start: end - s.perByte,
			End:   end,
		}
	}
	return samples
}
