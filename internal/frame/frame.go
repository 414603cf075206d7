// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package frame builds and parses CR95HF wire frames.
//
// A command frame is the SendData control byte, the command code, a length
// byte and the payload. A response is read in two phases: a three byte
// header (dummy, response code, payload length) clocked together with the
// Read control byte, then the declared number of payload bytes.
package frame

import "errors"

var (
	// ErrShortHeader is returned when a response header read yields fewer
	// than HeaderLength bytes.
	ErrShortHeader = errors.New("frame: short response header")

	// ErrPayloadTooLarge is returned when a command payload does not fit
	// in the single length byte of a command frame.
	ErrPayloadTooLarge = errors.New("frame: payload too large")
)

// BuildCommand assembles a command frame for the given CR95HF command code
// and payload. The returned slice is freshly allocated and safe to retain.
func BuildCommand(cmd byte, data []byte) ([]byte, error) {
	if len(data) > MaxPayloadLength {
		return nil, ErrPayloadTooLarge
	}
	buf := make([]byte, 0, 3+len(data))
	buf = append(buf, CtrlSendData, cmd, byte(len(data)))
	buf = append(buf, data...)
	return buf, nil
}

// MustCommand is BuildCommand for payloads known to fit at compile time.
// It panics on oversized payloads and is intended for package-level frame
// constants.
func MustCommand(cmd byte, data []byte) []byte {
	buf, err := BuildCommand(cmd, data)
	if err != nil {
		panic(err)
	}
	return buf
}

// ParseHeader extracts the response code and declared payload length from
// a response header as clocked off the wire (dummy byte first).
func ParseHeader(hdr []byte) (code byte, length int, err error) {
	if len(hdr) < HeaderLength {
		return 0, 0, ErrShortHeader
	}
	return hdr[1], int(hdr[2]), nil
}

// ClipLength limits a declared payload length to the receive buffer
// capacity. The chip's length byte is trusted only up to what the host
// buffer can hold.
func ClipLength(length, capacity int) int {
	if length > capacity {
		return capacity
	}
	return length
}
