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

package frame

// SPI control bytes - the first byte of every exchange, selecting what the
// transfer means to the CR95HF (CR95HF datasheet section 4.1.1)
const (
	CtrlSendData = 0x00 // host sends a command frame
	CtrlReset    = 0x01 // reset the chip's SPI state machine
	CtrlRead     = 0x02 // host reads response data
	CtrlPoll     = 0x03 // host polls the status flags
)

// Frame layout
const (
	// HeaderLength is the number of bytes clocked for a response header:
	// one dummy byte, the response code, and the payload length.
	HeaderLength = 3

	// MaxPayloadLength is the largest payload a response length byte can
	// declare (one byte, no extended-length form on this chip).
	MaxPayloadLength = 255
)
