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

package cr95hf

import (
	"fmt"

	"github.com/ZaparooProject/go-cr95hf/internal/frame"
)

// Protocol identifies an RF protocol the chip can run. The values are the
// chip's own ProtocolSelect codes.
type Protocol byte

const (
	ProtocolFieldOff  Protocol = 0x00
	ProtocolISO15693  Protocol = 0x01
	ProtocolISO14443A Protocol = 0x02
	ProtocolISO14443B Protocol = 0x03
	ProtocolISO18092  Protocol = 0x04
)

// String returns a string representation of the protocol.
func (p Protocol) String() string {
	switch p {
	case ProtocolFieldOff:
		return "FieldOff"
	case ProtocolISO15693:
		return "ISO15693"
	case ProtocolISO14443A:
		return "ISO14443-A"
	case ProtocolISO14443B:
		return "ISO14443-B"
	case ProtocolISO18092:
		return "ISO18092"
	default:
		return fmt.Sprintf("Protocol(0x%02X)", byte(p))
	}
}

// iso14443aSelectFrame configures ISO 14443-A at 106 kbps in both
// directions. The trailing bytes set the frame delay timer (PP=0x01,
// MM=0x80) per the datasheet recommendation.
var iso14443aSelectFrame = frame.MustCommand(cmdProtocolSelect, []byte{
	byte(ProtocolISO14443A), 0x00, 0x01, 0x80,
})

// SelectProtocol configures the RF front end for the given protocol and
// turns on the field. Only ISO 14443-A is implemented; other protocols
// fail with ErrNotImplemented.
//
// The chip must be awake (PowerUp or Ready mode) before selecting a
// protocol.
func (d *Device) SelectProtocol(proto Protocol) error {
	switch proto {
	case ProtocolISO14443A:
	default:
		return fmt.Errorf("protocol %s: %w", proto, ErrNotImplemented)
	}

	resp, err := d.command(iso14443aSelectFrame)
	if err != nil {
		return fmt.Errorf("selecting %s: %w", proto, err)
	}
	if resp.Code != respSuccess {
		return fmt.Errorf("selecting %s: chip answered 0x%02X: %w",
			proto, resp.Code, ErrUnexpectedResponse)
	}
	return nil
}
