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

// UID is an ISO 14443-A unique identifier of 4, 7 or 10 bytes.
type UID []byte

// String returns the UID as uppercase hex with colon separators.
func (u UID) String() string {
	if len(u) == 0 {
		return ""
	}
	buf := make([]byte, 0, len(u)*3-1)
	for i, b := range u {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0x0F])
	}
	return string(buf)
}

const hexDigits = "0123456789ABCDEF"

// GetUID runs the ISO 14443-A anticollision sequence and returns the UID
// of the card in the field. ISO 14443-A must have been selected with
// SelectProtocol first.
func (d *Device) GetUID() (UID, error) {
	buf := make([]byte, maxUIDLength)
	n, err := d.ReadUID(buf)
	if err != nil {
		return nil, err
	}
	return UID(buf[:n]), nil
}

// maxUIDLength is the triple-size ISO 14443-A UID.
const maxUIDLength = 10

// ReadUID runs the ISO 14443-A anticollision sequence, fills buf with the
// card's UID and returns its length (4, 7 or 10). buf must hold at least
// 10 bytes.
//
// The sequence sends REQA, then walks up to three cascade levels. At each
// level the 5-byte fragment from the anticollision round is echoed back in
// a select round; the returned SAK decides whether another level follows.
// Fragments of continuing levels start with the cascade tag byte, which is
// not part of the UID.
func (d *Device) ReadUID(buf []byte) (int, error) {
	if len(buf) < maxUIDLength {
		return 0, fmt.Errorf("UID buffer holds %d bytes, need %d: %w",
			len(buf), maxUIDLength, ErrInvalidArgument)
	}

	// REQA wakes the card; the ATQA content is not inspected
	resp, err := d.command(reqaFrame)
	if err != nil {
		return 0, fmt.Errorf("REQA: %w", err)
	}
	if resp.Code != respDataRecv {
		return 0, fmt.Errorf("REQA answered 0x%02X: %w", resp.Code, ErrUnexpectedResponse)
	}

	n := 0
	for level, sel := range []byte{selCascade1, selCascade2, selCascade3} {
		fragment, sak, err := d.cascade(sel)
		if err != nil {
			return 0, fmt.Errorf("cascade level %d: %w", level+1, err)
		}

		if fragment[0] == cascadeTag {
			n += copy(buf[n:], fragment[1:4])
		} else {
			n += copy(buf[n:], fragment[:4])
		}

		if sak&sakCascadeBit == 0 {
			break
		}
	}

	switch n {
	case 4, 7, 10:
		return n, nil
	default:
		return 0, fmt.Errorf("anticollision yielded %d UID bytes: %w", n, ErrUnexpectedResponse)
	}
}

// cascade runs one anticollision plus select round and returns the 5-byte
// UID fragment and the card's SAK.
func (d *Device) cascade(sel byte) (fragment []byte, sak byte, err error) {
	// Anticollision round: SEL with NVB 0x20 asks every card in the
	// field to answer with its fragment for this level
	cmd, err := frame.BuildCommand(cmdSendRecv, []byte{sel, selParamNVB, selParamFlags})
	if err != nil {
		return nil, 0, err
	}
	resp, err := d.command(cmd)
	if err != nil {
		return nil, 0, fmt.Errorf("anticollision round: %w", err)
	}
	if resp.Code != respDataRecv || len(resp.Data) < cascadeRespLen {
		return nil, 0, fmt.Errorf("anticollision round answered code 0x%02X with %d bytes: %w",
			resp.Code, len(resp.Data), ErrUnexpectedResponse)
	}
	fragment = resp.Data[:cascadeRespLen]

	// Select round: echo the fragment back with NVB 0x70 to single the
	// card out; the response starts with its SAK
	data := make([]byte, 0, 2+cascadeRespLen+1)
	data = append(data, sel, selComplete)
	data = append(data, fragment...)
	data = append(data, selTrailer)
	cmd, err = frame.BuildCommand(cmdSendRecv, data)
	if err != nil {
		return nil, 0, err
	}
	resp, err = d.command(cmd)
	if err != nil {
		return nil, 0, fmt.Errorf("select round: %w", err)
	}
	if resp.Code != respDataRecv || len(resp.Data) < 1 {
		return nil, 0, fmt.Errorf("select round answered code 0x%02X with %d bytes: %w",
			resp.Code, len(resp.Data), ErrUnexpectedResponse)
	}
	return fragment, resp.Data[0], nil
}
