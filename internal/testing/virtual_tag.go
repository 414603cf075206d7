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

package testing

import "fmt"

// cascadeTag marks a UID fragment that continues at the next level.
const cascadeTag = 0x88

// VirtualTag models an ISO 14443-A card in the simulated RF field.
type VirtualTag struct {
	UID []byte
	// SAK returned at the final cascade level. Non-final levels answer
	// with the cascade bit set.
	FinalSAK byte
}

// NewVirtualTag creates a tag with the given UID, which must be 4, 7 or
// 10 bytes.
func NewVirtualTag(uid []byte) (*VirtualTag, error) {
	switch len(uid) {
	case 4, 7, 10:
	default:
		return nil, fmt.Errorf("UID must be 4, 7 or 10 bytes, got %d", len(uid))
	}
	return &VirtualTag{UID: append([]byte(nil), uid...), FinalSAK: 0x08}, nil
}

// levels is how many cascade levels the tag's UID occupies.
func (t *VirtualTag) levels() int {
	switch len(t.UID) {
	case 4:
		return 1
	case 7:
		return 2
	default:
		return 3
	}
}

// fragment returns the 5-byte anticollision answer at the given cascade
// level (0-based): 4 UID bytes, prefixed with the cascade tag when more
// levels follow, plus the BCC check byte.
func (t *VirtualTag) fragment(level int) ([]byte, error) {
	if level < 0 || level >= t.levels() {
		return nil, fmt.Errorf("no cascade level %d for a %d-byte UID", level, len(t.UID))
	}

	frag := make([]byte, 0, 5)
	if level < t.levels()-1 {
		frag = append(frag, cascadeTag, t.UID[level*3], t.UID[level*3+1], t.UID[level*3+2])
	} else {
		frag = append(frag, t.UID[level*3:level*3+4]...)
	}

	var bcc byte
	for _, b := range frag {
		bcc ^= b
	}
	return append(frag, bcc), nil
}

// sak returns the select acknowledge for the given cascade level.
func (t *VirtualTag) sak(level int) byte {
	if level < t.levels()-1 {
		return 0x04
	}
	return t.FinalSAK
}
