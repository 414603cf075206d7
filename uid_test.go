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

package cr95hf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cr95hf "github.com/ZaparooProject/go-cr95hf"
	sim "github.com/ZaparooProject/go-cr95hf/internal/testing"
)

func TestUIDString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", cr95hf.UID(nil).String())
	assert.Equal(t, "04", cr95hf.UID{0x04}.String())
	assert.Equal(t, "04:A1:B2:C3", cr95hf.UID{0x04, 0xA1, 0xB2, 0xC3}.String())
}

func TestGetUID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uid  []byte
	}{
		{name: "single size", uid: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{name: "double size", uid: []byte{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}},
		{name: "triple size", uid: []byte{0x04, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			virtual := sim.NewVirtualCR95HF()
			tag, err := sim.NewVirtualTag(tt.uid)
			require.NoError(t, err)
			virtual.SetTag(tag)

			dev := newTestDevice(t, virtual)
			require.NoError(t, dev.Init())
			require.NoError(t, dev.SelectProtocol(cr95hf.ProtocolISO14443A))

			uid, err := dev.GetUID()
			require.NoError(t, err)
			assert.Equal(t, cr95hf.UID(tt.uid), uid)
		})
	}
}

func TestReadUIDShortBuffer(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(t, sim.NewVirtualCR95HF())
	require.NoError(t, dev.Init())

	_, err := dev.ReadUID(make([]byte, 9))
	require.ErrorIs(t, err, cr95hf.ErrInvalidArgument)
}

func TestReadUIDNoCard(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(t, sim.NewVirtualCR95HF())
	require.NoError(t, dev.Init())
	require.NoError(t, dev.SelectProtocol(cr95hf.ProtocolISO14443A))

	_, err := dev.ReadUID(make([]byte, 10))
	require.ErrorIs(t, err, cr95hf.ErrUnexpectedResponse)
}

func TestReadUIDCardLeavesMidSequence(t *testing.T) {
	t.Parallel()

	virtual := sim.NewVirtualCR95HF()
	tag, err := sim.NewVirtualTag([]byte{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC})
	require.NoError(t, err)
	virtual.SetTag(tag)

	dev := newTestDevice(t, virtual)
	require.NoError(t, dev.Init())
	require.NoError(t, dev.SelectProtocol(cr95hf.ProtocolISO14443A))

	uid, err := dev.GetUID()
	require.NoError(t, err)
	require.Len(t, []byte(uid), 7)

	// With the tag gone the next read fails cleanly
	virtual.SetTag(nil)
	_, err = dev.GetUID()
	require.ErrorIs(t, err, cr95hf.ErrUnexpectedResponse)
}
