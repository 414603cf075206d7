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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		want    []byte
		cmd     byte
		wantErr error
	}{
		{
			name: "no payload",
			cmd:  0x02,
			data: nil,
			want: []byte{0x00, 0x02, 0x00},
		},
		{
			name: "with payload",
			cmd:  0x04,
			data: []byte{0x26, 0x07},
			want: []byte{0x00, 0x04, 0x02, 0x26, 0x07},
		},
		{
			name: "max payload",
			cmd:  0x04,
			data: make([]byte, MaxPayloadLength),
			want: append([]byte{0x00, 0x04, 0xFF}, make([]byte, MaxPayloadLength)...),
		},
		{
			name:    "payload too large",
			cmd:     0x04,
			data:    make([]byte, MaxPayloadLength+1),
			wantErr: ErrPayloadTooLarge,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCommand(tt.cmd, tt.data)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustCommandPanicsOnOversizedPayload(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		MustCommand(0x04, make([]byte, MaxPayloadLength+1))
	})
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		hdr        []byte
		wantErr    error
		wantCode   byte
		wantLength int
	}{
		{
			name:       "success with payload",
			hdr:        []byte{0xFF, 0x80, 0x05},
			wantCode:   0x80,
			wantLength: 5,
		},
		{
			name:       "empty payload",
			hdr:        []byte{0x00, 0x00, 0x00},
			wantCode:   0x00,
			wantLength: 0,
		},
		{
			name:    "short header",
			hdr:     []byte{0x00, 0x80},
			wantErr: ErrShortHeader,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, length, err := ParseHeader(tt.hdr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantLength, length)
		})
	}
}

func TestClipLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, ClipLength(5, 96))
	assert.Equal(t, 96, ClipLength(255, 96))
	assert.Equal(t, 96, ClipLength(96, 96))
	assert.Equal(t, 0, ClipLength(0, 96))
}

func TestBufferPoolRoundTrip(t *testing.T) {
	t.Parallel()

	pool := NewBufferPool()
	buf := pool.GetBuffer(8)
	require.Len(t, buf, 8)
	copy(buf, "abcdefgh")
	pool.PutBuffer(buf)

	// Returned buffers come back zeroed
	again := pool.GetBuffer(8)
	require.Len(t, again, 8)
	assert.Equal(t, make([]byte, 8), again)

	big := pool.GetBuffer(LargeBufferSize + 1)
	assert.Len(t, big, LargeBufferSize+1)
	pool.PutBuffer(big)
}
