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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVirtualTagValidatesLength(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 3, 5, 8, 11} {
		_, err := NewVirtualTag(make([]byte, n))
		require.Error(t, err, "length %d", n)
	}
}

func TestVirtualTagFragments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		uid        []byte
		wantLevels int
	}{
		{name: "single", uid: []byte{0xDE, 0xAD, 0xBE, 0xEF}, wantLevels: 1},
		{name: "double", uid: []byte{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}, wantLevels: 2},
		{
			name:       "triple",
			uid:        []byte{0x04, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99},
			wantLevels: 3,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tag, err := NewVirtualTag(tt.uid)
			require.NoError(t, err)
			require.Equal(t, tt.wantLevels, tag.levels())

			var rebuilt []byte
			for level := 0; level < tag.levels(); level++ {
				frag, err := tag.fragment(level)
				require.NoError(t, err)
				require.Len(t, frag, 5)

				// BCC is the XOR of the four data bytes
				var bcc byte
				for _, b := range frag[:4] {
					bcc ^= b
				}
				assert.Equal(t, bcc, frag[4])

				if level < tag.levels()-1 {
					assert.Equal(t, byte(cascadeTag), frag[0])
					assert.Equal(t, byte(0x04), tag.sak(level))
					rebuilt = append(rebuilt, frag[1:4]...)
				} else {
					assert.Equal(t, tag.FinalSAK, tag.sak(level))
					rebuilt = append(rebuilt, frag[:4]...)
				}
			}
			assert.Equal(t, tt.uid, rebuilt)
		})
	}
}

func TestVirtualTagFragmentOutOfRange(t *testing.T) {
	t.Parallel()

	tag, err := NewVirtualTag([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.NoError(t, err)

	_, err = tag.fragment(1)
	require.Error(t, err)
	_, err = tag.fragment(-1)
	require.Error(t, err)
}
