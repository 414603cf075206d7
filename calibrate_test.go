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

func TestCalibrateConvergesOnNoiseLevel(t *testing.T) {
	t.Parallel()

	// Expected references trace the vendor search sequence for each
	// simulated noise level
	tests := []struct {
		name       string
		noiseLevel byte
		want       byte
	}{
		{name: "floor", noiseLevel: 0x00, want: 0x00},
		{name: "low", noiseLevel: 0x10, want: 0x10},
		{name: "uneven", noiseLevel: 0x33, want: 0x30},
		{name: "typical", noiseLevel: 0x68, want: 0x68},
		{name: "near ceiling", noiseLevel: 0xFB, want: 0xF8},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			virtual := sim.NewVirtualCR95HF()
			virtual.NoiseLevel = tt.noiseLevel
			dev := newTestDevice(t, virtual)
			require.NoError(t, dev.Init())

			ref, err := dev.Calibrate()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)

			// The found reference becomes the tag-detector DAC window
			cfg := dev.IdleConfig()
			assert.Equal(t, ref+8, cfg.DacDataH)
			assert.Equal(t, ref-8, cfg.DacDataL)
		})
	}
}

func TestCalibrateFirstProbeMustDetect(t *testing.T) {
	t.Parallel()

	// Script a timeout wake-up for the first probe, which expects the
	// zero DAC value to always trip the detector
	dev, mt := newMockDevice(t)
	mt.QueueReply([]byte{0x08})             // status flags
	mt.QueueReply([]byte{0xFF, 0x00, 0x01}) // header: one payload byte
	mt.QueueReply([]byte{0x01})             // wake-up reason: timeout

	_, err := dev.Calibrate()
	require.ErrorIs(t, err, cr95hf.ErrUnexpectedResponse)
}

func TestCalibrateSecondProbeMustTimeOut(t *testing.T) {
	t.Parallel()

	// A noise level above 0xFC makes even the high probe detect a tag
	virtual := sim.NewVirtualCR95HF()
	virtual.NoiseLevel = 0xFF
	dev := newTestDevice(t, virtual)
	require.NoError(t, dev.Init())

	_, err := dev.Calibrate()
	require.ErrorIs(t, err, cr95hf.ErrUnexpectedResponse)
}

func TestCalibrateRejectsGarbageWakeReason(t *testing.T) {
	t.Parallel()

	dev, mt := newMockDevice(t)
	mt.QueueReply([]byte{0x08})
	mt.QueueReply([]byte{0xFF, 0x00, 0x01})
	mt.QueueReply([]byte{0x7E})

	_, err := dev.Calibrate()
	require.ErrorIs(t, err, cr95hf.ErrUnexpectedResponse)
}
