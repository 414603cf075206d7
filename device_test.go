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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cr95hf "github.com/ZaparooProject/go-cr95hf"
	sim "github.com/ZaparooProject/go-cr95hf/internal/testing"
)

// newTestDevice wires a device to the chip simulator with polling
// readiness and no poll sleep.
func newTestDevice(t *testing.T, virtual *sim.VirtualCR95HF, opts ...cr95hf.Option) *cr95hf.Device {
	t.Helper()
	opts = append([]cr95hf.Option{
		cr95hf.WithWakePin(&sim.NopPin{}),
		cr95hf.WithPollInterval(0),
	}, opts...)
	dev, err := cr95hf.New(virtual, opts...)
	require.NoError(t, err)
	return dev
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	t.Run("nil transport", func(t *testing.T) {
		t.Parallel()
		_, err := cr95hf.New(nil)
		require.ErrorIs(t, err, cr95hf.ErrInvalidArgument)
	})

	t.Run("nil wake pin", func(t *testing.T) {
		t.Parallel()
		_, err := cr95hf.New(cr95hf.NewMockTransport(), cr95hf.WithWakePin(nil))
		require.ErrorIs(t, err, cr95hf.ErrInvalidArgument)
	})

	t.Run("negative poll interval", func(t *testing.T) {
		t.Parallel()
		_, err := cr95hf.New(cr95hf.NewMockTransport(), cr95hf.WithPollInterval(-time.Millisecond))
		require.ErrorIs(t, err, cr95hf.ErrInvalidArgument)
	})
}

func TestInitSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(t, sim.NewVirtualCR95HF())
	require.NoError(t, dev.Init())
	assert.Equal(t, cr95hf.ModePowerUp, dev.Mode())
}

func TestInitRetriesUntilEcho(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		echoFailures int
		wantErr      bool
	}{
		{name: "second attempt", echoFailures: 1},
		{name: "fifth attempt", echoFailures: 4},
		{name: "exhausted", echoFailures: 5, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			virtual := sim.NewVirtualCR95HF()
			virtual.EchoFailures = tt.echoFailures
			dev := newTestDevice(t, virtual)

			err := dev.Init()
			if tt.wantErr {
				require.ErrorIs(t, err, cr95hf.ErrEchoMismatch)
				assert.Equal(t, cr95hf.ModeUninitialized, dev.Mode())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cr95hf.ModePowerUp, dev.Mode())
		})
	}
}

func TestInitStopsAfterFiveRounds(t *testing.T) {
	t.Parallel()

	// Nothing queued: every echo read comes back zero
	mt := cr95hf.NewMockTransport()
	dev, err := cr95hf.New(mt, cr95hf.WithWakePin(&sim.NopPin{}))
	require.NoError(t, err)

	require.ErrorIs(t, dev.Init(), cr95hf.ErrEchoMismatch)

	// Each round is reset, echo command, echo read
	assert.Equal(t, 15, mt.ExchangeCount())
}

func TestInitWithoutWakePin(t *testing.T) {
	t.Parallel()

	dev, err := cr95hf.New(cr95hf.NewMockTransport())
	require.NoError(t, err)
	require.ErrorIs(t, dev.Init(), cr95hf.ErrInvalidArgument)
}

func TestInitContextCancelled(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(t, sim.NewVirtualCR95HF())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, dev.InitContext(ctx), context.Canceled)
}

func TestEcho(t *testing.T) {
	t.Parallel()

	virtual := sim.NewVirtualCR95HF()
	dev := newTestDevice(t, virtual)
	require.NoError(t, dev.Init())

	require.NoError(t, dev.Echo())

	virtual.EchoFailures = 1
	require.ErrorIs(t, dev.Echo(), cr95hf.ErrEchoMismatch)
}

// fakeIRQ implements cr95hf.IRQLine. Arming it reports the edge
// immediately from another goroutine.
type fakeIRQ struct {
	fn       func()
	asserted bool
	arms     int
	disarms  int
}

func (f *fakeIRQ) Asserted() (bool, error) { return f.asserted, nil }

func (f *fakeIRQ) Notify(fn func()) error {
	f.fn = fn
	return nil
}

func (f *fakeIRQ) Arm() error {
	f.arms++
	go f.fn()
	return nil
}

func (f *fakeIRQ) Disarm() error {
	f.disarms++
	return nil
}

func TestEchoWithIRQLine(t *testing.T) {
	t.Parallel()

	irq := &fakeIRQ{}
	dev := newTestDevice(t, sim.NewVirtualCR95HF(), cr95hf.WithIRQLine(irq))
	require.NoError(t, dev.Init())

	require.NoError(t, dev.Echo())
	assert.Equal(t, irq.arms, irq.disarms)
	assert.Positive(t, irq.arms)
}

func TestEchoWithAssertedIRQSkipsEdgeWait(t *testing.T) {
	t.Parallel()

	irq := &fakeIRQ{asserted: true}
	dev := newTestDevice(t, sim.NewVirtualCR95HF(), cr95hf.WithIRQLine(irq))
	require.NoError(t, dev.Init())

	require.NoError(t, dev.Echo())
	assert.Zero(t, irq.arms)
}

func TestWakePinPulsedDuringInit(t *testing.T) {
	t.Parallel()

	pin := &sim.NopPin{}
	dev, err := cr95hf.New(sim.NewVirtualCR95HF(),
		cr95hf.WithWakePin(pin), cr95hf.WithPollInterval(0))
	require.NoError(t, err)
	require.NoError(t, dev.Init())

	// Every pulse ends with the line deasserted
	assert.False(t, pin.Asserted())
	assert.Positive(t, pin.Sets())
}

func TestClose(t *testing.T) {
	t.Parallel()

	virtual := sim.NewVirtualCR95HF()
	dev := newTestDevice(t, virtual)
	require.NoError(t, dev.Close())

	err := dev.Init()
	require.Error(t, err)
	assert.True(t, cr95hf.IsFatal(err))
}
