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
	"context"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-cr95hf/internal/frame"
)

// Device represents a CR95HF contactless reader attached over SPI.
//
// A Device is not safe for concurrent use; see the package documentation.
type Device struct {
	transport     Transport
	wake          OutputPin
	irq           IRQLine
	wakeSignal    chan struct{}
	idleFrame     []byte
	modeChangedAt time.Time
	pollInterval  time.Duration
	idle          IdleConfig
	mode          Mode
}

// Option is a configuration option for New.
type Option func(*Device) error

// WithWakePin sets the output pin wired to the chip's IRQ_IN line. The pin
// is mandatory: the chip is woken and returned to Ready mode by pulsing it.
func WithWakePin(pin OutputPin) Option {
	return func(d *Device) error {
		if pin == nil {
			return fmt.Errorf("wake pin is nil: %w", ErrInvalidArgument)
		}
		d.wake = pin
		return nil
	}
}

// WithIRQLine sets the input watching the chip's IRQ_OUT line. When
// configured, readiness waits block on the line's falling edge instead of
// polling the status flags over SPI.
func WithIRQLine(line IRQLine) Option {
	return func(d *Device) error {
		if line == nil {
			return fmt.Errorf("IRQ line is nil: %w", ErrInvalidArgument)
		}
		d.irq = line
		return nil
	}
}

// WithPollInterval sets the delay between status-flag reads when polling
// for readiness. Zero polls without sleeping. Ignored when an IRQ line is
// configured.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) error {
		if interval < 0 {
			return fmt.Errorf("poll interval %v: %w", interval, ErrInvalidArgument)
		}
		d.pollInterval = interval
		return nil
	}
}

// WithIdleConfig replaces the default tag-detector idle parameters.
func WithIdleConfig(cfg IdleConfig) Option {
	return func(d *Device) error {
		d.idle = cfg
		d.idleFrame = cfg.commandFrame()
		return nil
	}
}

// New creates a CR95HF device on the given transport. The wake pin is
// required for Init to succeed; pass it with WithWakePin.
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is nil: %w", ErrInvalidArgument)
	}

	d := &Device{
		transport:    transport,
		wakeSignal:   make(chan struct{}, 1),
		pollInterval: defaultPollInterval,
		idle:         DefaultIdleConfig(),
		mode:         ModeUninitialized,
	}
	d.idleFrame = d.idle.commandFrame()

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Init wakes and synchronizes with the chip. See InitContext.
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext wakes the chip with an IRQ_IN pulse and establishes command
// synchronization by running up to five reset/echo rounds. On success the
// device is in PowerUp mode; if every round fails the device stays
// Uninitialized and ErrEchoMismatch is returned.
//
// The context is consulted between rounds only; an individual SPI exchange
// is not interruptible.
func (d *Device) InitContext(ctx context.Context) error {
	if d.wake == nil {
		return fmt.Errorf("no wake pin configured: %w", ErrInvalidArgument)
	}
	if d.irq != nil {
		if err := d.irq.Notify(d.wakeup); err != nil {
			return fmt.Errorf("registering wake callback: %w", err)
		}
	}

	if err := d.wakePulse(); err != nil {
		return fmt.Errorf("wake pulse: %w", err)
	}

	for attempt := 1; attempt <= initAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("init: %w", ctx.Err())
		default:
		}

		echoed, err := d.handshake()
		if err != nil {
			return err
		}
		Debugf("handshake attempt %d/%d: echo byte 0x%02X", attempt, initAttempts, echoed)
		if echoed == cmdEcho {
			d.setMode(ModePowerUp)
			return nil
		}
	}

	d.setMode(ModeUninitialized)
	return fmt.Errorf("no echo after %d attempts: %w", initAttempts, ErrEchoMismatch)
}

// handshake runs one reset/echo round and returns the byte the chip
// echoed back (zero if it answered nothing). Each step is followed by a
// wake pulse so a chip that dropped into a low-power state still hears
// the next one.
func (d *Device) handshake() (byte, error) {
	if _, err := d.transport.Exchange([]byte{frame.CtrlReset}, 0, true); err != nil {
		return 0, fmt.Errorf("reset: %w", err)
	}
	if err := d.wakePulse(); err != nil {
		return 0, fmt.Errorf("wake pulse: %w", err)
	}

	if _, err := d.transport.Exchange([]byte{frame.CtrlSendData, cmdEcho}, 0, true); err != nil {
		return 0, fmt.Errorf("echo command: %w", err)
	}
	if err := d.wakePulse(); err != nil {
		return 0, fmt.Errorf("wake pulse: %w", err)
	}

	// First byte read back is a dummy, the second carries the echo
	rx, err := d.transport.Exchange([]byte{frame.CtrlRead}, 2, true)
	if err != nil {
		return 0, fmt.Errorf("echo response: %w", err)
	}
	if err := d.wakePulse(); err != nil {
		return 0, fmt.Errorf("wake pulse: %w", err)
	}
	return rx[1], nil
}

// Echo sends the Echo command and verifies the chip answers with the same
// byte. Useful as a liveness check on an initialized device.
func (d *Device) Echo() error {
	if _, err := d.transport.Exchange([]byte{frame.CtrlSendData, cmdEcho}, 0, true); err != nil {
		return fmt.Errorf("echo command: %w", err)
	}
	if err := d.waitReady(); err != nil {
		return err
	}
	rx, err := d.transport.Exchange([]byte{frame.CtrlRead}, 2, true)
	if err != nil {
		return fmt.Errorf("echo response: %w", err)
	}
	if rx[1] != cmdEcho {
		return fmt.Errorf("echo returned 0x%02X: %w", rx[1], ErrEchoMismatch)
	}
	return nil
}

// Mode returns the operating mode the driver last recorded.
func (d *Device) Mode() Mode {
	return d.mode
}

// IdleConfig returns the tag-detector parameters currently in effect.
func (d *Device) IdleConfig() IdleConfig {
	return d.idle
}

// Close releases the underlying transport.
func (d *Device) Close() error {
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("closing transport: %w", err)
	}
	return nil
}

func (d *Device) setMode(m Mode) {
	Debugf("mode %s -> %s", d.mode, m)
	d.mode = m
	d.modeChangedAt = time.Now()
}

// wakePulse runs the full power-on wake sequence on IRQ_IN: deasserted
// 100us, asserted 10us, then deasserted with an 11ms settle.
func (d *Device) wakePulse() error {
	if err := d.wake.Set(false); err != nil {
		return err
	}
	time.Sleep(wakeLowTime)
	if err := d.wake.Set(true); err != nil {
		return err
	}
	time.Sleep(wakeHighTime)
	if err := d.wake.Set(false); err != nil {
		return err
	}
	time.Sleep(wakeSettleTime)
	return nil
}

// wakePulseShort is the 10us IRQ_IN pulse that returns an already powered
// chip to Ready mode.
func (d *Device) wakePulseShort() error {
	if err := d.wake.Set(true); err != nil {
		return err
	}
	time.Sleep(wakeHighTime)
	return d.wake.Set(false)
}
