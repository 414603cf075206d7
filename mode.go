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
	"time"
)

// Mode is an operating mode of the CR95HF.
type Mode int

// Operating modes. ModeInvalid is a sentinel: it and any greater value is
// rejected by SelectMode.
const (
	ModeUninitialized Mode = iota
	ModePowerUp
	ModeReady
	ModeHibernate
	ModeSleep
	ModeTagDetector
	ModeReader
	ModeInvalid
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "Uninitialized"
	case ModePowerUp:
		return "PowerUp"
	case ModeReady:
		return "Ready"
	case ModeHibernate:
		return "Hibernate"
	case ModeSleep:
		return "Sleep"
	case ModeTagDetector:
		return "TagDetector"
	case ModeReader:
		return "Reader"
	default:
		return "Invalid"
	}
}

// SelectMode switches the CR95HF to the requested operating mode.
//
// Requesting the current mode is a no-op. Transitions are spaced at least
// 10ms apart; if the previous transition was more recent the call sleeps
// the remaining time. Unless the chip is already in Ready mode it is first
// brought there with a short wake pulse - except from Reader mode, which
// has no implemented exit path and fails with ErrNotImplemented.
//
// TagDetector is the only implemented target. Entering it is synchronous
// and open-ended: the idle frame is sent, the chip parks itself until a
// tag arrives (or the wake source fires), and the wake-up response is
// drained before the device is recorded back in Ready mode. Any other
// target fails with ErrNotImplemented, even Ready itself: the wake pulse
// above still runs, so the chip (and the recorded mode) ends up in Ready
// despite the error.
func (d *Device) SelectMode(requested Mode) error {
	if requested == d.mode {
		Debugln("nothing to do: requested mode = current mode")
		return nil
	}
	if requested >= ModeInvalid || requested < ModeUninitialized {
		return fmt.Errorf("mode %d: %w", int(requested), ErrInvalidMode)
	}

	// Minimum dwell between transitions
	if elapsed := time.Since(d.modeChangedAt); elapsed < modeDwellTime {
		time.Sleep(modeDwellTime - elapsed)
	}

	if d.mode != ModeReady {
		if d.mode == ModeReader {
			return fmt.Errorf("leaving reader mode: %w", ErrNotImplemented)
		}
		// A short IRQ_IN pulse returns the chip to Ready
		if err := d.wakePulseShort(); err != nil {
			return fmt.Errorf("wake pulse: %w", err)
		}
		d.setMode(ModeReady)
	}
	// Let the chip stabilize before dispatching the mode command
	time.Sleep(modeStabilizeTime)

	switch requested {
	case ModeTagDetector:
		if err := d.sendCommand(d.idleFrame); err != nil {
			return fmt.Errorf("tag detector command: %w", err)
		}
		d.setMode(ModeTagDetector)

		// Blocks until the chip wakes up again
		if err := d.waitReady(); err != nil {
			return err
		}
		if _, err := d.readResponse(); err != nil {
			return fmt.Errorf("tag detector wake-up response: %w", err)
		}
		d.setMode(ModeReady)
		return nil
	default:
		return fmt.Errorf("mode %s: %w", requested, ErrNotImplemented)
	}
}
