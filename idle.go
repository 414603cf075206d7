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
	"github.com/ZaparooProject/go-cr95hf/internal/frame"
)

// Wake-up source flags for IdleConfig.WakeupSource.
const (
	WakeupTimeout       byte = 0x01
	WakeupTagDetection  byte = 0x02
	WakeupLowPulseIRQIn byte = 0x08
	WakeupLowPulseSS    byte = 0x10
)

// IdleConfig holds the fourteen parameter bytes of the Idle command, which
// parks the chip in a low-power state until one of the configured wake-up
// sources fires. The enter, wake-up and leave control pairs select the
// low-power state and the field behavior during the periodic tag sniff;
// DacDataL and DacDataH bound the DAC window that decides whether a tag
// disturbed the field.
type IdleConfig struct {
	WakeupSource byte
	EnterCtrlH   byte
	EnterCtrlL   byte
	WUCtrlH      byte
	WUCtrlL      byte
	LeaveCtrlH   byte
	LeaveCtrlL   byte
	WUPeriod     byte
	OscStart     byte
	DacStart     byte
	DacDataL     byte
	DacDataH     byte
	SwingCount   byte
	MaxSleep     byte
}

// DefaultIdleConfig returns the tag-detection idle parameters from the
// datasheet: wake on tag arrival or a low pulse on IRQ_IN, sniffing the
// field roughly every 300ms.
func DefaultIdleConfig() IdleConfig {
	return IdleConfig{
		WakeupSource: WakeupTagDetection | WakeupLowPulseIRQIn,
		EnterCtrlH:   0x21,
		EnterCtrlL:   0x00,
		WUCtrlH:      0x79,
		WUCtrlL:      0x01,
		LeaveCtrlH:   0x18,
		LeaveCtrlL:   0x00,
		WUPeriod:     0x20,
		OscStart:     0x60,
		DacStart:     0x60,
		DacDataL:     0x64,
		DacDataH:     0x74,
		SwingCount:   0x3F,
		MaxSleep:     0x08,
	}
}

// calibrationIdleConfig returns the idle parameters used while searching
// for the DAC reference: wake on tag detection or timeout, a single sleep
// period, and a DAC window supplied by the search itself.
func calibrationIdleConfig() IdleConfig {
	return IdleConfig{
		WakeupSource: WakeupTimeout | WakeupTagDetection,
		EnterCtrlH:   0xA1,
		EnterCtrlL:   0x00,
		WUCtrlH:      0xF8,
		WUCtrlL:      0x01,
		LeaveCtrlH:   0x18,
		LeaveCtrlL:   0x00,
		WUPeriod:     0x20,
		OscStart:     0x60,
		DacStart:     0x60,
		DacDataL:     0x00,
		DacDataH:     0x00,
		SwingCount:   0x3F,
		MaxSleep:     0x01,
	}
}

// commandFrame serializes the config into a complete 17-byte Idle command
// frame ready for a chip-select window.
func (c IdleConfig) commandFrame() []byte {
	return frame.MustCommand(cmdIdle, []byte{
		c.WakeupSource,
		c.EnterCtrlH, c.EnterCtrlL,
		c.WUCtrlH, c.WUCtrlL,
		c.LeaveCtrlH, c.LeaveCtrlL,
		c.WUPeriod,
		c.OscStart,
		c.DacStart,
		c.DacDataL, c.DacDataH,
		c.SwingCount,
		c.MaxSleep,
	})
}

// ApplyCalibration centers the tag-detector DAC window on a reference
// value found by Calibrate: DacDataH = ref+8, DacDataL = ref-8. The new
// window takes effect on the next switch to TagDetector mode.
func (d *Device) ApplyCalibration(ref byte) {
	d.idle.DacDataH = ref + 8
	d.idle.DacDataL = ref - 8
	d.idleFrame = d.idle.commandFrame()
}
