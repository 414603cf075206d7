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

import "fmt"

// calibrationSteps is the length of the DAC reference search: one probe
// at each end of the range, five halving steps, one final adjustment.
const calibrationSteps = 8

// Calibrate searches for the tag-detector DAC reference by binary search.
// Each step parks the chip in a single-period idle with a candidate
// DacDataH and classifies the wake-up reason: tag detection means the
// threshold is too sensitive and the candidate moves up, a timeout means
// it can come down. The found reference is returned and also applied to
// the device's idle parameters as a DacDataH/DacDataL window of ref+8 and
// ref-8.
//
// Run this with an empty RF field. The first two steps probe the extremes
// and fail with ErrUnexpectedResponse when the chip does not behave as a
// quiet field demands.
func (d *Device) Calibrate() (byte, error) {
	cfg := calibrationIdleConfig()

	var ref byte
	for step := 0; step < calibrationSteps; step++ {
		cfg.DacDataH = ref
		resp, err := d.command(cfg.commandFrame())
		if err != nil {
			return 0, fmt.Errorf("calibration step %d: %w", step, err)
		}
		reason, err := wakeReason(resp)
		if err != nil {
			return 0, fmt.Errorf("calibration step %d: %w", step, err)
		}

		switch step {
		case 0:
			// DacDataH 0x00 must always trip the tag detector
			if reason != wakeReasonTagDetection {
				return 0, fmt.Errorf("calibration step 0: wake-up reason 0x%02X, want tag detection: %w",
					reason, ErrUnexpectedResponse)
			}
			ref = 0xFC
		case 1:
			// DacDataH 0xFC must always time out
			if reason != wakeReasonTimeout {
				return 0, fmt.Errorf("calibration step 1: wake-up reason 0x%02X, want timeout: %w",
					reason, ErrUnexpectedResponse)
			}
			ref -= 0x80
		case calibrationSteps - 1:
			if reason == wakeReasonTimeout {
				ref -= 4
			}
			d.ApplyCalibration(ref)
			Debugf("calibration done: DAC reference 0x%02X", ref)
			return ref, nil
		default:
			delta := byte(0x80) >> (step - 1)
			if reason == wakeReasonTimeout {
				ref -= delta
			} else {
				ref += delta
			}
		}
	}
	panic("unreachable")
}

// wakeReason extracts the wake-up reason byte from an Idle response.
func wakeReason(resp *Response) (byte, error) {
	if resp.Code != respSuccess || len(resp.Data) < 1 {
		return 0, fmt.Errorf("idle answered code 0x%02X with %d bytes: %w",
			resp.Code, len(resp.Data), ErrUnexpectedResponse)
	}
	reason := resp.Data[0]
	if reason != wakeReasonTimeout && reason != wakeReasonTagDetection {
		return 0, fmt.Errorf("unknown wake-up reason 0x%02X: %w", reason, ErrUnexpectedResponse)
	}
	return reason, nil
}
