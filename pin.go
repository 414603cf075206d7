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

// OutputPin drives a single digital line in its logical sense: Set(true)
// asserts the line, Set(false) deasserts it. Physical polarity (active-low
// wiring of IRQ_IN or SPI_SS) is the implementation's concern.
//
// The gpiopin package provides implementations on top of periph.io and the
// Linux GPIO character device.
type OutputPin interface {
	Set(asserted bool) error
}

// IRQLine is an edge-triggered input watching the chip's IRQ_OUT line.
//
// The device registers its wake callback once via Notify during Init.
// Between Arm and Disarm the implementation must invoke the callback when
// the line's asserting edge occurs; edges outside an armed window may be
// dropped. Asserted reports the current level so a caller can skip the
// edge wait when the line already signals readiness.
type IRQLine interface {
	Asserted() (bool, error)
	Notify(fn func()) error
	Arm() error
	Disarm() error
}
