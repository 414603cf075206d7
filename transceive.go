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

// Transceive exchanges an arbitrary application frame with a selected
// card.
//
// Not implemented yet: the transmission-flag handling for general frames
// (CRC appending, significant-bit counts, timeouts) differs per protocol
// and card state, and only the anticollision exchanges are wired so far.
func (d *Device) Transceive(_ []byte, _ []byte) (int, error) {
	return 0, fmt.Errorf("transceive: %w", ErrNotImplemented)
}
