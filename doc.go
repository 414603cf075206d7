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

// Package cr95hf implements a driver for the ST CR95HF contactless reader IC.
//
// The CR95HF is driven over a chip-select framed SPI link. Every exchange
// starts with a control byte that tells the chip what the transfer means
// (send a command, reset, read a response, or poll for readiness). The
// driver manages the chip's operating-mode state machine, the reset/echo
// bring-up handshake, readiness synchronization (status polling or IRQ_OUT
// edge wait), and the ISO 14443-A anticollision procedure used to read a
// card UID of 4, 7 or 10 bytes.
//
// Basic usage:
//
//	cs, _ := gpiopin.Output("GPIO8", true)
//	wake, _ := gpiopin.Output("GPIO25", true)
//	t, err := spi.New("SPI0.0", cs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	device, err := cr95hf.New(t, cr95hf.WithWakePin(wake))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := device.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := device.SelectProtocol(cr95hf.ProtocolISO14443A); err != nil {
//	    log.Fatal(err)
//	}
//	uid, err := device.GetUID()
//
// A Device is not safe for concurrent use. All methods must be called from
// a single goroutine or protected with external synchronization; the only
// cross-goroutine handoff inside the driver is the IRQ_OUT wake callback,
// which may run in any goroutine.
package cr95hf
