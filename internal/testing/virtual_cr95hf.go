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

// Package testing provides test utilities including a wire-level CR95HF
// simulator.
//
// The VirtualCR95HF type implements the cr95hf.Transport interface and
// simulates the chip at the SPI control-byte level: commands are decoded
// from SendData exchanges, responses are served byte by byte through Read
// exchanges, and the Poll control byte switches to status-flag reads.
package testing

import (
	cr95hf "github.com/ZaparooProject/go-cr95hf"
	"github.com/ZaparooProject/go-cr95hf/internal/frame"
	"github.com/ZaparooProject/go-cr95hf/internal/syncutil"
)

// Command and response codes the simulator understands.
const (
	cmdProtocolSelect = 0x02
	cmdSendRecv       = 0x04
	cmdIdle           = 0x07
	cmdEcho           = 0x55

	respSuccess  = 0x00
	respDataRecv = 0x80
	respNoField  = 0x87

	wakeTimeout      = 0x01
	wakeTagDetection = 0x02

	flagDataReady = 0x08
	flagSendReady = 0x04
)

// VirtualCR95HF simulates the CR95HF behind the Transport interface.
//
// The zero value is not usable; call NewVirtualCR95HF. All methods are
// safe for concurrent use.
type VirtualCR95HF struct {
	tag    *VirtualTag
	stream []byte
	mu     syncutil.Mutex

	// EchoFailures makes the next n echo commands answer garbage, for
	// exercising the bring-up retry loop.
	EchoFailures int

	// NoiseLevel is the highest DacDataH value at which the simulated
	// field still trips the tag detector during calibration.
	NoiseLevel byte

	pollMode bool
	closed   bool
	selected bool
}

// NewVirtualCR95HF creates a simulator with an empty RF field and a
// mid-range calibration noise level.
func NewVirtualCR95HF() *VirtualCR95HF {
	return &VirtualCR95HF{NoiseLevel: 0x68}
}

// SetTag places a tag in the simulated field, or removes it when nil.
func (v *VirtualCR95HF) SetTag(tag *VirtualTag) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tag = tag
}

// Exchange implements cr95hf.Transport. Chip-select framing needs no
// modeling here: the held-frame read continuation is tracked through the
// poll-mode flag alone.
func (v *VirtualCR95HF) Exchange(tx []byte, rxLen int, _ bool) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, cr95hf.NewTransportClosedError("Exchange", "virtual")
	}

	rx := make([]byte, rxLen)

	if len(tx) > 0 {
		switch tx[0] {
		case frame.CtrlReset:
			v.stream = nil
			v.pollMode = false
		case frame.CtrlSendData:
			v.pollMode = false
			v.handleCommand(tx[1:])
		case frame.CtrlPoll:
			v.pollMode = true
		case frame.CtrlRead:
			v.pollMode = false
			// rx[0] is the byte clocked with the control byte
			v.fill(rx[1:])
		}
	} else if rxLen > 0 {
		if v.pollMode {
			flags := byte(flagSendReady)
			if len(v.stream) > 0 {
				flags |= flagDataReady
			}
			rx[0] = flags
		} else {
			// Continuation of a held read frame
			v.fill(rx)
		}
	}

	return rx, nil
}

// fill pops bytes from the pending response stream.
func (v *VirtualCR95HF) fill(dst []byte) {
	n := copy(dst, v.stream)
	v.stream = v.stream[n:]
}

// handleCommand decodes one command frame and queues its response bytes.
func (v *VirtualCR95HF) handleCommand(cmd []byte) {
	if len(cmd) == 0 {
		return
	}

	if cmd[0] == cmdEcho {
		if v.EchoFailures > 0 {
			v.EchoFailures--
			v.stream = nil
			return
		}
		v.stream = []byte{cmdEcho}
		return
	}

	if len(cmd) < 2 || len(cmd[2:]) < int(cmd[1]) {
		return
	}
	payload := cmd[2 : 2+cmd[1]]

	switch cmd[0] {
	case cmdProtocolSelect:
		v.selected = len(payload) > 0 && payload[0] == 0x02
		v.queue(respSuccess)
	case cmdIdle:
		v.handleIdle(payload)
	case cmdSendRecv:
		v.handleSendRecv(payload)
	default:
		// Unknown command code
		v.queue(0x82)
	}
}

// handleIdle wakes straight back up. A config with the timeout wake
// source is a calibration probe and classifies DacDataH against the
// noise level; otherwise the wake reason follows the simulated field.
func (v *VirtualCR95HF) handleIdle(payload []byte) {
	if len(payload) != 14 {
		v.queue(0x82)
		return
	}
	wuSource, dacDataH := payload[0], payload[11]

	reason := byte(wakeTagDetection)
	if wuSource&wakeTimeout != 0 && dacDataH > v.NoiseLevel {
		reason = wakeTimeout
	}
	v.queue(respSuccess, reason)
}

// handleSendRecv answers the ISO 14443-A exchanges the driver performs.
func (v *VirtualCR95HF) handleSendRecv(payload []byte) {
	if v.tag == nil || !v.selected || len(payload) < 2 {
		v.queue(respNoField)
		return
	}

	switch {
	case payload[0] == 0x26:
		// REQA: ATQA plus trailing status bytes
		v.queue(respDataRecv, 0x04, 0x00, 0x28, 0x00, 0x00)
	case len(payload) == 3 && payload[1] == 0x20:
		frag, err := v.tag.fragment(cascadeLevel(payload[0]))
		if err != nil {
			v.queue(respNoField)
			return
		}
		v.queue(respDataRecv, append(frag, 0x28, 0x00, 0x00)...)
	case len(payload) >= 2 && payload[1] == 0x70:
		sak := v.tag.sak(cascadeLevel(payload[0]))
		v.queue(respDataRecv, sak, 0x28, 0x00, 0x00)
	default:
		v.queue(respNoField)
	}
}

// cascadeLevel maps a SEL code (0x93/0x95/0x97) to a 0-based level.
func cascadeLevel(sel byte) int {
	return int(sel-0x93) / 2
}

// queue appends a response frame (code, length, data) to the read
// stream.
func (v *VirtualCR95HF) queue(code byte, data ...byte) {
	v.stream = append(v.stream, code, byte(len(data)))
	v.stream = append(v.stream, data...)
}

// Close implements cr95hf.Transport.
func (v *VirtualCR95HF) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

// Type implements cr95hf.Transport.
func (*VirtualCR95HF) Type() cr95hf.TransportType {
	return cr95hf.TransportMock
}

// NopPin is a cr95hf.OutputPin that records its last state. It stands in
// for the IRQ_IN wake line in tests.
type NopPin struct {
	mu       syncutil.Mutex
	asserted bool
	sets     int
}

// Set implements cr95hf.OutputPin.
func (p *NopPin) Set(asserted bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asserted = asserted
	p.sets++
	return nil
}

// Asserted reports the last driven state.
func (p *NopPin) Asserted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asserted
}

// Sets reports how many times the pin was driven.
func (p *NopPin) Sets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sets
}
