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

	"github.com/ZaparooProject/go-cr95hf/internal/frame"
)

// Response is a parsed CR95HF response frame: the result code and the
// payload that followed the length byte.
type Response struct {
	Data []byte
	Code byte
}

// sendCommand writes a fully framed command in a single chip-select
// window.
func (d *Device) sendCommand(cmdFrame []byte) error {
	if len(cmdFrame) > sendBufferSize {
		return fmt.Errorf("command frame is %d bytes, max %d: %w",
			len(cmdFrame), sendBufferSize, ErrInvalidArgument)
	}
	Debugf("send: % X", cmdFrame)
	if _, err := d.transport.Exchange(cmdFrame, 0, true); err != nil {
		return fmt.Errorf("sending command: %w", err)
	}
	return nil
}

// readResponse reads a pending response frame. The header (dummy byte,
// result code, length) is read with chip select held so the payload read
// continues the same frame; the declared length is clipped to the receive
// buffer capacity before the payload is fetched.
func (d *Device) readResponse() (*Response, error) {
	hdr, err := d.transport.Exchange([]byte{frame.CtrlRead}, frame.HeaderLength, false)
	if err != nil {
		return nil, fmt.Errorf("reading response header: %w", err)
	}
	code, length, err := frame.ParseHeader(hdr)
	if err != nil {
		return nil, err
	}
	length = frame.ClipLength(length, receiveBufferSize)

	data, err := d.transport.Exchange(nil, length, true)
	if err != nil {
		return nil, fmt.Errorf("reading response payload: %w", err)
	}
	Debugf("recv: code 0x%02X data % X", code, data)
	return &Response{Code: code, Data: data}, nil
}

// command runs a full command round trip: send, wait for readiness, read
// the response.
func (d *Device) command(cmdFrame []byte) (*Response, error) {
	if err := d.sendCommand(cmdFrame); err != nil {
		return nil, err
	}
	if err := d.waitReady(); err != nil {
		return nil, err
	}
	return d.readResponse()
}

// waitReady blocks until the chip reports a response is ready. Without an
// IRQ line the SPI status flags are polled; with one, the goroutine parks
// until the IRQ_OUT edge fires. Neither wait imposes a timeout: commands
// such as the tag-detector idle may legitimately take arbitrarily long.
func (d *Device) waitReady() error {
	if d.irq == nil {
		return d.pollReady(true, false)
	}
	return d.waitIRQ()
}

// pollReady switches the chip into polling mode and reads the one-byte
// status flags until a wanted readiness bit is set.
func (d *Device) pollReady(wantData, wantSend bool) error {
	if _, err := d.transport.Exchange([]byte{frame.CtrlPoll}, 0, true); err != nil {
		return fmt.Errorf("entering poll mode: %w", err)
	}
	for {
		rx, err := d.transport.Exchange(nil, 1, true)
		if err != nil {
			return fmt.Errorf("reading status flags: %w", err)
		}
		flags := rx[0]
		if wantData && flags&flagDataReady != 0 {
			return nil
		}
		if wantSend && flags&flagSendReady != 0 {
			return nil
		}
		if d.pollInterval > 0 {
			time.Sleep(d.pollInterval)
		}
	}
}

// waitIRQ blocks until IRQ_OUT asserts. The line level is checked first so
// an already pending response does not deadlock the edge wait.
func (d *Device) waitIRQ() error {
	asserted, err := d.irq.Asserted()
	if err != nil {
		return fmt.Errorf("reading IRQ_OUT level: %w", err)
	}
	if asserted {
		return nil
	}

	// Discard a wake left over from a spurious edge in a previous window
	select {
	case <-d.wakeSignal:
	default:
	}

	if err := d.irq.Arm(); err != nil {
		return fmt.Errorf("arming IRQ_OUT edge: %w", err)
	}

	// An edge between the level check and Arm would be lost, so look at
	// the level once more now that the watch is in place
	asserted, err = d.irq.Asserted()
	if err != nil {
		_ = d.irq.Disarm()
		return fmt.Errorf("reading IRQ_OUT level: %w", err)
	}
	if !asserted {
		<-d.wakeSignal
	}
	if err := d.irq.Disarm(); err != nil {
		return fmt.Errorf("disarming IRQ_OUT edge: %w", err)
	}
	return nil
}

// wakeup is the IRQ_OUT edge callback. It may run on any goroutine and
// holds at most one pending wake; further edges before the waiter runs are
// coalesced.
func (d *Device) wakeup() {
	select {
	case d.wakeSignal <- struct{}{}:
	default:
	}
}
