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

// Package spi provides the SPI transport for the CR95HF.
//
// The CR95HF frames multi-exchange transactions with chip select, so the
// transport drives SPI_SS itself through a GPIO pin instead of relying on
// the controller's automatic per-transfer chip select. Wire the chip's
// SPI_SS to a free GPIO and leave the controller's native CS unconnected.
package spi

import (
	"fmt"
	"time"

	cr95hf "github.com/ZaparooProject/go-cr95hf"
	"github.com/ZaparooProject/go-cr95hf/internal/frame"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// Default SPI settings; the CR95HF tops out at 2 MHz
	defaultFreq = 1 * physic.MegaHertz
	mode        = spi.Mode0 // CPOL=0, CPHA=0

	// Pause after moving chip select before clocking data
	selectSettle = time.Millisecond
)

// Transport implements the cr95hf.Transport interface over a periph.io
// SPI port with a GPIO-driven chip select.
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	cs       cr95hf.OutputPin
	trace    *cr95hf.TraceBuffer
	portName string
	held     bool
	closed   bool
}

// New opens the named SPI port (for example "/dev/spidev0.0") and returns
// a transport using cs as the chip-select line. The pin must assert the
// chip's SPI_SS on Set(true).
func New(portName string, cs cr95hf.OutputPin) (*Transport, error) {
	if cs == nil {
		return nil, fmt.Errorf("chip select pin is nil: %w", cr95hf.ErrInvalidArgument)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", portName, err)
	}

	conn, err := port.Connect(defaultFreq, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect SPI: %w", err)
	}

	t := newTransport(port, conn, cs, portName)
	if err := t.cs.Set(false); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to release chip select: %w", err)
	}
	return t, nil
}

// newTransport wires a transport from its parts. Split from New for
// testing with fake ports.
func newTransport(port spi.PortCloser, conn spi.Conn, cs cr95hf.OutputPin, portName string) *Transport {
	return &Transport{
		port:     port,
		conn:     conn,
		cs:       cs,
		portName: portName,
		trace:    cr95hf.NewTraceBuffer("spi", portName, 16),
	}
}

// Exchange implements cr95hf.Transport. Chip select is asserted if not
// already held from a previous exchange, the bytes are clocked
// full-duplex, and chip select is released again when release is true.
func (t *Transport) Exchange(tx []byte, rxLen int, release bool) ([]byte, error) {
	if t.closed {
		return nil, t.trace.WrapError(cr95hf.NewTransportClosedError("Exchange", t.portName))
	}
	if rxLen < 0 {
		return nil, fmt.Errorf("negative receive length %d: %w", rxLen, cr95hf.ErrInvalidArgument)
	}

	if !t.held {
		if err := t.cs.Set(true); err != nil {
			return nil, t.trace.WrapError(fmt.Errorf("asserting chip select: %w", err))
		}
		time.Sleep(selectSettle)
		t.held = true
	}

	rx, err := t.clock(tx, rxLen)
	if err != nil {
		// Do not leave the frame open after a failed transfer
		_ = t.releaseSelect()
		return nil, t.trace.WrapError(err)
	}

	if release {
		if rerr := t.releaseSelect(); rerr != nil {
			return nil, t.trace.WrapError(rerr)
		}
	}
	return rx, nil
}

// clock shifts the exchange over the wire. SPI is full duplex: the
// transfer is padded to the longer of the two directions with zero bytes
// out and discarded bytes in.
func (t *Transport) clock(tx []byte, rxLen int) ([]byte, error) {
	n := len(tx)
	if rxLen > n {
		n = rxLen
	}
	if n == 0 {
		return nil, nil
	}

	w := frame.GetBuffer(n)
	defer frame.PutBuffer(w)
	r := frame.GetBuffer(n)
	defer frame.PutBuffer(r)
	copy(w, tx)

	t.trace.RecordTX(w, "exchange")
	if err := t.conn.Tx(w, r); err != nil {
		return nil, cr95hf.NewTransportError("Exchange", t.portName,
			fmt.Errorf("SPI transfer: %w", err), cr95hf.ErrorTypeTransient)
	}
	t.trace.RecordRX(r[:rxLen], "exchange")

	rx := make([]byte, rxLen)
	copy(rx, r[:rxLen])
	return rx, nil
}

func (t *Transport) releaseSelect() error {
	t.held = false
	if err := t.cs.Set(false); err != nil {
		return fmt.Errorf("releasing chip select: %w", err)
	}
	time.Sleep(selectSettle)
	return nil
}

// Close releases chip select and closes the SPI port.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.held {
		_ = t.releaseSelect()
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("closing SPI port %s: %w", t.portName, err)
	}
	return nil
}

// Type implements cr95hf.Transport.
func (*Transport) Type() cr95hf.TransportType {
	return cr95hf.TransportSPI
}
