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
	"github.com/ZaparooProject/go-cr95hf/internal/syncutil"
)

// Transport performs chip-select framed exchanges with the CR95HF.
//
// Exchange asserts the chip-select line, waits the settle delay, then
// clocks the transfer: full-duplex when both tx and rxLen are nonzero,
// write-only when only tx is set, read-only when only rxLen is set, and
// nothing when both are zero. When release is true the chip-select line
// is deasserted after a settle delay; otherwise it stays asserted so a
// follow-up exchange continues the same framed transaction. The returned
// slice holds exactly rxLen bytes and is owned by the caller.
//
// Exchange does not retry; any underlying fault is surfaced immediately.
type Transport interface {
	Exchange(tx []byte, rxLen int, release bool) ([]byte, error)

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// MockExchange records one call to MockTransport.Exchange.
type MockExchange struct {
	Tx      []byte
	RxLen   int
	Release bool
}

// mockReply is a scripted answer for one exchange.
type mockReply struct {
	err  error
	data []byte
}

// MockTransport provides a script-driven implementation of Transport for
// testing. Exchanges are answered in order from a queued script; every
// call is recorded so tests can assert on the exact bus traffic.
type MockTransport struct {
	mu        syncutil.RWMutex
	replies   []mockReply
	exchanges []MockExchange
	connected bool
}

// NewMockTransport creates a new mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{connected: true}
}

// Exchange implements the Transport interface. Reads are satisfied from
// the next queued reply, zero-padded or truncated to rxLen; write-only
// exchanges do not consume data replies. A queued error is consumed by
// whichever exchange comes next. With nothing queued, a read yields rxLen
// zero bytes.
func (m *MockTransport) Exchange(tx []byte, rxLen int, release bool) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil, NewTransportClosedError("Exchange", "mock")
	}

	txCopy := make([]byte, len(tx))
	copy(txCopy, tx)
	m.exchanges = append(m.exchanges, MockExchange{Tx: txCopy, RxLen: rxLen, Release: release})

	if len(m.replies) > 0 && m.replies[0].err != nil {
		err := m.replies[0].err
		m.replies = m.replies[1:]
		return nil, err
	}

	rx := make([]byte, rxLen)
	if rxLen > 0 && len(m.replies) > 0 {
		copy(rx, m.replies[0].data)
		m.replies = m.replies[1:]
	}
	return rx, nil
}

// Close implements the Transport interface.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	return nil
}

// Type implements the Transport interface.
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Test helper methods

// QueueReply schedules data to be returned by the next exchange that reads.
func (m *MockTransport) QueueReply(data []byte) {
	m.mu.Lock()
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	m.replies = append(m.replies, mockReply{data: dataCopy})
	m.mu.Unlock()
}

// QueueError schedules an error to be returned by the next exchange.
func (m *MockTransport) QueueError(err error) {
	m.mu.Lock()
	m.replies = append(m.replies, mockReply{err: err})
	m.mu.Unlock()
}

// Exchanges returns a copy of all recorded exchanges.
func (m *MockTransport) Exchanges() []MockExchange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockExchange, len(m.exchanges))
	copy(out, m.exchanges)
	return out
}

// ExchangeCount returns how many exchanges have been performed.
func (m *MockTransport) ExchangeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.exchanges)
}

// Reset clears the script and the recorded exchanges.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	m.replies = nil
	m.exchanges = nil
	m.connected = true
	m.mu.Unlock()
}
