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

package cr95hf_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cr95hf "github.com/ZaparooProject/go-cr95hf"
)

func TestTransportErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := cr95hf.NewTransportReadError("Exchange", "/dev/spidev0.0")
	require.ErrorIs(t, err, cr95hf.ErrTransportRead)
	assert.Contains(t, err.Error(), "/dev/spidev0.0")
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "read error", err: cr95hf.NewTransportReadError("Exchange", "mock"), want: false},
		{name: "closed", err: cr95hf.NewTransportClosedError("Exchange", "mock"), want: true},
		{
			name: "wrapped closed",
			err:  fmt.Errorf("reset: %w", cr95hf.NewTransportClosedError("Exchange", "mock")),
			want: true,
		},
		{name: "plain", err: errors.New("plain"), want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cr95hf.IsFatal(tt.err))
		})
	}
}

func TestTraceBufferWrapsErrors(t *testing.T) {
	t.Parallel()

	tb := cr95hf.NewTraceBuffer("spi", "/dev/spidev0.0", 4)
	tb.RecordTX([]byte{0x00, 0x55}, "echo")
	tb.RecordRX([]byte{0x55}, "echo")

	base := errors.New("flaky bus")
	wrapped := tb.WrapError(base)
	require.ErrorIs(t, wrapped, base)
	require.True(t, cr95hf.HasTrace(wrapped))

	trace := cr95hf.GetTrace(wrapped)
	require.NotNil(t, trace)
	assert.Contains(t, trace.FormatTrace(), "55")
}

func TestTraceBufferKeepsOnlyRecentEntries(t *testing.T) {
	t.Parallel()

	tb := cr95hf.NewTraceBuffer("spi", "mock", 2)
	tb.RecordTX([]byte{0x01}, "first")
	tb.RecordTX([]byte{0x02}, "second")
	tb.RecordTX([]byte{0x03}, "third")

	trace := cr95hf.GetTrace(tb.WrapError(errors.New("boom")))
	require.NotNil(t, trace)
	out := trace.FormatTrace()
	assert.NotContains(t, out, "first")
	assert.Contains(t, out, "third")
}

func TestTransceiveNotImplemented(t *testing.T) {
	t.Parallel()

	dev, err := cr95hf.New(cr95hf.NewMockTransport())
	require.NoError(t, err)

	_, err = dev.Transceive([]byte{0x30, 0x00}, make([]byte, 16))
	require.ErrorIs(t, err, cr95hf.ErrNotImplemented)
}
