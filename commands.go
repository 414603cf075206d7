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
	"time"

	"github.com/ZaparooProject/go-cr95hf/internal/frame"
)

// CR95HF command codes (CR95HF datasheet section 5)
const (
	cmdProtocolSelect = 0x02
	cmdSendRecv       = 0x04
	cmdIdle           = 0x07
	cmdEcho           = 0x55
)

// Response result codes. respSuccess acknowledges commands without RF
// data; respDataRecv carries received RF frames from SendRecv.
const (
	respSuccess  byte = 0x00
	respDataRecv byte = 0x80
)

// Wake-up reasons reported in the first byte of an Idle response.
const (
	wakeReasonTimeout      byte = 0x01
	wakeReasonTagDetection byte = 0x02
)

// Status flags returned while polling with the Poll control byte. Bit 3
// signals a response is waiting to be read, bit 2 signals the chip can
// accept a new command.
const (
	flagDataReady byte = 0x08
	flagSendReady byte = 0x04
)

// ISO 14443-A anticollision constants
const (
	selCascade1 = 0x93 // SEL_CL1
	selCascade2 = 0x95 // SEL_CL2
	selCascade3 = 0x97 // SEL_CL3

	selParamNVB    = 0x20 // NVB: 2 bytes valid, anticollision round
	selParamFlags  = 0x08 // transmission flags: append CRC
	selComplete    = 0x70 // NVB: 7 bytes valid, select round
	selTrailer     = 0x28 // transmission flags: append CRC, 8 significant bits
	cascadeTag     = 0x88 // first fragment byte when the UID continues
	sakCascadeBit  = 0x04 // SAK bit 2: a further cascade level is required
	cascadeRespLen = 5    // UID fragment (4 bytes) + check byte
)

// reqaFrame initiates ISO 14443-A communication: REQA (0x26) with
// transmission flags 0x07 (7 significant bits, no CRC).
var reqaFrame = frame.MustCommand(cmdSendRecv, []byte{0x26, 0x07})

// Buffer capacities, sized to the largest command and response the driver
// exchanges. A response length byte beyond receiveBufferSize is clipped.
const (
	sendBufferSize    = 96
	receiveBufferSize = 96
)

// initAttempts bounds the reset/echo bring-up handshake.
const initAttempts = 5

// Timing constants. The wake pulse timings are t0/t1/t3 from the CR95HF
// datasheet; the dwell and stabilize delays guard mode transitions.
const (
	wakeLowTime       = 100 * time.Microsecond // t0
	wakeHighTime      = 10 * time.Microsecond  // t1
	wakeSettleTime    = 11 * time.Millisecond  // t3
	modeDwellTime     = 10 * time.Millisecond
	modeStabilizeTime = 10 * time.Millisecond
)

// defaultPollInterval spaces status reads while polling for readiness.
// The wait itself is unbounded; the chip is expected to answer.
const defaultPollInterval = time.Millisecond
