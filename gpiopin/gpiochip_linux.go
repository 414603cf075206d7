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

package gpiopin

import (
	"fmt"
	"unsafe"

	"github.com/ZaparooProject/go-cr95hf/internal/syncutil"
	"golang.org/x/sys/unix"
)

// Raw GPIO character device access (v1 uapi). Used on boards where the
// lines are not exposed through periph.io, addressed as a gpiochip path
// plus line offset.

const chipConsumerLabel = "cr95hf"

// Constants from the linux/gpio.h v1 uapi; golang.org/x/sys/unix does
// not export them. The ioctl numbers encode the struct sizes above.
const (
	gpiohandleRequestInput     = 1 << 0
	gpiohandleRequestOutput    = 1 << 1
	gpiohandleRequestActiveLow = 1 << 2

	gpioeventRequestRisingEdge = 1 << 0

	gpioGetLinehandleIoctl       = 0xc16cb403
	gpioGetLineeventIoctl        = 0xc030b404
	gpiohandleGetLineValuesIoctl = 0xc040b408
	gpiohandleSetLineValuesIoctl = 0xc040b409
)

type gpiohandleRequest struct {
	lineOffsets   [64]uint32
	flags         uint32
	defaultValues [64]uint8
	consumerLabel [32]byte
	lines         uint32
	fd            int32
}

type gpiohandleData struct {
	values [64]uint8
}

type gpioeventRequest struct {
	lineOffset    uint32
	handleFlags   uint32
	eventFlags    uint32
	consumerLabel [32]byte
	fd            int32
}

// gpioeventData is the 16-byte record the kernel writes per edge event.
type gpioeventData struct {
	timestamp uint64
	id        uint32
	_         uint32
}

func ioctlPtr(fd int, req uint, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg)); errno != 0 {
		return errno
	}
	return nil
}

// ChipOutPin drives a GPIO line through the Linux character device.
type ChipOutPin struct {
	fd   int
	desc string
}

// ChipOutput requests the line at offset on the given gpiochip (for
// example "/dev/gpiochip0") as an output. activeLow is handled by the
// kernel's polarity flag. The line starts deasserted.
func ChipOutput(chipPath string, offset uint32, activeLow bool) (*ChipOutPin, error) {
	chipFd, err := unix.Open(chipPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", chipPath, err)
	}
	defer unix.Close(chipFd)

	req := gpiohandleRequest{
		flags: gpiohandleRequestOutput,
		lines: 1,
	}
	req.lineOffsets[0] = offset
	if activeLow {
		req.flags |= gpiohandleRequestActiveLow
	}
	copy(req.consumerLabel[:], chipConsumerLabel)

	if err := ioctlPtr(chipFd, gpioGetLinehandleIoctl, unsafe.Pointer(&req)); err != nil {
		return nil, fmt.Errorf("requesting output line %d on %s: %w", offset, chipPath, err)
	}
	return &ChipOutPin{
		fd:   int(req.fd),
		desc: fmt.Sprintf("%s:%d", chipPath, offset),
	}, nil
}

// Set drives the line. The kernel applies the configured polarity, so
// asserted here is the logical state.
func (p *ChipOutPin) Set(asserted bool) error {
	var data gpiohandleData
	if asserted {
		data.values[0] = 1
	}
	if err := ioctlPtr(p.fd, gpiohandleSetLineValuesIoctl, unsafe.Pointer(&data)); err != nil {
		return fmt.Errorf("setting %s: %w", p.desc, err)
	}
	return nil
}

// Close releases the line.
func (p *ChipOutPin) Close() error {
	if err := unix.Close(p.fd); err != nil {
		return fmt.Errorf("closing %s: %w", p.desc, err)
	}
	return nil
}

// ChipIRQPin watches a GPIO line for asserting edges through the Linux
// character device's event interface.
type ChipIRQPin struct {
	notify  func()
	desc    string
	mu      syncutil.Mutex
	fd      int
	cancelR int
	cancelW int
	armed   bool
}

// ChipIRQ requests the line at offset on the given gpiochip for edge
// events. With activeLow set the kernel inverts the line, so the watch is
// always for the logical asserting (rising) edge.
func ChipIRQ(chipPath string, offset uint32, activeLow bool) (*ChipIRQPin, error) {
	chipFd, err := unix.Open(chipPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", chipPath, err)
	}
	defer unix.Close(chipFd)

	req := gpioeventRequest{
		lineOffset:  offset,
		handleFlags: gpiohandleRequestInput,
		eventFlags:  gpioeventRequestRisingEdge,
	}
	if activeLow {
		req.handleFlags |= gpiohandleRequestActiveLow
	}
	copy(req.consumerLabel[:], chipConsumerLabel)

	if err := ioctlPtr(chipFd, gpioGetLineeventIoctl, unsafe.Pointer(&req)); err != nil {
		return nil, fmt.Errorf("requesting event line %d on %s: %w", offset, chipPath, err)
	}
	return &ChipIRQPin{
		fd:      int(req.fd),
		cancelR: -1,
		cancelW: -1,
		desc:    fmt.Sprintf("%s:%d", chipPath, offset),
	}, nil
}

// Asserted reports the line's current logical level.
func (p *ChipIRQPin) Asserted() (bool, error) {
	var data gpiohandleData
	if err := ioctlPtr(p.fd, gpiohandleGetLineValuesIoctl, unsafe.Pointer(&data)); err != nil {
		return false, fmt.Errorf("reading %s: %w", p.desc, err)
	}
	return data.values[0] != 0, nil
}

// Notify registers the callback invoked when an asserting edge occurs
// inside an armed window.
func (p *ChipIRQPin) Notify(fn func()) error {
	if fn == nil {
		return fmt.Errorf("gpiopin: nil notify callback")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notify = fn
	return nil
}

// Arm starts a poller on the event fd. Edge events the kernel queued
// before the call count: a response that arrived early must still wake
// the waiter.
func (p *ChipIRQPin) Arm() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.notify == nil {
		return fmt.Errorf("gpiopin: Arm before Notify on %s", p.desc)
	}
	if p.armed {
		return nil
	}

	var pipeFds [2]int
	if err := unix.Pipe2(pipeFds[:], unix.O_CLOEXEC); err != nil {
		return fmt.Errorf("creating cancel pipe: %w", err)
	}
	p.cancelR, p.cancelW = pipeFds[0], pipeFds[1]
	p.armed = true

	fn := p.notify
	fd, cancelR := p.fd, p.cancelR
	go func() {
		// The poller owns the read end; Disarm only closes the write end
		defer unix.Close(cancelR)
		if waitEdge(fd, cancelR) {
			fn()
		}
	}()
	return nil
}

// waitEdge blocks until an edge event arrives on fd or cancelR becomes
// readable. It reports whether an edge was seen.
func waitEdge(fd, cancelR int) bool {
	fds := []unix.PollFd{
		{Fd: int32(fd), Events: unix.POLLIN},
		{Fd: int32(cancelR), Events: unix.POLLIN},
	}
	for {
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return false
		}
		if fds[1].Revents != 0 {
			return false
		}
		if fds[0].Revents&unix.POLLIN != 0 {
			// Consume one event record
			buf := make([]byte, unsafe.Sizeof(gpioeventData{}))
			_, _ = unix.Read(fd, buf)
			return true
		}
	}
}

// Disarm stops the poller and drops its cancel pipe.
func (p *ChipIRQPin) Disarm() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.armed {
		return nil
	}
	p.armed = false

	// Closing the write end makes the read end pollable and stops the
	// poller whether or not it saw an edge
	_ = unix.Close(p.cancelW)
	p.cancelR, p.cancelW = -1, -1
	return nil
}

// Close disarms the watch and releases the line.
func (p *ChipIRQPin) Close() error {
	if err := p.Disarm(); err != nil {
		return err
	}
	if err := unix.Close(p.fd); err != nil {
		return fmt.Errorf("closing %s: %w", p.desc, err)
	}
	return nil
}
