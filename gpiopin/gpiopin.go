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

// Package gpiopin implements the cr95hf pin interfaces on real hardware.
//
// Two backends are available: periph.io pins looked up by name (Output,
// Input), and on Linux the GPIO character device addressed by chip path
// and line offset (ChipOutput, ChipIRQ). Both take the line's physical
// polarity so callers deal only in logical asserted/deasserted terms.
package gpiopin

import (
	"fmt"

	"github.com/ZaparooProject/go-cr95hf/internal/syncutil"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// OutPin drives a periph.io GPIO pin as a cr95hf.OutputPin.
type OutPin struct {
	pin       gpio.PinIO
	activeLow bool
}

// Output opens the named GPIO pin for output. activeLow marks a line
// whose asserted state is the physical low level, such as the CR95HF's
// IRQ_IN and SPI_SS. The pin starts deasserted.
func Output(name string, activeLow bool) (*OutPin, error) {
	pin, err := byName(name)
	if err != nil {
		return nil, err
	}
	p := &OutPin{pin: pin, activeLow: activeLow}
	if err := p.Set(false); err != nil {
		return nil, err
	}
	return p, nil
}

// Set drives the pin to its asserted or deasserted physical level.
func (p *OutPin) Set(asserted bool) error {
	level := gpio.Level(asserted != p.activeLow)
	if err := p.pin.Out(level); err != nil {
		return fmt.Errorf("driving %s: %w", p.pin.Name(), err)
	}
	return nil
}

// IRQPin watches a periph.io GPIO pin as a cr95hf.IRQLine.
type IRQPin struct {
	pin       gpio.PinIO
	notify    func()
	mu        syncutil.Mutex
	armed     bool
	activeLow bool
}

// Input opens the named GPIO pin for edge-triggered input with a pull-up,
// matching the open-drain IRQ_OUT line. activeLow selects which physical
// edge counts as asserting.
func Input(name string, activeLow bool) (*IRQPin, error) {
	pin, err := byName(name)
	if err != nil {
		return nil, err
	}
	edge := gpio.RisingEdge
	if activeLow {
		edge = gpio.FallingEdge
	}
	if err := pin.In(gpio.PullUp, edge); err != nil {
		return nil, fmt.Errorf("configuring %s for edge input: %w", name, err)
	}
	return &IRQPin{pin: pin, activeLow: activeLow}, nil
}

// Asserted reports whether the line currently sits at its asserted level.
func (p *IRQPin) Asserted() (bool, error) {
	return bool(p.pin.Read()) != p.activeLow, nil
}

// Notify registers the callback invoked when an asserting edge occurs
// inside an armed window.
func (p *IRQPin) Notify(fn func()) error {
	if fn == nil {
		return fmt.Errorf("gpiopin: nil notify callback")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notify = fn
	return nil
}

// Arm starts watching for the asserting edge. The callback fires at most
// once per armed window.
func (p *IRQPin) Arm() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.notify == nil {
		return fmt.Errorf("gpiopin: Arm before Notify on %s", p.pin.Name())
	}
	if p.armed {
		return nil
	}
	p.armed = true

	fn := p.notify
	go func() {
		if p.pin.WaitForEdge(-1) {
			fn()
		}
	}()
	return nil
}

// Disarm stops the edge watch. A concurrent WaitForEdge is aborted.
func (p *IRQPin) Disarm() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.armed {
		return nil
	}
	p.armed = false
	if err := p.pin.Halt(); err != nil {
		return fmt.Errorf("halting edge wait on %s: %w", p.pin.Name(), err)
	}
	return nil
}

func byName(name string) (gpio.PinIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	return pin, nil
}
