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

// readuid brings up a CR95HF, selects ISO 14443-A and prints the UID of
// every card that enters the field.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cr95hf "github.com/ZaparooProject/go-cr95hf"
	"github.com/ZaparooProject/go-cr95hf/gpiopin"
	"github.com/ZaparooProject/go-cr95hf/transport/spi"
)

var (
	flagPort      string
	flagCSPin     string
	flagWakePin   string
	flagIRQPin    string
	flagCalibrate bool
	flagDebug     bool
)

func init() {
	flag.StringVar(&flagPort, "port", "/dev/spidev0.0", "SPI port")
	flag.StringVar(&flagCSPin, "cs", "GPIO8", "GPIO pin wired to SPI_SS (active low)")
	flag.StringVar(&flagWakePin, "wake", "GPIO24", "GPIO pin wired to IRQ_IN (active low)")
	flag.StringVar(&flagIRQPin, "irq", "", "GPIO pin wired to IRQ_OUT (poll status flags if empty)")
	flag.BoolVar(&flagCalibrate, "calibrate", false, "Calibrate the tag detector before reading")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
}

func main() {
	flag.Parse()
	if flagDebug {
		cr95hf.SetDebugEnabled(true)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "readuid: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer func() { _ = dev.Close() }()

	if err := dev.Init(); err != nil {
		return fmt.Errorf("initializing CR95HF: %w", err)
	}
	fmt.Println("CR95HF initialized")

	if flagCalibrate {
		ref, err := dev.Calibrate()
		if err != nil {
			return fmt.Errorf("calibrating: %w", err)
		}
		fmt.Printf("tag detector calibrated, DAC reference 0x%02X\n", ref)
	}

	if err := dev.SelectProtocol(cr95hf.ProtocolISO14443A); err != nil {
		return fmt.Errorf("selecting ISO 14443-A: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	fmt.Println("waiting for cards, Ctrl-C to exit")

	var last cr95hf.UID
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sigCh:
			fmt.Println()
			return nil
		case <-ticker.C:
		}

		uid, err := dev.GetUID()
		if err != nil {
			// No card, or it left mid-sequence
			last = nil
			continue
		}
		if uid.String() == last.String() {
			continue
		}
		last = uid
		fmt.Printf("card: %s\n", uid)
	}
}

func openDevice() (*cr95hf.Device, error) {
	csPin, err := gpiopin.Output(flagCSPin, true)
	if err != nil {
		return nil, fmt.Errorf("opening chip select pin: %w", err)
	}
	wakePin, err := gpiopin.Output(flagWakePin, true)
	if err != nil {
		return nil, fmt.Errorf("opening wake pin: %w", err)
	}

	transport, err := spi.New(flagPort, csPin)
	if err != nil {
		return nil, fmt.Errorf("opening SPI transport: %w", err)
	}

	opts := []cr95hf.Option{cr95hf.WithWakePin(wakePin)}
	if flagIRQPin != "" {
		irq, err := gpiopin.Input(flagIRQPin, true)
		if err != nil {
			_ = transport.Close()
			return nil, fmt.Errorf("opening IRQ pin: %w", err)
		}
		opts = append(opts, cr95hf.WithIRQLine(irq))
	}

	dev, err := cr95hf.New(transport, opts...)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	return dev, nil
}
