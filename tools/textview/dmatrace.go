package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"kgb/device/dma"
	"kgb/device/portio"
)

// portNames labels the ports touched when priming the floppy channel.
var portNames = map[uint16]string{
	0x04: "ch2 address",
	0x05: "ch2 count",
	0x0a: "mask",
	0x0b: "mode",
	0x0c: "flip-flop reset",
	0x81: "ch2 page",
}

// parseDMASpec parses an "address:count" pair. Both values accept a 0x
// prefix.
func parseDMASpec(spec string) (uint32, uint16, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid DMA spec %q; expected address:count", spec)
	}

	addr, err := strconv.ParseUint(parts[0], 0, 24)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DMA address %q: %w", parts[0], err)
	}

	count, err := strconv.ParseUint(parts[1], 0, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DMA count %q: %w", parts[1], err)
	}

	return uint32(addr), uint16(count), nil
}

// printDMATrace primes the floppy DMA channel against a simulated port space
// and prints every register write in issue order.
func printDMATrace(w io.Writer, spec, mode string) error {
	addr, count, err := parseDMASpec(spec)
	if err != nil {
		return err
	}

	sim := portio.NewSim()
	ctrl := dma.NewController(sim)

	if kerr := ctrl.InitFloppyDMA(addr, count); kerr != nil {
		return kerr
	}

	switch mode {
	case "write":
		ctrl.PrepareFloppyWrite()
	default:
		ctrl.PrepareFloppyRead()
	}

	for _, a := range sim.Writes() {
		if _, err = fmt.Fprintf(w, "out 0x%02x <- 0x%02x  %s\n", a.Port, a.Value, portNames[a.Port]); err != nil {
			return err
		}
	}

	return nil
}
