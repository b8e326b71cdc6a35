package main

import (
	"encoding/binary"
	"fmt"

	"github.com/spf13/afero"

	"kgb/device/video/console"
)

// writeDump stores the console contents using the VGA memory layout: one
// little-endian uint16 per cell, character in the low byte.
func writeDump(fs afero.Fs, path string, cons *console.TextConsole) error {
	cols, rows := cons.Dimensions()
	cells := make([]console.Cell, cols*rows)
	if err := cons.TextBuffer(cells); err != nil {
		return err
	}

	data := make([]byte, len(cells)*2)
	for i, c := range cells {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(c))
	}

	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	return nil
}

// loadDump replaces the console framebuffer with the contents of a dump
// created by writeDump.
func loadDump(fs afero.Fs, path string, cons *console.TextConsole) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("reading dump: %w", err)
	}

	cols, rows := cons.Dimensions()
	if exp := int(cols*rows) * 2; len(data) != exp {
		return fmt.Errorf("dump %q holds %d bytes; expected %d for a %dx%d console", path, len(data), exp, cols, rows)
	}

	cells := make([]console.Cell, cols*rows)
	for i := range cells {
		cells[i] = console.Cell(binary.LittleEndian.Uint16(data[i*2:]))
	}

	if kerr := cons.AttachFramebuffer(cells); kerr != nil {
		return kerr
	}
	return nil
}
