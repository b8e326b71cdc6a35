// Package portio abstracts x86 port-mapped I/O so that device drivers can
// run against real hardware or a simulated port space.
package portio

import "kgb/kernel/cpu"

// Bus is implemented by objects that provide access to an I/O port space.
type Bus interface {
	PortWriteByte(port uint16, val uint8)
	PortWriteWord(port uint16, val uint16)
	PortWriteDword(port uint16, val uint32)
	PortReadByte(port uint16) uint8
	PortReadWord(port uint16) uint16
	PortReadDword(port uint16) uint32
}

// Hardware is a Bus that issues real in/out instructions.
type Hardware struct{}

func (Hardware) PortWriteByte(port uint16, val uint8)   { cpu.PortWriteByte(port, val) }
func (Hardware) PortWriteWord(port uint16, val uint16)  { cpu.PortWriteWord(port, val) }
func (Hardware) PortWriteDword(port uint16, val uint32) { cpu.PortWriteDword(port, val) }
func (Hardware) PortReadByte(port uint16) uint8         { return cpu.PortReadByte(port) }
func (Hardware) PortReadWord(port uint16) uint16        { return cpu.PortReadWord(port) }
func (Hardware) PortReadDword(port uint16) uint32       { return cpu.PortReadDword(port) }
