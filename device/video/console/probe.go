package console

import (
	"kgb/device"
	"kgb/device/portio"
)

var (
	mapFramebufferFn = overlayFramebuffer
	busFn            = func() portio.Bus { return portio.Hardware{} }
)

// The framebuffer layout set up by the BIOS for mode 0x3.
const (
	vgaTextPhysAddr = 0xb8000
	vgaTextColumns  = 80
	vgaTextRows     = 25
)

// probeForVgaTextConsole returns a driver for the VGA text console left
// active by the boot loader.
func probeForVgaTextConsole() device.Driver {
	return NewTextConsole(vgaTextColumns, vgaTextRows, vgaTextPhysAddr, busFn())
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForVgaTextConsole,
	})
}
