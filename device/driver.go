package device

import (
	"io"
	"kgb/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. Drivers that need to log
	// output during initialization should use the supplied io.Writer in
	// conjunction with kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// ProbeFn is a function that scans for the presence of a particular
// piece of hardware and returns a driver for it.
type ProbeFn func() Driver

// DetectOrder controls the order in which the HAL probes drivers.
type DetectOrder int8

// The supported detection orders. Drivers with a lower order are probed
// first.
const (
	// DetectOrderEarly is used by drivers that must be available before
	// anything else, such as the boot console.
	DetectOrderEarly DetectOrder = -128 + iota

	// DetectOrderPlatform is used by legacy ISA platform devices (DMA
	// controller, PIC, PIT) that live at fixed ports.
	DetectOrderPlatform

	// DetectOrderLast is used by drivers that depend on other devices.
	DetectOrderLast DetectOrder = 127
)

// DriverInfo describes a registered driver.
type DriverInfo struct {
	// Order controls when the driver is probed.
	Order DetectOrder

	// Probe detects the hardware and returns a driver for it, or nil if
	// the device is not present.
	Probe ProbeFn
}

// DriverInfoList sorts DriverInfo entries by detection order.
type DriverInfoList []*DriverInfo

func (l DriverInfoList) Len() int           { return len(l) }
func (l DriverInfoList) Less(i, j int) bool { return l[i].Order < l[j].Order }
func (l DriverInfoList) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }

var registeredDrivers DriverInfoList

// RegisterDriver adds info to the list of drivers probed by the HAL. Drivers
// call it from an init() block.
func RegisterDriver(info *DriverInfo) {
	registeredDrivers = append(registeredDrivers, info)
}

// DriverList returns the registered drivers.
func DriverList() DriverInfoList {
	return registeredDrivers
}
