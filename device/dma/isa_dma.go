package dma

import (
	"io"
	"kgb/device"
	"kgb/device/portio"
	"kgb/kernel"
	"kgb/kernel/kfmt"
)

// FloppyChannel is the ISA DMA channel wired to the floppy disk controller.
const FloppyChannel uint8 = 2

// Mode describes the value programmed into a DMA controller's mode register.
// The two low bits select the channel and are filled in by SetMode.
type Mode uint8

// Mode register bits.
const (
	ModeVerify         Mode = 0x00
	ModeDeviceToMemory Mode = 0x04 // "write" transfer
	ModeMemoryToDevice Mode = 0x08 // "read" transfer
	ModeAutoInit       Mode = 0x10
	ModeDecrement      Mode = 0x20

	ModeDemand  Mode = 0x00
	ModeSingle  Mode = 0x40
	ModeBlock   Mode = 0x80
	ModeCascade Mode = 0xc0
)

// The mode values used for floppy transfers on channel 2. A floppy read moves
// data from the drive into memory.
const (
	ModeFloppyRead  = ModeSingle | ModeDeviceToMemory | Mode(FloppyChannel)
	ModeFloppyWrite = ModeSingle | ModeMemoryToDevice | Mode(FloppyChannel)
)

const (
	// maskBitSet is or-ed with the channel number to mask a channel.
	maskBitSet = 0x04

	// flipFlopResetVal may be any value; writing to the flip-flop reset
	// register is what matters.
	flipFlopResetVal = 0xff
)

// controllerPorts lists the command registers of one 8237 controller.
type controllerPorts struct {
	// base is the port of the first channel address register.
	base          uint16
	mask          uint16
	mode          uint16
	flipFlopReset uint16
}

var (
	primary = controllerPorts{
		base:          0x00,
		mask:          0x0a,
		mode:          0x0b,
		flipFlopReset: 0x0c,
	}

	secondary = controllerPorts{
		base:          0xc0,
		mask:          0xd4,
		mode:          0xd6,
		flipFlopReset: 0xd8,
	}

	// pageRegisters maps a channel number to its page register port.
	pageRegisters = [8]uint16{0x87, 0x83, 0x81, 0x82, 0x8f, 0x8b, 0x89, 0x8a}

	// ErrInvalidChannel is returned when a channel number outside 0-7 is
	// supplied.
	ErrInvalidChannel = &kernel.Error{Module: "isa_dma", Message: "invalid DMA channel"}
)

// channelPorts holds the registers used to program a single channel.
type channelPorts struct {
	ctrl    *controllerPorts
	sel     uint8 // channel index within its controller
	address uint16
	count   uint16
	page    uint16
}

// lookupChannel returns the port layout for channel. Channels 0-3 live on
// the primary controller where registers are one byte apart; channels 4-7
// live on the secondary controller where they are two bytes apart.
func lookupChannel(channel uint8) (channelPorts, *kernel.Error) {
	var ports channelPorts

	switch {
	case channel <= 3:
		ports.ctrl = &primary
		ports.sel = channel
		ports.address = primary.base + uint16(channel)*2
		ports.count = ports.address + 1
	case channel <= 7:
		ports.ctrl = &secondary
		ports.sel = channel - 4
		ports.address = secondary.base + uint16(ports.sel)*4
		ports.count = ports.address + 2
	default:
		return ports, ErrInvalidChannel
	}

	ports.page = pageRegisters[channel]
	return ports, nil
}

// Controller programs the legacy ISA DMA controllers (two cascaded 8237s).
// The controller keeps no software state; everything lives in the hardware
// registers.
type Controller struct {
	bus portio.Bus
}

// NewController returns a Controller that accesses the DMA registers via bus.
func NewController(bus portio.Bus) *Controller {
	return &Controller{bus: bus}
}

// MaskChannel masks (mask == true) or unmasks a DMA channel. A masked channel
// ignores transfer requests.
func (c *Controller) MaskChannel(channel uint8, mask bool) *kernel.Error {
	ports, err := lookupChannel(channel)
	if err != nil {
		return err
	}

	c.maskChannel(ports, mask)
	return nil
}

func (c *Controller) maskChannel(ports channelPorts, mask bool) {
	cmd := ports.sel
	if mask {
		cmd |= maskBitSet
	}
	c.bus.PortWriteByte(ports.ctrl.mask, cmd)
}

// SetupChannel configures channel for a transfer of count bytes starting at
// the 24-bit physical address. The channel is masked while its registers are
// programmed and unmasked afterwards. The flip-flop is reset before each
// low/high byte pair so the controller latches the low byte first.
func (c *Controller) SetupChannel(channel uint8, address uint32, count uint16) *kernel.Error {
	ports, err := lookupChannel(channel)
	if err != nil {
		return err
	}

	c.maskChannel(ports, true)

	c.bus.PortWriteByte(ports.ctrl.flipFlopReset, flipFlopResetVal)
	c.bus.PortWriteByte(ports.address, uint8(address))
	c.bus.PortWriteByte(ports.address, uint8(address>>8))

	c.bus.PortWriteByte(ports.ctrl.flipFlopReset, flipFlopResetVal)
	c.bus.PortWriteByte(ports.count, uint8(count))
	c.bus.PortWriteByte(ports.count, uint8(count>>8))

	c.bus.PortWriteByte(ports.page, uint8(address>>16))

	c.maskChannel(ports, false)
	return nil
}

// InitFloppyDMA configures the floppy channel for a transfer of count bytes
// starting at physical address.
func (c *Controller) InitFloppyDMA(address uint32, count uint16) *kernel.Error {
	return c.SetupChannel(FloppyChannel, address, count)
}

// SetMode programs the mode register of channel's controller.
func (c *Controller) SetMode(channel uint8, mode Mode) *kernel.Error {
	ports, err := lookupChannel(channel)
	if err != nil {
		return err
	}

	c.bus.PortWriteByte(ports.ctrl.mode, uint8(mode&^0x03)|ports.sel)
	return nil
}

// PrepareFloppyRead selects single-mode, device-to-memory transfers for the
// floppy channel.
func (c *Controller) PrepareFloppyRead() {
	c.bus.PortWriteByte(primary.mode, uint8(ModeFloppyRead))
}

// PrepareFloppyWrite selects single-mode, memory-to-device transfers for the
// floppy channel.
func (c *Controller) PrepareFloppyWrite() {
	c.bus.PortWriteByte(primary.mode, uint8(ModeFloppyWrite))
}

// DriverName returns the name of this driver.
func (c *Controller) DriverName() string {
	return "isa_dma"
}

// DriverVersion returns the version of this driver.
func (c *Controller) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit initializes this driver.
func (c *Controller) DriverInit(w io.Writer) *kernel.Error {
	kfmt.Fprintf(w, "8237 pair at 0x%2x/0x%2x, floppy on channel %d\n", primary.base, secondary.base, FloppyChannel)
	return nil
}

func probeForISADMA() device.Driver {
	return NewController(busFn())
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderPlatform,
		Probe: probeForISADMA,
	})
}
