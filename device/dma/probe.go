package dma

import "kgb/device/portio"

var (
	// busFn returns the port space used by probed controllers. Tests
	// replace it with a simulated bus.
	busFn = func() portio.Bus { return portio.Hardware{} }
)
