package kmain

import (
	"kgb/device/video/console"
	"kgb/kernel"
	"kgb/kernel/hal"
	"kgb/kernel/kfmt"
)

// The floppy bounce buffer must live below 16M and must not cross a 64K
// boundary.
const (
	floppyBufferAddr = 0x1000
	floppySectorSize = 512
)

var (
	detectHardwareFn = hal.DetectHardware
	activeConsoleFn  = hal.ActiveConsole
	dmaControllerFn  = hal.DMAController
	panicFn          = kfmt.Panic

	bannerAttr = console.MakeAttr(console.LightGreen, console.Black)

	errNoConsole     = &kernel.Error{Module: "kmain", Message: "no console detected"}
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
)

// Kmain is invoked by the rt0 code once a stack is available. It brings up
// the console and primes the floppy DMA channel for single-sector reads.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain() {
	detectHardwareFn()

	cons := activeConsoleFn()
	if cons == nil {
		panicFn(errNoConsole)
		return
	}

	cons.PutString("KGB kernel\n", bannerAttr)

	if ctrl := dmaControllerFn(); ctrl != nil {
		// The 8237 transfers count+1 bytes.
		if err := ctrl.InitFloppyDMA(floppyBufferAddr, floppySectorSize-1); err != nil {
			panicFn(err)
			return
		}
		ctrl.PrepareFloppyRead()
		kfmt.Printf("[kmain] floppy DMA buffer at 0x%x (%d bytes)\n", uint32(floppyBufferAddr), floppySectorSize)
	}

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating it as dead code and eliminating it.
	panicFn(errKmainReturned)
}
