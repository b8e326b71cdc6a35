package console

import (
	"image/color"
	"io"
	"kgb/device/portio"
	"kgb/kernel"
	"kgb/kernel/kfmt"
	"reflect"
	"unsafe"
)

// CRT controller registers used to position the hardware cursor.
const (
	crtIndexPort     = 0x3d4
	crtDataPort      = 0x3d5
	crtCursorHighReg = 0x0e
	crtCursorLowReg  = 0x0f

	dacWriteIndexPort = 0x3c8
	dacDataPort       = 0x3c9
)

var (
	// ErrCursorOutOfBounds is returned by SetCursorPos when the requested
	// position lies outside the console.
	ErrCursorOutOfBounds = &kernel.Error{Module: "vga_text_console", Message: "cursor position out of bounds"}

	// ErrBufferSize is returned by TextBuffer when the destination does not
	// hold exactly width*height cells.
	ErrBufferSize = &kernel.Error{Module: "vga_text_console", Message: "buffer size does not match console dimensions"}

	// ErrNoFramebuffer is returned when the console is used before a
	// framebuffer has been mapped or attached.
	ErrNoFramebuffer = &kernel.Error{Module: "vga_text_console", Message: "framebuffer not mapped"}
)

// TextConsole implements an EGA-compatible text console using VGA mode 0x3.
//
// Each character in the framebuffer is represented by a Cell: a byte for the
// character code and a byte that encodes the foreground and background
// colors (4 bits each). The console owns its cursor; output always goes to
// the cell under the cursor and the hardware cursor is kept in sync after
// every operation that moves it.
//
// TextConsole is not safe for concurrent use.
type TextConsole struct {
	width  uint32
	height uint32

	fbPhysAddr uintptr
	fb         []Cell

	cursorX uint32
	cursorY uint32

	bus     portio.Bus
	palette color.Palette
}

// NewTextConsole creates a new text console with its framebuffer located at
// fbPhysAddr. Hardware registers are accessed through bus.
func NewTextConsole(columns, rows uint32, fbPhysAddr uintptr, bus portio.Bus) *TextConsole {
	return &TextConsole{
		width:      columns,
		height:     rows,
		fbPhysAddr: fbPhysAddr,
		bus:        bus,
		palette: color.Palette{
			color.RGBA{R: 0, G: 0, B: 0, A: 255},       /* black */
			color.RGBA{R: 0, G: 0, B: 170, A: 255},     /* blue */
			color.RGBA{R: 0, G: 170, B: 0, A: 255},     /* green */
			color.RGBA{R: 0, G: 170, B: 170, A: 255},   /* cyan */
			color.RGBA{R: 170, G: 0, B: 0, A: 255},     /* red */
			color.RGBA{R: 170, G: 0, B: 170, A: 255},   /* magenta */
			color.RGBA{R: 170, G: 85, B: 0, A: 255},    /* brown */
			color.RGBA{R: 170, G: 170, B: 170, A: 255}, /* light gray */
			color.RGBA{R: 85, G: 85, B: 85, A: 255},    /* dark gray */
			color.RGBA{R: 85, G: 85, B: 255, A: 255},   /* light blue */
			color.RGBA{R: 85, G: 255, B: 85, A: 255},   /* light green */
			color.RGBA{R: 85, G: 255, B: 255, A: 255},  /* light cyan */
			color.RGBA{R: 255, G: 85, B: 85, A: 255},   /* light red */
			color.RGBA{R: 255, G: 85, B: 255, A: 255},  /* light magenta */
			color.RGBA{R: 255, G: 255, B: 85, A: 255},  /* yellow */
			color.RGBA{R: 255, G: 255, B: 255, A: 255}, /* white */
		},
	}
}

// Dimensions returns the console width and height in characters.
func (cons *TextConsole) Dimensions() (uint32, uint32) {
	return cons.width, cons.height
}

// AttachFramebuffer makes the console render into fb instead of the memory at
// its physical framebuffer address. fb must hold exactly width*height cells.
func (cons *TextConsole) AttachFramebuffer(fb []Cell) *kernel.Error {
	if uint32(len(fb)) != cons.width*cons.height {
		return ErrBufferSize
	}

	cons.fb = fb
	return nil
}

// Clear fills every cell with a blank using attr and moves the cursor to the
// top-left corner.
func (cons *TextConsole) Clear(attr uint8) {
	if cons.fb == nil {
		return
	}

	blank := MakeCell(' ', attr)
	for i := range cons.fb {
		cons.fb[i] = blank
	}

	cons.cursorX, cons.cursorY = 0, 0
	cons.updateCursor()
}

// PutChar writes ch with attr at the cursor and advances the cursor. A '\n'
// moves the cursor to the start of the next line without writing anything.
// Advancing past the last column wraps to the next line and advancing past
// the last line scrolls the console up by one row.
func (cons *TextConsole) PutChar(ch byte, attr uint8) {
	if cons.fb == nil {
		return
	}

	if ch == '\n' {
		cons.newLine()
		cons.updateCursor()
		return
	}

	cons.fb[cons.cursorY*cons.width+cons.cursorX] = MakeCell(ch, attr)

	if cons.cursorX++; cons.cursorX >= cons.width {
		cons.newLine()
	}
	cons.updateCursor()
}

func (cons *TextConsole) newLine() {
	cons.cursorX = 0
	if cons.cursorY++; cons.cursorY >= cons.height {
		cons.cursorY = cons.height - 1
		cons.Scroll()
	}
}

// PutString writes s via PutChar, stopping at the first NUL byte if s
// contains one.
func (cons *TextConsole) PutString(s string, attr uint8) {
	for i := 0; i < len(s) && s[i] != 0; i++ {
		cons.PutChar(s[i], attr)
	}
}

// Write implements io.Writer using DefaultAttr. It allows the console to be
// used as a kfmt output sink.
func (cons *TextConsole) Write(p []byte) (int, error) {
	for _, b := range p {
		cons.PutChar(b, DefaultAttr)
	}

	return len(p), nil
}

// SetCursorPos moves the cursor to (x, y). Coordinates outside the console
// leave the cursor untouched and yield ErrCursorOutOfBounds.
func (cons *TextConsole) SetCursorPos(x, y uint32) *kernel.Error {
	if x >= cons.width || y >= cons.height {
		return ErrCursorOutOfBounds
	}

	cons.cursorX, cons.cursorY = x, y
	cons.updateCursor()
	return nil
}

// CursorPos returns the current cursor position.
func (cons *TextConsole) CursorPos() (uint32, uint32) {
	return cons.cursorX, cons.cursorY
}

// TextBuffer copies the console contents into dst in row-major order.
func (cons *TextConsole) TextBuffer(dst []Cell) *kernel.Error {
	if cons.fb == nil {
		return ErrNoFramebuffer
	}

	if uint32(len(dst)) != cons.width*cons.height {
		return ErrBufferSize
	}

	copy(dst, cons.fb)
	return nil
}

// Scroll moves every row up by one. The top row is discarded and the bottom
// row is blanked using DefaultAttr. The cursor is not moved.
func (cons *TextConsole) Scroll() {
	if cons.fb == nil {
		return
	}

	copy(cons.fb, cons.fb[cons.width:])

	blank := MakeCell(' ', DefaultAttr)
	for i := (cons.height - 1) * cons.width; i < cons.height*cons.width; i++ {
		cons.fb[i] = blank
	}
}

// updateCursor programs the CRT controller with the cursor's linear offset,
// high byte first.
func (cons *TextConsole) updateCursor() {
	pos := uint16(cons.cursorY*cons.width + cons.cursorX)

	cons.bus.PortWriteByte(crtIndexPort, crtCursorHighReg)
	cons.bus.PortWriteByte(crtDataPort, uint8(pos>>8))

	cons.bus.PortWriteByte(crtIndexPort, crtCursorLowReg)
	cons.bus.PortWriteByte(crtDataPort, uint8(pos))
}

// Palette returns the active color palette for this console.
func (cons *TextConsole) Palette() color.Palette {
	return cons.palette
}

// SetPaletteColor updates the color definition for the specified
// palette index. Passing a color index greater than the number of
// supported colors is a no-op.
func (cons *TextConsole) SetPaletteColor(index uint8, rgba color.RGBA) {
	if int(index) >= len(cons.palette) {
		return
	}

	cons.palette[index] = rgba

	// The DAC expects 6-bit components.
	cons.bus.PortWriteByte(dacWriteIndexPort, index)
	cons.bus.PortWriteByte(dacDataPort, rgba.R>>2)
	cons.bus.PortWriteByte(dacDataPort, rgba.G>>2)
	cons.bus.PortWriteByte(dacDataPort, rgba.B>>2)
}

// DriverName returns the name of this driver.
func (cons *TextConsole) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (cons *TextConsole) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit maps the framebuffer so the console can write to it.
func (cons *TextConsole) DriverInit(w io.Writer) *kernel.Error {
	fb := mapFramebufferFn(cons.fbPhysAddr, int(cons.width*cons.height))
	if err := cons.AttachFramebuffer(fb); err != nil {
		return err
	}

	kfmt.Fprintf(w, "mapped %dx%d framebuffer at 0x%x\n", cons.width, cons.height, cons.fbPhysAddr)
	return nil
}

// overlayFramebuffer returns a slice backed by the identity-mapped memory at
// physAddr. It is the only place where the console touches raw memory.
func overlayFramebuffer(physAddr uintptr, cells int) []Cell {
	return *(*[]Cell)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  cells,
		Cap:  cells,
		Data: physAddr,
	}))
}
