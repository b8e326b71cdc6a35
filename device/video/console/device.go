package console

import (
	"image/color"
	"io"
	"kgb/kernel"
)

// Cell is a single text-mode character cell. The low byte holds the
// character code and the high byte holds its attribute.
type Cell uint16

// MakeCell packs a character and an attribute into a Cell.
func MakeCell(ch, attr uint8) Cell {
	return Cell(attr)<<8 | Cell(ch)
}

// Char returns the character stored in the cell.
func (c Cell) Char() uint8 { return uint8(c) }

// Attr returns the attribute stored in the cell.
func (c Cell) Attr() uint8 { return uint8(c >> 8) }

// Color is an index into the 16-entry EGA palette.
type Color uint8

// The default EGA colors.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

// MakeAttr builds an attribute byte: the foreground color occupies the low
// nibble and the background color the high nibble.
func MakeAttr(fg, bg Color) uint8 {
	return uint8(bg&0xf)<<4 | uint8(fg&0xf)
}

// DefaultAttr is light gray text on a black background. Rows exposed by a
// scroll use it.
const DefaultAttr = uint8(Black)<<4 | uint8(LightGray)

// The Device interface is implemented by text-mode consoles. Coordinates are
// 0-based with (0, 0) being the top-left cell.
type Device interface {
	io.Writer

	// Dimensions returns the console width and height in characters.
	Dimensions() (uint32, uint32)

	// Clear fills the console with blanks using attr and homes the cursor.
	Clear(attr uint8)

	// PutChar writes ch at the cursor and advances it, wrapping and
	// scrolling as needed.
	PutChar(ch byte, attr uint8)

	// PutString writes each byte of s up to the first NUL via PutChar.
	PutString(s string, attr uint8)

	// SetCursorPos moves the cursor to (x, y).
	SetCursorPos(x, y uint32) *kernel.Error

	// CursorPos returns the cursor position.
	CursorPos() (x, y uint32)

	// TextBuffer copies the console contents into dst in row-major order.
	TextBuffer(dst []Cell) *kernel.Error

	// Scroll moves the console contents up by one row and blanks the
	// bottom row.
	Scroll()

	// Palette returns the active color palette for this console.
	Palette() color.Palette

	// SetPaletteColor updates the color definition for the specified
	// palette index. Passing a color index greater than the number of
	// supported colors should be a no-op.
	SetPaletteColor(uint8, color.RGBA)
}
