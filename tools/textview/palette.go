package main

import (
	"github.com/gdamore/tcell"
	"golang.org/x/text/encoding/charmap"
)

// cgaColors maps the 16 text-mode colors to terminal colors.
var cgaColors = [16]tcell.Color{
	tcell.ColorBlack,
	tcell.ColorNavy,
	tcell.ColorGreen,
	tcell.ColorTeal,
	tcell.ColorMaroon,
	tcell.ColorPurple,
	tcell.ColorOlive,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlue,
	tcell.ColorLime,
	tcell.ColorAqua,
	tcell.ColorRed,
	tcell.ColorFuchsia,
	tcell.ColorYellow,
	tcell.ColorWhite,
}

// styleFromAttr converts a text-mode attribute byte to a terminal style.
// Bit 7 selects a bright background rather than blinking.
func styleFromAttr(attr uint8) tcell.Style {
	return tcell.StyleDefault.
		Foreground(cgaColors[attr&0x0f]).
		Background(cgaColors[attr>>4])
}

// toUnicode maps a code page 437 byte to the rune it displays as. Control
// codes are shown as blanks.
func toUnicode(ch uint8) rune {
	if ch < 0x20 || ch == 0x7f {
		return ' '
	}
	return charmap.CodePage437.DecodeByte(ch)
}
