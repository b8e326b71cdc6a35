package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/spf13/afero"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"kgb/device/video/console"
)

// Cell size in pixels when rendering with basicfont.Face7x13.
const (
	glyphWidth  = 7
	glyphHeight = 13
)

// renderImage rasterizes the console contents using the console palette.
func renderImage(cons *console.TextConsole) (*image.RGBA, error) {
	cols, rows := cons.Dimensions()
	cells := make([]console.Cell, cols*rows)
	if err := cons.TextBuffer(cells); err != nil {
		return nil, err
	}

	palette := cons.Palette()
	img := image.NewRGBA(image.Rect(0, 0, int(cols)*glyphWidth, int(rows)*glyphHeight))

	face := basicfont.Face7x13
	drawer := font.Drawer{Dst: img, Face: face}
	var glyph [1]rune

	for y := 0; y < int(rows); y++ {
		for x := 0; x < int(cols); x++ {
			c := cells[y*int(cols)+x]
			fg, bg := paletteColor(palette, c.Attr()&0x0f), paletteColor(palette, c.Attr()>>4)

			cellRect := image.Rect(x*glyphWidth, y*glyphHeight, (x+1)*glyphWidth, (y+1)*glyphHeight)
			draw.Draw(img, cellRect, image.NewUniform(bg), image.Point{}, draw.Src)

			glyph[0] = toUnicode(c.Char())
			if glyph[0] == ' ' {
				continue
			}

			drawer.Src = image.NewUniform(fg)
			drawer.Dot = fixed.P(x*glyphWidth, y*glyphHeight+face.Ascent)
			drawer.DrawString(string(glyph[:]))
		}
	}

	return img, nil
}

func paletteColor(p color.Palette, index uint8) color.Color {
	if int(index) >= len(p) {
		return color.Black
	}
	return p[index]
}

// writePNG saves a screenshot of the console to path.
func writePNG(fs afero.Fs, path string, cons *console.TextConsole) error {
	img, err := renderImage(cons)
	if err != nil {
		return err
	}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating screenshot: %w", err)
	}
	defer f.Close()

	if err = png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding screenshot: %w", err)
	}
	return nil
}
