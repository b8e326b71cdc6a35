package main

import (
	"github.com/gdamore/tcell"

	"kgb/device/video/console"
)

var newScreenFn = tcell.NewScreen

// drawConsole copies the console contents and cursor onto s.
func drawConsole(s tcell.Screen, cons *console.TextConsole) error {
	cols, rows := cons.Dimensions()
	cells := make([]console.Cell, cols*rows)
	if err := cons.TextBuffer(cells); err != nil {
		return err
	}

	for y := uint32(0); y < rows; y++ {
		for x := uint32(0); x < cols; x++ {
			c := cells[y*cols+x]
			s.SetContent(int(x), int(y), toUnicode(c.Char()), nil, styleFromAttr(c.Attr()))
		}
	}

	cx, cy := cons.CursorPos()
	s.ShowCursor(int(cx), int(cy))
	s.Show()
	return nil
}

// showInteractive renders the console in the terminal until a key is pressed.
func showInteractive(cons *console.TextConsole) error {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)
	s, err := newScreenFn()
	if err != nil {
		return err
	}
	if err = s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	s.DisableMouse()
	s.Clear()

	if err = drawConsole(s, cons); err != nil {
		return err
	}

	for {
		switch s.PollEvent().(type) {
		case *tcell.EventKey, nil:
			return nil
		case *tcell.EventResize:
			s.Sync()
		}
	}
}
