package console

import (
	"bytes"
	"image/color"
	"kgb/device"
	"kgb/device/portio"
	"kgb/kernel/kfmt"
	"testing"
)

func newTestConsole(w, h uint32) (*TextConsole, *portio.Sim) {
	sim := portio.NewSim()
	cons := NewTextConsole(w, h, 0xb8000, sim)
	cons.fb = make([]Cell, w*h)
	return cons, sim
}

// rowString returns the characters stored in row y.
func rowString(cons *TextConsole, y uint32) string {
	row := make([]byte, cons.width)
	for x := uint32(0); x < cons.width; x++ {
		row[x] = cons.fb[y*cons.width+x].Char()
	}
	return string(row)
}

func TestCell(t *testing.T) {
	c := MakeCell('A', MakeAttr(Yellow, Blue))
	if got := c.Char(); got != 'A' {
		t.Errorf("expected char 'A'; got %q", got)
	}
	if exp, got := uint8(0x1e), c.Attr(); got != exp {
		t.Errorf("expected attr 0x%x; got 0x%x", exp, got)
	}
	if exp := Cell(0x1e41); c != exp {
		t.Errorf("expected cell 0x%x; got 0x%x", exp, c)
	}
	if DefaultAttr != 0x07 {
		t.Errorf("expected DefaultAttr to be light gray on black; got 0x%x", DefaultAttr)
	}
}

func TestTextConsoleDimensions(t *testing.T) {
	var cons Device = NewTextConsole(40, 50, 0, portio.NewSim())
	if w, h := cons.Dimensions(); w != 40 || h != 50 {
		t.Fatalf("expected console dimensions to be 40x50; got %dx%d", w, h)
	}
}

func TestTextConsoleClear(t *testing.T) {
	cons, sim := newTestConsole(80, 25)

	for _, attr := range []uint8{0x00, 0x07, 0x1f, 0xff} {
		for i := range cons.fb {
			cons.fb[i] = 0xdead
		}
		cons.cursorX, cons.cursorY = 10, 10
		sim.Reset()

		cons.Clear(attr)

		exp := MakeCell(' ', attr)
		for i, got := range cons.fb {
			if got != exp {
				t.Fatalf("[attr 0x%x] expected cell %d to be 0x%x; got 0x%x", attr, i, exp, got)
			}
		}

		if x, y := cons.CursorPos(); x != 0 || y != 0 {
			t.Errorf("[attr 0x%x] expected cursor at (0, 0); got (%d, %d)", attr, x, y)
		}

		if v, _ := sim.Last(crtDataPort); v != 0 {
			t.Errorf("[attr 0x%x] expected hardware cursor to be reset", attr)
		}
	}
}

func TestTextConsolePutString(t *testing.T) {
	cons, _ := newTestConsole(80, 25)
	cons.Clear(DefaultAttr)

	attr := MakeAttr(White, Red)
	s := "KGB kernel"
	cons.PutString(s, attr)

	if x, y := cons.CursorPos(); x != uint32(len(s)) || y != 0 {
		t.Fatalf("expected cursor at (%d, 0); got (%d, %d)", len(s), x, y)
	}

	for i := 0; i < len(s); i++ {
		if exp, got := MakeCell(s[i], attr), cons.fb[i]; got != exp {
			t.Errorf("expected cell %d to be 0x%x; got 0x%x", i, exp, got)
		}
	}

	if exp, got := MakeCell(' ', DefaultAttr), cons.fb[len(s)]; got != exp {
		t.Errorf("expected cell after the string to be untouched; got 0x%x", got)
	}
}

func TestTextConsolePutStringStopsAtNul(t *testing.T) {
	cons, _ := newTestConsole(80, 25)
	cons.Clear(DefaultAttr)

	cons.PutString("abc\x00def", DefaultAttr)

	if x, _ := cons.CursorPos(); x != 3 {
		t.Fatalf("expected output to stop at the NUL byte; cursor x is %d", x)
	}
}

func TestTextConsoleNewLine(t *testing.T) {
	cons, _ := newTestConsole(80, 25)
	cons.Clear(DefaultAttr)

	cons.PutString("foo\nbar", DefaultAttr)

	if x, y := cons.CursorPos(); x != 3 || y != 1 {
		t.Fatalf("expected cursor at (3, 1); got (%d, %d)", x, y)
	}

	if got := rowString(cons, 0)[:4]; got != "foo " {
		t.Errorf("expected newline not to be written to the framebuffer; row 0 starts with %q", got)
	}

	if got := rowString(cons, 1)[:3]; got != "bar" {
		t.Errorf("expected row 1 to start with %q; got %q", "bar", got)
	}
}

func TestTextConsoleWrap(t *testing.T) {
	cons, _ := newTestConsole(80, 25)
	cons.Clear(DefaultAttr)

	line := bytes.Repeat([]byte{'w'}, 80)
	cons.PutString(string(line), DefaultAttr)

	if x, y := cons.CursorPos(); x != 0 || y != 1 {
		t.Fatalf("expected cursor to wrap to (0, 1); got (%d, %d)", x, y)
	}

	if got := rowString(cons, 0); got != string(line) {
		t.Errorf("expected row 0 to be filled; got %q", got)
	}
}

func TestTextConsoleScrollOnOverflow(t *testing.T) {
	t.Run("newline on last row", func(t *testing.T) {
		cons, _ := newTestConsole(10, 3)
		cons.Clear(0x1f)

		cons.PutString("row0\nrow1\nrow2\n", 0x1f)

		if x, y := cons.CursorPos(); x != 0 || y != 2 {
			t.Fatalf("expected cursor to be clamped to (0, 2); got (%d, %d)", x, y)
		}

		if got := rowString(cons, 0); got != "row1      " {
			t.Errorf("expected former row 1 to be on row 0; got %q", got)
		}

		if got := rowString(cons, 1); got != "row2      " {
			t.Errorf("expected former row 2 to be on row 1; got %q", got)
		}

		blank := MakeCell(' ', DefaultAttr)
		for x := uint32(0); x < 10; x++ {
			if got := cons.fb[2*10+x]; got != blank {
				t.Fatalf("expected bottom row to be blanked with the default attribute; cell %d is 0x%x", x, got)
			}
		}
	})

	t.Run("wrap on last cell", func(t *testing.T) {
		cons, _ := newTestConsole(4, 2)
		cons.Clear(DefaultAttr)

		cons.PutString("abcdefgh", DefaultAttr)

		if x, y := cons.CursorPos(); x != 0 || y != 1 {
			t.Fatalf("expected cursor at (0, 1); got (%d, %d)", x, y)
		}

		if got := rowString(cons, 0); got != "efgh" {
			t.Errorf("expected row 0 to hold %q; got %q", "efgh", got)
		}

		if got := rowString(cons, 1); got != "    " {
			t.Errorf("expected row 1 to be blank; got %q", got)
		}
	})
}

func TestTextConsoleScroll(t *testing.T) {
	cons, _ := newTestConsole(80, 25)

	var x, y uint32
	for y = 0; y < 25; y++ {
		for x = 0; x < 80; x++ {
			cons.fb[y*80+x] = Cell(y<<8 | x)
		}
	}
	cons.cursorX, cons.cursorY = 5, 7

	cons.Scroll()

	for y = 0; y < 24; y++ {
		for x = 0; x < 80; x++ {
			if exp, got := Cell((y+1)<<8|x), cons.fb[y*80+x]; got != exp {
				t.Fatalf("expected value at (%d, %d) to be 0x%x; got 0x%x", x, y, exp, got)
			}
		}
	}

	for x = 0; x < 80; x++ {
		if exp, got := MakeCell(' ', DefaultAttr), cons.fb[24*80+x]; got != exp {
			t.Fatalf("expected bottom row cell %d to be blank; got 0x%x", x, got)
		}
	}

	if x, y := cons.CursorPos(); x != 5 || y != 7 {
		t.Fatalf("expected Scroll not to move the cursor; got (%d, %d)", x, y)
	}
}

func TestTextConsoleSetCursorPos(t *testing.T) {
	cons, sim := newTestConsole(80, 25)

	if err := cons.SetCursorPos(79, 24); err != nil {
		t.Fatal(err)
	}

	if x, y := cons.CursorPos(); x != 79 || y != 24 {
		t.Fatalf("expected cursor at (79, 24); got (%d, %d)", x, y)
	}

	specs := []struct {
		x, y uint32
	}{
		{80, 0},
		{0, 25},
		{100, 100},
	}

	for specIndex, spec := range specs {
		sim.Reset()

		if err := cons.SetCursorPos(spec.x, spec.y); err != ErrCursorOutOfBounds {
			t.Errorf("[spec %d] expected ErrCursorOutOfBounds; got %v", specIndex, err)
		}

		if x, y := cons.CursorPos(); x != 79 || y != 24 {
			t.Errorf("[spec %d] expected cursor to stay at (79, 24); got (%d, %d)", specIndex, x, y)
		}

		if len(sim.Trace) != 0 {
			t.Errorf("[spec %d] expected no port access; got %+v", specIndex, sim.Trace)
		}
	}
}

func TestTextConsoleHardwareCursor(t *testing.T) {
	cons, sim := newTestConsole(80, 25)

	// offset 12*80+34 = 994 = 0x3e2
	if err := cons.SetCursorPos(34, 12); err != nil {
		t.Fatal(err)
	}

	expWrites := []struct {
		port uint16
		val  uint8
	}{
		{0x3d4, 0x0e},
		{0x3d5, 0x03},
		{0x3d4, 0x0f},
		{0x3d5, 0xe2},
	}

	writes := sim.Writes()
	if len(writes) != len(expWrites) {
		t.Fatalf("expected %d port writes; got %d", len(expWrites), len(writes))
	}

	for i, exp := range expWrites {
		if writes[i].Port != exp.port || writes[i].Value != uint32(exp.val) {
			t.Errorf("[port write %d] expected port: 0x%x, val: 0x%x; got port: 0x%x, val: 0x%x", i, exp.port, exp.val, writes[i].Port, writes[i].Value)
		}
	}

	t.Run("one update per character", func(t *testing.T) {
		sim.Reset()
		cons.PutString("hello", DefaultAttr)

		if exp, got := 5*4, len(sim.Writes()); got != exp {
			t.Fatalf("expected %d port writes; got %d", exp, got)
		}
	})
}

func TestTextConsoleTextBuffer(t *testing.T) {
	cons, _ := newTestConsole(80, 25)
	cons.Clear(MakeAttr(Green, Black))
	cons.PutString("first line\nsecond line", MakeAttr(LightCyan, Blue))
	cons.SetCursorPos(70, 24)
	cons.PutString("bottom row", MakeAttr(Red, White))

	buf := make([]Cell, 80*25)
	if err := cons.TextBuffer(buf); err != nil {
		t.Fatal(err)
	}

	for i := range buf {
		if buf[i] != cons.fb[i] {
			t.Fatalf("expected snapshot cell %d to be 0x%x; got 0x%x", i, cons.fb[i], buf[i])
		}
	}

	// the snapshot must be a copy
	buf[0] = 0
	if cons.fb[0] == 0 {
		t.Fatal("expected TextBuffer to return a copy of the framebuffer")
	}

	t.Run("size mismatch", func(t *testing.T) {
		if err := cons.TextBuffer(make([]Cell, 80*24)); err != ErrBufferSize {
			t.Fatalf("expected ErrBufferSize; got %v", err)
		}
	})

	t.Run("no framebuffer", func(t *testing.T) {
		unmapped := NewTextConsole(80, 25, 0, portio.NewSim())
		if err := unmapped.TextBuffer(buf); err != ErrNoFramebuffer {
			t.Fatalf("expected ErrNoFramebuffer; got %v", err)
		}

		// must not panic
		unmapped.PutChar('x', DefaultAttr)
		unmapped.Clear(DefaultAttr)
		unmapped.Scroll()
	})
}

func TestTextConsoleWrite(t *testing.T) {
	defer kfmt.SetOutputSink(nil)

	cons, _ := newTestConsole(80, 25)
	cons.Clear(0)

	kfmt.SetOutputSink(cons)
	kfmt.Printf("port 0x%x\n", uint16(0x3d4))

	if got := rowString(cons, 0)[:10]; got != "port 0x3d4" {
		t.Fatalf("expected kfmt output on row 0; got %q", got)
	}

	if got := cons.fb[0].Attr(); got != DefaultAttr {
		t.Fatalf("expected Write to use the default attribute; got 0x%x", got)
	}

	if x, y := cons.CursorPos(); x != 0 || y != 1 {
		t.Fatalf("expected cursor at (0, 1); got (%d, %d)", x, y)
	}
}

func TestTextConsoleAttachFramebuffer(t *testing.T) {
	cons := NewTextConsole(8, 2, 0, portio.NewSim())

	if err := cons.AttachFramebuffer(make([]Cell, 15)); err != ErrBufferSize {
		t.Fatalf("expected ErrBufferSize; got %v", err)
	}

	fb := make([]Cell, 16)
	if err := cons.AttachFramebuffer(fb); err != nil {
		t.Fatal(err)
	}

	cons.PutChar('k', 0x0a)
	if exp := MakeCell('k', 0x0a); fb[0] != exp {
		t.Fatalf("expected attached framebuffer to receive output; got 0x%x", fb[0])
	}
}

func TestTextConsoleSetPaletteColor(t *testing.T) {
	cons, sim := newTestConsole(80, 25)

	t.Run("success", func(t *testing.T) {
		expWrites := []struct {
			port uint16
			val  uint8
		}{
			// Values are normalized to the 0-63 range
			{0x3c8, 1},
			{0x3c9, 63},
			{0x3c9, 31},
			{0x3c9, 0},
		}

		rgba := color.RGBA{R: 255, G: 127, B: 0}
		cons.SetPaletteColor(1, rgba)

		if got := cons.Palette()[1]; got != rgba {
			t.Errorf("expected color at index 1 to be:\n%v\ngot:\n%v", rgba, got)
		}

		writes := sim.Writes()
		if len(writes) != len(expWrites) {
			t.Fatalf("expected %d port writes; got %d", len(expWrites), len(writes))
		}

		for i, exp := range expWrites {
			if writes[i].Port != exp.port || writes[i].Value != uint32(exp.val) {
				t.Errorf("[port write %d] expected port: 0x%x, val: %d; got port: 0x%x, val: %d", i, exp.port, exp.val, writes[i].Port, writes[i].Value)
			}
		}
	})

	t.Run("color index out of range", func(t *testing.T) {
		sim.Reset()
		cons.SetPaletteColor(50, color.RGBA{R: 255})

		if len(sim.Trace) != 0 {
			t.Fatal("expected no port access")
		}
	})
}

func TestTextConsoleDriverInterface(t *testing.T) {
	defer func() {
		mapFramebufferFn = overlayFramebuffer
	}()

	var dev device.Driver = NewTextConsole(80, 25, 0xb8000, portio.NewSim())

	if dev.DriverName() == "" {
		t.Fatal("DriverName() returned an empty string")
	}

	if major, minor, patch := dev.DriverVersion(); major+minor+patch == 0 {
		t.Fatal("DriverVersion() returned an invalid version number")
	}

	t.Run("init success", func(t *testing.T) {
		fb := make([]Cell, 80*25)
		var gotAddr uintptr
		mapFramebufferFn = func(physAddr uintptr, cells int) []Cell {
			gotAddr = physAddr
			return fb[:cells]
		}

		var buf bytes.Buffer
		if err := dev.DriverInit(&buf); err != nil {
			t.Fatal(err)
		}

		if gotAddr != 0xb8000 {
			t.Errorf("expected framebuffer at 0xb8000 to be mapped; got 0x%x", gotAddr)
		}

		if exp, got := "mapped 80x25 framebuffer at 0xb8000\n", buf.String(); got != exp {
			t.Errorf("expected DriverInit to log %q; got %q", exp, got)
		}
	})

	t.Run("init fail", func(t *testing.T) {
		mapFramebufferFn = func(_ uintptr, _ int) []Cell {
			return nil
		}

		if err := dev.DriverInit(nil); err != ErrBufferSize {
			t.Fatalf("expected error: %v; got %v", ErrBufferSize, err)
		}
	})
}

func TestTextConsoleProbe(t *testing.T) {
	defer func() {
		busFn = func() portio.Bus { return portio.Hardware{} }
	}()
	busFn = func() portio.Bus { return portio.NewSim() }

	drv := probeForVgaTextConsole()
	cons, ok := drv.(*TextConsole)
	if !ok {
		t.Fatalf("expected probeForVgaTextConsole to return a *TextConsole; got %T", drv)
	}

	if w, h := cons.Dimensions(); w != 80 || h != 25 || cons.fbPhysAddr != 0xb8000 {
		t.Fatalf("expected an 80x25 console at 0xb8000; got %dx%d at 0x%x", w, h, cons.fbPhysAddr)
	}
}
