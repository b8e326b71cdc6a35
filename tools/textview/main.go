package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/term"

	"kgb/device/portio"
	"kgb/device/video/console"
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[textview] error: %s\n", err.Error())
	os.Exit(1)
}

// config holds the tool options.
type config struct {
	columns, rows uint32
	attr          uint8
	input         string
	pngOut        string
	dumpOut       string
	loadDump      string
	dmaSpec       string
	dmaMode       string
	interactive   bool
}

func parseFlags(args []string) (*config, error) {
	var (
		cfg  config
		fs   = flag.NewFlagSet("textview", flag.ContinueOnError)
		cols = fs.Uint("cols", 80, "console width in characters")
		rows = fs.Uint("rows", 25, "console height in characters")
		attr = fs.String("attr", "0x07", "attribute byte used for the text (bg<<4 | fg)")
	)

	fs.StringVar(&cfg.input, "in", "-", "a file with the text to render or - to read from STDIN")
	fs.StringVar(&cfg.pngOut, "png", "", "write a screenshot of the console to this PNG file")
	fs.StringVar(&cfg.dumpOut, "dump", "", "write the raw text buffer (2 bytes per cell) to this file")
	fs.StringVar(&cfg.loadDump, "load", "", "restore the console from a raw text buffer dump instead of rendering text")
	fs.StringVar(&cfg.dmaSpec, "dma", "", "print the port trace for priming the floppy DMA channel (address:count)")
	fs.StringVar(&cfg.dmaMode, "dma-mode", "read", "floppy DMA transfer mode (read or write)")
	fs.BoolVar(&cfg.interactive, "tui", false, "display the console in the terminal until a key is pressed")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), "textview: run text through the VGA text console driver on a simulated framebuffer\n\n")
		fmt.Fprint(fs.Output(), "Usage: textview [options]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *cols == 0 || *rows == 0 || *cols > 255 || *rows > 255 {
		return nil, errors.New("console dimensions must be in the 1-255 range")
	}
	cfg.columns, cfg.rows = uint32(*cols), uint32(*rows)

	v, err := strconv.ParseUint(*attr, 0, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid attribute %q: %w", *attr, err)
	}
	cfg.attr = uint8(v)

	if cfg.dmaMode != "read" && cfg.dmaMode != "write" {
		return nil, fmt.Errorf("invalid DMA mode %q; supported values are: read or write", cfg.dmaMode)
	}

	return &cfg, nil
}

// newSimConsole returns a console backed by host memory and a simulated port
// space.
func newSimConsole(cols, rows uint32) (*console.TextConsole, *portio.Sim, error) {
	sim := portio.NewSim()
	cons := console.NewTextConsole(cols, rows, 0xb8000, sim)
	if err := cons.AttachFramebuffer(make([]console.Cell, cols*rows)); err != nil {
		return nil, nil, err
	}
	cons.Clear(console.DefaultAttr)
	return cons, sim, nil
}

func readInput(fs afero.Fs, path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return afero.ReadFile(fs, path)
}

func runTool(fs afero.Fs, cfg *config, stdin io.Reader, stdout io.Writer) error {
	if cfg.dmaSpec != "" {
		return printDMATrace(stdout, cfg.dmaSpec, cfg.dmaMode)
	}

	cons, _, err := newSimConsole(cfg.columns, cfg.rows)
	if err != nil {
		return err
	}

	if cfg.loadDump != "" {
		if err = loadDump(fs, cfg.loadDump, cons); err != nil {
			return err
		}
	} else {
		text, err := readInput(fs, cfg.input, stdin)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		cons.PutString(string(text), cfg.attr)
	}

	wrote := false
	if cfg.dumpOut != "" {
		if err = writeDump(fs, cfg.dumpOut, cons); err != nil {
			return err
		}
		wrote = true
	}

	if cfg.pngOut != "" {
		if err = writePNG(fs, cfg.pngOut, cons); err != nil {
			return err
		}
		wrote = true
	}

	switch {
	case cfg.interactive:
		return showInteractive(cons)
	case !wrote:
		return writePlain(stdout, cons)
	}

	return nil
}

// writePlain prints the console contents with trailing blanks trimmed.
func writePlain(w io.Writer, cons *console.TextConsole) error {
	cols, rows := cons.Dimensions()
	buf := make([]console.Cell, cols*rows)
	if err := cons.TextBuffer(buf); err != nil {
		return err
	}

	line := make([]rune, cols)
	for y := uint32(0); y < rows; y++ {
		for x := uint32(0); x < cols; x++ {
			line[x] = toUnicode(buf[y*cols+x].Char())
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(string(line), " ")); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		exit(err)
	}

	if cfg.interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		exit(errors.New("-tui requires STDOUT to be a terminal"))
	}

	if err = runTool(afero.NewOsFs(), cfg, os.Stdin, os.Stdout); err != nil {
		exit(err)
	}
}
