package kfmt

import (
	"io"
	"unsafe"
)

// numBufSize is large enough to hold a 64-bit value in base 8 plus padding.
const numBufSize = 32

var (
	errMissingArg   = []byte("%!(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numBuf [numBufSize]byte
	oneCh  [1]byte

	// earlyBuffer collects output until a sink is installed.
	earlyBuffer ringBuffer

	// outputSink receives the output of Printf. While nil, output is
	// captured by earlyBuffer.
	outputSink io.Writer
)

// SetOutputSink redirects Printf output to w. Any output captured before a
// sink was available is replayed into w.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyBuffer)
	}
}

// GetOutputSink returns the current target for Printf output. Before a sink
// is installed it returns the early ring buffer.
func GetOutputSink() io.Writer {
	if outputSink == nil {
		return &earlyBuffer
	}
	return outputSink
}

// Printf formats its arguments according to format and writes the result to
// the active output sink. It is safe to call before the Go allocator is
// available as it never allocates.
//
// Supported verbs:
//
//	%s  string or []byte
//	%c  single byte or rune below 0x80
//	%d  base 10 integer
//	%o  base 8 integer
//	%x  base 16 integer, lower-case
//	%t  bool
//	%%  literal percent sign
//
// An optional decimal width may precede the verb. Strings and base-10
// integers are left-padded with spaces; base-8 and base-16 integers with
// zeroes.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes its output to w. A nil w sends the
// output to the early ring buffer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		width    int
	)

	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			writeByte(w, format[i])
			continue
		}

		width = 0
		for i++; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		if i == len(format) {
			write(w, errNoVerb)
			break
		}

		verb := format[i]
		if verb == '%' {
			writeByte(w, '%')
			continue
		}

		if argIndex >= len(args) {
			write(w, errMissingArg)
			continue
		}

		arg := args[argIndex]
		argIndex++

		switch verb {
		case 's':
			fmtString(w, arg, width)
		case 'c':
			fmtChar(w, arg)
		case 'd':
			fmtInt(w, arg, 10, width)
		case 'o':
			fmtInt(w, arg, 8, width)
		case 'x':
			fmtInt(w, arg, 16, width)
		case 't':
			fmtBool(w, arg)
		default:
			write(w, errNoVerb)
		}
	}

	for ; argIndex < len(args); argIndex++ {
		write(w, errExtraArg)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	b, ok := v.(bool)
	switch {
	case !ok:
		write(w, errWrongArgType)
	case b:
		write(w, trueValue)
	default:
		write(w, falseValue)
	}
}

func fmtChar(w io.Writer, v interface{}) {
	switch ch := v.(type) {
	case byte:
		writeByte(w, ch)
	case rune:
		if ch < 0 || ch > 0x7f {
			writeByte(w, '?')
			return
		}
		writeByte(w, byte(ch))
	default:
		write(w, errWrongArgType)
	}
}

func fmtString(w io.Writer, v interface{}, width int) {
	switch s := v.(type) {
	case string:
		pad(w, ' ', width-len(s))
		for i := 0; i < len(s); i++ {
			writeByte(w, s[i])
		}
	case []byte:
		pad(w, ' ', width-len(s))
		write(w, s)
	default:
		write(w, errWrongArgType)
	}
}

func pad(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		writeByte(w, ch)
	}
}

// fmtInt renders v in the requested base. All built-in integer types are
// supported.
func fmtInt(w io.Writer, v interface{}, base uint64, width int) {
	var (
		uval uint64
		neg  bool
	)

	switch n := v.(type) {
	case uint8:
		uval = uint64(n)
	case uint16:
		uval = uint64(n)
	case uint32:
		uval = uint64(n)
	case uint64:
		uval = n
	case uint:
		uval = uint64(n)
	case uintptr:
		uval = uint64(n)
	case int8:
		neg, uval = splitSign(int64(n))
	case int16:
		neg, uval = splitSign(int64(n))
	case int32:
		neg, uval = splitSign(int64(n))
	case int64:
		neg, uval = splitSign(n)
	case int:
		neg, uval = splitSign(int64(n))
	default:
		write(w, errWrongArgType)
		return
	}

	if width > numBufSize-1 {
		width = numBufSize - 1
	}

	padCh := byte('0')
	if base == 10 {
		padCh = ' '
	}

	// Digits are emitted right to left.
	pos := numBufSize
	for {
		digit := uval % base
		pos--
		if digit < 10 {
			numBuf[pos] = '0' + byte(digit)
		} else {
			numBuf[pos] = 'a' + byte(digit-10)
		}

		if uval /= base; uval == 0 {
			break
		}
	}

	if neg && padCh == ' ' {
		pos--
		numBuf[pos] = '-'
	}

	for numBufSize-pos < width && pos > 1 {
		pos--
		numBuf[pos] = padCh
	}

	if neg && padCh != ' ' {
		pos--
		numBuf[pos] = '-'
	}

	write(w, numBuf[pos:])
}

func splitSign(v int64) (bool, uint64) {
	if v < 0 {
		return true, uint64(-v)
	}
	return false, uint64(v)
}

func writeByte(w io.Writer, b byte) {
	oneCh[0] = b
	write(w, oneCh[:])
}

// write hides p from escape analysis. Without it the compiler assumes p
// escapes through the io.Writer interface call and inserts heap
// allocations that crash the kernel before the allocator is set up.
func write(w io.Writer, p []byte) {
	realWrite(w, noEscape(unsafe.Pointer(&p)))
}

func realWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w == nil {
		earlyBuffer.Write(p)
		return
	}
	w.Write(p)
}

// noEscape hides a pointer from escape analysis (see runtime/stubs.go).
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
