package portio

// Dir is the direction of a port access.
type Dir uint8

// The supported access directions.
const (
	Out Dir = iota
	In
)

// Access records a single port access performed against a Sim.
type Access struct {
	Dir   Dir
	Port  uint16
	Size  uint8 // 1, 2 or 4 bytes
	Value uint32
}

// ReadFn supplies the value returned by a simulated port read.
type ReadFn func(port uint16, size uint8) uint32

// Sim is a Bus backed by a simulated port space. Every access is appended to
// Trace. Writes update a per-port latch that subsequent reads return unless a
// handler was registered for the port with HandleRead.
type Sim struct {
	Trace []Access

	latch    map[uint16]uint32
	handlers map[uint16]ReadFn
}

// NewSim returns an empty simulated port space.
func NewSim() *Sim {
	return &Sim{
		latch:    make(map[uint16]uint32),
		handlers: make(map[uint16]ReadFn),
	}
}

// HandleRead installs fn as the source of values read from port.
func (s *Sim) HandleRead(port uint16, fn ReadFn) {
	s.handlers[port] = fn
}

// Reset discards the recorded trace. Port latches are kept.
func (s *Sim) Reset() {
	s.Trace = s.Trace[:0]
}

// Writes returns the recorded output accesses in issue order.
func (s *Sim) Writes() []Access {
	var out []Access
	for _, a := range s.Trace {
		if a.Dir == Out {
			out = append(out, a)
		}
	}
	return out
}

// Last returns the most recent value written to port.
func (s *Sim) Last(port uint16) (uint32, bool) {
	v, ok := s.latch[port]
	return v, ok
}

func (s *Sim) write(port uint16, size uint8, val uint32) {
	s.Trace = append(s.Trace, Access{Dir: Out, Port: port, Size: size, Value: val})
	s.latch[port] = val
}

func (s *Sim) read(port uint16, size uint8) uint32 {
	val := s.latch[port]
	if fn, ok := s.handlers[port]; ok {
		val = fn(port, size)
	}

	switch size {
	case 1:
		val &= 0xff
	case 2:
		val &= 0xffff
	}

	s.Trace = append(s.Trace, Access{Dir: In, Port: port, Size: size, Value: val})
	return val
}

func (s *Sim) PortWriteByte(port uint16, val uint8)   { s.write(port, 1, uint32(val)) }
func (s *Sim) PortWriteWord(port uint16, val uint16)  { s.write(port, 2, uint32(val)) }
func (s *Sim) PortWriteDword(port uint16, val uint32) { s.write(port, 4, val) }
func (s *Sim) PortReadByte(port uint16) uint8         { return uint8(s.read(port, 1)) }
func (s *Sim) PortReadWord(port uint16) uint16        { return uint16(s.read(port, 2)) }
func (s *Sim) PortReadDword(port uint16) uint32       { return s.read(port, 4) }
