package kfmt

import "io"

// ringBufferSize holds one full 80x25 text screen. It must be a power of 2.
const ringBufferSize = 2048

// ringBuffer keeps the most recent ringBufferSize bytes written to it. Once
// full, new writes overwrite the oldest unread data.
type ringBuffer struct {
	buffer [ringBufferSize]byte
	head   int // next byte to read
	tail   int // next byte to write
}

func (rb *ringBuffer) Write(p []byte) (int, error) {
	const mask = ringBufferSize - 1

	for _, b := range p {
		rb.buffer[rb.tail] = b
		rb.tail = (rb.tail + 1) & mask
		if rb.tail == rb.head {
			rb.head = (rb.head + 1) & mask
		}
	}

	return len(p), nil
}

// Read copies buffered data into p. It returns io.EOF once the buffer has
// been drained.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.head == rb.tail {
		return 0, io.EOF
	}

	end := rb.tail
	if rb.head > rb.tail {
		end = ringBufferSize
	}

	n := copy(p, rb.buffer[rb.head:end])
	rb.head = (rb.head + n) & (ringBufferSize - 1)
	return n, nil
}
