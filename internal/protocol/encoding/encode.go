package encoding

import "io"

// Encoder writes TTC-encoded values to an io.Writer, mirroring Decoder's
// sticky-error convention so a sequence of writes can be chained and
// checked once at the end.
type Encoder struct {
	wr  io.Writer
	err error
	b   [8]byte
}

// NewEncoder wraps wr in an Encoder.
func NewEncoder(wr io.Writer) *Encoder {
	return &Encoder{wr: wr}
}

// Error returns the sticky error, if any.
func (e *Encoder) Error() error { return e.err }

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.wr.Write(p)
}

// Byte writes a single raw byte.
func (e *Encoder) Byte(b byte) {
	e.b[0] = b
	e.write(e.b[:1])
}

// Bytes writes raw bytes.
func (e *Encoder) Bytes(p []byte) {
	e.write(p)
}

// Zeros writes n zero bytes.
func (e *Encoder) Zeros(n int) {
	if n <= 0 {
		return
	}
	e.write(make([]byte, n))
}

// Uint16 writes a big-endian uint16.
func (e *Encoder) Uint16(v uint16) {
	e.b[0] = byte(v >> 8)
	e.b[1] = byte(v)
	e.write(e.b[:2])
}

// Uint32 writes a big-endian uint32.
func (e *Encoder) Uint32(v uint32) {
	e.b[0] = byte(v >> 24)
	e.b[1] = byte(v >> 16)
	e.b[2] = byte(v >> 8)
	e.b[3] = byte(v)
	e.write(e.b[:4])
}

// Uint64 writes a big-endian uint64.
func (e *Encoder) Uint64(v uint64) {
	for i := 0; i < 8; i++ {
		e.b[i] = byte(v >> uint(56-8*i))
	}
	e.write(e.b[:8])
}

// UB1 writes a plain byte.
func (e *Encoder) UB1(v uint8) { e.Byte(v) }

// UB2 writes Oracle's variable-length unsigned 16-bit format.
func (e *Encoder) UB2(v uint16) {
	switch {
	case v == 0:
		e.Byte(0)
	case v <= 0xff:
		e.Byte(1)
		e.Byte(byte(v))
	default:
		e.Byte(2)
		e.Byte(byte(v >> 8))
		e.Byte(byte(v))
	}
}

// UB4 writes Oracle's variable-length unsigned 32-bit format: a one-byte
// length followed by the minimal big-endian encoding of v.
func (e *Encoder) UB4(v uint32) {
	if v == 0 {
		e.Byte(0)
		return
	}
	var buf [4]byte
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
	start := 0
	for start < 3 && buf[start] == 0 {
		start++
	}
	e.Byte(byte(4 - start))
	e.write(buf[start:])
}

// UB8 writes Oracle's variable-length unsigned 64-bit format.
func (e *Encoder) UB8(v uint64) {
	if v == 0 {
		e.Byte(0)
		return
	}
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> uint(56-8*i))
	}
	start := 0
	for start < 7 && buf[start] == 0 {
		start++
	}
	e.Byte(byte(8 - start))
	e.write(buf[start:])
}

// VarBytes writes a length-prefixed byte string, switching to Oracle's
// chunked long form (64KiB chunks) once the payload no longer fits in a
// single length byte.
func (e *Encoder) VarBytes(p []byte) {
	switch {
	case len(p) == 0:
		e.Byte(0)
	case len(p) < longLengthIndicator:
		e.Byte(byte(len(p)))
		e.write(p)
	default:
		e.Byte(longLengthIndicator)
		const maxChunk = 65536
		for off := 0; off < len(p); {
			n := len(p) - off
			if n > maxChunk {
				n = maxChunk
			}
			e.UB4(uint32(n))
			e.write(p[off : off+n])
			off += n
		}
		e.UB4(0)
	}
}

// VarString writes a length-prefixed UTF-8 string.
func (e *Encoder) VarString(s string) {
	e.VarBytes([]byte(s))
}
