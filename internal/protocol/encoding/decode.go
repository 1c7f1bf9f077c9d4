// Package encoding implements the byte-level codec for Oracle's TTC wire
// format: big-endian fixed-width integers, the length-prefixed UB2/UB4/UB8
// variable integer encoding, length-prefixed (and chunked) byte strings, and
// the NUMBER/DATE column formats.
package encoding

import (
	"fmt"
	"io"
)

// Decoder reads TTC-encoded values from an io.Reader. Like the rest of the
// protocol layer it keeps a sticky error: once a read fails, every
// subsequent method is a no-op that returns the zero value, so callers can
// chain a sequence of reads and check Error() once at the end.
type Decoder struct {
	rd  io.Reader
	err error

	b   [8]byte
	cnt int64
}

// NewDecoder wraps rd in a Decoder.
func NewDecoder(rd io.Reader) *Decoder {
	return &Decoder{rd: rd}
}

// Error returns the sticky error, if any.
func (d *Decoder) Error() error { return d.err }

// ResetError clears the sticky error so the Decoder can be reused.
func (d *Decoder) ResetError() { d.err = nil }

// Cnt returns the number of bytes read so far.
func (d *Decoder) Cnt() int64 { return d.cnt }

func (d *Decoder) readFull(p []byte) {
	if d.err != nil {
		return
	}
	n, err := io.ReadFull(d.rd, p)
	d.cnt += int64(n)
	if err != nil {
		d.err = err
	}
}

// Byte reads a single raw byte.
func (d *Decoder) Byte() byte {
	d.readFull(d.b[:1])
	return d.b[0]
}

// Bytes reads len(p) raw bytes into p.
func (d *Decoder) Bytes(p []byte) {
	d.readFull(p)
}

// Skip discards n bytes.
func (d *Decoder) Skip(n int) {
	if n <= 0 || d.err != nil {
		return
	}
	buf := make([]byte, n)
	d.readFull(buf)
}

// Uint16 reads a big-endian uint16.
func (d *Decoder) Uint16() uint16 {
	d.readFull(d.b[:2])
	return uint16(d.b[0])<<8 | uint16(d.b[1])
}

// Uint32 reads a big-endian uint32.
func (d *Decoder) Uint32() uint32 {
	d.readFull(d.b[:4])
	return uint32(d.b[0])<<24 | uint32(d.b[1])<<16 | uint32(d.b[2])<<8 | uint32(d.b[3])
}

// Uint64 reads a big-endian uint64.
func (d *Decoder) Uint64() uint64 {
	d.readFull(d.b[:8])
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(d.b[i])
	}
	return v
}

// UB1 reads Oracle's one-byte unsigned integer format (a plain byte).
func (d *Decoder) UB1() uint8 { return d.Byte() }

// UB2 reads Oracle's variable-length unsigned 16-bit format: a one-byte
// length (0, 1, or 2) followed by that many big-endian value bytes.
func (d *Decoder) UB2() uint16 {
	length := d.Byte()
	if d.err != nil || length == 0 {
		return 0
	}
	switch length {
	case 1:
		return uint16(d.Byte())
	case 2:
		b1 := uint16(d.Byte())
		b2 := uint16(d.Byte())
		return b1<<8 | b2
	default:
		d.err = fmt.Errorf("encoding: invalid UB2 length %d", length)
		return 0
	}
}

// UB4 reads Oracle's variable-length unsigned 32-bit format: a one-byte
// length followed by that many big-endian value bytes, capped at 4.
func (d *Decoder) UB4() uint32 {
	length := d.Byte()
	if d.err != nil || length == 0 {
		return 0
	}
	n := int(length)
	if n > 4 {
		n = 4
	}
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<8 | uint32(d.Byte())
	}
	for i := n; i < int(length); i++ {
		d.Byte()
	}
	return v
}

// SkipUB4 reads and discards a UB4-encoded value.
func (d *Decoder) SkipUB4() { d.UB4() }

// UB8 reads Oracle's variable-length unsigned 64-bit format.
func (d *Decoder) UB8() uint64 {
	length := d.Byte()
	if d.err != nil || length == 0 {
		return 0
	}
	var v uint64
	for i := 0; i < int(length); i++ {
		v = v<<8 | uint64(d.Byte())
	}
	return v
}

// VarBytes reads a length-prefixed byte string. A length byte of
// NullLengthIndicator (0) means NULL (returned as nil, ok=false). A length
// byte of LongLengthIndicator (0xFE) introduces Oracle's chunked long form:
// a sequence of UB4-length-prefixed chunks terminated by a zero-length
// chunk.
func (d *Decoder) VarBytes() (data []byte, ok bool) {
	length := d.Byte()
	if d.err != nil {
		return nil, false
	}
	switch length {
	case nullLengthIndicator:
		return nil, false
	case longLengthIndicator:
		var out []byte
		for {
			chunkLen := d.UB4()
			if d.err != nil || chunkLen == 0 {
				break
			}
			chunk := make([]byte, chunkLen)
			d.readFull(chunk)
			out = append(out, chunk...)
		}
		return out, true
	default:
		buf := make([]byte, length)
		d.readFull(buf)
		return buf, true
	}
}

// SkipChunked skips a length-prefixed byte string without allocating it,
// following the same NULL/short/chunked rules as VarBytes.
func (d *Decoder) SkipChunked() {
	length := d.Byte()
	if d.err != nil {
		return
	}
	if length != longLengthIndicator {
		d.Skip(int(length))
		return
	}
	for {
		chunkLen := d.UB4()
		if d.err != nil || chunkLen == 0 {
			return
		}
		d.Skip(int(chunkLen))
	}
}

// VarString reads a length-prefixed byte string and lossily decodes it as
// UTF-8 text (matching Oracle's relaxed handling of binary payloads in
// parameter/auth key-value pairs).
func (d *Decoder) VarString() (string, bool) {
	b, ok := d.VarBytes()
	if !ok {
		return "", false
	}
	return string(b), true
}

const (
	nullLengthIndicator = 0
	longLengthIndicator = 0xFE
)
