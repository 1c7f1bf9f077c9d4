package protocol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Packet is a single TNS packet: a type/flags header plus an opaque
// payload. The wire length prefix is 2 bytes for protocol versions below
// VersionMinLargeSDU and 4 bytes at or above it; PacketReader/PacketWriter
// track that switch so callers only ever see the payload.
type Packet struct {
	Type    byte
	Flags   byte
	Payload []byte
}

// HasEndOfResponse reports whether this is a DATA packet whose first two
// payload bytes carry the END_OF_RESPONSE or EOF data-flag bit.
func (p Packet) HasEndOfResponse() bool {
	if p.Type != PacketTypeData || len(p.Payload) < 2 {
		return false
	}
	flags := binary.BigEndian.Uint16(p.Payload[:2])
	return flags&DataFlagsEndOfResponse != 0 || flags&DataFlagsEOF != 0
}

// PacketReader reads framed TNS packets off a stream, reassembling packets
// that arrive split across multiple TCP reads.
type PacketReader struct {
	r           *bufio.Reader
	useLargeSDU bool
}

// NewPacketReader wraps r in a PacketReader.
func NewPacketReader(r io.Reader) *PacketReader {
	return &PacketReader{r: bufio.NewReaderSize(r, 4096)}
}

// SetLargeSDU switches the reader between the 2-byte and 4-byte packet
// length prefix, following the protocol version negotiated in ACCEPT.
func (pr *PacketReader) SetLargeSDU(v bool) { pr.useLargeSDU = v }

// ReadPacket reads and returns the next packet.
func (pr *PacketReader) ReadPacket() (Packet, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(pr.r, header[:]); err != nil {
		return Packet{}, fmt.Errorf("protocol: read packet header: %w", err)
	}

	var totalLen int
	if pr.useLargeSDU {
		totalLen = int(binary.BigEndian.Uint32(header[0:4]))
	} else {
		totalLen = int(binary.BigEndian.Uint16(header[0:2]))
	}
	if totalLen < HeaderSize {
		return Packet{}, fmt.Errorf("protocol: invalid packet length %d", totalLen)
	}

	payload := make([]byte, totalLen-HeaderSize)
	if len(payload) > 0 {
		if _, err := io.ReadFull(pr.r, payload); err != nil {
			return Packet{}, fmt.Errorf("protocol: read packet payload: %w", err)
		}
	}

	logPacket(false, header[4], totalLen)

	return Packet{
		Type:    header[4],
		Flags:   header[5],
		Payload: payload,
	}, nil
}

// PacketWriter frames and writes TNS packets to a stream.
type PacketWriter struct {
	w           io.Writer
	useLargeSDU bool
}

// NewPacketWriter wraps w in a PacketWriter.
func NewPacketWriter(w io.Writer) *PacketWriter {
	return &PacketWriter{w: w}
}

// SetLargeSDU switches the writer between the 2-byte and 4-byte packet
// length prefix.
func (pw *PacketWriter) SetLargeSDU(v bool) { pw.useLargeSDU = v }

// WritePacket serializes and writes p.
func (pw *PacketWriter) WritePacket(p Packet) error {
	totalLen := HeaderSize + len(p.Payload)
	buf := make([]byte, 0, totalLen)

	if pw.useLargeSDU {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(totalLen))
		buf = append(buf, lenBuf[:]...)
	} else {
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(totalLen))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, 0, 0) // unused checksum
	}

	buf = append(buf, p.Type, p.Flags, 0, 0) // flags + unused header checksum
	buf = append(buf, p.Payload...)

	if _, err := pw.w.Write(buf); err != nil {
		return fmt.Errorf("protocol: write packet: %w", err)
	}
	logPacket(true, p.Type, totalLen)
	return nil
}

// WriteData is a convenience wrapper that frames data as a DATA packet with
// the given 2-byte data-flags prefix.
func (pw *PacketWriter) WriteData(data []byte, dataFlags uint16) error {
	payload := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(payload[:2], dataFlags)
	copy(payload[2:], data)
	return pw.WritePacket(Packet{Type: PacketTypeData, Payload: payload})
}
