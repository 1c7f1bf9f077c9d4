package protocol

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/orathin/orathin/internal/protocol/encoding"
)

// Session wraps a dialed TCP connection with TNS packet framing and message
// dispatch. It is the single point every higher-level piece of the client
// (the handshake, authentication, and the TTC request/response cycle) sends
// and receives through; there is never more than one request in flight,
// matching Oracle's strict request/response cadence.
type Session struct {
	conn net.Conn
	r    *PacketReader
	w    *PacketWriter

	Caps *Capabilities

	// dead records the error that poisoned this session, once a socket
	// read or write has failed. Every subsequent call returns it instead
	// of touching the connection again.
	dead error
}

// NewSession wraps conn for TNS traffic.
func NewSession(conn net.Conn) *Session {
	return &Session{
		conn: conn,
		r:    NewPacketReader(conn),
		w:    NewPacketWriter(conn),
		Caps: NewCapabilities(),
	}
}

// Close closes the underlying connection.
func (s *Session) Close() error { return s.conn.Close() }

// SetDeadline applies ctx's deadline, if any, to the underlying socket for
// the next blocking read or write; with no deadline it clears any
// previously set one. Call this once per call before the round trip that
// call drives, mirroring how the teacher's dial.Dialer.DialContext scopes
// a context to a single blocking operation, generalized here from just
// the initial dial to every socket operation.
func (s *Session) SetDeadline(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return s.conn.SetDeadline(time.Time{})
	}
	return s.conn.SetDeadline(deadline)
}

// SetLargeSDU switches both directions between the 2-byte and 4-byte packet
// length prefix, following the protocol version negotiated in ACCEPT.
func (s *Session) SetLargeSDU(v bool) {
	s.r.SetLargeSDU(v)
	s.w.SetLargeSDU(v)
}

// poison marks the session dead after a socket-level failure, so every
// later call fails fast instead of writing to or reading from a
// connection left mid-frame. err is returned unchanged for the caller
// that triggered it.
func (s *Session) poison(err error) error {
	if err != nil {
		s.dead = fmt.Errorf("%w: %v", ErrConnectionDead, err)
	}
	return err
}

// WritePacket sends a raw packet.
func (s *Session) WritePacket(p Packet) error {
	if s.dead != nil {
		return s.dead
	}
	return s.poison(s.w.WritePacket(p))
}

// ReadRawPacket reads a single raw packet without any CONTROL-packet
// filtering; used during CONNECT/ACCEPT before a Session has a full
// Capabilities negotiated.
func (s *Session) ReadRawPacket() (Packet, error) {
	if s.dead != nil {
		return Packet{}, s.dead
	}
	p, err := s.r.ReadPacket()
	return p, s.poison(err)
}

// SendMessage writes body as a single DATA packet prefixed with msgType and
// Oracle's 2-byte data-flags field (always zero on send).
func (s *Session) SendMessage(msgType byte, body []byte) error {
	if s.dead != nil {
		return s.dead
	}
	payload := make([]byte, 0, 1+len(body))
	payload = append(payload, msgType)
	payload = append(payload, body...)
	return s.poison(s.w.WriteData(payload, 0))
}

// SendFunctionCall encodes and sends a TTC FUNCTION message: message
// type 3, the function code, and a sequence number (always 1 for this
// client, which never pipelines requests).
func (s *Session) SendFunctionCall(funcCode byte, encodeBody func(e *encoding.Encoder)) error {
	if s.dead != nil {
		return s.dead
	}
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)
	e.Byte(MsgTypeFunction)
	e.Byte(funcCode)
	e.Byte(1) // sequence number
	encodeBody(e)
	if err := e.Error(); err != nil {
		return fmt.Errorf("protocol: encode function call: %w", err)
	}
	return s.poison(s.w.WriteData(buf.Bytes(), 0))
}

// ReadDataMessage reads the next DATA packet's payload, transparently
// absorbing CONTROL packets along the way (the server uses them to signal
// things like a reset of out-of-band break support, which this client
// never enables in the first place).
func (s *Session) ReadDataMessage() ([]byte, error) {
	if s.dead != nil {
		return nil, s.dead
	}
	for {
		p, err := s.r.ReadPacket()
		if err != nil {
			return nil, s.poison(err)
		}
		switch p.Type {
		case PacketTypeControl:
			continue
		case PacketTypeData:
			if len(p.Payload) < 2 {
				return nil, s.poison(fmt.Errorf("protocol: DATA packet shorter than the data-flags prefix"))
			}
			return p.Payload[2:], nil
		case PacketTypeMarker:
			return p.Payload, errMarkerPacket
		default:
			return nil, s.poison(fmt.Errorf("protocol: unexpected packet type %d while reading data", p.Type))
		}
	}
}

// ReadMultiPacketResponse reads a response that may span several DATA
// packets, concatenating each one's payload (past its 2-byte data-flags
// prefix) until a packet's data flags mark it as the end of the response.
// A define-redescribe's response is the one case in this client's traffic
// that doesn't fit in a single packet by construction: describing a LOB
// column's define plus its redescribed rows routinely outgrows one SDU.
func (s *Session) ReadMultiPacketResponse() ([]byte, error) {
	if s.dead != nil {
		return nil, s.dead
	}
	var out []byte
	for {
		p, err := s.r.ReadPacket()
		if err != nil {
			return nil, s.poison(err)
		}
		switch p.Type {
		case PacketTypeControl:
			continue
		case PacketTypeData:
			if len(p.Payload) < 2 {
				return nil, s.poison(fmt.Errorf("protocol: DATA packet shorter than the data-flags prefix"))
			}
			out = append(out, p.Payload[2:]...)
			if p.HasEndOfResponse() {
				return out, nil
			}
		case PacketTypeMarker:
			return p.Payload, errMarkerPacket
		default:
			return nil, s.poison(fmt.Errorf("protocol: unexpected packet type %d while reading data", p.Type))
		}
	}
}

// errMarkerPacket is returned (wrapping the marker payload as the data
// result) when ReadDataMessage encounters a MARKER packet instead of DATA,
// so callers in the middle of the auth handshake can run their
// marker-recovery loop.
var errMarkerPacket = fmt.Errorf("protocol: received MARKER packet")

// IsMarkerPacket reports whether err was returned because a MARKER packet
// was read instead of a DATA packet.
func IsMarkerPacket(err error) bool { return err == errMarkerPacket }
