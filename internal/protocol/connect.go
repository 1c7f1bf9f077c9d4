package protocol

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/orathin/orathin/internal/protocol/encoding"
)

// ConnectParams describes the address and service this client dials, and
// is the source of the TNS connect descriptor sent in the CONNECT packet.
type ConnectParams struct {
	Host        string
	Port        uint16
	ServiceName string
	SDU         uint32
}

// NewConnectParams returns connect parameters with the default SDU.
func NewConnectParams(host string, port uint16, serviceName string) ConnectParams {
	return ConnectParams{Host: host, Port: port, ServiceName: serviceName, SDU: SDUDefault}
}

// buildConnectString renders the TNS connect descriptor, including a
// randomly generated CONNECTION_ID the way python-oracledb does.
func (p ConnectParams) buildConnectString() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	osUser := os.Getenv("USER")
	if osUser == "" {
		osUser = os.Getenv("USERNAME")
	}

	var cidBytes [16]byte
	_, _ = rand.Read(cidBytes[:])
	connectionID := base64.StdEncoding.EncodeToString(cidBytes[:])

	return fmt.Sprintf(
		"(DESCRIPTION=(ADDRESS=(PROTOCOL=tcp)(HOST=%s)(PORT=%d))(CONNECT_DATA=(SERVICE_NAME=%s)(CID=(PROGRAM=orathin)(HOST=%s)(USER=%s))(CONNECTION_ID=%s)))",
		p.Host, p.Port, p.ServiceName, hostname, osUser, connectionID,
	)
}

// Connect sends the CONNECT packet and processes the server's response,
// following RESEND retries and handling ACCEPT/REFUSE, until the session's
// capabilities reflect the negotiated protocol version and SDU.
func Connect(sess *Session, params ConnectParams) error {
	connectString := params.buildConnectString()

	for {
		if err := sess.WritePacket(Packet{Type: PacketTypeConnect, Payload: []byte(connectString)}); err != nil {
			return fmt.Errorf("protocol: send CONNECT: %w", err)
		}

		resp, err := sess.ReadRawPacket()
		if err != nil {
			return fmt.Errorf("protocol: read CONNECT response: %w", err)
		}

		switch resp.Type {
		case PacketTypeAccept:
			return handleAccept(resp, sess)
		case PacketTypeRefuse:
			return handleRefuse(resp, params)
		case PacketTypeRedirect:
			return fmt.Errorf("protocol: CONNECT redirected, not supported")
		case PacketTypeResend:
			continue
		default:
			return fmt.Errorf("protocol: unexpected packet type %d in response to CONNECT", resp.Type)
		}
	}
}

func handleAccept(p Packet, sess *Session) error {
	d := encoding.NewDecoder(bytes.NewReader(p.Payload))

	protocolVersion := d.Uint16()
	if protocolVersion < VersionMinAccepted {
		return fmt.Errorf("protocol: server protocol version %d below minimum %d", protocolVersion, VersionMinAccepted)
	}
	d.Uint16() // protocol options, unused
	d.Skip(10)

	nsiFlags1 := d.Byte()
	if nsiFlags1&NSINARequired != 0 {
		return fmt.Errorf("protocol: server requires native network encryption, not supported")
	}
	d.Skip(9)

	sdu := d.Uint32()

	var flags2 uint32
	if protocolVersion >= VersionMinOOBCheck {
		d.Skip(5)
		flags2 = d.Uint32()
	}
	if err := d.Error(); err != nil {
		return fmt.Errorf("protocol: parse ACCEPT: %w", err)
	}

	sess.Caps.SDU = sdu
	sess.Caps.AdjustForProtocol(protocolVersion, flags2)
	sess.SetLargeSDU(protocolVersion >= VersionMinLargeSDU)

	return nil
}

func handleRefuse(p Packet, params ConnectParams) error {
	message := string(p.Payload)

	if bytes.Contains(p.Payload, []byte("ERR=12514")) {
		return &OracleError{Code: ErrInvalidServiceName, Message: fmt.Sprintf("TNS:listener does not currently know of service requested (%s)", params.ServiceName)}
	}
	if bytes.Contains(p.Payload, []byte("ERR=12505")) {
		return &OracleError{Code: ErrInvalidSID, Message: fmt.Sprintf("TNS:listener does not currently know of SID given in connect descriptor (%s)", params.ServiceName)}
	}
	return fmt.Errorf("protocol: connection refused: %s", message)
}

// SendResetMarker sends a RESET marker, mimicking the OOB-break-plus-RESET
// negotiation python-oracledb performs after ACCEPT; this client never
// sends the preceding OOB break since Go offers no portable MSG_OOB send.
func SendResetMarker(sess *Session) error {
	return sess.WritePacket(Packet{Type: PacketTypeMarker, Payload: []byte{0x01, 0x00, byte(MarkerTypeReset)}})
}

// ReadDataPacket reads the next DATA packet, absorbing CONTROL packets
// (used during the pre-handshake phase, before Session.ReadDataMessage's
// capability-aware loop is usable, and by FastAuth response parsing).
func ReadDataPacket(sess *Session) (Packet, error) {
	for {
		p, err := sess.ReadRawPacket()
		if err != nil {
			return Packet{}, err
		}
		switch p.Type {
		case PacketTypeData:
			return p, nil
		case PacketTypeControl:
			if len(p.Payload) >= 2 {
				controlType := uint16(p.Payload[0])<<8 | uint16(p.Payload[1])
				if controlType == 9 { // RESET_OOB
					sess.Caps.SupportsOOB = false
				}
			}
			continue
		default:
			return Packet{}, fmt.Errorf("protocol: unexpected packet type %d, expected DATA", p.Type)
		}
	}
}

// ParseServerBanner reads the PROTOCOL response's payload shared by both
// the FastAuth and plain exchange_data_types paths: server version byte,
// NUL-terminated banner, charset, capability flags, and FDO, ending with
// the server's compile/runtime capability vectors.
func ParseServerBanner(d *encoding.Decoder, caps *Capabilities) {
	d.Byte() // server version
	d.Byte() // zero

	for {
		b := d.Byte()
		if d.Error() != nil || b == 0 {
			break
		}
	}

	d.Uint16() // charset id (little-endian in the original, but unused here)
	d.Byte()   // server flags

	numElem := d.Uint16()
	if numElem > 0 {
		d.Skip(int(numElem) * 5)
	}

	fdoLength := d.Uint16()
	d.Skip(int(fdoLength))

	if serverCompileCaps, ok := d.VarBytes(); ok {
		caps.AdjustForServerCaps(serverCompileCaps, nil)
	}
	if serverRuntimeCaps, ok := d.VarBytes(); ok {
		caps.AdjustForServerCaps(nil, serverRuntimeCaps)
	}
}

// SkipDataTypesArray consumes the DATA_TYPES message's array of
// (data_type, conv_data_type[, 4 more bytes]) entries, terminated by a
// zero data_type.
func SkipDataTypesArray(d *encoding.Decoder) {
	for {
		dataType := d.Uint16()
		if d.Error() != nil || dataType == 0 {
			return
		}
		convDataType := d.Uint16()
		if convDataType != 0 {
			d.Skip(4)
		}
	}
}

// ExchangeDataTypes runs the non-FastAuth PROTOCOL/DATA_TYPES round trips,
// negotiating server capabilities before authentication begins.
func ExchangeDataTypes(sess *Session) error {
	// The PROTOCOL message body: a protocol-version marker byte, a zero
	// array terminator, our driver name (NUL-terminated), and the charset
	// we request, mirroring the array-of-one-version negotiation every
	// Oracle thin client sends.
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)
	e.Byte(6)
	e.Byte(0)
	e.Bytes([]byte("orathin\x00"))
	e.Uint16(CharsetUTF8)
	if err := sess.SendMessage(MsgTypeProtocol, buf.Bytes()); err != nil {
		return fmt.Errorf("protocol: send PROTOCOL message: %w", err)
	}

	resp, err := ReadDataPacket(sess)
	if err != nil {
		return fmt.Errorf("protocol: read PROTOCOL response: %w", err)
	}
	d := encoding.NewDecoder(bytes.NewReader(resp.Payload[2:]))
	if msgType := d.Byte(); msgType == MsgTypeProtocol {
		ParseServerBanner(d, sess.Caps)
	}

	var dtBuf bytes.Buffer
	de := encoding.NewEncoder(&dtBuf)
	de.Bytes(sess.Caps.CompileCaps)
	de.Bytes(sess.Caps.RuntimeCaps)
	if err := sess.SendMessage(MsgTypeDataTypes, dtBuf.Bytes()); err != nil {
		return fmt.Errorf("protocol: send DATA_TYPES message: %w", err)
	}

	resp, err = ReadDataPacket(sess)
	if err != nil {
		return fmt.Errorf("protocol: read DATA_TYPES response: %w", err)
	}
	d = encoding.NewDecoder(bytes.NewReader(resp.Payload[2:]))
	msgType := d.Byte()
	if msgType != MsgTypeDataTypes {
		return fmt.Errorf("protocol: expected DATA_TYPES response (type %d), got type %d", MsgTypeDataTypes, msgType)
	}
	SkipDataTypesArray(d)

	return d.Error()
}
