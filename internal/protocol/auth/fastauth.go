package auth

import (
	"bytes"
	"fmt"

	"github.com/orathin/orathin/internal/protocol"
	"github.com/orathin/orathin/internal/protocol/encoding"
)

// FastAuthenticate performs Oracle 23ai's FastAuth exchange: PROTOCOL,
// DATA_TYPES, and AUTH_PHASE_ONE combined into a single request and a
// single response round trip, forcing the 19.1-ext-1 field version the
// server requires of FastAuth clients.
func FastAuthenticate(sess *protocol.Session, creds Credentials, info ClientInfo) (*sessionData, error) {
	sess.Caps.CompileCaps[protocol.CCapFieldVersion] = protocol.CCapFieldVersion19_1Ext1
	sess.Caps.TTCFieldVersion = protocol.CCapFieldVersion19_1Ext1

	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)
	e.Byte(protocol.MsgTypeProtocol)
	e.Byte(6)
	e.Byte(0)
	e.Bytes([]byte("orathin\x00"))
	e.Uint16(protocol.CharsetUTF8)

	e.Byte(protocol.MsgTypeDataTypes)
	e.Bytes(sess.Caps.CompileCaps)
	e.Bytes(sess.Caps.RuntimeCaps)

	e.Byte(protocol.MsgTypeFunction)
	e.Byte(protocol.FuncAuthPhaseOne)
	e.Byte(1)
	e.Bytes(buildPhaseOneBody(creds.Username, info.Terminal, info.Program, info.Machine, info.PID, info.OSUser))

	if err := e.Error(); err != nil {
		return nil, fmt.Errorf("auth: encode FastAuth message: %w", err)
	}
	if err := sess.SendMessage(protocol.MsgTypeFastAuth, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("auth: send FastAuth message: %w", err)
	}

	resp, err := protocol.ReadDataPacket(sess)
	if err != nil {
		return nil, fmt.Errorf("auth: read FastAuth response: %w", err)
	}

	d := encoding.NewDecoder(bytes.NewReader(resp.Payload[2:]))
	session := &sessionData{params: map[string]string{}}

	for {
		msgType := d.Byte()
		if d.Error() != nil {
			break
		}
		switch msgType {
		case protocol.MsgTypeProtocol:
			protocol.ParseServerBanner(d, sess.Caps)
		case protocol.MsgTypeDataTypes:
			protocol.SkipDataTypesArray(d)
		case protocol.MsgTypeParameter:
			numParams := d.UB2()
			for i := uint16(0); i < numParams && d.Error() == nil; i++ {
				d.SkipUB4()
				key, _ := d.VarString()
				d.SkipUB4()
				value, _ := d.VarString()
				if key == "AUTH_VFR_DATA" {
					session.verifierType = d.UB4()
				} else {
					d.SkipUB4()
				}
				if isCleanParamKey(key) {
					session.params[key] = value
				}
			}
		case protocol.MsgTypeError:
			if err := parseFastAuthError(d); err != nil {
				return nil, err
			}
		case protocol.MsgTypeEndOfResponse:
			return session, nil
		default:
			return session, nil
		}
	}

	return session, nil
}

// parseFastAuthError skips the bulk of the ERROR message's OCI call-status
// structure (row counts, cursor id, rowid, batch error arrays) to reach
// the actual error number and message at the end. Its field walk is its
// own, not the protocol package's parseErrorInfo: several fields are
// skipped as fixed-width raw bytes, the rowid is read as a length-prefixed
// blob, and there is no batch-error-message block and no field-version
// gated trailer before the message.
func parseFastAuthError(d *encoding.Decoder) error {
	d.SkipUB4()                     // call status
	d.UB2()                         // end-to-end sequence
	d.SkipUB4()                     // row number
	d.UB2()                         // error number hint (not authoritative)
	d.UB2()                         // array elem error 1
	d.UB2()                         // array elem error 2
	d.UB2()                         // cursor id
	d.UB2()                         // error position
	d.Skip(4)                       // sql_type, fatal, flags x2
	if rowidLen := d.Byte(); rowidLen > 0 && rowidLen != 0xFF {
		d.Skip(int(rowidLen))
	}
	d.SkipUB4() // os error
	d.Skip(4)   // stmt_num, call_num, padding
	d.SkipUB4() // success iters
	d.SkipChunked()

	if batchErrorCount := d.UB2(); batchErrorCount > 0 {
		firstByte := d.Byte()
		for i := uint16(0); i < batchErrorCount; i++ {
			if firstByte == 0xFE {
				d.SkipUB4()
			}
			d.Skip(2)
		}
		if firstByte == 0xFE {
			d.Skip(1)
		}
	}
	if batchOffsetCount := d.UB4(); batchOffsetCount > 0 {
		for i := uint32(0); i < batchOffsetCount; i++ {
			d.SkipUB4()
		}
	}

	actualErrorNum := d.UB4()
	d.UB8() // row count

	if d.Error() != nil {
		return fmt.Errorf("auth: parse FastAuth error message: %w", d.Error())
	}
	if actualErrorNum == 0 {
		return nil
	}
	message, _ := d.VarString()
	return &protocol.OracleError{Code: actualErrorNum, Message: message}
}
