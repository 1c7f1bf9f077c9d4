package auth

import (
	"bytes"

	"github.com/orathin/orathin/internal/protocol"
	"github.com/orathin/orathin/internal/protocol/encoding"
)

// keyValue pairs are how Oracle's TTC layer carries named auth parameters
// in both directions: the server's PARAMETER response decodes them as
// key-length(UB4)+key, value-length(UB4)+value, flags(UB4) triples (see
// the response parser), and the client's AUTH_PHASE_ONE/TWO requests use
// the identical, symmetric layout.
type keyValue struct {
	key, value string
}

func writeKeyValuePairs(e *encoding.Encoder, pairs []keyValue) {
	e.UB4(uint32(len(pairs)))
	e.Byte(1) // pairs pointer
	for _, kv := range pairs {
		e.UB4(uint32(len(kv.key)))
		e.VarString(kv.key)
		e.UB4(uint32(len(kv.value)))
		e.VarString(kv.value)
		e.UB4(0) // flags
	}
}

// buildPhaseOneBody encodes the AUTH_PHASE_ONE function call body: the
// logon mode, the username, and the client identification pairs
// (terminal/program/machine/pid/sid) the server logs against the session.
func buildPhaseOneBody(username, terminal, program, machine, pid, sid string) []byte {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)

	e.UB4(protocol.AuthModeLogon)
	e.Byte(1)
	e.UB4(uint32(len(username)))

	writeKeyValuePairs(e, []keyValue{
		{"AUTH_TERMINAL", terminal},
		{"AUTH_PROGRAM_NM", program},
		{"AUTH_MACHINE", machine},
		{"AUTH_PID", pid},
		{"AUTH_SID", sid},
	})

	e.VarString(username)
	return buf.Bytes()
}

// buildPhaseTwoBody encodes the AUTH_PHASE_TWO function call body: the
// session key material the verifier produced, the encrypted password, and
// the session timezone statement the server executes on our behalf.
func buildPhaseTwoBody(username, sessionKey string, speedyKey *string, encodedPassword, timezoneStmt string) []byte {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)

	e.UB4(protocol.AuthModeLogon | protocol.AuthModeWithPassword)
	e.Byte(1)
	e.UB4(uint32(len(username)))

	pairs := []keyValue{
		{"AUTH_SESSKEY", sessionKey},
		{"AUTH_PASSWORD", encodedPassword},
	}
	if speedyKey != nil {
		pairs = append(pairs, keyValue{"AUTH_PBKDF2_SPEEDY_KEY", *speedyKey})
	}
	pairs = append(pairs, keyValue{"AUTH_ALTER_SESSION", timezoneStmt})

	writeKeyValuePairs(e, pairs)
	e.VarString(username)
	return buf.Bytes()
}

// buildMarkerReset encodes a RESET marker packet payload: marker type byte
// TNS_MARKER_TYPE_RESET preceded by the two data-gathering bytes the
// server's break-recovery loop expects.
func buildMarkerReset() []byte {
	return []byte{0x01, 0x00, byte(protocol.MarkerTypeReset)}
}
