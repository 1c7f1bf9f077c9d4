// Package auth implements Oracle's two-phase O5LOGON authentication
// handshake: client-identification (phase one), verifier generation, and
// password exchange (phase two), for both the 12c PBKDF2 path and the
// legacy 11g SHA-1 path.
package auth

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/orathin/orathin/internal/protocol"
	"github.com/orathin/orathin/internal/protocol/crypto"
	"github.com/orathin/orathin/internal/protocol/encoding"
)

// Credentials are the username/password pair presented to the server.
type Credentials struct {
	Username string
	Password string
}

// ClientInfo identifies this process to the server in phase one, the way
// sqlplus/python-oracledb report terminal, program, machine, pid and OS
// user for v$session.
type ClientInfo struct {
	Terminal string
	Program  string
	Machine  string
	PID      string
	OSUser   string
}

// sessionData accumulates AUTH_* key/value parameters returned by the
// server across both phases, plus the verifier bookkeeping needed to
// check AUTH_SVR_RESPONSE at the end.
type sessionData struct {
	params       map[string]string
	verifierType uint32
	comboKey     []byte
}

// Authenticate runs the full O5LOGON exchange over sess and returns the
// server's final session parameters (time zone, server version banner
// fields, and the like).
func Authenticate(sess *protocol.Session, creds Credentials, info ClientInfo) (map[string]string, error) {
	session, err := phaseOne(sess, creds, info)
	if err != nil {
		return nil, err
	}
	if err := phaseTwo(sess, creds, session); err != nil {
		return nil, err
	}
	return session.params, nil
}

// AuthenticateFast runs Oracle 23ai's FastAuth exchange: a combined
// PROTOCOL/DATA_TYPES/AUTH_PHASE_ONE request in one round trip, followed by
// the ordinary AUTH_PHASE_TWO password exchange.
func AuthenticateFast(sess *protocol.Session, creds Credentials, info ClientInfo) (map[string]string, error) {
	session, err := FastAuthenticate(sess, creds, info)
	if err != nil {
		return nil, err
	}
	if err := phaseTwo(sess, creds, session); err != nil {
		return nil, err
	}
	return session.params, nil
}

func phaseOne(sess *protocol.Session, creds Credentials, info ClientInfo) (*sessionData, error) {
	body := buildPhaseOneBody(creds.Username, info.Terminal, info.Program, info.Machine, info.PID, info.OSUser)
	if err := sess.SendFunctionCall(protocol.FuncAuthPhaseOne, func(e *encoding.Encoder) { e.Bytes(body) }); err != nil {
		return nil, fmt.Errorf("auth: send phase one: %w", err)
	}

	payload, err := sess.ReadDataMessage()
	if err != nil {
		if protocol.IsMarkerPacket(err) {
			return nil, handleMarkerAndGetError(sess)
		}
		return nil, fmt.Errorf("auth: read phase one response: %w", err)
	}

	return parseAuthResponse(payload)
}

func phaseTwo(sess *protocol.Session, creds Credentials, session *sessionData) error {
	sessionKey, speedyKey, encodedPassword, err := generateVerifier(creds, session)
	if err != nil {
		return err
	}
	tzStmt := timezoneStatement(time.Now())

	body := buildPhaseTwoBody(creds.Username, sessionKey, speedyKey, encodedPassword, tzStmt)
	if err := sess.SendFunctionCall(protocol.FuncAuthPhaseTwo, func(e *encoding.Encoder) { e.Bytes(body) }); err != nil {
		return fmt.Errorf("auth: send phase two: %w", err)
	}

	payload, err := sess.ReadDataMessage()
	if err != nil {
		if protocol.IsMarkerPacket(err) {
			return handleMarkerAndGetErrorPhaseTwo(sess)
		}
		return fmt.Errorf("auth: read phase two response: %w", err)
	}

	response, err := parseAuthResponse(payload)
	if err != nil {
		return err
	}

	if session.comboKey != nil {
		if svrResponse, ok := response.params["AUTH_SVR_RESPONSE"]; ok {
			encoded, err := crypto.HexDecode(svrResponse)
			if err != nil {
				return fmt.Errorf("auth: invalid AUTH_SVR_RESPONSE hex: %w", err)
			}
			decrypted, err := crypto.DecryptCBC(session.comboKey, encoded)
			if err != nil {
				return fmt.Errorf("auth: decrypt AUTH_SVR_RESPONSE: %w", err)
			}
			if len(decrypted) < 32 || string(decrypted[16:32]) != "SERVER_TO_CLIENT" {
				return fmt.Errorf("auth: server response verification failed")
			}
		}
	}

	for k, v := range response.params {
		session.params[k] = v
	}
	return nil
}

// handleMarkerAndGetError recovers from a break marker received during
// phase one by resetting the session and reading until the server's
// error (or giving up after a few attempts).
func handleMarkerAndGetError(sess *protocol.Session) error {
	if err := sess.WritePacket(protocol.Packet{Type: protocol.PacketTypeMarker, Payload: buildMarkerReset()}); err != nil {
		return fmt.Errorf("auth: send reset marker: %w", err)
	}

	for attempts := 0; attempts < 10; attempts++ {
		p, err := sess.ReadRawPacket()
		if err != nil {
			return fmt.Errorf("auth: read after marker: %w", err)
		}
		switch p.Type {
		case protocol.PacketTypeData:
			if len(p.Payload) < 3 {
				return fmt.Errorf("auth: received break marker but couldn't retrieve error")
			}
			msgType := p.Payload[2]
			if msgType == protocol.MsgTypeError {
				return parseErrorMessage(p.Payload[3:])
			}
			return fmt.Errorf("auth: received break marker but couldn't retrieve error")
		case protocol.PacketTypeMarker:
			continue
		default:
			return fmt.Errorf("auth: unexpected packet type %d during marker recovery", p.Type)
		}
	}
	return fmt.Errorf("auth: received break marker but couldn't retrieve error")
}

func handleMarkerAndGetErrorPhaseTwo(sess *protocol.Session) error {
	if err := sess.WritePacket(protocol.Packet{Type: protocol.PacketTypeMarker, Payload: buildMarkerReset()}); err != nil {
		return fmt.Errorf("auth: send reset marker: %w", err)
	}

	for attempts := 0; attempts < 10; attempts++ {
		p, err := sess.ReadRawPacket()
		if err != nil {
			return fmt.Errorf("auth: read after marker: %w", err)
		}
		if p.Type == protocol.PacketTypeData {
			if len(p.Payload) < 3 {
				return fmt.Errorf("auth: authentication failed: received break marker but couldn't retrieve error")
			}
			if p.Payload[2] == protocol.MsgTypeError {
				return parseErrorMessage(p.Payload[3:])
			}
			break
		}
	}
	return fmt.Errorf("auth: authentication failed: received break marker but couldn't retrieve error")
}

// generateVerifier dispatches to the 12c PBKDF2 or 11g SHA-1 verifier
// generator based on the AUTH_VFR_DATA verifier type the server reported
// in phase one.
func generateVerifier(creds Credentials, session *sessionData) (sessionKey string, speedyKey *string, encodedPassword string, err error) {
	verifierHex, ok := session.params["AUTH_VFR_DATA"]
	if !ok {
		return "", nil, "", fmt.Errorf("auth: missing AUTH_VFR_DATA")
	}
	verifierData, err := crypto.HexDecode(verifierHex)
	if err != nil {
		return "", nil, "", fmt.Errorf("auth: invalid AUTH_VFR_DATA hex: %w", err)
	}

	password := []byte(creds.Password)

	switch session.verifierType {
	case protocol.VerifierType12C:
		return generate12cVerifier(password, verifierData, session)
	case protocol.VerifierType11G1, protocol.VerifierType11G2:
		return generate11gVerifier(password, verifierData, session)
	default:
		return "", nil, "", fmt.Errorf("auth: unsupported verifier type 0x%x", session.verifierType)
	}
}

func generate12cVerifier(password, verifierData []byte, session *sessionData) (string, *string, string, error) {
	iterationsStr, ok := session.params["AUTH_PBKDF2_VGEN_COUNT"]
	if !ok {
		return "", nil, "", fmt.Errorf("auth: missing AUTH_PBKDF2_VGEN_COUNT")
	}
	iterations, err := strconv.Atoi(iterationsStr)
	if err != nil {
		return "", nil, "", fmt.Errorf("auth: invalid AUTH_PBKDF2_VGEN_COUNT: %w", err)
	}

	const keyLen = 32

	salt := append(append([]byte{}, verifierData...), []byte("AUTH_PBKDF2_SPEEDY_KEY")...)
	passwordKey := crypto.DeriveKeyPBKDF2(password, salt, iterations, 64)

	hashInput := append(append([]byte{}, passwordKey...), verifierData...)
	hashed := crypto.SHA512(hashInput)
	passwordHash := hashed[:keyLen]

	serverSessKeyHex, ok := session.params["AUTH_SESSKEY"]
	if !ok {
		return "", nil, "", fmt.Errorf("auth: missing AUTH_SESSKEY")
	}
	serverSessKey, err := crypto.HexDecode(serverSessKeyHex)
	if err != nil {
		return "", nil, "", fmt.Errorf("auth: invalid AUTH_SESSKEY hex: %w", err)
	}
	sessionKeyPartA, err := crypto.DecryptCBC(passwordHash, serverSessKey)
	if err != nil {
		return "", nil, "", fmt.Errorf("auth: decrypt AUTH_SESSKEY: %w", err)
	}

	sessionKeyPartB, err := crypto.RandomBytes(len(sessionKeyPartA))
	if err != nil {
		return "", nil, "", err
	}
	encryptedClientKey, err := crypto.EncryptCBC(passwordHash, sessionKeyPartB, false)
	if err != nil {
		return "", nil, "", err
	}

	n := 32
	if n > len(encryptedClientKey) {
		n = len(encryptedClientKey)
	}
	sessionKey := crypto.HexUpper(encryptedClientKey[:n])

	cskSaltHex, ok := session.params["AUTH_PBKDF2_CSK_SALT"]
	if !ok {
		return "", nil, "", fmt.Errorf("auth: missing AUTH_PBKDF2_CSK_SALT")
	}
	cskSalt, err := crypto.HexDecode(cskSaltHex)
	if err != nil {
		return "", nil, "", fmt.Errorf("auth: invalid AUTH_PBKDF2_CSK_SALT hex: %w", err)
	}
	sderCountStr, ok := session.params["AUTH_PBKDF2_SDER_COUNT"]
	if !ok {
		return "", nil, "", fmt.Errorf("auth: missing AUTH_PBKDF2_SDER_COUNT")
	}
	sderCount, err := strconv.Atoi(sderCountStr)
	if err != nil {
		return "", nil, "", fmt.Errorf("auth: invalid AUTH_PBKDF2_SDER_COUNT: %w", err)
	}

	bN := keyLen
	if bN > len(sessionKeyPartB) {
		bN = len(sessionKeyPartB)
	}
	aN := keyLen
	if aN > len(sessionKeyPartA) {
		aN = len(sessionKeyPartA)
	}
	tempKey := append(append([]byte{}, sessionKeyPartB[:bN]...), sessionKeyPartA[:aN]...)
	tempKeyHex := crypto.HexUpper(tempKey)
	comboKey := crypto.DeriveKeyPBKDF2([]byte(tempKeyHex), cskSalt, sderCount, keyLen)

	speedySalt, err := crypto.RandomBytes(16)
	if err != nil {
		return "", nil, "", err
	}
	speedyPlaintext := append(append([]byte{}, speedySalt...), passwordKey...)
	speedyEncrypted, err := crypto.EncryptCBC(comboKey, speedyPlaintext, false)
	if err != nil {
		return "", nil, "", err
	}
	sN := 80
	if sN > len(speedyEncrypted) {
		sN = len(speedyEncrypted)
	}
	speedyKeyStr := crypto.HexUpper(speedyEncrypted[:sN])

	session.comboKey = comboKey

	passwordSalt, err := crypto.RandomBytes(16)
	if err != nil {
		return "", nil, "", err
	}
	passwordWithSalt := append(append([]byte{}, passwordSalt...), password...)
	encryptedPassword, err := crypto.EncryptCBC(comboKey, passwordWithSalt, false)
	if err != nil {
		return "", nil, "", err
	}
	encodedPassword := crypto.HexUpper(encryptedPassword)

	return sessionKey, &speedyKeyStr, encodedPassword, nil
}

func generate11gVerifier(password, verifierData []byte, session *sessionData) (string, *string, string, error) {
	hashInput := append(append([]byte{}, password...), verifierData...)
	sha1sum := crypto.SHA1(hashInput)
	passwordHash := append(sha1sum[:], make([]byte, 4)...) // pad to 24 bytes

	serverSessKeyHex, ok := session.params["AUTH_SESSKEY"]
	if !ok {
		return "", nil, "", fmt.Errorf("auth: missing AUTH_SESSKEY")
	}
	serverSessKey, err := crypto.HexDecode(serverSessKeyHex)
	if err != nil {
		return "", nil, "", fmt.Errorf("auth: invalid AUTH_SESSKEY hex: %w", err)
	}
	sessionKeyPartA, err := crypto.DecryptCBC(passwordHash, serverSessKey)
	if err != nil {
		return "", nil, "", fmt.Errorf("auth: decrypt AUTH_SESSKEY: %w", err)
	}

	sessionKeyPartB, err := crypto.RandomBytes(len(sessionKeyPartA))
	if err != nil {
		return "", nil, "", err
	}
	encryptedClientKey, err := crypto.EncryptCBC(passwordHash, sessionKeyPartB, false)
	if err != nil {
		return "", nil, "", err
	}
	n := 48
	if n > len(encryptedClientKey) {
		n = len(encryptedClientKey)
	}
	sessionKey := crypto.HexUpper(encryptedClientKey[:n])

	const keyLen = 24
	xorResult := make([]byte, keyLen)
	limit := 40
	if lim := len(sessionKeyPartA); 16+keyLen > lim {
		limit = lim
	}
	if lim := len(sessionKeyPartB); 16+keyLen > lim && lim < limit {
		limit = lim
	}
	for i := 16; i < limit; i++ {
		xorResult[i-16] = sessionKeyPartA[i] ^ sessionKeyPartB[i]
	}

	part1 := crypto.MD5(xorResult[:16])
	part2 := crypto.MD5(xorResult[16:])
	comboKey := append(append([]byte{}, part1[:]...), part2[:8]...)

	passwordSalt, err := crypto.RandomBytes(16)
	if err != nil {
		return "", nil, "", err
	}
	passwordWithSalt := append(append([]byte{}, passwordSalt...), password...)
	encryptedPassword, err := crypto.EncryptCBC(comboKey, passwordWithSalt, false)
	if err != nil {
		return "", nil, "", err
	}
	encodedPassword := crypto.HexUpper(encryptedPassword)

	session.comboKey = comboKey

	return sessionKey, nil, encodedPassword, nil
}

// parseAuthResponse parses a PARAMETER, ERROR, or STATUS message following
// an AUTH_PHASE_ONE/TWO request.
func parseAuthResponse(payload []byte) (*sessionData, error) {
	d := encoding.NewDecoder(bytes.NewReader(payload))
	session := &sessionData{params: map[string]string{}}

	msgType := d.Byte()
	switch msgType {
	case protocol.MsgTypeParameter:
		numParams := d.UB2()
		for i := uint16(0); i < numParams; i++ {
			d.SkipUB4() // key length indicator
			key, _ := d.VarString()
			d.SkipUB4() // value length indicator
			value, _ := d.VarString()

			if key == "AUTH_VFR_DATA" {
				session.verifierType = d.UB4()
			} else {
				d.SkipUB4() // flags
			}
			if d.Error() != nil {
				break
			}
			if isCleanParamKey(key) {
				session.params[key] = value
			}
		}
	case protocol.MsgTypeError:
		return nil, parseErrorMessage(payload[1:])
	case protocol.MsgTypeStatus:
		d.SkipUB4() // call status
		if d.Error() == nil {
			if mt := d.Byte(); d.Error() == nil && mt == protocol.MsgTypeParameter {
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
					session.params[key] = value
				}
			}
		}
	}

	return session, nil
}

func isCleanParamKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r < 0x20 && r != '\t' {
			return false
		}
	}
	return true
}

// parseErrorMessage best-effort scans a raw ERROR payload for an
// "ORA-NNNNN: message" pattern, matching the original client's fallback
// parser for this message type.
func parseErrorMessage(payload []byte) error {
	idx := bytes.Index(payload, []byte("ORA-"))
	if idx < 0 {
		return &protocol.OracleError{Message: "unknown Oracle error"}
	}

	rest := payload[idx:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		end = len(rest)
	}
	msg := string(rest[:end])

	var code uint32
	if len(msg) > 4 {
		codeStr := msg[4:]
		if colon := bytes.IndexByte([]byte(codeStr), ':'); colon >= 0 {
			codeStr = codeStr[:colon]
		}
		if n, err := strconv.Atoi(codeStr); err == nil {
			code = uint32(n)
		}
	}

	return &protocol.OracleError{Code: code, Message: msg}
}

// timezoneStatement builds the ALTER SESSION statement that sets the
// session's time zone to the local UTC offset of now.
func timezoneStatement(now time.Time) string {
	_, offsetSec := now.Zone()
	sign := "+"
	if offsetSec < 0 {
		sign = "-"
		offsetSec = -offsetSec
	}
	hours := offsetSec / 3600
	minutes := (offsetSec % 3600) / 60
	return fmt.Sprintf("ALTER SESSION SET TIME_ZONE='%s%02d:%02d'\x00", sign, hours, minutes)
}
