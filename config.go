// Package orathin is a native client for Oracle's TNS/TTC wire protocol:
// no OCI, no vendor native library, just a TCP socket and the protocol
// Oracle's own thin clients speak. It supports parameterless SELECTs
// against Oracle 12c through 23ai, including 23ai's combined FastAuth
// handshake.
package orathin

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orathin/orathin/internal/protocol/dial"
	"github.com/orathin/orathin/internal/protocol/types"
)

// Config describes how to reach and authenticate against a database.
// There is no DSN parsing and no environment loading: callers build a
// Config directly, the way the teacher's Connector is built programmatically
// rather than from a connection string.
type Config struct {
	Host        string
	Port        uint16 // defaults to 1521
	ServiceName string

	Username string
	Password string

	// ConnectTimeout bounds the initial TCP dial and CONNECT/ACCEPT
	// handshake. Defaults to 20 seconds.
	ConnectTimeout time.Duration
	// SDU is the session data unit size this client advertises in its
	// CONNECT packet. Defaults to 8192.
	SDU uint32
	// PrefetchRows is the default number of rows requested per FETCH
	// round trip for cursors that don't override it. Defaults to 100.
	PrefetchRows uint32
	// LobPrefetchBytes bounds how much inline CLOB/BLOB data a define-
	// redescribe requests per column; larger LOBs fall back to a bare
	// locator. Defaults to 4000.
	LobPrefetchBytes uint32

	// Logger receives structured trace/debug output from the protocol
	// layer. Defaults to logrus's standard logger.
	Logger *logrus.Logger
	// Dialer opens the underlying TCP connection. Defaults to a plain
	// net.Dialer; set this to substitute a proxy or test double.
	Dialer dial.Dialer
}

const (
	defaultPort           = 1521
	defaultConnectTimeout = 20 * time.Second
	defaultSDU            = 8192
	defaultPrefetchRows   = 100
)

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.SDU == 0 {
		c.SDU = defaultSDU
	}
	if c.PrefetchRows == 0 {
		c.PrefetchRows = defaultPrefetchRows
	}
	if c.LobPrefetchBytes == 0 {
		c.LobPrefetchBytes = types.DefaultLobPrefetchLen
	}
	if c.Dialer == nil {
		c.Dialer = dial.Default
	}
	return c
}
