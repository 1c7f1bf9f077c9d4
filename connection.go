package orathin

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"

	"github.com/orathin/orathin/internal/protocol"
	"github.com/orathin/orathin/internal/protocol/auth"
	"github.com/orathin/orathin/internal/protocol/dial"
	"github.com/orathin/orathin/internal/protocol/types"
)

// Connection is an open, authenticated session against one Oracle
// database. Oracle's TTC protocol allows exactly one call in flight at a
// time, so a Connection (and any Cursor opened from it) is not safe for
// concurrent use: callers serialize access themselves, the same
// requirement the underlying Session places on its callers.
type Connection struct {
	sess *protocol.Session
	cfg  Config
}

// Connect dials cfg.Host:cfg.Port, negotiates the TNS/TTC handshake, and
// authenticates. Cursors opened from the returned Connection default to
// cfg.PrefetchRows rows per fetch.
func Connect(ctx context.Context, cfg Config) (*Connection, error) {
	cfg = cfg.withDefaults()
	if cfg.Logger != nil {
		protocol.Logger = cfg.Logger
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	address := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	conn, err := cfg.Dialer.DialContext(dialCtx, address, dial.Options{Timeout: cfg.ConnectTimeout})
	if err != nil {
		return nil, fmt.Errorf("orathin: dial %s: %w", address, err)
	}

	sess := protocol.NewSession(conn)
	if err := sess.SetDeadline(dialCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("orathin: set connect deadline: %w", err)
	}
	params := protocol.NewConnectParams(cfg.Host, cfg.Port, cfg.ServiceName)
	params.SDU = cfg.SDU

	if err := protocol.Connect(sess, params); err != nil {
		conn.Close()
		return nil, fmt.Errorf("orathin: %w", err)
	}

	creds := auth.Credentials{Username: cfg.Username, Password: cfg.Password}
	info := clientInfo()

	if sess.Caps.SupportsFastAuth {
		if _, err := auth.AuthenticateFast(sess, creds, info); err != nil {
			conn.Close()
			return nil, fmt.Errorf("orathin: authenticate: %w", err)
		}
	} else {
		if err := protocol.ExchangeDataTypes(sess); err != nil {
			conn.Close()
			return nil, fmt.Errorf("orathin: %w", err)
		}
		if _, err := auth.Authenticate(sess, creds, info); err != nil {
			conn.Close()
			return nil, fmt.Errorf("orathin: authenticate: %w", err)
		}
	}

	return &Connection{sess: sess, cfg: cfg}, nil
}

// Close releases the underlying TCP connection.
func (c *Connection) Close() error { return c.sess.Close() }

// NewCursor executes sql as a new query and returns a Cursor over its
// result set, prefetching up to prefetchRows rows along with the execute
// (0 uses the Connection's configured default).
func (c *Connection) NewCursor(ctx context.Context, sql string, prefetchRows int) (*protocol.Cursor, error) {
	if prefetchRows <= 0 {
		prefetchRows = int(c.cfg.PrefetchRows)
	}

	if err := c.sess.SetDeadline(ctx); err != nil {
		return nil, &protocol.ProtocolError{Op: "set execute deadline", Err: err}
	}

	opts := protocol.ExecuteOptions{
		SQL:          sql,
		IsQuery:      true,
		PrefetchRows: uint32(prefetchRows),
	}
	if err := protocol.SendExecute(c.sess, opts); err != nil {
		return nil, &protocol.ProtocolError{Op: "execute", Err: err}
	}

	payload, err := c.sess.ReadDataMessage()
	if err != nil {
		return nil, &protocol.ProtocolError{Op: "read execute response", Err: err}
	}

	resp, err := protocol.ParseExecuteResponse(payload, c.sess.Caps.TTCFieldVersion, c.sess.Caps.ServerTTCFieldVersion)
	if err != nil {
		return nil, fmt.Errorf("orathin: %w", err)
	}
	if resp.Error.ErrorNum != 0 {
		return nil, &protocol.OracleError{Code: resp.Error.ErrorNum, Message: resp.Error.Message}
	}

	cursorID := uint32(resp.Error.CursorID)
	columns, rows, moreRows := resp.Columns, resp.Rows, resp.MoreRows

	// A describe-only execute (more rows promised, none delivered) means a
	// column's actual size outgrew what it was described with — a LOB
	// wanting prefetch, most commonly — and the server is waiting for a
	// DEFINE before it will hand back any rows.
	if moreRows && len(rows) == 0 && len(columns) > 0 {
		columns, rows, moreRows, err = c.defineRedescribe(ctx, cursorID, columns, uint32(prefetchRows))
		if err != nil {
			return nil, err
		}
	}

	return protocol.NewCursor(c.sess, cursorID, columns, rows, moreRows, uint32(prefetchRows), c.sess.Caps.ServerTTCFieldVersion), nil
}

// defineRedescribe sends a DEFINE-only EXECUTE against an already-parsed
// cursor, requesting the column formats BuildFetchVars derives (LOB
// prefetch for CLOB/BLOB, VARCHAR2 for ROWID/UROWID, and so on), then reads
// and parses the resulting rows. The response can span several packets, so
// it's read with ReadMultiPacketResponse rather than the single-packet
// ReadDataMessage an ordinary EXECUTE or FETCH uses.
func (c *Connection) defineRedescribe(ctx context.Context, cursorID uint32, columns []types.ColumnMetadata, prefetchRows uint32) ([]types.ColumnMetadata, []types.Row, bool, error) {
	fetchVars := types.BuildFetchVars(columns, c.cfg.LobPrefetchBytes)
	for i := range columns {
		columns[i].LobPrefetchLen = fetchVars[i].LobPrefetchLen
	}

	if err := c.sess.SetDeadline(ctx); err != nil {
		return nil, nil, false, &protocol.ProtocolError{Op: "set define deadline", Err: err}
	}

	opts := protocol.ExecuteOptions{
		CursorID:     cursorID,
		PrefetchRows: prefetchRows,
		Defines:      fetchVars,
	}
	if err := protocol.SendExecute(c.sess, opts); err != nil {
		return nil, nil, false, &protocol.ProtocolError{Op: "define", Err: err}
	}

	payload, err := c.sess.ReadMultiPacketResponse()
	if err != nil {
		return nil, nil, false, &protocol.ProtocolError{Op: "read define response", Err: err}
	}

	resp, err := protocol.ParseFetchResponse(payload, columns, c.sess.Caps.ServerTTCFieldVersion)
	if err != nil {
		return nil, nil, false, fmt.Errorf("orathin: %w", err)
	}
	if resp.Error.ErrorNum != 0 {
		return nil, nil, false, &protocol.OracleError{Code: resp.Error.ErrorNum, Message: resp.Error.Message}
	}
	return columns, resp.Rows, resp.MoreRows, nil
}

// clientInfo reports this process's identity the way every Oracle thin
// client does in phase one of the logon handshake.
func clientInfo() auth.ClientInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	osUser := "unknown"
	if u, err := user.Current(); err == nil {
		osUser = u.Username
	}
	return auth.ClientInfo{
		Terminal: "unknown",
		Program:  "orathin",
		Machine:  hostname,
		PID:      strconv.Itoa(os.Getpid()),
		OSUser:   osUser,
	}
}
