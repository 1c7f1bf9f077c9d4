package protocol

import (
	"context"

	"github.com/orathin/orathin/internal/protocol/types"
)

// Cursor iterates over a query's result set, buffering the rows a prior
// EXECUTE or FETCH call returned and transparently issuing FETCH calls as
// the buffer drains. It exclusively owns sess for its lifetime: Oracle's
// TTC protocol allows exactly one call in flight per session, the same
// invariant Session itself assumes.
type Cursor struct {
	sess *Session

	columns       []types.ColumnMetadata
	columnInfo    *types.ColumnInfo
	cursorID      uint32
	buffer        []types.Row
	bufferPos     int
	moreRows      bool
	fetchSize     uint32
	rowsFetched   uint64
	serverTTCVers uint8
}

// NewCursor builds a Cursor from the result of the EXECUTE call that opened
// it: its assigned cursor id, the column metadata DESCRIBE_INFO reported,
// and whatever rows the server prefetched along with the execute.
func NewCursor(sess *Session, cursorID uint32, columns []types.ColumnMetadata, rows []types.Row, moreRows bool, fetchSize uint32, serverTTCVers uint8) *Cursor {
	return &Cursor{
		sess:          sess,
		columns:       columns,
		columnInfo:    types.NewColumnInfo(columnsToInfo(columns)),
		cursorID:      cursorID,
		buffer:        rows,
		moreRows:      moreRows,
		fetchSize:     fetchSize,
		rowsFetched:   uint64(len(rows)),
		serverTTCVers: serverTTCVers,
	}
}

// Columns returns the result set's column metadata.
func (c *Cursor) Columns() []types.ColumnMetadata { return c.columns }

// RowCount returns the number of rows delivered so far, across all fetches.
func (c *Cursor) RowCount() uint64 { return c.rowsFetched }

// IsClosed reports whether the cursor has released its server-side state.
func (c *Cursor) IsClosed() bool { return c.cursorID == 0 }

// HasMore reports whether a call to Next would return another row, either
// from the local buffer or by fetching from the server.
func (c *Cursor) HasMore() bool {
	return c.bufferPos < len(c.buffer) || c.moreRows
}

// FetchSize returns the number of rows requested per FETCH round trip.
func (c *Cursor) FetchSize() uint32 { return c.fetchSize }

// SetFetchSize changes the number of rows requested by subsequent fetches.
func (c *Cursor) SetFetchSize(size uint32) { c.fetchSize = size }

// Next returns the cursor's next row, fetching another batch from the
// server when the local buffer is exhausted. It returns ok=false once the
// result set is exhausted, at which point the cursor marks itself closed.
func (c *Cursor) Next(ctx context.Context) (row types.Row, ok bool, err error) {
	if c.bufferPos < len(c.buffer) {
		row = c.buffer[c.bufferPos]
		c.bufferPos++
		return row, true, nil
	}

	if !c.moreRows {
		c.cursorID = 0
		return types.Row{}, false, nil
	}

	if err := c.doFetch(ctx); err != nil {
		return types.Row{}, false, err
	}

	if c.bufferPos < len(c.buffer) {
		row = c.buffer[c.bufferPos]
		c.bufferPos++
		return row, true, nil
	}
	c.cursorID = 0
	return types.Row{}, false, nil
}

// FetchAll drains the remaining result set into a slice, making as many
// FETCH round trips as needed, and closes the cursor.
func (c *Cursor) FetchAll(ctx context.Context) ([]types.Row, error) {
	all := append([]types.Row(nil), c.buffer[c.bufferPos:]...)
	c.buffer = nil
	c.bufferPos = 0

	for c.moreRows {
		if err := c.doFetch(ctx); err != nil {
			return nil, err
		}
		all = append(all, c.buffer[c.bufferPos:]...)
		c.bufferPos = len(c.buffer)
	}

	c.cursorID = 0
	return all, nil
}

// Close marks the cursor closed. The server frees a statement's cursor
// state automatically once its result set is exhausted or the session
// itself closes, so there is no explicit CLOSE function call to send.
func (c *Cursor) Close(ctx context.Context) error {
	c.cursorID = 0
	c.moreRows = false
	return nil
}

// doFetch sends one FETCH call and appends the rows it returns to the
// buffer, updating moreRows from the response. ORA-01403 ("no data
// found") is the server's normal signal that the result set is exhausted,
// not a failure, and is absorbed here rather than surfaced to the caller.
func (c *Cursor) doFetch(ctx context.Context) error {
	if c.bufferPos >= len(c.buffer) {
		c.buffer = c.buffer[:0]
		c.bufferPos = 0
	}

	if err := c.sess.SetDeadline(ctx); err != nil {
		return &ProtocolError{Op: "set fetch deadline", Err: err}
	}
	if err := SendFetch(c.sess, c.cursorID, c.fetchSize); err != nil {
		return &ProtocolError{Op: "send fetch", Err: err}
	}
	payload, err := c.sess.ReadDataMessage()
	if err != nil {
		return &ProtocolError{Op: "read fetch response", Err: err}
	}

	resp, err := ParseFetchResponse(payload, c.columns, c.serverTTCVers)
	if err != nil {
		return err
	}
	if resp.Error.ErrorNum != 0 && resp.Error.ErrorNum != ErrNoDataFound {
		return &OracleError{Code: resp.Error.ErrorNum, Message: resp.Error.Message}
	}

	c.rowsFetched += uint64(len(resp.Rows))
	c.buffer = append(c.buffer, resp.Rows...)
	c.moreRows = resp.MoreRows && resp.Error.ErrorNum == 0
	return nil
}
