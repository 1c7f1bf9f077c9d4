package protocol

import (
	"github.com/orathin/orathin/internal/protocol/encoding"
	"github.com/orathin/orathin/internal/protocol/types"
)

// ExecuteOptions describes an EXECUTE function call: the SQL text for a new
// cursor (cursor_id 0) or a re-execution of an existing one, and whether
// this is a query that should also fetch its first batch of rows. Defines
// turns this into a DEFINE-only redescribe of an existing cursor: when set,
// no SQL text or execute/fetch flags are sent, only the column format array
// and NOT_PLSQL, as part of the define-redescribe cycle a column whose
// actual size exceeds its original describe (most commonly a LOB wanting
// prefetch) triggers.
type ExecuteOptions struct {
	SQL          string
	CursorID     uint32
	IsQuery      bool
	PrefetchRows uint32
	Defines      []types.FetchVar
}

func (o ExecuteOptions) calcOptions() uint32 {
	if len(o.Defines) > 0 {
		return ExecOptionDefine | ExecOptionNotPLSQL
	}
	var options uint32
	if o.CursorID == 0 {
		options |= ExecOptionParse
	}
	if o.IsQuery {
		options |= ExecOptionExecute
		if o.PrefetchRows > 0 {
			options |= ExecOptionFetch
		}
	}
	options |= ExecOptionNotPLSQL
	return options
}

func (o ExecuteOptions) calcExecFlags() uint32 {
	var flags uint32
	if o.IsQuery && o.SQL != "" {
		flags |= ExecFlagsImplicitResultset
	}
	return flags
}

// EncodeExecute writes an EXECUTE function call body for a SQL statement:
// the al8i4 execution descriptor plus, for a new cursor, the SQL text
// itself, and, when o.Defines is set, the define pointer, the define count
// and one column format entry per define. There are no bind variables or
// DML row-count outputs, since this client only runs parameterless SELECTs.
func EncodeExecute(e *encoding.Encoder, caps *Capabilities, o ExecuteOptions) {
	isNewCursor := o.CursorID == 0
	sqlBytes := []byte(o.SQL)

	e.UB4(o.calcOptions())
	e.UB4(o.CursorID)

	if isNewCursor {
		e.Byte(1)
		e.UB4(uint32(len(sqlBytes)))
	} else {
		e.Byte(0)
		e.UB4(0)
	}

	e.Byte(1)   // al8i4 vector pointer
	e.UB4(13)   // al8i4 array length

	e.Byte(0) // al8o4 pointer
	e.Byte(0) // al8o4l pointer

	e.UB4(0)             // prefetch buffer size
	e.UB4(o.PrefetchRows) // prefetch rows
	e.UB4(MaxLongLength) // max long size

	e.Byte(0) // binds pointer
	e.UB4(0)  // num binds

	e.Byte(0) // al8app
	e.Byte(0) // al8txn
	e.Byte(0) // al8txl
	e.Byte(0) // al8kv
	e.Byte(0) // al8kvl

	if len(o.Defines) > 0 {
		e.Byte(1)
		e.UB4(uint32(len(o.Defines)))
	} else {
		e.Byte(0) // al8doac pointer
		e.UB4(0)  // num defines
	}

	e.UB4(0)  // registration id
	e.Byte(0) // al8objlist pointer
	e.Byte(1) // al8objlen pointer
	e.Byte(0) // al8blv pointer
	e.UB4(0)  // al8blvl
	e.Byte(0) // al8dnam pointer
	e.UB4(0)  // al8dnaml
	e.UB4(0)  // al8regid_msb

	e.Byte(0) // al8pidmlrc pointer
	e.UB4(0)  // al8pidmlrcbl
	e.Byte(0) // al8pidmlrcl pointer

	if caps.TTCFieldVersion >= CCapFieldVersion12_2 {
		e.Byte(0) // al8sqlsig pointer
		e.UB4(0)  // SQL signature length
		e.Byte(0) // SQL ID pointer
		e.UB4(0)  // SQL ID size
		e.Byte(0) // SQL ID length pointer

		if caps.TTCFieldVersion >= CCapFieldVersion12_2Ext1 {
			e.Byte(0) // chunk ids pointer
			e.UB4(0)  // num chunk ids
		}
	}

	if isNewCursor {
		e.VarBytes(sqlBytes)
	} else if len(o.Defines) > 0 {
		for _, fv := range o.Defines {
			writeFetchVar(e, fv, caps.TTCFieldVersion)
		}
	}

	execCount := uint32(0)
	if len(o.Defines) > 0 {
		execCount = o.PrefetchRows
	}
	e.UB4(boolUB4(isNewCursor)) // [0] parse flag
	e.UB4(execCount)            // [1] execution count, or prefetch rows on a define-redescribe
	e.UB4(0)                    // [2]
	e.UB4(0)                    // [3]
	e.UB4(0)                    // [4]
	e.UB4(0)                    // [5] SCN
	e.UB4(0)                    // [6] SCN
	e.UB4(boolUB4(o.IsQuery))   // [7] is_query flag
	e.UB4(0)                    // [8]
	e.UB4(o.calcExecFlags())    // [9] exec_flags
	e.UB4(0)                    // [10] fetch orientation
	e.UB4(0)                    // [11] fetch pos
	e.UB4(0)                    // [12]
}

func boolUB4(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// writeFetchVar writes one column's format descriptor for a DEFINE: the
// same field layout parseColumnMetadata reads back out of DESCRIBE_INFO,
// since a DEFINE is the client handing the server the column format it
// wants described rows to come back in.
func writeFetchVar(e *encoding.Encoder, fv types.FetchVar, ttcFieldVersion uint8) {
	e.Byte(fv.OraTypeNum)
	e.Byte(fv.Flags)
	e.Byte(0) // precision
	e.Byte(0) // scale
	e.UB4(fv.BufferSize)
	e.UB4(0) // max num elements
	e.UB8(fv.ContFlag)
	e.UB4(0) // oid len
	e.UB2(0) // oid version
	e.UB2(fv.CharsetID)
	e.Byte(fv.CharsetForm)
	e.UB4(fv.LobPrefetchLen)
	if ttcFieldVersion >= CCapFieldVersion12_2 {
		e.UB4(0) // oaccolid
	}
}

// SendExecute sends an EXECUTE function call over sess.
func SendExecute(sess *Session, o ExecuteOptions) error {
	return sess.SendFunctionCall(FuncExecute, func(e *encoding.Encoder) {
		EncodeExecute(e, sess.Caps, o)
	})
}

// SendFetch sends a FETCH function call, requesting fetchSize more rows
// from the cursor identified by cursorID.
func SendFetch(sess *Session, cursorID, fetchSize uint32) error {
	return sess.SendFunctionCall(FuncFetch, func(e *encoding.Encoder) {
		e.UB4(cursorID)
		e.UB4(fetchSize)
	})
}
