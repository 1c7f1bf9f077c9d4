package protocol

import (
	"bytes"
	"fmt"

	"github.com/orathin/orathin/internal/protocol/encoding"
	"github.com/orathin/orathin/internal/protocol/types"
)

// ErrorInfo carries the outcome of a call as reported by the server's
// ERROR message: the error number (0 on success), the cursor
// id the server assigned, the affected/returned row count, and the
// message text when an error occurred.
type ErrorInfo struct {
	ErrorNum uint32
	CursorID uint16
	RowCount uint64
	Message  string
}

// ExecuteResponse is the result of parsing an EXECUTE call's response:
// the query's column metadata (when it is one), any rows the server
// prefetched along with the execute, and whether more rows remain.
type ExecuteResponse struct {
	Columns  []types.ColumnMetadata
	Rows     []types.Row
	Error    ErrorInfo
	MoreRows bool
}

// FetchResponse is the result of parsing a FETCH call's response: the
// batch of rows returned, and whether more rows remain.
type FetchResponse struct {
	Rows     []types.Row
	Error    ErrorInfo
	MoreRows bool
}

// ParseExecuteResponse reads an EXECUTE function call's response messages
// until END_OF_RESPONSE, dispatching on each embedded message's type.
// ttcFieldVersion is the version this client requested (it governs the
// optional trailing fields in column metadata); serverTTCFieldVersion is
// the server's actual version (it governs the optional trailing fields in
// ERROR messages).
func ParseExecuteResponse(payload []byte, ttcFieldVersion, serverTTCFieldVersion uint8) (*ExecuteResponse, error) {
	d := encoding.NewDecoder(bytes.NewReader(payload))
	resp := &ExecuteResponse{}
	var columnInfo *types.ColumnInfo

	for {
		msgType, ok := readMsgType(d)
		if !ok {
			break
		}
		switch msgType {
		case MsgTypeDescribeInfo:
			d.SkipChunked()
			if err := parseDescribeInfo(d, resp, ttcFieldVersion); err != nil {
				return nil, err
			}
			columnInfo = types.NewColumnInfo(columnsToInfo(resp.Columns))
		case MsgTypeRowHeader:
			parseRowHeader(d)
		case MsgTypeRowData:
			if columnInfo == nil {
				return nil, fmt.Errorf("protocol: row data received before column metadata")
			}
			row, err := parseRowData(d, resp.Columns, columnInfo)
			if err != nil {
				return nil, err
			}
			resp.Rows = append(resp.Rows, row)
		case MsgTypeError:
			parseErrorInfo(d, &resp.Error, serverTTCFieldVersion)
		case MsgTypeEndOfResponse:
			goto done
		case MsgTypeParameter:
			parseReturnParameters(d)
		case MsgTypeBitVector:
			parseBitVector(d, len(resp.Columns))
		case MsgTypeStatus:
			parseStatusInfo(d)
		case MsgTypeServerSidePiggyback:
			parseServerSidePiggyback(d)
		default:
			return nil, fmt.Errorf("protocol: unexpected message type %d in execute response", msgType)
		}
		if d.Error() != nil {
			return nil, fmt.Errorf("protocol: parse execute response: %w", d.Error())
		}
	}
done:
	if d.Error() != nil {
		return nil, fmt.Errorf("protocol: parse execute response: %w", d.Error())
	}
	resp.MoreRows = resp.Error.ErrorNum == 0
	return resp, nil
}

// ParseFetchResponse reads a FETCH call's response messages. Unlike an
// EXECUTE response it never carries column metadata, since that was
// already established by the preceding EXECUTE.
func ParseFetchResponse(payload []byte, columns []types.ColumnMetadata, serverTTCFieldVersion uint8) (*FetchResponse, error) {
	d := encoding.NewDecoder(bytes.NewReader(payload))
	resp := &FetchResponse{}
	columnInfo := types.NewColumnInfo(columnsToInfo(columns))

	for {
		msgType, ok := readMsgType(d)
		if !ok {
			break
		}
		switch msgType {
		case MsgTypeRowHeader:
			parseRowHeader(d)
		case MsgTypeRowData:
			row, err := parseRowData(d, columns, columnInfo)
			if err != nil {
				return nil, err
			}
			resp.Rows = append(resp.Rows, row)
		case MsgTypeError:
			parseErrorInfo(d, &resp.Error, serverTTCFieldVersion)
		case MsgTypeEndOfResponse:
			goto done
		case MsgTypeParameter:
			parseReturnParameters(d)
		case MsgTypeBitVector:
			parseBitVector(d, len(columns))
		case MsgTypeStatus:
			parseStatusInfo(d)
		case MsgTypeServerSidePiggyback:
			parseServerSidePiggyback(d)
		default:
			return nil, fmt.Errorf("protocol: unexpected message type %d in fetch response", msgType)
		}
		if d.Error() != nil {
			return nil, fmt.Errorf("protocol: parse fetch response: %w", d.Error())
		}
	}
done:
	if d.Error() != nil {
		return nil, fmt.Errorf("protocol: parse fetch response: %w", d.Error())
	}
	resp.MoreRows = resp.Error.ErrorNum == 0
	return resp, nil
}

func readMsgType(d *encoding.Decoder) (byte, bool) {
	msgType := d.Byte()
	if d.Error() != nil {
		return 0, false
	}
	return msgType, true
}

func columnsToInfo(meta []types.ColumnMetadata) []types.Column {
	columns := make([]types.Column, len(meta))
	for i, m := range meta {
		columns[i] = types.FromMetadata(m)
	}
	return columns
}

func parseDescribeInfo(d *encoding.Decoder, resp *ExecuteResponse, ttcFieldVersion uint8) error {
	d.SkipUB4() // max row size
	numColumns := d.UB4()

	if numColumns > 0 {
		d.Byte() // flags
	}

	for i := uint32(0); i < numColumns; i++ {
		meta, err := parseColumnMetadata(d, ttcFieldVersion)
		if err != nil {
			return err
		}
		resp.Columns = append(resp.Columns, meta)
	}

	if numBytes := d.UB4(); numBytes > 0 {
		d.SkipChunked()
	}
	d.SkipUB4() // dcbflag
	d.SkipUB4() // dcbmdbz
	d.SkipUB4() // dcbmnpr
	d.SkipUB4() // dcbmxpr
	if numBytes2 := d.UB4(); numBytes2 > 0 {
		d.SkipChunked()
	}
	return d.Error()
}

func parseColumnMetadata(d *encoding.Decoder, ttcFieldVersion uint8) (types.ColumnMetadata, error) {
	oracleType := d.Byte()
	d.Byte() // flags

	precision := int8(d.Byte())
	scale := int8(d.Byte())
	bufferSize := d.UB4()
	d.SkipUB4() // max array elements
	d.UB8()     // cont flags

	d.VarBytes() // OID

	d.UB2()  // version
	d.UB2()  // charset id
	d.Byte() // charset form
	maxSize := d.UB4()

	if ttcFieldVersion >= CCapFieldVersion12_2 {
		d.SkipUB4() // oaccolid
	}

	nullable := d.Byte() != 0
	d.Byte() // v7 length

	name := readColumnString(d)
	readColumnString(d) // schema
	readColumnString(d) // type name
	d.UB2()              // column position
	d.SkipUB4()           // uds flags

	if ttcFieldVersion >= CCapFieldVersion23_1 {
		readColumnString(d) // domain schema
		readColumnString(d) // domain name
	}

	if ttcFieldVersion >= CCapFieldVersion23_1Ext3 {
		if numAnnotations := d.UB4(); numAnnotations > 0 {
			d.Byte()
			actualCount := d.UB4()
			d.Byte()
			for i := uint32(0); i < actualCount; i++ {
				readColumnString(d) // key
				readColumnString(d) // value
				d.SkipUB4()         // flags
			}
			d.SkipUB4() // flags
		}
	}

	if ttcFieldVersion >= CCapFieldVersion23_4 {
		d.SkipUB4() // vector dimensions
		d.Byte()    // vector format
		d.Byte()    // vector flags
	}

	return types.ColumnMetadata{
		Name:       name,
		RawTypeNum: oracleType,
		Precision:  precision,
		Scale:      scale,
		MaxSize:    maxSize,
		BufferSize: bufferSize,
		Nullable:   nullable,
	}, d.Error()
}

func parseRowHeader(d *encoding.Decoder) {
	d.Byte() // flags
	d.UB2()  // num requests
	d.SkipUB4()
	d.SkipUB4()
	d.UB2() // buffer length

	if numBytes := d.UB4(); numBytes > 0 {
		d.Byte() // repeated length byte
		d.Skip(int(numBytes) - 1)
	}

	if numBytes := d.UB4(); numBytes > 0 {
		d.SkipChunked()
	}
}

func parseRowData(d *encoding.Decoder, columns []types.ColumnMetadata, columnInfo *types.ColumnInfo) (types.Row, error) {
	values := make([]types.OracleValue, len(columns))
	for i, col := range columns {
		v, err := parseColumnValue(d, col)
		if err != nil {
			return types.Row{}, err
		}
		values[i] = v
	}
	return types.NewRow(values, columnInfo), d.Error()
}

func parseColumnValue(d *encoding.Decoder, col types.ColumnMetadata) (types.OracleValue, error) {
	switch uint16(col.RawTypeNum) {
	case TypeNumClob, TypeNumBlob, TypeNumBFile:
		return parseLobValue(d, col)
	}

	data, ok := d.VarBytes()
	if !ok {
		return types.NullValue(), nil
	}

	switch uint16(col.RawTypeNum) {
	case TypeNumVarchar, TypeNumChar, TypeNumLong:
		return types.StringValue(string(data)), nil
	case TypeNumNumber, TypeNumBinaryInteger:
		return types.NumberValue(encoding.DecodeNumber(data)), nil
	case TypeNumDate:
		t, err := encoding.DecodeDate(data)
		if err != nil {
			return types.OracleValue{}, fmt.Errorf("protocol: column %q: %w", col.Name, err)
		}
		return types.DateValue(t), nil
	default:
		return types.StringValue(string(data)), nil
	}
}

// parseLobValue decodes a CLOB/BLOB/BFILE column's ROW_DATA encoding: a
// presence byte, then (for everything but BFILE) the LOB's size and chunk
// size, then — only when this column was defined with LOB prefetch — the
// prefetched data inline, and finally the locator every LOB column carries
// regardless of prefetch. col.LobPrefetchLen is populated from the FetchVar
// used in a prior define-redescribe; it is always 0 on a column's first
// describe, since prefetch has to be requested before the server will send
// it.
func parseLobValue(d *encoding.Decoder, col types.ColumnMetadata) (types.OracleValue, error) {
	indicator := d.Byte()
	if d.Error() != nil {
		return types.OracleValue{}, fmt.Errorf("protocol: column %q: %w", col.Name, d.Error())
	}
	if indicator == 0 {
		return types.NullValue(), nil
	}

	var size uint64
	var chunkSize uint32
	if col.RawTypeNum != TypeNumBFile {
		size = d.UB8()
		chunkSize = d.UB4()
	}

	var prefetch []byte
	if col.LobPrefetchLen > 0 {
		switch col.RawTypeNum {
		case TypeNumClob:
			d.Skip(2)
			d.UB2() // AL16UTF16 encoding indicator
			d.Skip(1)
			prefetch, _ = d.VarBytes()
		case TypeNumBlob:
			prefetch, _ = d.VarBytes()
		}
	}

	locator, _ := d.VarBytes()
	if d.Error() != nil {
		return types.OracleValue{}, fmt.Errorf("protocol: column %q: %w", col.Name, d.Error())
	}

	lob := types.Lob{
		Locator: types.LobLocator{Locator: locator, Size: size, ChunkSize: chunkSize},
		Data:    prefetch,
	}
	if col.RawTypeNum == TypeNumClob {
		return types.ClobValue(lob), nil
	}
	return types.BlobValue(lob), nil
}

func parseErrorInfo(d *encoding.Decoder, info *ErrorInfo, serverTTCFieldVersion uint8) {
	d.SkipUB4() // end of call status
	d.UB2()     // end to end sequence
	d.SkipUB4() // current row number
	d.UB2()     // error number hint, not authoritative
	d.UB2()     // array elem error
	d.UB2()     // array elem error
	info.CursorID = d.UB2()
	d.UB2()  // error position
	d.Byte() // sql type
	d.Byte() // fatal
	d.Byte() // flags
	d.Byte() // user cursor options
	d.Byte() // UPI parameter
	d.Byte() // warning flags

	parseRowid(d)

	d.SkipUB4() // OS error
	d.Byte()    // statement number
	d.Byte()    // call number
	d.UB2()     // padding
	d.SkipUB4() // success iters

	if numBytes := d.UB4(); numBytes > 0 {
		d.SkipChunked()
	}

	if numErrors := d.UB2(); numErrors > 0 {
		firstByte := d.Byte()
		for i := uint16(0); i < numErrors; i++ {
			if firstByte == LongLengthIndicator {
				d.SkipUB4()
			}
			d.UB2()
		}
		if firstByte == LongLengthIndicator {
			d.Skip(1)
		}
	}

	if numOffsets := d.UB4(); numOffsets > 0 {
		firstByte := d.Byte()
		for i := uint32(0); i < numOffsets; i++ {
			if firstByte == LongLengthIndicator {
				d.SkipUB4()
			}
			d.SkipUB4()
		}
		if firstByte == LongLengthIndicator {
			d.Skip(1)
		}
	}

	if numMessages := d.UB2(); numMessages > 0 {
		d.Skip(1) // packed size
		for i := uint16(0); i < numMessages; i++ {
			d.UB2() // chunk length
			d.VarString()
			d.Skip(2) // end marker
		}
	}

	info.ErrorNum = d.UB4()
	info.RowCount = d.UB8()

	if serverTTCFieldVersion >= CCapFieldVersion20_1 {
		d.SkipUB4() // sql type
		d.SkipUB4() // server checksum
	}

	if info.ErrorNum != 0 {
		message, _ := d.VarString()
		info.Message = message
	}
}

func parseReturnParameters(d *encoding.Decoder) {
	numParams := d.UB2()
	for i := uint16(0); i < numParams; i++ {
		d.SkipUB4()
	}

	if numBytes := d.UB2(); numBytes > 0 {
		d.Skip(int(numBytes))
	}

	numPairs := d.UB2()
	for i := uint16(0); i < numPairs; i++ {
		if textLen := d.UB2(); textLen > 0 {
			d.Skip(int(textLen))
		}
		if binLen := d.UB2(); binLen > 0 {
			d.Skip(int(binLen))
		}
		d.UB2() // keyword num
	}

	if numBytes := d.UB2(); numBytes > 0 {
		d.Skip(int(numBytes))
	}
}

func parseBitVector(d *encoding.Decoder, numColumns int) {
	d.UB2() // num columns sent
	numBytes := (numColumns + 7) / 8
	if numBytes > 0 {
		d.Skip(numBytes)
	}
}

// parseRowid decodes the fixed-format ROWID fields carried in the ERROR
// message's OCI call-status structure, returning "" when every field is
// zero (no ROWID reported).
func parseRowid(d *encoding.Decoder) string {
	rba := d.UB4()
	partitionID := d.UB2()
	d.Byte()
	blockNum := d.UB4()
	slotNum := d.UB2()

	if rba == 0 && partitionID == 0 && blockNum == 0 && slotNum == 0 {
		return ""
	}
	return fmt.Sprintf("%08X%04X%08X%04X", rba, partitionID, blockNum, slotNum)
}

// readColumnString reads a column-metadata string field: a UB4 presence
// indicator (0 means absent) followed, when present, by a length-prefixed
// string.
func readColumnString(d *encoding.Decoder) string {
	indicator := d.UB4()
	if indicator == 0 || d.Error() != nil {
		return ""
	}
	s, _ := d.VarString()
	return s
}

func parseStatusInfo(d *encoding.Decoder) {
	d.SkipUB4() // call status
	d.UB2()     // end to end sequence
}

// parseServerSidePiggyback consumes one server-side piggyback message,
// dispatching on its opcode. Every case is skip-only: this client has no
// session state (DRCP pooling, logical transaction ids, session
// signatures) for these messages to update.
func parseServerSidePiggyback(d *encoding.Decoder) {
	opcode := d.Byte()
	switch opcode {
	case PiggybackSessRet:
		d.SkipUB4() // session state
		d.UB2()     // session state serial
	case PiggybackLTXID:
		if numBytes := d.UB4(); numBytes > 0 {
			d.SkipChunked()
		}
	case PiggybackACReplayContext:
		d.SkipUB4() // flags
		d.SkipUB4() // error code
		if numBytes := d.UB4(); numBytes > 0 {
			d.SkipChunked()
		}
	case PiggybackExtSync:
		numPairs := d.UB2()
		for i := uint16(0); i < numPairs; i++ {
			if keyLen := d.UB2(); keyLen > 0 {
				d.Skip(int(keyLen))
			}
			if valueLen := d.UB4(); valueLen > 0 {
				d.SkipChunked()
			}
		}
	case PiggybackSessSignature:
		if numBytes := d.UB4(); numBytes > 0 {
			d.SkipChunked()
		}
	}
}
