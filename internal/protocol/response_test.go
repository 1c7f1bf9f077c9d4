package protocol

import (
	"bytes"
	"testing"

	"github.com/orathin/orathin/internal/protocol/encoding"
	"github.com/orathin/orathin/internal/protocol/types"
)

func encodeColumnString(e *encoding.Encoder, s string) {
	if s == "" {
		e.UB4(0)
		return
	}
	e.UB4(1)
	e.VarString(s)
}

func encodeColumnMetadata(e *encoding.Encoder, name string, rawTypeNum byte, precision, scale int8, maxSize, bufferSize uint32, nullable bool) {
	e.Byte(rawTypeNum)
	e.Byte(0) // flags
	e.Byte(byte(precision))
	e.Byte(byte(scale))
	e.UB4(bufferSize)
	e.UB4(0) // max array elements
	e.UB8(0) // cont flags
	e.VarBytes(nil) // OID
	e.UB2(0)         // version
	e.UB2(0)         // charset id
	e.Byte(0)        // charset form
	e.UB4(maxSize)
	// ttcFieldVersion < CCapFieldVersion12_2 in these tests, so no oaccolid
	if nullable {
		e.Byte(1)
	} else {
		e.Byte(0)
	}
	e.Byte(0) // v7 length
	encodeColumnString(e, name)
	encodeColumnString(e, "") // schema
	encodeColumnString(e, "") // type name
	e.UB2(0)                  // column position
	e.UB4(0)                  // uds flags
}

func encodeDescribeInfo(e *encoding.Encoder, cols []func(*encoding.Encoder)) {
	e.UB4(100) // max row size
	e.UB4(uint32(len(cols)))
	if len(cols) > 0 {
		e.Byte(0) // flags
	}
	for _, col := range cols {
		col(e)
	}
	e.UB4(0) // num_bytes
	e.UB4(0) // dcbflag
	e.UB4(0) // dcbmdbz
	e.UB4(0) // dcbmnpr
	e.UB4(0) // dcbmxpr
	e.UB4(0) // num_bytes2
}

func TestParseExecuteResponseWithRows(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)

	e.Byte(MsgTypeDescribeInfo)
	e.Byte(0) // skip_raw_bytes_chunked: zero-length, nothing to skip
	encodeDescribeInfo(e, []func(*encoding.Encoder){
		func(e *encoding.Encoder) {
			encodeColumnMetadata(e, "NAME", TypeNumVarchar, 0, 0, 50, 50, true)
		},
		func(e *encoding.Encoder) {
			encodeColumnMetadata(e, "ID", TypeNumNumber, 10, 0, 22, 22, false)
		},
	})

	e.Byte(MsgTypeRowData)
	e.VarBytes([]byte("hello"))
	e.VarBytes([]byte{0xC1, 0x2B}) // NUMBER encoding of 42

	e.Byte(MsgTypeEndOfResponse)

	if err := e.Error(); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	resp, err := ParseExecuteResponse(buf.Bytes(), 1, 1)
	if err != nil {
		t.Fatalf("ParseExecuteResponse: %v", err)
	}
	if len(resp.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(resp.Columns))
	}
	if resp.Columns[0].Name != "NAME" || resp.Columns[1].Name != "ID" {
		t.Fatalf("unexpected column names: %+v", resp.Columns)
	}
	if len(resp.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(resp.Rows))
	}
	row := resp.Rows[0]
	if s, ok := row.Values[0].AsString(); !ok || s != "hello" {
		t.Errorf("column 0 = %v, want %q", row.Values[0], "hello")
	}
	if n, ok := row.Values[1].AsString(); !ok || n != "42" {
		t.Errorf("column 1 = %v, want %q", row.Values[1], "42")
	}
	if !resp.MoreRows {
		t.Error("expected MoreRows true on success")
	}
}

func TestParseExecuteResponseNullColumn(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)

	e.Byte(MsgTypeDescribeInfo)
	e.Byte(0)
	encodeDescribeInfo(e, []func(*encoding.Encoder){
		func(e *encoding.Encoder) {
			encodeColumnMetadata(e, "NAME", TypeNumVarchar, 0, 0, 50, 50, true)
		},
	})
	e.Byte(MsgTypeRowData)
	e.Byte(0) // NULL length indicator
	e.Byte(MsgTypeEndOfResponse)

	resp, err := ParseExecuteResponse(buf.Bytes(), 1, 1)
	if err != nil {
		t.Fatalf("ParseExecuteResponse: %v", err)
	}
	if !resp.Rows[0].Values[0].IsNull() {
		t.Error("expected NULL column value")
	}
}

func TestParseExecuteResponseColumnMetadataVersionGated(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)

	e.Byte(MsgTypeDescribeInfo)
	e.Byte(0)
	encodeDescribeInfo(e, []func(*encoding.Encoder){
		func(e *encoding.Encoder) {
			e.Byte(TypeNumVarchar)
			e.Byte(0) // flags
			e.Byte(0) // precision
			e.Byte(0) // scale
			e.UB4(50) // buffer size
			e.UB4(0)  // max array elements
			e.UB8(0)  // cont flags
			e.VarBytes(nil)
			e.UB2(0)  // version
			e.UB2(0)  // charset id
			e.Byte(0) // charset form
			e.UB4(50) // max size
			e.UB4(0)  // oaccolid (ttcFieldVersion >= 12.2)
			e.Byte(1) // nullable
			e.Byte(0) // v7 length
			encodeColumnString(e, "NAME")
			encodeColumnString(e, "")
			encodeColumnString(e, "")
			e.UB2(0) // column position
			e.UB4(0) // uds flags
			encodeColumnString(e, "")
			encodeColumnString(e, "")
			e.UB4(0) // annotations count, none
		},
	})
	e.Byte(MsgTypeEndOfResponse)

	resp, err := ParseExecuteResponse(buf.Bytes(), CCapFieldVersion23_1Ext3, CCapFieldVersion23_1Ext3)
	if err != nil {
		t.Fatalf("ParseExecuteResponse: %v", err)
	}
	if len(resp.Columns) != 1 || resp.Columns[0].Name != "NAME" {
		t.Fatalf("unexpected columns: %+v", resp.Columns)
	}
}

func TestParseExecuteResponseSkipsServerSidePiggyback(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)

	e.Byte(MsgTypeServerSidePiggyback)
	e.Byte(PiggybackSessRet)
	e.UB4(0) // session state
	e.UB2(0) // session state serial

	e.Byte(MsgTypeServerSidePiggyback)
	e.Byte(PiggybackLTXID)
	e.UB4(0) // no txn id bytes

	e.Byte(MsgTypeEndOfResponse)

	resp, err := ParseExecuteResponse(buf.Bytes(), 1, 1)
	if err != nil {
		t.Fatalf("ParseExecuteResponse: %v", err)
	}
	if len(resp.Columns) != 0 || len(resp.Rows) != 0 {
		t.Fatalf("expected no columns or rows, got %+v", resp)
	}
	if !resp.MoreRows {
		t.Error("expected MoreRows true")
	}
}

// al16UTF16BE encodes s as big-endian UTF-16 with no byte-order mark,
// matching AL16UTF16's wire encoding for prefetched CLOB data. Every rune
// here is ASCII, so each one is a single big-endian code unit.
func al16UTF16BE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

func TestParseLobValueClobWithPrefetch(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)

	e.Byte(1)        // num_bytes_indicator: present
	e.UB8(11)        // size
	e.UB4(8192)      // chunk size
	e.Zeros(2)       // skipped
	e.UB2(1)         // encoding indicator
	e.Zeros(1)       // skipped
	e.VarBytes(al16UTF16BE("Hello, LOB!"))
	e.VarBytes([]byte{1, 2, 3, 4, 5, 6, 7, 8}) // locator

	if err := e.Error(); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	col := types.ColumnMetadata{Name: "C", RawTypeNum: TypeNumClob, LobPrefetchLen: 4000}
	d := encoding.NewDecoder(&buf)
	v, err := parseColumnValue(d, col)
	if err != nil {
		t.Fatalf("parseColumnValue: %v", err)
	}

	lob, ok := v.AsClob()
	if !ok {
		t.Fatalf("expected a CLOB value, got %+v", v)
	}
	if !lob.HasData() {
		t.Fatal("expected prefetched data")
	}
	if lob.Locator.Size != 11 {
		t.Errorf("locator size = %d, want 11", lob.Locator.Size)
	}
	s, ok := v.ClobString()
	if !ok || s != "Hello, LOB!" {
		t.Errorf("ClobString() = %q, %v, want %q, true", s, ok, "Hello, LOB!")
	}
}

func TestParseLobValueLocatorOnly(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)

	e.Byte(1)   // num_bytes_indicator: present
	e.UB8(11)   // size
	e.UB4(8192) // chunk size
	e.VarBytes([]byte{1, 2, 3, 4, 5, 6, 7, 8}) // locator, no prefetch data

	if err := e.Error(); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	col := types.ColumnMetadata{Name: "C", RawTypeNum: TypeNumClob}
	d := encoding.NewDecoder(&buf)
	v, err := parseColumnValue(d, col)
	if err != nil {
		t.Fatalf("parseColumnValue: %v", err)
	}

	lob, ok := v.AsClob()
	if !ok {
		t.Fatalf("expected a CLOB value, got %+v", v)
	}
	if lob.HasData() {
		t.Error("expected no prefetched data")
	}
	if lob.Locator.Size != 11 {
		t.Errorf("locator size = %d, want 11", lob.Locator.Size)
	}
}

func TestParseLobValueNull(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)
	e.Byte(0) // num_bytes_indicator: NULL

	col := types.ColumnMetadata{Name: "C", RawTypeNum: TypeNumBlob, LobPrefetchLen: 4000}
	d := encoding.NewDecoder(&buf)
	v, err := parseColumnValue(d, col)
	if err != nil {
		t.Fatalf("parseColumnValue: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("expected NULL, got %+v", v)
	}
}

func TestParseLobValueBfileLocatorOnly(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)
	e.Byte(1) // num_bytes_indicator: present
	e.VarBytes([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	col := types.ColumnMetadata{Name: "C", RawTypeNum: TypeNumBFile}
	d := encoding.NewDecoder(&buf)
	v, err := parseColumnValue(d, col)
	if err != nil {
		t.Fatalf("parseColumnValue: %v", err)
	}
	lob, ok := v.AsBlob()
	if !ok {
		t.Fatalf("expected a BLOB-kind value for BFILE, got %+v", v)
	}
	if lob.HasData() {
		t.Error("BFILE never prefetches data")
	}
}

func TestParseFetchResponseNoDataFound(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewEncoder(&buf)
	e.Byte(MsgTypeError)
	e.UB4(0) // call status
	e.UB2(0) // end to end seq
	e.UB4(0) // row number
	e.UB2(0) // error num hint
	e.UB2(0)
	e.UB2(0)
	e.UB2(7) // cursor id
	e.UB2(0) // error position
	e.Byte(0)
	e.Byte(0)
	e.Byte(0)
	e.Byte(0)
	e.Byte(0)
	e.Byte(0)
	// rowid: all zero -> no rowid
	e.UB4(0)
	e.UB2(0)
	e.Byte(0)
	e.UB4(0)
	e.UB2(0)
	e.UB4(0) // os error
	e.Byte(0)
	e.Byte(0)
	e.UB2(0)
	e.UB4(0) // success iters
	e.UB4(0) // oerrdd num bytes
	e.UB2(0) // batch error count
	e.UB4(0) // batch offset count
	e.UB2(0) // batch error messages
	e.UB4(1403)
	e.UB8(0)
	e.VarString("ORA-01403: no data found")
	e.Byte(MsgTypeEndOfResponse)

	if err := e.Error(); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	resp, err := ParseFetchResponse(buf.Bytes(), nil, 1)
	if err != nil {
		t.Fatalf("ParseFetchResponse: %v", err)
	}
	if resp.Error.ErrorNum != 1403 {
		t.Errorf("error num = %d, want 1403", resp.Error.ErrorNum)
	}
	if resp.Error.CursorID != 7 {
		t.Errorf("cursor id = %d, want 7", resp.Error.CursorID)
	}
	if resp.MoreRows {
		t.Error("expected MoreRows false on ORA-01403")
	}
	if resp.Error.Message == "" {
		t.Error("expected a non-empty error message")
	}
}
