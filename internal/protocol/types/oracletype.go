// Package types holds the column/row/value model used by the TTC response
// parser: the Oracle type a column carries, its metadata as sent in
// DESCRIBE_INFO, and the decoded row values built from ROW_DATA.
package types

import "fmt"

// OracleType identifies the logical type of a column, derived from the
// wire's raw type number (protocol.TypeNum*). Oracle's own catalog uses a
// much larger type number space than this client understands; OracleType
// only names the subset a thin SELECT-only client needs to decode.
type OracleType byte

// OracleType values. Unlike the wire's raw type numbers these are compact
// and client-defined, the same way typeCode values are client-defined.
const (
	Unknown OracleType = iota
	Varchar2
	Number
	BinaryInteger
	Long
	Char
	Date
	Clob
	Blob
)

// FromRaw maps a wire type number, as carried in ColumnMetadata.RawTypeNum,
// to an OracleType. NCLOB is reachable only via the LOB descriptor's
// character-set flag, never from the raw type number alone, so it has no
// case here.
func FromRaw(rawTypeNum uint8) OracleType {
	switch rawTypeNum {
	case 1:
		return Varchar2
	case 2:
		return Number
	case 3:
		return BinaryInteger
	case 8:
		return Long
	case 96:
		return Char
	case 12:
		return Date
	case 112:
		return Clob
	case 113:
		return Blob
	default:
		return Unknown
	}
}

// String implements fmt.Stringer, returning the bare type name (NUMBER,
// VARCHAR2, ...); DisplayName adds precision/scale or size.
func (t OracleType) String() string {
	switch t {
	case Varchar2:
		return "VARCHAR2"
	case Number:
		return "NUMBER"
	case BinaryInteger:
		return "BINARY_INTEGER"
	case Long:
		return "LONG"
	case Char:
		return "CHAR"
	case Date:
		return "DATE"
	case Clob:
		return "CLOB"
	case Blob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// IsLob reports whether t is CLOB or BLOB, the types whose ROW_DATA value
// is a LOB locator, with inline bytes only when prefetch was defined.
func (t OracleType) IsLob() bool {
	return t == Clob || t == Blob
}

// DisplayName renders a column's full type name including precision/scale
// for NUMBER and length for VARCHAR2/CHAR, matching oracle_type.rs's own
// Display impl (e.g. "NUMBER(10,2)", "NUMBER", "VARCHAR2(50)").
func DisplayName(t OracleType, precision, scale int8, maxSize uint32) string {
	switch t {
	case Number:
		if precision == 0 && scale == 0 {
			return "NUMBER"
		}
		if scale == 0 {
			return fmt.Sprintf("NUMBER(%d)", precision)
		}
		return fmt.Sprintf("NUMBER(%d,%d)", precision, scale)
	case Varchar2, Char:
		return fmt.Sprintf("%s(%d)", t, maxSize)
	default:
		return t.String()
	}
}
