package types

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// ValueKind identifies which of OracleValue's fields holds the decoded
// column value.
type ValueKind byte

// ValueKind values.
const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindDate
	KindClob
	KindBlob
	KindRaw
)

// OracleValue is a single decoded column value. Only the field matching
// Kind is meaningful; the others are zero. NUMBER is kept as decimal text
// (via encoding.DecodeNumber) rather than a float so full precision
// survives — callers that want a machine number call ToInt64/ToFloat64.
type OracleValue struct {
	Kind ValueKind
	str  string
	date time.Time
	lob  Lob
	raw  []byte
}

// NullValue returns a NULL OracleValue.
func NullValue() OracleValue { return OracleValue{Kind: KindNull} }

// StringValue wraps a VARCHAR2/CHAR/LONG column value.
func StringValue(s string) OracleValue { return OracleValue{Kind: KindString, str: s} }

// NumberValue wraps a NUMBER/BINARY_INTEGER column value, still as the
// decimal text the NUMBER decoder produced.
func NumberValue(s string) OracleValue { return OracleValue{Kind: KindNumber, str: s} }

// DateValue wraps a DATE column value.
func DateValue(t time.Time) OracleValue { return OracleValue{Kind: KindDate, date: t} }

// ClobValue wraps a CLOB column value.
func ClobValue(l Lob) OracleValue { return OracleValue{Kind: KindClob, lob: l} }

// BlobValue wraps a BLOB column value.
func BlobValue(l Lob) OracleValue { return OracleValue{Kind: KindBlob, lob: l} }

// RawValue wraps a RAW column value.
func RawValue(b []byte) OracleValue { return OracleValue{Kind: KindRaw, raw: b} }

// IsNull reports whether the value is NULL.
func (v OracleValue) IsNull() bool { return v.Kind == KindNull }

// AsString returns the value as a string for String and Number kinds.
func (v OracleValue) AsString() (string, bool) {
	switch v.Kind {
	case KindString, KindNumber:
		return v.str, true
	default:
		return "", false
	}
}

// ToInt64 parses a Number value as an int64.
func (v OracleValue) ToInt64() (int64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	i, err := strconv.ParseInt(v.str, 10, 64)
	return i, err == nil
}

// ToFloat64 parses a Number value as a float64.
func (v OracleValue) ToFloat64() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 64)
	return f, err == nil
}

// AsDate returns the value's time.Time for Date values.
func (v OracleValue) AsDate() (time.Time, bool) {
	if v.Kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// AsClob returns the value's Lob for Clob values.
func (v OracleValue) AsClob() (Lob, bool) {
	if v.Kind != KindClob {
		return Lob{}, false
	}
	return v.lob, true
}

// AsBlob returns the value's Lob for Blob values.
func (v OracleValue) AsBlob() (Lob, bool) {
	if v.Kind != KindBlob {
		return Lob{}, false
	}
	return v.lob, true
}

// AsRaw returns the value's bytes for Raw and prefetched Blob values.
func (v OracleValue) AsRaw() ([]byte, bool) {
	switch v.Kind {
	case KindRaw:
		return v.raw, true
	case KindBlob:
		return v.lob.Data, v.lob.HasData()
	default:
		return nil, false
	}
}

// al16UTF16 is the codec for AL16UTF16, Oracle's big-endian UTF-16 CLOB wire
// charset: no byte-order mark, so IgnoreBOM stops the decoder from treating
// a leading U+FEFF in the data itself as anything but a literal character.
var al16UTF16 = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// ClobString decodes a prefetched CLOB's AL16UTF16 bytes to a Go string.
// Returns ok=false if the CLOB's data wasn't prefetched.
func (v OracleValue) ClobString() (string, bool) {
	if v.Kind != KindClob || !v.lob.HasData() {
		return "", false
	}
	decoded, err := al16UTF16.NewDecoder().Bytes(v.lob.Data)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

// String implements fmt.Stringer the way a client displaying a result set
// row would want to render a cell.
func (v OracleValue) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindString, KindNumber:
		return v.str
	case KindDate:
		return v.date.Format("2006-01-02 15:04:05")
	case KindClob:
		if s, ok := v.ClobString(); ok {
			return s
		}
		return fmt.Sprintf("<CLOB: %d bytes>", v.lob.Size())
	case KindBlob:
		if v.lob.HasData() {
			return fmt.Sprintf("<BLOB: %d bytes>", len(v.lob.Data))
		}
		return fmt.Sprintf("<BLOB: %d bytes>", v.lob.Size())
	case KindRaw:
		return fmt.Sprintf("<RAW: %d bytes>", len(v.raw))
	default:
		return ""
	}
}
