package types

import (
	"testing"
	"time"
)

func TestOracleValueAccessors(t *testing.T) {
	tests := []struct {
		name  string
		value OracleValue
		kind  ValueKind
	}{
		{"null", NullValue(), KindNull},
		{"string", StringValue("hello"), KindString},
		{"number", NumberValue("42"), KindNumber},
		{"date", DateValue(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)), KindDate},
		{"clob", ClobValue(Lob{}), KindClob},
		{"blob", BlobValue(Lob{}), KindBlob},
		{"raw", RawValue([]byte{1, 2, 3}), KindRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.value.Kind, tt.kind)
			}
			if tt.value.IsNull() != (tt.kind == KindNull) {
				t.Errorf("IsNull() = %v, want %v", tt.value.IsNull(), tt.kind == KindNull)
			}
		})
	}
}

func TestOracleValueAsStringRejectsWrongKind(t *testing.T) {
	v := DateValue(time.Now())
	if _, ok := v.AsString(); ok {
		t.Error("AsString should fail for a Date value")
	}
}

func TestOracleValueToInt64(t *testing.T) {
	if i, ok := NumberValue("123").ToInt64(); !ok || i != 123 {
		t.Errorf("ToInt64() = %d, %v, want 123, true", i, ok)
	}
	if _, ok := StringValue("123").ToInt64(); ok {
		t.Error("ToInt64 should fail for a String value")
	}
	if _, ok := NumberValue("not a number").ToInt64(); ok {
		t.Error("ToInt64 should fail to parse non-numeric text")
	}
}

func TestOracleValueToFloat64(t *testing.T) {
	if f, ok := NumberValue("3.14").ToFloat64(); !ok || f != 3.14 {
		t.Errorf("ToFloat64() = %v, %v, want 3.14, true", f, ok)
	}
}

func TestOracleValueAsRaw(t *testing.T) {
	raw := []byte{0xDE, 0xAD}
	if b, ok := RawValue(raw).AsRaw(); !ok || string(b) != string(raw) {
		t.Errorf("AsRaw() = %v, %v, want %v, true", b, ok, raw)
	}

	blob := BlobValue(Lob{Data: raw})
	if b, ok := blob.AsRaw(); !ok || string(b) != string(raw) {
		t.Errorf("AsRaw() on prefetched Blob = %v, %v, want %v, true", b, ok, raw)
	}

	unprefetched := BlobValue(Lob{})
	if _, ok := unprefetched.AsRaw(); ok {
		t.Error("AsRaw should fail for a Blob with no prefetched data")
	}
}

func TestClobStringDecodesAL16UTF16(t *testing.T) {
	// "hi" as big-endian UTF-16 code units.
	data := []byte{0x00, 'h', 0x00, 'i'}
	v := ClobValue(Lob{Data: data})

	s, ok := v.ClobString()
	if !ok {
		t.Fatal("ClobString() ok = false, want true")
	}
	if s != "hi" {
		t.Errorf("ClobString() = %q, want %q", s, "hi")
	}
}

func TestClobStringRequiresPrefetchedData(t *testing.T) {
	v := ClobValue(Lob{})
	if _, ok := v.ClobString(); ok {
		t.Error("ClobString should fail when the CLOB wasn't prefetched")
	}
}

func TestOracleValueString(t *testing.T) {
	tests := []struct {
		name  string
		value OracleValue
		want  string
	}{
		{"null", NullValue(), "NULL"},
		{"string", StringValue("abc"), "abc"},
		{"number", NumberValue("7"), "7"},
		{"date", DateValue(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)), "2026-03-04 05:06:07"},
		{"raw", RawValue([]byte{1, 2, 3}), "<RAW: 3 bytes>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
