package types

import "testing"

func TestFromRaw(t *testing.T) {
	tests := []struct {
		raw  uint8
		want OracleType
	}{
		{1, Varchar2},
		{2, Number},
		{3, BinaryInteger},
		{8, Long},
		{96, Char},
		{12, Date},
		{112, Clob},
		{113, Blob},
		{255, Unknown},
	}
	for _, tt := range tests {
		if got := FromRaw(tt.raw); got != tt.want {
			t.Errorf("FromRaw(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		typ       OracleType
		precision int8
		scale     int8
		maxSize   uint32
		want      string
	}{
		{"bare number", Number, 0, 0, 0, "NUMBER"},
		{"number with precision only", Number, 10, 0, 0, "NUMBER(10)"},
		{"number with precision and scale", Number, 10, 2, 0, "NUMBER(10,2)"},
		{"varchar2 with size", Varchar2, 0, 0, 50, "VARCHAR2(50)"},
		{"char with size", Char, 0, 0, 1, "CHAR(1)"},
		{"date has no size suffix", Date, 0, 0, 0, "DATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.typ, tt.precision, tt.scale, tt.maxSize); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsLob(t *testing.T) {
	if !Clob.IsLob() || !Blob.IsLob() {
		t.Error("Clob and Blob should report IsLob() true")
	}
	if Number.IsLob() || Varchar2.IsLob() {
		t.Error("Number and Varchar2 should report IsLob() false")
	}
}
