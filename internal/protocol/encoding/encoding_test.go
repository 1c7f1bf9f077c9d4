package encoding

import (
	"bytes"
	"testing"
	"time"
)

func testDecodeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"zero", []byte{0x80}, "0"},
		{"one", []byte{0xC1, 0x02}, "1"},
		{"ten", []byte{0xC1, 0x0B}, "10"},
		{"hundred", []byte{0xC2, 0x02}, "100"},
		{"negative one", []byte{0x3E, 0x64, 0x66}, "-1"},
		{"one half", []byte{0xC0, 0x33}, "0.5"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := DecodeNumber(test.in); got != test.want {
				t.Fatalf("DecodeNumber(%v) = %q, want %q", test.in, got, test.want)
			}
		})
	}
}

func testDecodeDate(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    time.Time
		wantErr bool
	}{
		{
			name: "2024-10-21 12:36:05",
			in:   []byte{0x78, 0x7C, 0x0A, 0x15, 0x0D, 0x25, 0x06},
			want: time.Date(2024, 10, 21, 12, 36, 5, 0, time.UTC),
		},
		{
			name: "midnight",
			in:   []byte{0x78, 0x7C, 0x01, 0x0F, 0x01, 0x01, 0x01},
			want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "last second of year",
			in:   []byte{0x78, 0x7C, 0x0C, 0x1F, 0x18, 0x3C, 0x3C},
			want: time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "pre-2000 year",
			in:   []byte{0x77, 0xC7, 0x06, 0x0F, 0x0D, 0x1F, 0x2E},
			want: time.Date(1999, 6, 15, 12, 30, 45, 0, time.UTC),
		},
		{
			name:    "wrong length",
			in:      []byte{0x78, 0x7C, 0x0A},
			wantErr: true,
		},
		{
			name:    "invalid month",
			in:      []byte{0x78, 0x7C, 0x0D, 0x0F, 0x01, 0x01, 0x01},
			wantErr: true,
		},
		{
			name:    "invalid day",
			in:      []byte{0x78, 0x7C, 0x01, 0x20, 0x01, 0x01, 0x01},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := DecodeDate(test.in)
			if test.wantErr {
				if err == nil {
					t.Fatalf("DecodeDate(%v) = %v, want error", test.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeDate(%v) unexpected error: %v", test.in, err)
			}
			if !got.Equal(test.want) {
				t.Fatalf("DecodeDate(%v) = %v, want %v", test.in, got, test.want)
			}
		})
	}
}

func testEncodeDateRoundtrip(t *testing.T) {
	want := time.Date(2024, 10, 21, 12, 36, 5, 0, time.UTC)
	b := EncodeDate(want)
	got, err := DecodeDate(b)
	if err != nil {
		t.Fatalf("DecodeDate after EncodeDate: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("roundtrip mismatch: got %v, want %v", got, want)
	}
}

func testVarBytesRoundtrip(t *testing.T) {
	tests := [][]byte{
		nil,
		{},
		[]byte("hello"),
		bytes.Repeat([]byte{0x42}, 300),
		bytes.Repeat([]byte{0x07}, 200000),
	}

	for _, in := range tests {
		var buf bytes.Buffer
		enc := NewEncoder(&buf)
		enc.VarBytes(in)
		if err := enc.Error(); err != nil {
			t.Fatalf("encode error: %v", err)
		}

		dec := NewDecoder(&buf)
		got, ok := dec.VarBytes()
		if err := dec.Error(); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if len(in) == 0 {
			if ok && len(got) != 0 {
				t.Fatalf("expected empty result, got %v", got)
			}
			continue
		}
		if !ok {
			t.Fatalf("expected ok=true for input of length %d", len(in))
		}
		if !bytes.Equal(got, in) {
			t.Fatalf("roundtrip mismatch for length %d", len(in))
		}
	}
}

func testUB4Roundtrip(t *testing.T) {
	values := []uint32{0, 1, 0xff, 0x100, 0xffff, 0x10000, 0xffffffff}
	for _, v := range values {
		var buf bytes.Buffer
		enc := NewEncoder(&buf)
		enc.UB4(v)

		dec := NewDecoder(&buf)
		got := dec.UB4()
		if err := dec.Error(); err != nil {
			t.Fatalf("UB4(%d) decode error: %v", v, err)
		}
		if got != v {
			t.Fatalf("UB4(%d) roundtrip = %d", v, got)
		}
	}
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		name string
		fct  func(t *testing.T)
	}{
		{"decodeNumber", testDecodeNumber},
		{"decodeDate", testDecodeDate},
		{"encodeDateRoundtrip", testEncodeDateRoundtrip},
		{"varBytesRoundtrip", testVarBytesRoundtrip},
		{"ub4Roundtrip", testUB4Roundtrip},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.fct(t)
		})
	}
}
