package encoding

import (
	"fmt"
	"time"
)

// DecodeDate decodes Oracle's fixed 7-byte DATE wire format into a
// time.Time in UTC (Oracle DATE carries no timezone information). Byte
// layout: century+100, year-in-century+100, month, day, hour+1, minute+1,
// second+1.
func DecodeDate(b []byte) (time.Time, error) {
	if len(b) != 7 {
		return time.Time{}, fmt.Errorf("encoding: DATE value must be exactly 7 bytes, got %d", len(b))
	}

	century := int(b[0]) - 100
	yearInCentury := int(b[1]) - 100
	year := century*100 + yearInCentury

	month := int(b[2])
	day := int(b[3])
	hour := int(b[4]) - 1
	minute := int(b[5]) - 1
	second := int(b[6]) - 1

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("encoding: invalid DATE month %d", month)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("encoding: invalid DATE day %d", day)
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("encoding: invalid DATE hour %d", hour)
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("encoding: invalid DATE minute %d", minute)
	}
	if second < 0 || second > 59 {
		return time.Time{}, fmt.Errorf("encoding: invalid DATE second %d", second)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// EncodeDate encodes t into Oracle's 7-byte DATE wire format. t is
// interpreted in UTC; callers that care about timezone semantics must
// convert before calling.
func EncodeDate(t time.Time) []byte {
	t = t.UTC()
	year := t.Year()
	century := year / 100
	yearInCentury := year % 100

	return []byte{
		byte(century + 100),
		byte(yearInCentury + 100),
		byte(t.Month()),
		byte(t.Day()),
		byte(t.Hour() + 1),
		byte(t.Minute() + 1),
		byte(t.Second() + 1),
	}
}

// Date reads a length-prefixed DATE column value. NULL values are reported
// via ok=false.
func (d *Decoder) Date() (t time.Time, ok bool, err error) {
	b, ok := d.VarBytes()
	if !ok {
		return time.Time{}, false, nil
	}
	t, err = DecodeDate(b)
	return t, true, err
}
