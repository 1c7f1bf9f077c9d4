package encoding

import "strings"

// DecodeNumber decodes Oracle's variable-length base-100 NUMBER wire format
// into a decimal string. The format preserves full precision, so the result
// is returned as text rather than a float64; callers that want a numeric
// type can parse it themselves.
//
// Wire format: the first byte is a biased exponent with the sign folded into
// its high bit. Positive numbers store base-100 digit pairs as byte-1;
// negative numbers store them as 101-byte and bitwise-complement the
// exponent byte, with an optional trailing 0x66 terminator.
func DecodeNumber(b []byte) string {
	if len(b) == 0 {
		return "0"
	}

	expByte := b[0]
	isPositive := expByte&0x80 != 0

	var exponent int16
	if isPositive {
		exponent = int16(expByte) - 193
	} else {
		exponent = int16(^expByte) - 193
	}
	decimalPointIndex := exponent*2 + 2

	if len(b) == 1 {
		if isPositive {
			return "0"
		}
		return "-1e126"
	}

	mantissaEnd := len(b)
	if !isPositive && b[len(b)-1] == 102 {
		mantissaEnd--
	}

	digits := make([]byte, 0, (mantissaEnd-1)*2)
	for i := 1; i < mantissaEnd; i++ {
		by := b[i]
		var digitPair byte
		if isPositive {
			digitPair = by - 1
		} else {
			digitPair = 101 - by
		}
		d1 := digitPair / 10
		d2 := digitPair % 10

		switch {
		case len(digits) == 0 && d1 == 0:
			decimalPointIndex--
			if d2 != 0 || i < mantissaEnd-1 {
				digits = append(digits, d2)
			} else {
				decimalPointIndex--
			}
		case d1 == 10:
			digits = append(digits, 1, 0)
			decimalPointIndex++
		default:
			digits = append(digits, d1)
			if d2 != 0 || i < mantissaEnd-1 {
				digits = append(digits, d2)
			}
		}
	}

	for len(digits) > 0 && digits[len(digits)-1] == 0 {
		digits = digits[:len(digits)-1]
	}
	if len(digits) == 0 {
		return "0"
	}

	var sb strings.Builder
	if !isPositive {
		sb.WriteByte('-')
	}

	numDigits := int16(len(digits))
	switch {
	case decimalPointIndex <= 0:
		sb.WriteString("0.")
		for i := decimalPointIndex; i < 0; i++ {
			sb.WriteByte('0')
		}
		for _, d := range digits {
			sb.WriteByte('0' + d)
		}
	case decimalPointIndex >= numDigits:
		for _, d := range digits {
			sb.WriteByte('0' + d)
		}
		for i := numDigits; i < decimalPointIndex; i++ {
			sb.WriteByte('0')
		}
	default:
		for i, d := range digits {
			if int16(i) == decimalPointIndex {
				sb.WriteByte('.')
			}
			sb.WriteByte('0' + d)
		}
	}

	return sb.String()
}

// Number reads a length-prefixed NUMBER column value and decodes it to a
// decimal string. NULL values are reported via ok=false.
func (d *Decoder) Number() (s string, ok bool) {
	b, ok := d.VarBytes()
	if !ok {
		return "", false
	}
	return DecodeNumber(b), true
}
