package types

// Bind/define flags and LOB-prefetch continuation bits used when building
// FetchVar entries for a DEFINE message.
const (
	bindUseIndicators = 0x01
	lobPrefetchFlag   = 0x0000000000000002

	charsetUTF8    = 873
	csFormImplicit = 1

	// maxUrowidLength is the buffer size used when a ROWID/UROWID column
	// is redescribed as VARCHAR2 ahead of a define-redescribe fetch.
	maxUrowidLength = 5267

	// jsonMaxLength and vectorMaxLength stand in for JSON's and VECTOR's
	// define buffer/prefetch size: neither type has a fixed upper bound,
	// so both are defined the same way an unbounded LOB would be, letting
	// the server report the value's actual size rather than the client
	// guessing one.
	jsonMaxLength   = 0xFFFFFFFF
	vectorMaxLength = 0xFFFFFFFF
)

// DefaultLobPrefetchLen is the LOB prefetch length used when a Config
// doesn't override it: the same 4000-byte default Oracle's own thin
// clients request.
const DefaultLobPrefetchLen = 4000

// FetchVar describes how the client wants one column's values formatted
// by the server: its Oracle type number, buffer size, and — for CLOB/BLOB
// columns — whether to prefetch LOB data inline rather than returning a
// bare locator. Sent to the server in a DEFINE message after DESCRIBE_INFO,
// this is what triggers LOB prefetch and the define-redescribe cycle when
// a column's actual size exceeds what the client originally defined.
type FetchVar struct {
	OraTypeNum     uint8
	Flags          uint8
	BufferSize     uint32
	ContFlag       uint64
	CharsetID      uint16
	CharsetForm    uint8
	LobPrefetchLen uint32
}

// NewFetchVar builds a FetchVar for a non-LOB column.
func NewFetchVar(oraTypeNum uint8, bufferSize uint32, charsetForm uint8) FetchVar {
	var charsetID uint16
	if charsetForm != 0 {
		charsetID = charsetUTF8
	}
	return FetchVar{
		OraTypeNum:  oraTypeNum,
		Flags:       bindUseIndicators,
		BufferSize:  bufferSize,
		CharsetID:   charsetID,
		CharsetForm: charsetForm,
	}
}

// NewLobFetchVar builds a FetchVar for a CLOB/BLOB column with LOB
// prefetch enabled up to prefetchLen bytes.
func NewLobFetchVar(oraTypeNum uint8, bufferSize, prefetchLen uint32, isClob bool) FetchVar {
	fv := FetchVar{
		OraTypeNum:     oraTypeNum,
		Flags:          bindUseIndicators,
		BufferSize:     bufferSize,
		ContFlag:       lobPrefetchFlag,
		LobPrefetchLen: prefetchLen,
	}
	if isClob {
		fv.CharsetID = charsetUTF8
		fv.CharsetForm = 1
	}
	return fv
}

// NewJSONFetchVar builds a FetchVar for a JSON column. JSON has no fixed
// size, so it is always defined with LOB prefetch enabled, the same way
// CLOB/BLOB are once a prefetch length is requested.
func NewJSONFetchVar() FetchVar {
	return FetchVar{
		OraTypeNum:     119,
		Flags:          bindUseIndicators,
		BufferSize:     jsonMaxLength,
		ContFlag:       lobPrefetchFlag,
		CharsetID:      charsetUTF8,
		CharsetForm:    csFormImplicit,
		LobPrefetchLen: jsonMaxLength,
	}
}

// NewVectorFetchVar builds a FetchVar for a VECTOR column, defined with
// LOB prefetch enabled and no character set (VECTOR is binary).
func NewVectorFetchVar() FetchVar {
	return FetchVar{
		OraTypeNum:     127,
		Flags:          bindUseIndicators,
		BufferSize:     vectorMaxLength,
		ContFlag:       lobPrefetchFlag,
		LobPrefetchLen: vectorMaxLength,
	}
}

// IsLob reports whether this FetchVar is for a CLOB, BLOB, or BFILE column.
func (fv FetchVar) IsLob() bool {
	return fv.OraTypeNum == 112 || fv.OraTypeNum == 113 || fv.OraTypeNum == 114
}

// HasLobPrefetch reports whether LOB prefetch is requested.
func (fv FetchVar) HasLobPrefetch() bool {
	return fv.ContFlag&lobPrefetchFlag != 0
}

// BuildFetchVars derives the DEFINE message's column format array from
// DESCRIBE_INFO's column metadata, requesting LOB prefetch up to
// lobPrefetchSize bytes (with 0, a CLOB/BLOB define falls back to the
// column's own reported buffer size and a zero prefetch length; the
// LOB-prefetch continuation flag is still set).
func BuildFetchVars(columns []ColumnMetadata, lobPrefetchSize uint32) []FetchVar {
	vars := make([]FetchVar, len(columns))
	for i, col := range columns {
		switch col.RawTypeNum {
		case 11, 208: // ROWID, UROWID: redescribed as VARCHAR2
			vars[i] = NewFetchVar(1, maxUrowidLength, 1)
		case 112, 113: // CLOB, BLOB
			bufSize := col.BufferSize
			if lobPrefetchSize > 0 {
				bufSize = lobPrefetchSize
			}
			vars[i] = NewLobFetchVar(col.RawTypeNum, bufSize, lobPrefetchSize, col.RawTypeNum == 112)
		case 114: // BFILE: locator only, never prefetched
			vars[i] = NewLobFetchVar(col.RawTypeNum, col.BufferSize, 0, false)
		case 119: // JSON
			vars[i] = NewJSONFetchVar()
		case 127: // VECTOR
			vars[i] = NewVectorFetchVar()
		case 1, 96, 8: // VARCHAR2, CHAR, LONG
			vars[i] = NewFetchVar(col.RawTypeNum, col.BufferSize, 1)
		default:
			vars[i] = NewFetchVar(col.RawTypeNum, col.BufferSize, 0)
		}
	}
	return vars
}
