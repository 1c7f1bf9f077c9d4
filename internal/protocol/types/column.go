package types

import "strings"

// ColumnMetadata holds a column's raw wire fields exactly as parsed from a
// DESCRIBE_INFO entry, before they're resolved into a user-facing Column.
type ColumnMetadata struct {
	Name       string
	RawTypeNum uint8
	Precision  int8
	Scale      int8
	MaxSize    uint32
	BufferSize uint32
	Nullable   bool

	// LobPrefetchLen is nonzero once a define-redescribe has requested LOB
	// prefetch for this column, and governs whether ROW_DATA's LOB decoder
	// expects inline prefetch bytes ahead of the locator.
	LobPrefetchLen uint32
}

// Column is the user-facing description of one column in a result set:
// its name, resolved OracleType, and display-relevant size/precision.
type Column struct {
	Name      string
	Type      OracleType
	Precision int8
	Scale     int8
	MaxSize   uint32
	Nullable  bool
}

// FromMetadata resolves raw column metadata into a Column, mapping the
// wire's raw type number to this client's OracleType.
func FromMetadata(m ColumnMetadata) Column {
	return Column{
		Name:      m.Name,
		Type:      FromRaw(m.RawTypeNum),
		Precision: m.Precision,
		Scale:     m.Scale,
		MaxSize:   m.MaxSize,
		Nullable:  m.Nullable,
	}
}

// DisplayType renders the column's full type name, e.g. "NUMBER(10,2)".
func (c Column) DisplayType() string {
	return DisplayName(c.Type, c.Precision, c.Scale, c.MaxSize)
}

// ColumnInfo is the ordered, queryable description of a result set's
// column list, built once from DESCRIBE_INFO and shared by every row.
type ColumnInfo struct {
	columns []Column
	names   map[string]int // lower-cased name -> index
}

// NewColumnInfo builds a ColumnInfo from the columns DESCRIBE_INFO
// produced, in their wire order.
func NewColumnInfo(columns []Column) *ColumnInfo {
	ci := &ColumnInfo{
		columns: columns,
		names:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		ci.names[strings.ToLower(c.Name)] = i
	}
	return ci
}

// Len returns the number of columns.
func (ci *ColumnInfo) Len() int { return len(ci.columns) }

// IsEmpty reports whether the result set has no columns.
func (ci *ColumnInfo) IsEmpty() bool { return len(ci.columns) == 0 }

// Get returns the column at idx.
func (ci *ColumnInfo) Get(idx int) Column { return ci.columns[idx] }

// ColumnNames returns every column's name, in wire order.
func (ci *ColumnInfo) ColumnNames() []string {
	names := make([]string, len(ci.columns))
	for i, c := range ci.columns {
		names[i] = c.Name
	}
	return names
}

// FindByName looks up a column's index by name, case-insensitively,
// matching Oracle's own case-insensitive unquoted-identifier semantics.
func (ci *ColumnInfo) FindByName(name string) (int, bool) {
	idx, ok := ci.names[strings.ToLower(name)]
	return idx, ok
}
