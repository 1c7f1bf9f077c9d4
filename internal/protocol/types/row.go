package types

// Row is one row of a result set: its decoded values, plus a reference to
// the column list shared by every row of the same cursor.
type Row struct {
	Values  []OracleValue
	Columns *ColumnInfo
}

// NewRow builds a Row from decoded values and the cursor's shared column
// info.
func NewRow(values []OracleValue, columns *ColumnInfo) Row {
	return Row{Values: values, Columns: columns}
}

// Get returns the value at index idx.
func (r Row) Get(idx int) (OracleValue, bool) {
	if idx < 0 || idx >= len(r.Values) {
		return OracleValue{}, false
	}
	return r.Values[idx], true
}

// GetByName returns the value of the column named name, case-insensitively.
func (r Row) GetByName(name string) (OracleValue, bool) {
	idx, ok := r.Columns.FindByName(name)
	if !ok {
		return OracleValue{}, false
	}
	return r.Get(idx)
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.Values) }
