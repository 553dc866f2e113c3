package store

// ColumnInfo describes one column of a backing table, as returned by the
// store's schema introspection (describe action).
type ColumnInfo struct {
	Column    string `json:"column"`
	Type      string `json:"type"`
	Nullable  string `json:"nullable"`
	MaxLength *int64 `json:"max_length"`
}
