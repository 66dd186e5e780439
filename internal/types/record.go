package types

// Record is one processor's row: its site id and the column values scraped for it.
type Record struct {
	// ID is the site's processor id, also the suffix of its page URL.
	ID string

	// Fields maps column name to value.
	Fields map[string]string
}

// NewRecord creates a record with an initial display name.
func NewRecord(id, name string) *Record {
	r := &Record{
		ID:     id,
		Fields: make(map[string]string),
	}
	if name != "" {
		r.Fields["Name"] = name
	}
	return r
}

// Set sets a field value.
func (r *Record) Set(key, value string) {
	r.Fields[key] = value
}

// Get returns a field value, or "" when unset.
func (r *Record) Get(key string) string {
	return r.Fields[key]
}

// Lookup returns a field value and whether it is set.
func (r *Record) Lookup(key string) (string, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Has returns true if the field exists.
func (r *Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Row returns the values of the given columns in order.
func (r *Record) Row(columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = r.Fields[c]
	}
	return row
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := &Record{
		ID:     r.ID,
		Fields: make(map[string]string, len(r.Fields)),
	}
	for k, v := range r.Fields {
		clone.Fields[k] = v
	}
	return clone
}
