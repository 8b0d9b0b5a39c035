package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
)

// Field is one named cell.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered, immutable row: column name -> raw value. Column
// order is the order the fields were given in.
type Record struct {
	columns []string
	values  map[string]Value
}

// New builds a Record. Column names must be non-empty and unique and
// every value must be valid.
func New(fields ...Field) (Record, error) {
	r := Record{
		columns: make([]string, 0, len(fields)),
		values:  make(map[string]Value, len(fields)),
	}
	for _, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return Record{}, errors.NewValidationError("column", "column name must not be empty", f.Name)
		}
		if _, dup := r.values[f.Name]; dup {
			return Record{}, errors.NewValidationError("column", "duplicate column", f.Name)
		}
		if !f.Value.IsValid() {
			return Record{}, errors.NewValidationError(f.Name, "value must be a string or a number", nil)
		}
		r.columns = append(r.columns, f.Name)
		r.values[f.Name] = f.Value
	}
	return r, nil
}

// MustNew is New for tests and literals; it panics on error.
func MustNew(fields ...Field) Record {
	r, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.columns) }

// Columns returns a copy of the column names in order.
func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Get returns the value stored for column.
func (r Record) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Fields returns the fields in column order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.columns))
	for i, c := range r.columns {
		out[i] = Field{Name: c, Value: r.values[c]}
	}
	return out
}

// Equal reports whether two records have the same columns, order and values.
func (r Record) Equal(o Record) bool {
	if len(r.columns) != len(o.columns) {
		return false
	}
	for i, c := range r.columns {
		if o.columns[i] != c || !r.values[c].Equal(o.values[c]) {
			return false
		}
	}
	return true
}

// String renders the record as {col=value, ...} for logs.
func (r Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", c, r.values[c])
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON writes the record as a JSON object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := r.values[c].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object, keeping key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected JSON object")
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("record: column %q: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	built, err := New(fields...)
	if err != nil {
		return err
	}
	*r = built
	return nil
}
