package record

import (
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Encoded is a Record whose categorical columns have been replaced by
// integer codes. It is the only form a classifier row is built from.
type Encoded struct {
	rec Record
}

// NewEncoded wraps fields that have already been encoded.
func NewEncoded(fields ...Field) (Encoded, error) {
	r, err := New(fields...)
	if err != nil {
		return Encoded{}, err
	}
	return Encoded{rec: r}, nil
}

// Record returns the underlying record.
func (e Encoded) Record() Record { return e.rec }

// Len returns the number of columns.
func (e Encoded) Len() int { return e.rec.Len() }

// Columns returns the column names in order.
func (e Encoded) Columns() []string { return e.rec.Columns() }

// Get returns the value stored for column.
func (e Encoded) Get(column string) (Value, bool) { return e.rec.Get(column) }

// Equal reports whether two encoded records are identical.
func (e Encoded) Equal(o Encoded) bool { return e.rec.Equal(o.rec) }

// String renders the encoded record for logs.
func (e Encoded) String() string { return e.rec.String() }

// MarshalJSON writes the encoded record as an ordered JSON object.
func (e Encoded) MarshalJSON() ([]byte, error) { return e.rec.MarshalJSON() }

// Vector lays the record out in feature order. With no features given
// the record's own column order is used. Every feature must be present
// and numeric; extra columns are ignored.
func (e Encoded) Vector(features []string) ([]float64, error) {
	if len(features) == 0 {
		features = e.rec.columns
	}
	if len(features) == 0 {
		return nil, errors.NewModelError("Encoded.Vector", "empty record", errors.ErrEmptyData)
	}
	out := make([]float64, len(features))
	for i, name := range features {
		v, ok := e.rec.values[name]
		if !ok {
			return nil, errors.NewValidationError(name, "feature column missing from record", nil)
		}
		f, ok := v.Float64()
		if !ok {
			return nil, errors.NewValidationError(name, "feature value is not numeric", v.String())
		}
		out[i] = f
	}
	return out, nil
}

// Matrix returns the record as a 1 x len(features) matrix.
func (e Encoded) Matrix(features []string) (*mat.Dense, error) {
	vec, err := e.Vector(features)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(1, len(vec), vec), nil
}
