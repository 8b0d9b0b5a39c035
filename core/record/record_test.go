package record

import (
	"encoding/json"
	"testing"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("Month-to-month"), "Month-to-month"},
		{"int", Int(12), "12"},
		{"negative int", Int(-3), "-3"},
		{"integral float", Float(70.0), "70"},
		{"float", Float(29.85), "29.85"},
		{"invalid", Value{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Text())
		})
	}
}

func TestParse(t *testing.T) {
	assert.True(t, Parse("12").Equal(Int(12)))
	assert.True(t, Parse("70.5").Equal(Float(70.5)))
	assert.True(t, Parse("Male").Equal(String("Male")))
	assert.True(t, Parse("NaN").Equal(String("NaN")))
	assert.True(t, Parse("").Equal(String("")))
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Int(1).Equal(Int(1)))
	assert.False(t, Int(1).Equal(Float(1)), "kind is part of identity")
	assert.False(t, String("1").Equal(Int(1)))
}

func TestValue_JSON(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`12`), &v))
	assert.Equal(t, KindInt, v.Kind())

	require.NoError(t, json.Unmarshal([]byte(`70.0`), &v))
	assert.Equal(t, KindFloat, v.Kind())

	require.NoError(t, json.Unmarshal([]byte(`"Yes"`), &v))
	assert.Equal(t, KindString, v.Kind())

	assert.Error(t, json.Unmarshal([]byte(`true`), &v))
	assert.Error(t, json.Unmarshal([]byte(`null`), &v))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Field{Name: "gender", Value: String("Male")}, Field{Name: "gender", Value: String("Female")})
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	_, err = New(Field{Name: " ", Value: Int(1)})
	assert.Error(t, err)

	_, err = New(Field{Name: "tenure"})
	assert.Error(t, err)
}

func TestRecord_JSONPreservesOrder(t *testing.T) {
	input := `{"tenure": 12, "gender": "Male", "MonthlyCharges": 70.5, "Contract": "One year"}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(input), &r))
	assert.Equal(t, []string{"tenure", "gender", "MonthlyCharges", "Contract"}, r.Columns())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"tenure":12,"gender":"Male","MonthlyCharges":70.5,"Contract":"One year"}`, string(out))
}

func TestRecord_JSONRejectsNonObject(t *testing.T) {
	var r Record
	assert.Error(t, json.Unmarshal([]byte(`["gender"]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"gender": {"nested": 1}}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1, "a": 2}`), &r))
}

func TestRecord_ColumnsIsACopy(t *testing.T) {
	r := MustNew(Field{Name: "gender", Value: String("Male")})
	cols := r.Columns()
	cols[0] = "mutated"
	assert.Equal(t, []string{"gender"}, r.Columns())
}

func TestEncoded_Vector(t *testing.T) {
	e, err := NewEncoded(
		Field{Name: "gender", Value: Int(1)},
		Field{Name: "tenure", Value: Int(12)},
		Field{Name: "MonthlyCharges", Value: Float(70)},
	)
	require.NoError(t, err)

	vec, err := e.Vector([]string{"tenure", "gender", "MonthlyCharges"})
	require.NoError(t, err)
	assert.Equal(t, []float64{12, 1, 70}, vec)

	vec, err = e.Vector(nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 12, 70}, vec)

	m, err := e.Matrix(nil)
	require.NoError(t, err)
	rows, cols := m.Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 3, cols)
}

func TestEncoded_VectorErrors(t *testing.T) {
	e, err := NewEncoded(
		Field{Name: "gender", Value: Int(1)},
		Field{Name: "PaymentMethod", Value: String("Mailed check")},
	)
	require.NoError(t, err)

	_, err = e.Vector([]string{"gender", "tenure"})
	assert.Error(t, err, "missing feature")

	_, err = e.Vector([]string{"gender", "PaymentMethod"})
	assert.Error(t, err, "non-numeric pass-through value")

	_, err = Encoded{}.Vector(nil)
	assert.Error(t, err)
}
