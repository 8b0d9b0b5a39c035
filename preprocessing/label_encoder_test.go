package preprocessing

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLabelEncoder(t *testing.T) {
	tests := []struct {
		name    string
		classes []string
		wantErr bool
	}{
		{"two classes", []string{"Female", "Male"}, false},
		{"single class", []string{"No"}, false},
		{"empty", nil, true},
		{"duplicate", []string{"Yes", "No", "Yes"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewLabelEncoder(tt.classes...)
			if tt.wantErr {
				var valErr *errors.ValidationError
				assert.True(t, errors.As(err, &valErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.classes, enc.Classes())
			assert.Equal(t, tt.classes[0], enc.Fallback())
		})
	}
}

func TestLabelEncoder_TransformRoundTrip(t *testing.T) {
	enc := MustLabelEncoder("Month-to-month", "One year", "Two year")

	for want, c := range enc.Classes() {
		code, err := enc.Transform(c)
		require.NoError(t, err)
		assert.Equal(t, want, code)

		back, err := enc.InverseTransform(code)
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}

	_, err := enc.Transform("Weekly")
	assert.True(t, errors.Is(err, errors.ErrUnknownCategory))

	_, err = enc.InverseTransform(3)
	assert.Error(t, err)
	_, err = enc.InverseTransform(-1)
	assert.Error(t, err)
}

func TestLabelEncoder_ClassesIsACopy(t *testing.T) {
	enc := MustLabelEncoder("No", "Yes")
	classes := enc.Classes()
	classes[0] = "mutated"
	assert.Equal(t, "No", enc.Fallback())
}

func TestLabelEncoder_JSON(t *testing.T) {
	enc := MustLabelEncoder("DSL", "Fiber optic", "No")

	data, err := json.Marshal(enc)
	require.NoError(t, err)
	assert.JSONEq(t, `["DSL","Fiber optic","No"]`, string(data))

	var decoded LabelEncoder
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, enc.Classes(), decoded.Classes())

	assert.Error(t, json.Unmarshal([]byte(`[]`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`["a","a"]`), &decoded))
}

func TestLabelEncoder_Gob(t *testing.T) {
	enc := MustLabelEncoder("Bank transfer", "Credit card", "Electronic check", "Mailed check")

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(enc))

	var decoded LabelEncoder
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))
	assert.Equal(t, enc.Classes(), decoded.Classes())
	assert.True(t, decoded.Contains("Mailed check"))
}
