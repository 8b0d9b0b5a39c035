package preprocessing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenEncoder は検証をすり抜けた不正なエンコーダを模擬する
type brokenEncoder struct {
	classes []string
}

func (b brokenEncoder) Classes() []string { return b.classes }
func (b brokenEncoder) Contains(string) bool { return false }
func (b brokenEncoder) Fallback() string { return "" }
func (b brokenEncoder) Transform(string) (int, error) { return 0, errors.ErrUnknownCategory }
func (b brokenEncoder) InverseTransform(int) (string, error) {
	return "", errors.ErrUnknownCategory
}

func churnEncoders() EncoderSet {
	return EncoderSet{
		"gender":   MustLabelEncoder("Female", "Male"),
		"Contract": MustLabelEncoder("Month-to-month", "One year", "Two year"),
	}
}

func TestEncoderSet_Validate(t *testing.T) {
	assert.NoError(t, churnEncoders().Validate())
	assert.NoError(t, EncoderSet{}.Validate())

	tests := []struct {
		name string
		set  EncoderSet
	}{
		{"nil encoder", EncoderSet{"gender": nil}},
		{"zero label encoder", EncoderSet{"gender": &LabelEncoder{}}},
		{"empty classes", EncoderSet{"gender": brokenEncoder{}}},
		{"duplicate classes", EncoderSet{"gender": brokenEncoder{classes: []string{"a", "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr), "got %v", err)
		})
	}
}

func TestEncoderSet_ColumnsAndOptions(t *testing.T) {
	set := churnEncoders()
	assert.Equal(t, []string{"Contract", "gender"}, set.Columns())
	assert.Equal(t, map[string][]string{
		"gender":   {"Female", "Male"},
		"Contract": {"Month-to-month", "One year", "Two year"},
	}, set.Options())
}

func TestEncoderSet_JSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveEncoderSetJSON(&buf, churnEncoders()))

	loaded, err := LoadEncoderSetJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, churnEncoders().Options(), loaded.Options())
}

func TestEncoderSet_GobRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveEncoderSetGob(&buf, churnEncoders()))

	loaded, err := LoadEncoderSetGob(&buf)
	require.NoError(t, err)
	assert.Equal(t, churnEncoders().Options(), loaded.Options())
}

func TestLoadEncoderSetJSON_Malformed(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`["gender"]`,
		`{"gender": []}`,
		`{"gender": ["Male", "Male"]}`,
		`{"gender": null}`,
	}
	for _, in := range inputs {
		_, err := LoadEncoderSetJSON(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}

func TestLoadEncoderSetGob_Corrupt(t *testing.T) {
	_, err := LoadEncoderSetGob(strings.NewReader("definitely not gob"))
	assert.Error(t, err)
}
