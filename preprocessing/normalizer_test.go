package preprocessing

import (
	"testing"

	"github.com/YuminosukeSato/churnguard/core/record"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(name string, v record.Value) record.Field {
	return record.Field{Name: name, Value: v}
}

func TestNormalize_KnownCategories(t *testing.T) {
	rec := record.MustNew(
		field("gender", record.String("Male")),
		field("Contract", record.String("Month-to-month")),
		field("tenure", record.Int(12)),
		field("MonthlyCharges", record.Float(70.0)),
	)

	encoded, report, err := Normalize(rec, churnEncoders())
	require.NoError(t, err)
	assert.True(t, report.Empty())

	assert.Equal(t, rec.Columns(), encoded.Columns(), "column set and order are preserved")

	gender, _ := encoded.Get("gender")
	assert.True(t, gender.Equal(record.Int(1)))
	contract, _ := encoded.Get("Contract")
	assert.True(t, contract.Equal(record.Int(0)))

	tenure, _ := encoded.Get("tenure")
	assert.True(t, tenure.Equal(record.Int(12)))
	charges, _ := encoded.Get("MonthlyCharges")
	assert.True(t, charges.Equal(record.Float(70.0)))
}

func TestNormalize_UnseenCategoryFallsBack(t *testing.T) {
	rec := record.MustNew(
		field("gender", record.String("NonBinary")),
		field("Contract", record.String("Month-to-month")),
		field("tenure", record.Int(12)),
		field("MonthlyCharges", record.Float(70.0)),
	)

	encoded, report, err := Normalize(rec, churnEncoders())
	require.NoError(t, err)

	gender, _ := encoded.Get("gender")
	assert.True(t, gender.Equal(record.Int(0)), "code of first known class")

	require.Len(t, report, 1)
	assert.Equal(t, "gender", report[0].Column)
	assert.True(t, report[0].Original.Equal(record.String("NonBinary")))
	assert.Equal(t, "Female", report[0].Fallback)

	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "NonBinary", warnings[0].Original)
	assert.Contains(t, warnings[0].Error(), "Female")
}

func TestNormalize_ReportFollowsColumnOrder(t *testing.T) {
	rec := record.MustNew(
		field("Contract", record.String("Weekly")),
		field("tenure", record.Int(3)),
		field("gender", record.String("")),
	)

	_, report, err := Normalize(rec, churnEncoders())
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "Contract", report[0].Column)
	assert.Equal(t, "Month-to-month", report[0].Fallback)
	assert.Equal(t, "gender", report[1].Column)
	assert.Equal(t, "Female", report[1].Fallback)
}

func TestNormalize_NumericValueInCategoricalColumn(t *testing.T) {
	encoders := EncoderSet{
		"SeniorCitizen": MustLabelEncoder("0", "1"),
	}

	encoded, report, err := Normalize(record.MustNew(field("SeniorCitizen", record.Int(1))), encoders)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	v, _ := encoded.Get("SeniorCitizen")
	assert.True(t, v.Equal(record.Int(1)))

	_, report, err = Normalize(record.MustNew(field("SeniorCitizen", record.Int(2))), encoders)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.True(t, report[0].Original.Equal(record.Int(2)))
}

func TestNormalize_PassThroughIsIdentical(t *testing.T) {
	rec := record.MustNew(
		field("TotalCharges", record.Float(1889.5)),
		field("PaymentMethod", record.String("Mailed check")),
		field("tenure", record.Int(34)),
	)

	encoded, report, err := Normalize(rec, churnEncoders())
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.True(t, encoded.Record().Equal(rec))
}

func TestNormalize_Idempotent(t *testing.T) {
	rec := record.MustNew(
		field("gender", record.String("Other")),
		field("Contract", record.String("Two year")),
		field("tenure", record.Int(40)),
	)
	n, err := NewCategoricalNormalizer(churnEncoders())
	require.NoError(t, err)

	first, firstReport, err := n.Normalize(rec)
	require.NoError(t, err)
	second, secondReport, err := n.Normalize(rec)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, firstReport, secondReport)
}

func TestNormalize_CodesRoundTrip(t *testing.T) {
	encoders := churnEncoders()
	n, err := NewCategoricalNormalizer(encoders)
	require.NoError(t, err)

	for column, enc := range encoders {
		for _, c := range enc.Classes() {
			encoded, report, err := n.Normalize(record.MustNew(field(column, record.String(c))))
			require.NoError(t, err)
			assert.True(t, report.Empty())

			v, _ := encoded.Get(column)
			code, ok := v.Float64()
			require.True(t, ok)
			back, err := enc.InverseTransform(int(code))
			require.NoError(t, err)
			assert.Equal(t, c, back)
		}
	}
}

func TestNormalize_MalformedEncoders(t *testing.T) {
	rec := record.MustNew(field("gender", record.String("Male")))

	_, _, err := Normalize(rec, EncoderSet{"gender": nil})
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	_, err = NewCategoricalNormalizer(EncoderSet{"gender": brokenEncoder{}})
	assert.Error(t, err)
}

func TestCategoricalNormalizer_EncodersIsACopy(t *testing.T) {
	n, err := NewCategoricalNormalizer(churnEncoders())
	require.NoError(t, err)

	set := n.Encoders()
	delete(set, "gender")
	assert.Len(t, n.Encoders(), 2)
}
