package linear_model

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/churnguard/core/model"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func churnWeights() *model.ModelWeights {
	return &model.ModelWeights{
		ModelType:    LogisticRegressionType,
		Version:      "2024.06",
		Features:     []string{"gender", "tenure", "MonthlyCharges", "Contract"},
		Coefficients: []float64{0.1, -0.05, 0.02, -0.8},
		Intercept:    -0.5,
		IsFitted:     true,
	}
}

func TestLogisticRegression_NotFitted(t *testing.T) {
	lr := NewLogisticRegression()
	X := mat.NewDense(1, 4, []float64{1, 12, 70, 0})

	_, err := lr.Predict(X)
	var nfe *errors.NotFittedError
	assert.True(t, errors.As(err, &nfe))

	_, err = lr.PredictProba(X)
	assert.True(t, errors.As(err, &nfe))

	_, err = lr.ExportWeights()
	assert.True(t, errors.As(err, &nfe))
	assert.False(t, lr.IsFitted())
}

func TestLogisticRegression_PredictProba(t *testing.T) {
	lr, err := NewLogisticRegressionFromWeights(churnWeights())
	require.NoError(t, err)

	X := mat.NewDense(3, 4, []float64{
		1, 12, 70, 0, // month-to-month, a year in
		0, 60, 20, 2, // long two-year contract
		1, 1, 110, 0, // new, expensive
	})
	probas, err := lr.PredictProba(X)
	require.NoError(t, err)

	rows, cols := probas.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 2, cols)

	for i := 0; i < rows; i++ {
		z := -0.5
		for j, c := range []float64{0.1, -0.05, 0.02, -0.8} {
			z += X.At(i, j) * c
		}
		want := 1 / (1 + math.Exp(-z))
		assert.InDelta(t, want, probas.At(i, 1), 1e-12)
		assert.InDelta(t, 1.0, probas.At(i, 0)+probas.At(i, 1), 1e-12)
	}

	preds, err := lr.Predict(X)
	require.NoError(t, err)
	for i := 0; i < rows; i++ {
		want := 0.0
		if probas.At(i, 1) >= 0.5 {
			want = 1
		}
		assert.Equal(t, want, preds.At(i, 0), "row %d", i)
	}
}

func TestLogisticRegression_Threshold(t *testing.T) {
	weights := churnWeights()
	weights.Coefficients = []float64{0, 0, 0, 0}
	weights.Intercept = 0 // P = 0.5 everywhere

	X := mat.NewDense(1, 4, []float64{1, 1, 1, 1})

	lr, err := NewLogisticRegressionFromWeights(weights)
	require.NoError(t, err)
	pred, err := lr.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.At(0, 0))

	strict, err := NewLogisticRegressionFromWeights(weights, WithThreshold(0.7))
	require.NoError(t, err)
	pred, err = strict.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))

	weights.Hyperparameters = map[string]interface{}{"threshold": 0.4, "C": 1.0, "solver": "lbfgs"}
	fromParams, err := NewLogisticRegressionFromWeights(weights)
	require.NoError(t, err)
	assert.Equal(t, 0.4, fromParams.GetParams()["threshold"])

	overridden, err := NewLogisticRegressionFromWeights(weights, WithThreshold(0.7))
	require.NoError(t, err)
	assert.Equal(t, 0.7, overridden.GetParams()["threshold"], "option wins over stored hyperparameters")
	pred, err = overridden.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))

	exported, err := overridden.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, 0.7, exported.Hyperparameters["threshold"])
}

func TestLogisticRegression_CustomClasses(t *testing.T) {
	weights := churnWeights()
	weights.Classes = []int{-1, 1}
	weights.Coefficients = []float64{0, 0, 0, 0}
	weights.Intercept = -10

	lr, err := NewLogisticRegressionFromWeights(weights)
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 1}, lr.Classes())

	pred, err := lr.Predict(mat.NewDense(1, 4, nil))
	require.NoError(t, err)
	assert.Equal(t, -1.0, pred.At(0, 0))
}

func TestLogisticRegression_DimensionMismatch(t *testing.T) {
	lr, err := NewLogisticRegressionFromWeights(churnWeights())
	require.NoError(t, err)

	_, err = lr.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = lr.Predict(nil)
	assert.Error(t, err)
}

func TestLogisticRegression_ImportRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *model.ModelWeights)
	}{
		{"wrong model type", func(w *model.ModelWeights) { w.ModelType = "LinearRegression" }},
		{"not fitted", func(w *model.ModelWeights) { w.IsFitted = false }},
		{"feature count", func(w *model.ModelWeights) { w.Features = w.Features[:2] }},
		{"three classes", func(w *model.ModelWeights) { w.Classes = []int{0, 1, 2} }},
		{"bad threshold", func(w *model.ModelWeights) { w.Hyperparameters = map[string]interface{}{"threshold": 1.5} }},
		{"unknown param", func(w *model.ModelWeights) { w.Hyperparameters = map[string]interface{}{"gamma": 1.0} }},
		{"nan coefficient", func(w *model.ModelWeights) { w.Coefficients[0] = math.NaN() }},
		{"checksum", func(w *model.ModelWeights) { w.Metadata = map[string]interface{}{model.ChecksumKey: "deadbeef"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := churnWeights()
			tt.mutate(w)
			_, err := NewLogisticRegressionFromWeights(w)
			assert.Error(t, err)
		})
	}

	assert.Error(t, NewLogisticRegression().ImportWeights(nil))
}

func TestLogisticRegression_ExportImportReproducible(t *testing.T) {
	original, err := NewLogisticRegressionFromWeights(churnWeights(), WithThreshold(0.3))
	require.NoError(t, err)

	exported, err := original.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, exported.Checksum(), exported.Metadata[model.ChecksumKey])
	assert.Equal(t, []string{"gender", "tenure", "MonthlyCharges", "Contract"}, exported.Features)

	restored, err := NewLogisticRegressionFromWeights(exported)
	require.NoError(t, err)
	assert.Equal(t, original.FeatureNames(), restored.FeatureNames())
	assert.Equal(t, "2024.06", restored.Version())

	X := mat.NewDense(2, 4, []float64{1, 5, 90, 0, 0, 40, 30, 1})
	want, err := original.PredictProba(X)
	require.NoError(t, err)
	got, err := restored.PredictProba(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
}

func TestSigmoid_Stable(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-15)
	assert.InDelta(t, 1.0, sigmoid(800), 1e-15)
	assert.InDelta(t, 0.0, sigmoid(-800), 1e-15)
	assert.False(t, math.IsNaN(sigmoid(-800)))
}
