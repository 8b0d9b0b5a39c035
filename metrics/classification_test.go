package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func vec(values []float64) *mat.VecDense {
	if len(values) == 0 {
		return nil
	}
	return mat.NewVecDense(len(values), values)
}

type metricCase struct {
	name    string
	yTrue   []float64
	yPred   []float64
	want    float64
	delta   float64
	wantErr bool
}

func runMetricCases(t *testing.T, fn func(yTrue, yPred *mat.VecDense) (float64, error), cases []metricCase) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fn(vec(tt.yTrue), vec(tt.yPred))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			delta := tt.delta
			if delta == 0 {
				delta = 1e-6
			}
			assert.InDelta(t, tt.want, got, delta)
		})
	}
}

func TestAUC(t *testing.T) {
	runMetricCases(t, AUC, []metricCase{
		{name: "perfect ranking", yTrue: []float64{0, 0, 0, 1, 1, 1}, yPred: []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9}, want: 1},
		{name: "inverted ranking", yTrue: []float64{0, 0, 0, 1, 1, 1}, yPred: []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1}, want: 0},
		{name: "all tied", yTrue: []float64{0, 1, 0, 1}, yPred: []float64{0.5, 0.5, 0.5, 0.5}, want: 0.5},
		{name: "typical", yTrue: []float64{0, 0, 1, 1}, yPred: []float64{0.1, 0.4, 0.35, 0.8}, want: 0.75},
		{name: "partial tie", yTrue: []float64{0, 1, 1}, yPred: []float64{0.6, 0.6, 0.9}, want: 0.75},
		{name: "only churners", yTrue: []float64{1, 1, 1, 1}, yPred: []float64{0.1, 0.4, 0.35, 0.8}, want: 0.5},
		{name: "only stayers", yTrue: []float64{0, 0, 0, 0}, yPred: []float64{0.1, 0.4, 0.35, 0.8}, want: 0.5},
		{name: "non-binary labels", yTrue: []float64{0, 0.5, 1}, yPred: []float64{0.1, 0.5, 0.9}, wantErr: true},
		{name: "length mismatch", yTrue: []float64{0, 1}, yPred: []float64{0.5}, wantErr: true},
		{name: "empty", wantErr: true},
	})
}

func TestAUCMatrix(t *testing.T) {
	got, err := AUCMatrix(
		mat.NewDense(4, 2, []float64{0, 9, 0, 9, 1, 9, 1, 9}),
		mat.NewDense(4, 2, []float64{0.1, 9, 0.4, 9, 0.35, 9, 0.8, 9}),
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-9, "only the first column is used")

	_, err = AUCMatrix(nil, mat.NewDense(1, 1, []float64{0.5}))
	assert.Error(t, err)

	_, err = AUCMatrix(&mat.Dense{}, &mat.Dense{})
	assert.Error(t, err)
}

func TestBinaryLogLoss(t *testing.T) {
	runMetricCases(t, BinaryLogLoss, []metricCase{
		{name: "perfect predictions are clipped", yTrue: []float64{0, 0, 1, 1}, yPred: []float64{0, 0, 1, 1}, want: 0, delta: 1e-9},
		{name: "typical", yTrue: []float64{0, 0, 1, 1}, yPred: []float64{0.1, 0.2, 0.8, 0.9}, want: 0.164252, delta: 1e-5},
		{name: "confidently wrong", yTrue: []float64{0, 0, 1, 1}, yPred: []float64{0.9, 0.9, 0.1, 0.1}, want: 2.3025851, delta: 1e-5},
		{name: "non-binary labels", yTrue: []float64{0, 0.5, 1}, yPred: []float64{0.1, 0.5, 0.9}, wantErr: true},
		{name: "empty", wantErr: true},
	})
}

func TestAccuracyAndClassificationError(t *testing.T) {
	cases := []struct {
		name  string
		yTrue []float64
		yPred []float64
		acc   float64
	}{
		{"perfect", []float64{0, 1, 1, 0}, []float64{0, 1, 1, 0}, 1},
		{"one miss in five", []float64{0, 1, 2, 1, 0}, []float64{0, 1, 1, 1, 0}, 0.8},
		{"all wrong", []float64{0, 0, 0}, []float64{1, 1, 1}, 0},
		{"half", []float64{0, 0, 1, 1}, []float64{0, 1, 1, 0}, 0.5},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := Accuracy(vec(tt.yTrue), vec(tt.yPred))
			require.NoError(t, err)
			assert.InDelta(t, tt.acc, acc, 1e-9)

			ce, err := ClassificationError(vec(tt.yTrue), vec(tt.yPred))
			require.NoError(t, err)
			assert.InDelta(t, 1-tt.acc, ce, 1e-9)
		})
	}

	_, err := Accuracy(nil, nil)
	assert.Error(t, err)
	_, err = ClassificationError(vec([]float64{0, 1}), vec([]float64{0}))
	assert.Error(t, err)
}

func BenchmarkAUC(b *testing.B) {
	n := 1000
	yTrue := make([]float64, n)
	yPred := make([]float64, n)
	for i := 0; i < n; i++ {
		if i >= n/2 {
			yTrue[i] = 1
		}
		yPred[i] = float64(i) / float64(n)
	}
	yTrueVec, yPredVec := vec(yTrue), vec(yPred)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = AUC(yTrueVec, yPredVec)
	}
}
