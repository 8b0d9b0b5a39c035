// Package linear_model provides linear classifiers restored from exported
// weights.
package linear_model

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/churnguard/core/model"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegressionType is the model_type written into exported weights.
const LogisticRegressionType = "LogisticRegression"

var (
	_ model.ProbabilisticClassifier = (*LogisticRegression)(nil)
	_ model.WeightImporter          = (*LogisticRegression)(nil)
	_ model.WeightExporter          = (*LogisticRegression)(nil)
)

// LogisticRegression is a binary logistic classifier compatible with
// scikit-learn's LogisticRegression weights. It never trains; weights
// are imported from an exported artifact.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	threshold float64 // P(classes[1]) at or above which classes[1] is predicted

	// Model parameters
	coef_      []float64
	intercept_ float64
	classes_   []int
	features_  []string
	version    string
	metadata   map[string]interface{}
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// WithThreshold sets the decision threshold on the positive class probability.
func WithThreshold(threshold float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.threshold = threshold
	}
}

// NewLogisticRegression creates an empty classifier. It must receive
// weights through ImportWeights before it can predict.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:     model.NewStateManager(),
		threshold: 0.5,
		classes_:  []int{0, 1},
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// NewLogisticRegressionFromWeights creates a classifier and imports weights.
// Options are applied after the import and take precedence over the
// stored hyperparameters.
func NewLogisticRegressionFromWeights(weights *model.ModelWeights, opts ...LogisticRegressionOption) (*LogisticRegression, error) {
	lr := NewLogisticRegression()
	if err := lr.ImportWeights(weights); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr, nil
}

// ImportWeights restores coefficients, intercept, classes and feature
// order from exported weights.
func (lr *LogisticRegression) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValidationError("weights", "cannot be nil", nil)
	}
	if weights.ModelType != LogisticRegressionType {
		return errors.NewValidationError("model_type",
			fmt.Sprintf("model type mismatch: expected %s", LogisticRegressionType), weights.ModelType)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if err := lr.SetParams(weights.Hyperparameters); err != nil {
		return err
	}

	lr.coef_ = append([]float64(nil), weights.Coefficients...)
	lr.intercept_ = weights.Intercept
	lr.features_ = append([]string(nil), weights.Features...)
	if len(weights.Classes) == 2 {
		lr.classes_ = append([]int(nil), weights.Classes...)
	} else {
		lr.classes_ = []int{0, 1}
	}
	lr.version = weights.Version
	lr.metadata = make(map[string]interface{}, len(weights.Metadata))
	for k, v := range weights.Metadata {
		lr.metadata[k] = v
	}

	lr.state.SetFitted(len(lr.coef_))
	return nil
}

// ExportWeights returns the model's weights with a coefficient checksum.
func (lr *LogisticRegression) ExportWeights() (*model.ModelWeights, error) {
	if err := lr.state.RequireFitted(LogisticRegressionType, "ExportWeights"); err != nil {
		return nil, err
	}

	weights := &model.ModelWeights{
		ModelType:       LogisticRegressionType,
		Version:         lr.version,
		Features:        append([]string(nil), lr.features_...),
		Classes:         append([]int(nil), lr.classes_...),
		Coefficients:    append([]float64(nil), lr.coef_...),
		Intercept:       lr.intercept_,
		IsFitted:        true,
		Hyperparameters: lr.GetParams(),
		Metadata:        make(map[string]interface{}, len(lr.metadata)+1),
	}
	for k, v := range lr.metadata {
		weights.Metadata[k] = v
	}
	weights.Metadata[model.ChecksumKey] = weights.Checksum()
	return weights, nil
}

// checkInput validates X against the number of imported coefficients.
func (lr *LogisticRegression) checkInput(X mat.Matrix, method string) (int, error) {
	if err := lr.state.RequireFitted(LogisticRegressionType, method); err != nil {
		return 0, err
	}
	if X == nil {
		return 0, errors.NewValueError(method, "input matrix is nil")
	}
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 {
		return 0, errors.NewModelError(method, "empty input", errors.ErrEmptyData)
	}
	if want := lr.state.NumFeatures(); nFeatures != want {
		return 0, errors.NewDimensionError(method, want, nFeatures, 1)
	}
	return nSamples, nil
}

// positiveProba returns P(classes[1]) for row i.
func (lr *LogisticRegression) positiveProba(X mat.Matrix, i int) float64 {
	z := lr.intercept_
	for j, c := range lr.coef_ {
		z += X.At(i, j) * c
	}
	return sigmoid(z)
}

// Predict returns the predicted class label for each row (n x 1).
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := lr.checkInput(X, "Predict")
	if err != nil {
		return nil, err
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if lr.positiveProba(X, i) >= lr.threshold {
			predictions.Set(i, 0, float64(lr.classes_[1]))
		} else {
			predictions.Set(i, 0, float64(lr.classes_[0]))
		}
	}
	return predictions, nil
}

// PredictProba returns class probabilities (n x 2), columns in Classes() order.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	nSamples, err := lr.checkInput(X, "PredictProba")
	if err != nil {
		return nil, err
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		prob1 := lr.positiveProba(X, i)
		if err := errors.CheckProbability("PredictProba", prob1); err != nil {
			return nil, err
		}
		probas.Set(i, 0, 1.0-prob1)
		probas.Set(i, 1, prob1)
	}
	return probas, nil
}

// Classes returns the two class labels.
func (lr *LogisticRegression) Classes() []int {
	return append([]int(nil), lr.classes_...)
}

// FeatureNames returns the training column order, if the weights had one.
func (lr *LogisticRegression) FeatureNames() []string {
	return append([]string(nil), lr.features_...)
}

// Version returns the version string of the imported weights.
func (lr *LogisticRegression) Version() string {
	return lr.version
}

// IsFitted returns whether weights have been imported.
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"threshold": lr.threshold,
	}
}

// SetParams sets the model hyperparameters. Training-only scikit-learn
// parameters (C, penalty, solver, ...) are accepted and ignored.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "threshold":
			t, ok := value.(float64)
			if !ok || t <= 0 || t >= 1 {
				return errors.NewValidationError("threshold", "must be a number in (0, 1)", value)
			}
			lr.threshold = t
		case "penalty", "C", "fit_intercept", "intercept_scaling", "class_weight",
			"random_state", "solver", "max_iter", "multi_class", "verbose",
			"warm_start", "l1_ratio", "tol":
		default:
			return errors.NewValidationError("hyperparameters", "unknown parameter", key)
		}
	}
	return nil
}

// String returns the string representation of the model
func (lr *LogisticRegression) String() string {
	if !lr.state.IsFitted() {
		return fmt.Sprintf("LogisticRegression(threshold=%g)", lr.threshold)
	}
	return fmt.Sprintf("LogisticRegression(threshold=%g, n_features=%d, version=%s)",
		lr.threshold, len(lr.coef_), lr.version)
}

// sigmoid computes the sigmoid function without overflowing for large |z|.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}
