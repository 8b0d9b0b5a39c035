// Package prediction wires a record through the categorical normalizer and
// the classifier and shapes the outcome for display.
package prediction

import (
	"context"
	"math"
	"time"

	"github.com/YuminosukeSato/churnguard/core/model"
	"github.com/YuminosukeSato/churnguard/core/record"
	"github.com/YuminosukeSato/churnguard/internal/artifact"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/YuminosukeSato/churnguard/pkg/log"
	"github.com/YuminosukeSato/churnguard/preprocessing"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Label is the user-facing outcome of a prediction.
type Label string

const (
	LabelChurn Label = "CHURN"
	LabelStay  Label = "STAY"
)

// Result is one served prediction.
type Result struct {
	ID            uuid.UUID                        `json:"id"`
	Label         Label                            `json:"label"`
	Probability   *float64                         `json:"probability,omitempty"`
	Substitutions preprocessing.SubstitutionReport `json:"substitutions"`
}

// ModelInfo describes the served model to front ends.
type ModelInfo struct {
	ModelType string              `json:"model_type"`
	Version   string              `json:"version"`
	Classes   []int               `json:"classes"`
	Features  []string            `json:"features"`
	Options   map[string][]string `json:"options"`
}

// Service is safe for concurrent use; it holds only read-only state.
type Service struct {
	classifier model.Classifier
	normalizer *preprocessing.CategoricalNormalizer
	features   []string
	modelType  string
	version    string

	logger   log.Logger
	recorder Recorder
	newID    func() uuid.UUID
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithModelInfo sets the model type and version reported by Describe.
func WithModelInfo(modelType, version string) Option {
	return func(s *Service) {
		s.modelType = modelType
		s.version = version
	}
}

// NewService validates encoders and returns a Service around classifier.
func NewService(classifier model.Classifier, encoders preprocessing.EncoderSet, opts ...Option) (*Service, error) {
	if classifier == nil {
		return nil, errors.NewValidationError("classifier", "must not be nil", nil)
	}
	normalizer, err := preprocessing.NewCategoricalNormalizer(encoders)
	if err != nil {
		return nil, err
	}

	s := &Service{
		classifier: classifier,
		normalizer: normalizer,
		features:   classifier.FeatureNames(),
		recorder:   nopRecorder{},
		newID:      uuid.New,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("prediction")
	}
	return s, nil
}

// NewServiceFromArtifacts builds a Service from loaded artifacts.
func NewServiceFromArtifacts(a *artifact.Artifacts, opts ...Option) (*Service, error) {
	if a == nil {
		return nil, errors.NewValidationError("artifacts", "must not be nil", nil)
	}
	opts = append([]Option{WithModelInfo(a.ModelType, a.Version)}, opts...)
	return NewService(a.Classifier, a.Encoders, opts...)
}

// Describe returns model metadata and the known categories per column.
func (s *Service) Describe() ModelInfo {
	return ModelInfo{
		ModelType: s.modelType,
		Version:   s.version,
		Classes:   s.classifier.Classes(),
		Features:  append([]string(nil), s.features...),
		Options:   s.normalizer.Encoders().Options(),
	}
}

// Predict normalizes rec, invokes the classifier and maps class 1 to CHURN.
//
// Unseen categories never fail a prediction; they are reported in
// Result.Substitutions and raised as UnseenCategoryWarning. Any failure
// while building the feature row or inside the classifier, including a
// panic, is returned as a ClassifierInvocationError and no Result is
// produced.
func (s *Service) Predict(ctx context.Context, rec record.Record) (*Result, error) {
	start := s.now()
	id := s.newID()
	logger := s.logger.With(
		log.PhaseKey, log.PhaseInference,
		log.PredictionIDKey, id.String(),
	)

	encoded, report, err := s.normalizer.Normalize(rec)
	if err != nil {
		s.recorder.ObserveFailure(FailureInput)
		logger.Error("Failed to normalize record", err, log.ErrorCodeKey, log.ErrorInvalidInput)
		return nil, err
	}
	for _, sub := range report {
		errors.Warn(sub.Warning())
		s.recorder.ObserveSubstitution(sub.Column)
		logger.Debug("Category fallback applied",
			log.ColumnKey, sub.Column,
			log.OriginalKey, sub.Original.Text(),
			log.FallbackKey, sub.Fallback,
		)
	}

	if err := ctx.Err(); err != nil {
		s.recorder.ObserveFailure(FailureCanceled)
		return nil, errors.WithStack(err)
	}

	label, proba, err := s.invoke(encoded)
	if err != nil {
		s.recorder.ObserveFailure(FailureClassifier)
		logger.Error("Prediction failed", err, log.ErrorCodeKey, log.ErrorClassifierInvocation)
		return nil, err
	}

	elapsed := s.now().Sub(start)
	s.recorder.ObservePrediction(label, elapsed)

	fields := []any{
		log.LabelKey, string(label),
		log.ColumnsKey, rec.Len(),
		log.SubstitutionsKey, len(report),
		log.DurationMsKey, elapsed.Milliseconds(),
	}
	if proba != nil {
		fields = append(fields, log.ConfidenceKey, *proba)
	}
	logger.Info("Prediction served", fields...)

	return &Result{
		ID:            id,
		Label:         label,
		Probability:   proba,
		Substitutions: report,
	}, nil
}

// invoke runs the classifier on a single encoded row.
func (s *Service) invoke(encoded record.Encoded) (Label, *float64, error) {
	X, err := encoded.Matrix(s.features)
	if err != nil {
		return "", nil, errors.NewClassifierInvocationError("build feature row", err)
	}

	var (
		predicted float64
		proba     *float64
	)
	err = errors.SafeExecute("Classifier.Predict", func() error {
		pred, err := s.classifier.Predict(X)
		if err != nil {
			return err
		}
		if rows, _ := pred.Dims(); rows != 1 {
			return errors.NewDimensionError("Classifier.Predict", 1, rows, 0)
		}
		predicted = pred.At(0, 0)

		proba, err = s.positiveProba(X)
		return err
	})
	if err != nil {
		return "", nil, errors.NewClassifierInvocationError("Classifier.Predict", err)
	}

	if predicted == float64(model.PositiveClass) {
		return LabelChurn, proba, nil
	}
	if math.IsNaN(predicted) {
		return "", nil, errors.NewClassifierInvocationError("Classifier.Predict",
			errors.NewNumericalInstabilityError("Classifier.Predict", []float64{predicted}))
	}
	return LabelStay, proba, nil
}

// positiveProba returns P(class 1), or nil when the classifier has no
// probabilities or does not know class 1.
func (s *Service) positiveProba(X mat.Matrix) (*float64, error) {
	pc, ok := s.classifier.(model.ProbabilisticClassifier)
	if !ok {
		return nil, nil
	}
	col := -1
	for i, c := range pc.Classes() {
		if c == model.PositiveClass {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, nil
	}

	probas, err := pc.PredictProba(X)
	if err != nil {
		return nil, err
	}
	rows, cols := probas.Dims()
	if rows != 1 || col >= cols {
		return nil, errors.NewDimensionError("Classifier.PredictProba", col+1, cols, 1)
	}
	p := probas.At(0, col)
	if err := errors.CheckProbability("Classifier.PredictProba", p); err != nil {
		return nil, err
	}
	return &p, nil
}
