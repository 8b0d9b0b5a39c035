// Package artifact loads the fitted classifier and encoders from disk once
// per process and shares them read-only.
package artifact

import (
	"os"
	"sync"
	"time"

	"github.com/YuminosukeSato/churnguard/core/model"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/YuminosukeSato/churnguard/pkg/log"
	"github.com/YuminosukeSato/churnguard/preprocessing"
	"github.com/YuminosukeSato/churnguard/sklearn/linear_model"
)

// Artifact kinds, as reported in ArtifactLoadError.
const (
	KindClassifier = "classifier"
	KindEncoders   = "encoders"
)

// Artifacts is the loaded, immutable pair served by the prediction service.
type Artifacts struct {
	Classifier   model.Classifier
	Encoders     preprocessing.EncoderSet
	ModelType    string
	Version      string
	ModelPath    string
	EncodersPath string
	LoadedAt     time.Time
}

// factory restores a classifier from validated weights.
type factory func(*model.ModelWeights) (model.Classifier, error)

var factories = map[string]factory{
	linear_model.LogisticRegressionType: func(w *model.ModelWeights) (model.Classifier, error) {
		return linear_model.NewLogisticRegressionFromWeights(w)
	},
}

// Store memoizes the artifacts found at two paths.
type Store struct {
	modelPath    string
	encodersPath string
	logger       log.Logger
	now          func() time.Time

	once      sync.Once
	artifacts *Artifacts
	err       error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report loading.
func WithLogger(l log.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore returns a Store for the given artifact paths. Nothing is read
// until Load is called.
func NewStore(modelPath, encodersPath string, opts ...Option) *Store {
	s := &Store{
		modelPath:    modelPath,
		encodersPath: encodersPath,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("artifact")
	}
	return s
}

// Load reads both artifacts on the first call and returns the same result,
// success or failure, on every later call.
func (s *Store) Load() (*Artifacts, error) {
	s.once.Do(func() {
		s.artifacts, s.err = s.load()
	})
	return s.artifacts, s.err
}

func (s *Store) load() (*Artifacts, error) {
	start := s.now()

	clf, weights, err := LoadClassifier(s.modelPath)
	if err != nil {
		s.logger.Error("Failed to load classifier", err,
			log.ErrorCodeKey, log.ErrorArtifactLoad,
			log.ArtifactKey, KindClassifier,
			log.PathKey, s.modelPath,
		)
		return nil, err
	}
	encoders, err := LoadEncoders(s.encodersPath)
	if err != nil {
		s.logger.Error("Failed to load encoders", err,
			log.ErrorCodeKey, log.ErrorArtifactLoad,
			log.ArtifactKey, KindEncoders,
			log.PathKey, s.encodersPath,
		)
		return nil, err
	}

	a := &Artifacts{
		Classifier:   clf,
		Encoders:     encoders,
		ModelType:    weights.ModelType,
		Version:      weights.Version,
		ModelPath:    s.modelPath,
		EncodersPath: s.encodersPath,
		LoadedAt:     s.now(),
	}
	s.logger.Info("Artifacts loaded",
		log.ModelNameKey, a.ModelType,
		log.ModelVersionKey, a.Version,
		log.FeaturesKey, len(clf.FeatureNames()),
		log.EncodersKey, encoders.Columns(),
		log.DurationMsKey, a.LoadedAt.Sub(start).Milliseconds(),
	)
	return a, nil
}

// LoadClassifier reads ModelWeights from path (.json or .gob) and restores
// the classifier named by its model_type.
func LoadClassifier(path string) (model.Classifier, *model.ModelWeights, error) {
	fail := func(err error) (model.Classifier, *model.ModelWeights, error) {
		return nil, nil, errors.NewArtifactLoadError(KindClassifier, path, err)
	}

	format, err := model.FormatFromPath(path)
	if err != nil {
		return fail(err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	weights, err := model.ReadWeights(f, format)
	if err != nil {
		return fail(err)
	}
	build, ok := factories[weights.ModelType]
	if !ok {
		return fail(errors.NewValidationError("model_type", "unsupported classifier", weights.ModelType))
	}
	clf, err := build(weights)
	if err != nil {
		return fail(err)
	}
	return clf, weights, nil
}

// LoadEncoders reads an EncoderSet from path (.json or .gob).
func LoadEncoders(path string) (preprocessing.EncoderSet, error) {
	fail := func(err error) (preprocessing.EncoderSet, error) {
		return nil, errors.NewArtifactLoadError(KindEncoders, path, err)
	}

	format, err := model.FormatFromPath(path)
	if err != nil {
		return fail(err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	var set preprocessing.EncoderSet
	switch format {
	case model.FormatGob:
		set, err = preprocessing.LoadEncoderSetGob(f)
	default:
		set, err = preprocessing.LoadEncoderSetJSON(f)
	}
	if err != nil {
		return fail(err)
	}
	return set, nil
}

// SaveClassifier writes the exported weights of m to path, choosing the
// format from the extension.
func SaveClassifier(path string, m model.WeightExporter) error {
	format, err := model.FormatFromPath(path)
	if err != nil {
		return err
	}
	weights, err := m.ExportWeights()
	if err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error {
		return model.WriteWeights(f, weights, format)
	})
}

// SaveEncoders writes set to path, choosing the format from the extension.
func SaveEncoders(path string, set preprocessing.EncoderSet) error {
	format, err := model.FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := set.Validate(); err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error {
		if format == model.FormatGob {
			return preprocessing.SaveEncoderSetGob(f, set)
		}
		return preprocessing.SaveEncoderSetJSON(f, set)
	})
}

func writeFile(path string, write func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()
	return write(f)
}
