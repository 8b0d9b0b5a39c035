package prediction

import "time"

// Failure reasons passed to Recorder.ObserveFailure.
const (
	FailureInput      = "input"
	FailureClassifier = "classifier"
	FailureCanceled   = "canceled"
)

// Recorder receives prediction metrics.
type Recorder interface {
	ObservePrediction(label Label, elapsed time.Duration)
	ObserveFailure(reason string)
	ObserveSubstitution(column string)
}

type nopRecorder struct{}

func (nopRecorder) ObservePrediction(Label, time.Duration) {}
func (nopRecorder) ObserveFailure(string)                  {}
func (nopRecorder) ObserveSubstitution(string)             {}
