// Package log defines standard attribute keys for prediction operations.
//
// Using these keys everywhere keeps log lines from the HTTP API, the CLI
// and the prediction service queryable with the same filters. Keys follow
// a hierarchical naming convention ("model.name", "record.columns").

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of the loaded classifier.
	// Examples: "LogisticRegression"
	ModelNameKey = "model.name"

	// ModelVersionKey records the version string stored in the classifier artifact.
	ModelVersionKey = "model.version"

	// OperationKey specifies the operation being performed.
	// Standard values: "load", "normalize", "predict", "evaluate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	// Examples: "artifact", "prediction", "server"
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase.
	// Examples: "startup", "inference", "evaluation"
	PhaseKey = "ml.phase"
)

// Record and Encoding Context
const (
	// ColumnsKey is the number of columns in an input record.
	ColumnsKey = "record.columns"

	// FeaturesKey is the number of features the classifier expects.
	FeaturesKey = "data.features"

	// SamplesKey is the number of rows processed (evaluation only).
	SamplesKey = "data.samples"

	// EncodersKey is the number of per-column encoders in the loaded set.
	EncodersKey = "encoders.count"

	// ColumnKey names the column a message is about.
	ColumnKey = "encoder.column"

	// OriginalKey is the raw value before a fallback substitution.
	OriginalKey = "encoder.original"

	// FallbackKey is the fallback category used for a substitution.
	FallbackKey = "encoder.fallback"

	// SubstitutionsKey is the number of fallback substitutions in one call.
	SubstitutionsKey = "encoder.substitutions"

	// PathKey is a filesystem path (artifact files, evaluation data).
	PathKey = "artifact.path"

	// ArtifactKey names an artifact kind ("classifier", "encoders").
	ArtifactKey = "artifact.kind"
)

// Performance and Result Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// PredictionIDKey is the unique identifier of one prediction.
	PredictionIDKey = "preds.id"

	// LabelKey is the predicted label (CHURN or STAY).
	LabelKey = "preds.label"

	// ConfidenceKey records the churn probability when available.
	ConfidenceKey = "preds.confidence"

	// AccuracyKey records accuracy during offline evaluation.
	AccuracyKey = "metrics.accuracy"

	// AUCKey records ROC AUC during offline evaluation.
	AUCKey = "metrics.auc"

	// LossKey records binary log-loss during offline evaluation.
	LossKey = "metrics.loss"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Infrastructure
const (
	// AddrKey is the listen address of the HTTP server.
	AddrKey = "server.addr"

	// MethodKey and RouteKey describe an HTTP request.
	MethodKey = "http.method"
	RouteKey  = "http.route"

	// StatusKey is the HTTP response status.
	StatusKey = "http.status"
)

// Standard attribute values.
const (
	OperationLoad      = "load"
	OperationNormalize = "normalize"
	OperationPredict   = "predict"
	OperationEvaluate  = "evaluate"

	PhaseStartup    = "startup"
	PhaseInference  = "inference"
	PhaseEvaluation = "evaluation"

	ErrorArtifactLoad         = "ARTIFACT_LOAD"
	ErrorClassifierInvocation = "CLASSIFIER_INVOCATION"
	ErrorInvalidInput         = "INVALID_INPUT"
)
