// Package churnguard serves customer churn predictions from a fitted
// logistic regression and the label encoders it was trained with.
//
// A request is a single customer record, an ordered set of column names
// mapped to strings or numbers. Categorical columns are replaced by their
// encoder codes; a category the encoder never saw is replaced by the
// encoder's first class and reported as an UnseenCategoryWarning instead
// of failing the request. The encoded row is handed to the classifier and
// the outcome is shown as CHURN or STAY, with the churn probability when
// the classifier exposes one.
//
// # Layout
//
//   - core/record: the raw and encoded record types.
//   - preprocessing: LabelEncoder, EncoderSet and the CategoricalNormalizer.
//   - core/model: ModelWeights, the classifier interfaces and persistence.
//   - sklearn/linear_model: the LogisticRegression classifier.
//   - metrics: accuracy, AUC and log-loss used by the evaluate command.
//   - internal/artifact: loads both artifacts once at startup.
//   - internal/prediction: the PredictionService.
//   - internal/server and internal/telemetry: the HTTP API and its metrics.
//   - internal/cli: the churnguard command.
//
// # Quick Start
//
//	churnguard serve --model artifacts/model.json --encoders artifacts/encoders.json
//
//	curl -s localhost:8080/v1/predict -d '{"gender":"Male","Contract":"Month-to-month","tenure":2}'
//	{"id":"...","label":"CHURN","probability":0.81,"substitutions":[],"warnings":[]}
//
//	churnguard predict -f gender=Female -f Contract="Two year" -f tenure=40
//	STAY The customer is likely to stay. (churn probability 0.02)
//
// Settings come from CHURNGUARD_* environment variables, optional .env
// files and command-line flags, in increasing order of precedence.
package churnguard
