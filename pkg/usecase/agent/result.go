package agent

import "github.com/tandem-mlops/tandem/pkg/model"

// Kind tells how a query was answered
type Kind string

const (
	KindAnswered         Kind = "answered"
	KindUnclearIntent    Kind = "unclear_intent"
	KindMissingParameter Kind = "missing_parameter"
	KindServiceError     Kind = "service_error"
	KindInternal         Kind = "internal"
)

// Result is the outcome of one query. Fields after Kind are set only as far as processing got.
type Result struct {
	Kind       Kind
	Text       string
	Intent     model.Intent
	Confidence float64
	Parameters model.Parameters
	Prediction model.Prediction
}
