package model

import "fmt"

const FieldError = "error"

// Prediction is a decoded prediction service response. A prediction holding
// the "error" key is the failure sentinel produced by the dispatcher.
type Prediction map[string]any

// NewErrorPrediction builds the failure sentinel for err
func NewErrorPrediction(err error) Prediction {
	return Prediction{FieldError: err.Error()}
}

// ErrorMessage returns the failure message if p is an error sentinel
func (p Prediction) ErrorMessage() (string, bool) {
	v, ok := p[FieldError]
	if !ok {
		return "", false
	}
	switch msg := v.(type) {
	case string:
		return msg, true
	case nil:
		return "unknown error", true
	default:
		return fmt.Sprint(msg), true
	}
}
