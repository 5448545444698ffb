package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidIntent   = goerr.New("invalid intent")
	ErrFeatureNotFound = goerr.New("feature not found")
)

// Intent is the prediction domain a query is routed to
type Intent string

const (
	IntentCovid Intent = "covid"
	IntentChurn Intent = "churn"
)

// Validate checks if the intent is one of the known domains
func (i Intent) Validate() error {
	switch i {
	case IntentCovid, IntentChurn:
		return nil
	default:
		return goerr.Wrap(ErrInvalidIntent, "unknown intent", goerr.V("intent", string(i)))
	}
}

// KeyField returns the parameter that must be present before a prediction service is called
func (i Intent) KeyField() string {
	switch i {
	case IntentCovid:
		return FieldCountryName
	case IntentChurn:
		return FieldCustomerID
	default:
		return ""
	}
}

// IntentResult is the outcome of keyword classification
type IntentResult struct {
	Intent     Intent
	Confidence float64
	CovidScore int
	ChurnScore int
}
