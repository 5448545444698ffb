package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

// ProcessQuery answers query end to end. It always returns text and never fails.
func (a *Agent) ProcessQuery(ctx context.Context, query string) string {
	return a.Handle(ctx, query).Text
}

// Handle classifies query, extracts parameters, calls the prediction service
// and synthesizes the answer. Extraction finishes before dispatch starts.
func (a *Agent) Handle(ctx context.Context, query string) (result *Result) {
	ctx = logging.WithAttrs(ctx, "query_id", model.NewRequestID())
	logger := logging.From(ctx)
	logger.Info("processing query", "query", query)

	defer func() {
		if r := recover(); r != nil {
			err := goerr.New("panic while processing query", goerr.V("panic", r))
			logger.Error("query processing aborted", "error", err)
			result = &Result{
				Kind: KindInternal,
				Text: msgProcessingError + fmt.Sprint(r),
			}
		}
		queriesTotal.WithLabelValues(string(result.Intent), string(result.Kind)).Inc()
		logger.Info("query processed", "kind", result.Kind, "response", result.Text)
	}()

	classified := a.ClassifyIntent(ctx, query)
	result = &Result{
		Intent:     classified.Intent,
		Confidence: classified.Confidence,
	}

	if classified.Confidence < a.threshold {
		result.Kind = KindUnclearIntent
		result.Text = msgClarifyIntent
		return result
	}

	started := time.Now()
	params, err := a.ExtractParameters(ctx, classified.Intent, query)
	modelCallDuration.WithLabelValues(string(classified.Intent)).Observe(time.Since(started).Seconds())
	if err != nil {
		logger.Error("failed to extract parameters", "error", err)
		result.Kind = KindInternal
		result.Text = msgProcessingError + err.Error()
		return result
	}
	result.Parameters = params

	if !params.Has(classified.Intent.KeyField()) {
		result.Kind = KindMissingParameter
		result.Text = missingParameterMessage(classified.Intent)
		return result
	}

	result.Prediction = a.CallService(ctx, classified.Intent, params)

	text, err := synthesize(classified.Intent, result.Prediction)
	switch {
	case err != nil:
		logger.Error("failed to synthesize response", "error", err, "prediction", result.Prediction)
		result.Kind = KindInternal
		result.Text = msgInterpretFailure
	default:
		result.Kind = KindAnswered
		if _, failed := result.Prediction.ErrorMessage(); failed {
			result.Kind = KindServiceError
		}
		result.Text = text
	}

	return result
}

func missingParameterMessage(intent model.Intent) string {
	if intent == model.IntentCovid {
		return msgMissingCountry
	}
	return msgMissingCustomer
}
