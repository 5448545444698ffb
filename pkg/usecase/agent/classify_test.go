package agent_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/usecase/agent"
)

func TestClassifyIntent(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		intent     model.Intent
		confidence float64
		covid      int
		churn      int
	}{
		{
			name:       "covid query",
			query:      "What's the COVID-19 situation in the United States with 100000 cases and 2000 deaths?",
			intent:     model.IntentCovid,
			confidence: 3.0 / 4.0,
			covid:      3,
			churn:      0,
		},
		{
			name:       "churn query",
			query:      "Is customer CUST_001 likely to churn? They've been with us for 24 months and pay $85.50/month.",
			intent:     model.IntentChurn,
			confidence: 2.0 / 3.0,
			covid:      0,
			churn:      2,
		},
		{
			name:       "empty query",
			query:      "",
			intent:     model.IntentChurn,
			confidence: 0,
		},
		{
			name:       "no keywords",
			query:      "Hello there, how are you?",
			intent:     model.IntentChurn,
			confidence: 0,
		},
		{
			name:       "tie goes to churn",
			query:      "customer health",
			intent:     model.IntentChurn,
			confidence: 1.0 / 3.0,
			covid:      1,
			churn:      1,
		},
		{
			name:       "overlapping keywords both count",
			query:      "CORONAVIRUS",
			intent:     model.IntentCovid,
			confidence: 2.0 / 3.0,
			covid:      2,
		},
		{
			name:       "repeated keyword counts once",
			query:      "churn churn churn",
			intent:     model.IntentChurn,
			confidence: 1.0 / 2.0,
			churn:      1,
		},
	}

	a := agent.New(&mockGemini{})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := a.ClassifyIntent(context.Background(), tc.query)
			gt.Equal(t, result.Intent, tc.intent)
			gt.Equal(t, result.Confidence, tc.confidence)
			gt.Equal(t, result.CovidScore, tc.covid)
			gt.Equal(t, result.ChurnScore, tc.churn)
			gt.True(t, result.Confidence >= 0 && result.Confidence <= 1)
		})
	}
}
