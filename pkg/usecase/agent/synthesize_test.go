package agent_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/usecase/agent"
)

func TestSynthesizeCovid(t *testing.T) {
	a := agent.New(&mockGemini{})

	text := a.SynthesizeResponse(model.IntentCovid, model.Prediction{
		"country_name": "Brazil",
		"risk_level":   "MEDIUM",
		"confidence":   0.87,
		"explanation":  "Death rate is moderate.",
	})

	expected := `Based on the epidemiological data for Brazil:

**Risk Assessment**: MEDIUM
**Confidence**: 87.0%

Death rate is moderate.

**Recommendations**:
- Monitor case trends closely
- Ensure adequate vaccination coverage
- Maintain testing capacity
- Prepare healthcare infrastructure for potential surges`
	gt.Equal(t, text, expected)
}

func TestSynthesizeCovidDefaults(t *testing.T) {
	a := agent.New(&mockGemini{})

	text := a.SynthesizeResponse(model.IntentCovid, model.Prediction{
		"country_name": nil,
	})
	gt.S(t, text).Contains("Based on the epidemiological data for the country:")
	gt.S(t, text).Contains("**Risk Assessment**: UNKNOWN")
	gt.S(t, text).Contains("**Confidence**: 0.0%")
}

func TestSynthesizeChurn(t *testing.T) {
	a := agent.New(&mockGemini{})

	text := a.SynthesizeResponse(model.IntentChurn, model.Prediction{
		"customer_id":       "CUST_001",
		"churn_probability": 0.72,
		"churn_prediction":  true,
		"risk_factors":      []any{"High monthly charges", "Month-to-month contract"},
		"retention_score":   0.28,
	})

	expected := `**Customer CUST_001 Analysis**:

**Churn Risk**: 72.0%
**Status**: This customer is at risk of churning.
**Retention Score**: 28.0%

**Key Risk Factors**:

1. High monthly charges
2. Month-to-month contract

**Recommended Actions**:
- Reach out to the customer proactively
- Offer service improvements or discounts
- Address the identified pain points
- Monitor engagement metrics closely`
	gt.Equal(t, text, expected)
}

func TestSynthesizeChurnDefaults(t *testing.T) {
	a := agent.New(&mockGemini{})

	text := a.SynthesizeResponse(model.IntentChurn, model.Prediction{})
	gt.S(t, text).Contains("**Customer the customer Analysis**:")
	gt.S(t, text).Contains("**Churn Risk**: 0.0%")
	gt.S(t, text).Contains("This customer is likely to remain.")
	gt.S(t, text).Contains("**Key Risk Factors**:\n\n\n**Recommended Actions**:")
}

func TestSynthesizeErrorSentinel(t *testing.T) {
	a := agent.New(&mockGemini{})

	for _, intent := range []model.Intent{model.IntentCovid, model.IntentChurn, model.Intent("other")} {
		text := a.SynthesizeResponse(intent, model.Prediction{
			"error":      "connection refused",
			"risk_level": "HIGH",
		})
		gt.Equal(t, text, agent.MsgProcessingError+"connection refused")
	}
}

func TestSynthesizeUnknownIntent(t *testing.T) {
	a := agent.New(&mockGemini{})
	text := a.SynthesizeResponse(model.Intent("weather"), model.Prediction{"risk_level": "LOW"})
	gt.Equal(t, text, agent.MsgUnknownIntent)
}

func TestSynthesizeMalformedPrediction(t *testing.T) {
	a := agent.New(&mockGemini{})

	testCases := []struct {
		name       string
		intent     model.Intent
		prediction model.Prediction
	}{
		{
			name:       "non numeric confidence",
			intent:     model.IntentCovid,
			prediction: model.Prediction{"confidence": "very high"},
		},
		{
			name:       "non numeric churn probability",
			intent:     model.IntentChurn,
			prediction: model.Prediction{"churn_probability": "72%"},
		},
		{
			name:       "risk factors not a list",
			intent:     model.IntentChurn,
			prediction: model.Prediction{"churn_probability": 0.5, "risk_factors": "High monthly charges"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, a.SynthesizeResponse(tc.intent, tc.prediction), agent.MsgInterpretFailure)
		})
	}
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	a := agent.New(&mockGemini{})
	prediction := model.Prediction{
		"customer_id":       "C-9",
		"churn_probability": 0.31,
		"risk_factors":      []any{"No tech support", 3.5},
		"retention_score":   0.69,
	}

	first := a.SynthesizeResponse(model.IntentChurn, prediction)
	second := a.SynthesizeResponse(model.IntentChurn, prediction)
	gt.Equal(t, first, second)
	gt.S(t, first).Contains("\n2. 3.5")
}
