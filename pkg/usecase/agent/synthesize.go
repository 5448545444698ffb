package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
)

const (
	msgClarifyIntent    = "I'm not sure if you're asking about COVID-19 or customer churn. Could you please clarify?"
	msgMissingCountry   = "I need more information about the country to make a COVID-19 prediction. Please provide country name and relevant statistics."
	msgMissingCustomer  = "I need more information about the customer to assess churn risk. Please provide customer ID and relevant details."
	msgUnknownIntent    = "I'm not sure how to interpret your question. Could you please clarify?"
	msgInterpretFailure = "I encountered an error while interpreting the prediction."
	msgProcessingError  = "I encountered an error while processing your request: "
)

const covidTemplate = `
Based on the epidemiological data for %s:

**Risk Assessment**: %s
**Confidence**: %.1f%%

%s

**Recommendations**:
- Monitor case trends closely
- Ensure adequate vaccination coverage
- Maintain testing capacity
- Prepare healthcare infrastructure for potential surges
`

const churnHeaderTemplate = `
**Customer %s Analysis**:

**Churn Risk**: %.1f%%
**Status**: This customer is %s.
**Retention Score**: %.1f%%

**Key Risk Factors**:
`

const churnFooter = `

**Recommended Actions**:
- Reach out to the customer proactively
- Offer service improvements or discounts
- Address the identified pain points
- Monitor engagement metrics closely
`

// SynthesizeResponse renders prediction as a readable answer. It depends on
// its arguments only.
func (a *Agent) SynthesizeResponse(intent model.Intent, prediction model.Prediction) string {
	text, err := synthesize(intent, prediction)
	if err != nil {
		return msgInterpretFailure
	}
	return text
}

func synthesize(intent model.Intent, prediction model.Prediction) (text string, err error) {
	if msg, ok := prediction.ErrorMessage(); ok {
		return msgProcessingError + msg, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("panic while formatting prediction", goerr.V("panic", r))
		}
	}()

	switch intent {
	case model.IntentCovid:
		return synthesizeCovid(prediction)
	case model.IntentChurn:
		return synthesizeChurn(prediction)
	default:
		return msgUnknownIntent, nil
	}
}

func synthesizeCovid(p model.Prediction) (string, error) {
	confidence, err := numberField(p, "confidence")
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf(covidTemplate,
		textField(p, "country_name", "the country"),
		textField(p, "risk_level", "UNKNOWN"),
		confidence*100,
		textField(p, "explanation", ""),
	)
	return strings.TrimSpace(text), nil
}

func synthesizeChurn(p model.Prediction) (string, error) {
	probability, err := numberField(p, "churn_probability")
	if err != nil {
		return "", err
	}
	retention, err := numberField(p, "retention_score")
	if err != nil {
		return "", err
	}
	factors, err := listField(p, "risk_factors")
	if err != nil {
		return "", err
	}

	status := "likely to remain"
	if truthy(p["churn_prediction"]) {
		status = "at risk of churning"
	}

	var b strings.Builder
	fmt.Fprintf(&b, churnHeaderTemplate,
		textField(p, "customer_id", "the customer"),
		probability*100,
		status,
		retention*100,
	)
	for i, factor := range factors {
		fmt.Fprintf(&b, "\n%d. %s", i+1, factor)
	}
	b.WriteString(churnFooter)

	return strings.TrimSpace(b.String()), nil
}

// textField renders p[key], or def when the key is missing or null
func textField(p model.Prediction, key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	return formatValue(v)
}

// numberField reads p[key] as a number. Missing or null is 0.
func numberField(p model.Prediction, key string) (float64, error) {
	switch v := p[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, goerr.Wrap(err, "invalid number in prediction", goerr.V("field", key))
		}
		return f, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, goerr.New("number expected in prediction",
			goerr.V("field", key),
			goerr.V("value", v))
	}
}

// listField reads p[key] as a list of rendered items. Missing or null is empty.
func listField(p model.Prediction, key string) ([]string, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, formatValue(item))
		}
		return items, nil
	default:
		return nil, goerr.New("list expected in prediction",
			goerr.V("field", key),
			goerr.V("value", v))
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
