package agent

import (
	"bytes"
	"context"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

//go:embed prompt/covid.md
var covidPromptRaw string

//go:embed prompt/churn.md
var churnPromptRaw string

var (
	covidPromptTmpl = template.Must(template.New("covid").Parse(covidPromptRaw))
	churnPromptTmpl = template.Must(template.New("churn").Parse(churnPromptRaw))
)

// ExtractCovidParameters asks the model for the COVID-19 fields mentioned in query
func (a *Agent) ExtractCovidParameters(ctx context.Context, query string) model.Parameters {
	return a.extract(ctx, covidPromptTmpl, query)
}

// ExtractChurnParameters asks the model for the customer fields mentioned in query
func (a *Agent) ExtractChurnParameters(ctx context.Context, query string) model.Parameters {
	return a.extract(ctx, churnPromptTmpl, query)
}

func (a *Agent) ExtractParameters(ctx context.Context, intent model.Intent, query string) (model.Parameters, error) {
	switch intent {
	case model.IntentCovid:
		return a.ExtractCovidParameters(ctx, query), nil
	case model.IntentChurn:
		return a.ExtractChurnParameters(ctx, query), nil
	default:
		return nil, intent.Validate()
	}
}

func (a *Agent) extract(ctx context.Context, tmpl *template.Template, query string) model.Parameters {
	logger := logging.From(ctx)

	prompt, err := renderPrompt(tmpl, query)
	if err != nil {
		logger.Error("failed to build extraction prompt", "error", err)
		return model.Parameters{}
	}

	params := a.CallModel(ctx, prompt)
	logger.Info("extracted parameters", "prompt", tmpl.Name(), "params", params)
	return params
}

func renderPrompt(tmpl *template.Template, query string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Query": query,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute prompt template", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}
