package agent

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
	"google.golang.org/genai"
)

// CallModel sends prompt to the model and decodes the first candidate's text
// as a JSON object. Every failure yields an empty mapping.
func (a *Agent) CallModel(ctx context.Context, prompt string) model.Parameters {
	logger := logging.From(ctx)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := a.gemini.GenerateContent(ctx, contents, a.generateContentConfig())
	if err != nil {
		logger.Error("model call failed", "error", err)
		return model.Parameters{}
	}

	text, err := candidateText(resp)
	if err != nil {
		logger.Warn("model returned no usable candidate", "error", err)
		return model.Parameters{}
	}

	params, err := parseParameters(text)
	if err != nil {
		logger.Warn("could not parse model response as JSON", "error", err)
		return model.Parameters{}
	}

	return params
}

func (a *Agent) generateContentConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(a.generation.Temperature),
		TopP:             genai.Ptr(a.generation.TopP),
		TopK:             genai.Ptr(a.generation.TopK),
		MaxOutputTokens:  a.generation.MaxOutputTokens,
		ResponseMIMEType: "application/json",
	}
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", goerr.New("invalid response structure from gemini")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func parseParameters(text string) (model.Parameters, error) {
	cleaned := cleanJSONResponse(text)

	var params model.Parameters
	if err := json.Unmarshal([]byte(cleaned), &params); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal parameters", goerr.V("text", text))
	}
	if params == nil {
		params = model.Parameters{}
	}
	return params, nil
}
