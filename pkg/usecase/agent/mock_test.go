package agent_test

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

type mockGemini struct {
	mu           sync.Mutex
	prompts      []string
	generateFunc func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	for _, c := range contents {
		for _, p := range c.Parts {
			m.prompts = append(m.prompts, p.Text)
		}
	}
	m.mu.Unlock()

	if m.generateFunc != nil {
		return m.generateFunc(ctx, contents, config)
	}
	return textResponse("{}"), nil
}

func (m *mockGemini) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role:  genai.RoleModel,
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func replyWith(text string) func(context.Context, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return func(context.Context, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse(text), nil
	}
}
