package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tandem-mlops/tandem/pkg/adapter"
	"google.golang.org/genai"
)

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := adapter.NewGemini(context.Background(), "")
	gt.Error(t, err)
}

func TestGenerateContent(t *testing.T) {
	apiKey := os.Getenv("TEST_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("TEST_GEMINI_API_KEY is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewGemini(ctx, apiKey)
	gt.NoError(t, err)

	contents := []*genai.Content{
		genai.NewContentFromText(`Return {"country_name": "Japan"} as JSON and nothing else.`, genai.RoleUser),
	}

	resp, err := client.GenerateContent(ctx, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	gt.NoError(t, err)

	if resp == nil ||
		len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 ||
		resp.Candidates[0].Content.Parts[0].Text == "" {
		t.Fatal("unexpected response")
	}

	t.Log("response:", resp.Candidates[0].Content.Parts[0].Text)
}
