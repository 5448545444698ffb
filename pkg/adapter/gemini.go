package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

type Gemini interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiClient struct {
	client *genai.Client
	model  string
}

type geminiConfig struct {
	model      string
	baseURL    string
	apiVersion string
	project    string
	location   string
}

type GeminiOption func(*geminiConfig)

func WithGenerativeModel(model string) GeminiOption {
	return func(c *geminiConfig) {
		c.model = model
	}
}

// WithBaseURL overrides the Gemini API endpoint
func WithBaseURL(baseURL string) GeminiOption {
	return func(c *geminiConfig) {
		c.baseURL = baseURL
	}
}

func WithAPIVersion(version string) GeminiOption {
	return func(c *geminiConfig) {
		c.apiVersion = version
	}
}

// WithVertexAI switches the client to the Vertex AI backend. The API key is ignored then.
func WithVertexAI(project, location string) GeminiOption {
	return func(c *geminiConfig) {
		c.project = project
		c.location = location
	}
}

// NewGemini creates a client for the Gemini API authenticated by apiKey
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	cfg := &geminiConfig{
		model:      "gemini-2.0-flash",
		apiVersion: "v1beta",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientConfig := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.baseURL,
			APIVersion: cfg.apiVersion,
		},
	}
	if cfg.project != "" {
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.project
		clientConfig.Location = cfg.location
	} else {
		if apiKey == "" {
			return nil, goerr.New("gemini api key is required")
		}
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = apiKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	return &GeminiClient{
		client: client,
		model:  cfg.model,
	}, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.V("model", g.model))
	}
	return resp, nil
}
