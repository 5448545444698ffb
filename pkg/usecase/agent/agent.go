package agent

import (
	"net/http"
	"strings"
	"time"

	"github.com/tandem-mlops/tandem/pkg/adapter"
)

const (
	DefaultCovidServiceURL     = "http://localhost:8000"
	DefaultChurnServiceURL     = "http://localhost:8001"
	DefaultTimeout             = 30 * time.Second
	DefaultConfidenceThreshold = 0.3
)

// Agent routes a natural-language query to the matching prediction service
// and turns the prediction into a readable answer. It holds no per-query
// state and can be shared between goroutines.
type Agent struct {
	gemini     adapter.Gemini
	httpClient *http.Client
	covidURL   string
	churnURL   string
	timeout    time.Duration
	threshold  float64
	generation GenerationConfig
}

// GenerationConfig tunes the extraction model call
type GenerationConfig struct {
	Temperature     float32
	MaxOutputTokens int32
	TopP            float32
	TopK            float32
}

// Option is a functional option for Agent
type Option func(*Agent)

func WithCovidServiceURL(url string) Option {
	return func(a *Agent) {
		a.covidURL = strings.TrimRight(url, "/")
	}
}

func WithChurnServiceURL(url string) Option {
	return func(a *Agent) {
		a.churnURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout bounds each model call and each prediction service call
func WithTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.timeout = d
	}
}

// WithConfidenceThreshold sets the classification confidence below which the agent asks for clarification
func WithConfidenceThreshold(threshold float64) Option {
	return func(a *Agent) {
		a.threshold = threshold
	}
}

// WithHTTPClient replaces the client used for prediction services. The agent timeout still bounds each call.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Agent) {
		a.httpClient = client
	}
}

func WithGenerationConfig(cfg GenerationConfig) Option {
	return func(a *Agent) {
		a.generation = cfg
	}
}

// New creates a new Agent instance
func New(gemini adapter.Gemini, opts ...Option) *Agent {
	a := &Agent{
		gemini:    gemini,
		covidURL:  DefaultCovidServiceURL,
		churnURL:  DefaultChurnServiceURL,
		timeout:   DefaultTimeout,
		threshold: DefaultConfidenceThreshold,
		generation: GenerationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 1024,
			TopP:            0.95,
			TopK:            40,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: a.timeout}
	}

	return a
}
