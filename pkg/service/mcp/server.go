package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/usecase/agent"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

// Agent is the part of the routing agent exposed as MCP tools
type Agent interface {
	Handle(ctx context.Context, query string) *agent.Result
	ClassifyIntent(ctx context.Context, query string) model.IntentResult
}

// Server exposes the agent to MCP clients
type Server struct {
	agent  Agent
	server *mcp.Server
}

type askParams struct {
	Query string `json:"query" jsonschema:"Question about COVID-19 risk of a country or churn risk of a telco customer, with any known figures"`
}

type classifyParams struct {
	Query string `json:"query" jsonschema:"Question to classify"`
}

type classification struct {
	Intent     model.Intent `json:"intent"`
	Confidence float64      `json:"confidence"`
	CovidScore int          `json:"covid_score"`
	ChurnScore int          `json:"churn_score"`
}

func NewServer(a Agent, version string) *Server {
	s := &Server{
		agent: a,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "tandem",
			Version: version,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a COVID-19 risk or customer churn question by calling the matching prediction service",
	}, s.ask)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_intent",
		Description: "Tell whether a question is about COVID-19 risk or customer churn, with keyword scores",
	}, s.classifyIntent)

	return s
}

// Run serves MCP over stdin/stdout until the client disconnects or ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "MCP server stopped")
	}
	return nil
}

// Handler serves MCP over streamable HTTP
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func (s *Server) ask(ctx context.Context, _ *mcp.CallToolRequest, params *askParams) (*mcp.CallToolResult, any, error) {
	result := s.agent.Handle(ctx, strings.TrimSpace(params.Query))
	logging.From(ctx).Debug("answered MCP query", "kind", result.Kind, "intent", result.Intent)

	failed := result.Kind == agent.KindServiceError || result.Kind == agent.KindInternal
	return textResult(result.Text, failed), nil, nil
}

func (s *Server) classifyIntent(ctx context.Context, _ *mcp.CallToolRequest, params *classifyParams) (*mcp.CallToolResult, any, error) {
	r := s.agent.ClassifyIntent(ctx, params.Query)
	raw, err := json.Marshal(classification{
		Intent:     r.Intent,
		Confidence: r.Confidence,
		CovidScore: r.CovidScore,
		ChurnScore: r.ChurnScore,
	})
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to encode classification")
	}

	return textResult(string(raw), false), nil, nil
}
