package agent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/usecase/agent"
	"google.golang.org/genai"
)

const (
	covidQuery = "What's the COVID-19 situation in the United States with 100000 cases and 2000 deaths?"
	churnQuery = "Is customer CUST_001 likely to churn? They've been with us for 24 months and pay $85.50/month."
)

type predictionServer struct {
	*httptest.Server
	hits     atomic.Int32
	mu       sync.Mutex
	requests []map[string]any
}

func newPredictionServer(t *testing.T, status int, body string) *predictionServer {
	ps := &predictionServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.hits.Add(1)

		var req map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		ps.mu.Lock()
		ps.requests = append(ps.requests, req)
		ps.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ps.Close)
	return ps
}

func TestProcessQueryCovid(t *testing.T) {
	svc := newPredictionServer(t, http.StatusOK, `{
		"country_name": "United States",
		"prediction": 0.72,
		"risk_level": "HIGH",
		"confidence": 0.9,
		"explanation": "Based on 100,000 confirmed cases and 2,000 deaths."
	}`)
	mock := &mockGemini{
		generateFunc: replyWith("```json\n{\"country_name\": \"United States\", \"confirmed_cases\": 100000, \"deaths\": 2000, \"population\": null}\n```"),
	}

	a := agent.New(mock, agent.WithCovidServiceURL(svc.URL))
	result := a.Handle(context.Background(), covidQuery)

	gt.Equal(t, result.Kind, agent.KindAnswered)
	gt.Equal(t, result.Intent, model.IntentCovid)
	gt.Equal(t, result.Confidence, 0.75)
	gt.S(t, result.Text).Contains("Based on the epidemiological data for United States:")
	gt.S(t, result.Text).Contains("**Risk Assessment**: HIGH")
	gt.S(t, result.Text).Contains("**Confidence**: 90.0%")
	gt.S(t, result.Text).Contains("Based on 100,000 confirmed cases and 2,000 deaths.")

	gt.Equal(t, mock.calls(), 1)
	gt.Equal(t, svc.hits.Load(), int32(1))
	gt.Equal(t, svc.requests[0]["country_name"], any("United States"))
	gt.Equal(t, svc.requests[0]["confirmed_cases"], any(100000.0))
}

func TestProcessQueryChurn(t *testing.T) {
	svc := newPredictionServer(t, http.StatusOK, `{
		"customer_id": "CUST_001",
		"churn_probability": 0.62,
		"churn_prediction": true,
		"risk_factors": ["High monthly charges"],
		"retention_score": 0.38
	}`)
	mock := &mockGemini{
		generateFunc: replyWith(`{"customer_id": "CUST_001", "tenure_months": 24, "monthly_charges": 85.5}`),
	}

	a := agent.New(mock, agent.WithChurnServiceURL(svc.URL))
	text := a.ProcessQuery(context.Background(), churnQuery)

	gt.S(t, text).Contains("**Customer CUST_001 Analysis**:")
	gt.S(t, text).Contains("**Churn Risk**: 62.0%")
	gt.S(t, text).Contains("This customer is at risk of churning.")
	gt.S(t, text).Contains("1. High monthly charges")
	gt.Equal(t, svc.hits.Load(), int32(1))
}

func TestProcessQueryUnclearIntent(t *testing.T) {
	svc := newPredictionServer(t, http.StatusOK, `{}`)
	mock := &mockGemini{}
	a := agent.New(mock, agent.WithCovidServiceURL(svc.URL), agent.WithChurnServiceURL(svc.URL))

	for _, query := range []string{"", "Hello there", "customer health"} {
		result := a.Handle(context.Background(), query)
		gt.Equal(t, result.Kind, agent.KindUnclearIntent)
		gt.Equal(t, result.Text, agent.MsgClarifyIntent)
	}

	gt.Equal(t, mock.calls(), 0)
	gt.Equal(t, svc.hits.Load(), int32(0))
}

func TestProcessQueryThreshold(t *testing.T) {
	mock := &mockGemini{}
	a := agent.New(mock, agent.WithConfidenceThreshold(0.8))

	result := a.Handle(context.Background(), covidQuery)
	gt.Equal(t, result.Kind, agent.KindUnclearIntent)
	gt.Equal(t, mock.calls(), 0)
}

func TestProcessQueryMissingKeyField(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		reply    string
		expected string
	}{
		{
			name:     "covid without country",
			query:    covidQuery,
			reply:    `{"confirmed_cases": 100000}`,
			expected: agent.MsgMissingCountry,
		},
		{
			name:     "covid with null country",
			query:    covidQuery,
			reply:    `{"country_name": null, "deaths": 2000}`,
			expected: agent.MsgMissingCountry,
		},
		{
			name:     "covid with object wrapped in prose",
			query:    covidQuery,
			reply:    "Here you go: {\"country_name\": \"Chile\", \"deaths\": 2000} Hope this helps.",
			expected: agent.MsgMissingCountry,
		},
		{
			name:     "churn with unusable reply",
			query:    churnQuery,
			reply:    "Sorry, I cannot help with that.",
			expected: agent.MsgMissingCustomer,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newPredictionServer(t, http.StatusOK, `{}`)
			a := agent.New(&mockGemini{generateFunc: replyWith(tc.reply)},
				agent.WithCovidServiceURL(svc.URL),
				agent.WithChurnServiceURL(svc.URL),
			)

			result := a.Handle(context.Background(), tc.query)
			gt.Equal(t, result.Kind, agent.KindMissingParameter)
			gt.Equal(t, result.Text, tc.expected)
			gt.Equal(t, svc.hits.Load(), int32(0))
		})
	}
}

func TestProcessQueryServiceError(t *testing.T) {
	svc := newPredictionServer(t, http.StatusInternalServerError, `{"detail": "Prediction failed: boom"}`)
	a := agent.New(&mockGemini{generateFunc: replyWith(`{"country_name": "Peru"}`)},
		agent.WithCovidServiceURL(svc.URL),
	)

	result := a.Handle(context.Background(), covidQuery)
	gt.Equal(t, result.Kind, agent.KindServiceError)
	gt.True(t, strings.HasPrefix(result.Text, agent.MsgProcessingError))
	gt.S(t, result.Text).Contains("500")
}

func TestProcessQueryRecoversPanic(t *testing.T) {
	mock := &mockGemini{
		generateFunc: func(context.Context, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			panic("gemini client exploded")
		},
	}
	a := agent.New(mock)

	result := a.Handle(context.Background(), covidQuery)
	gt.Equal(t, result.Kind, agent.KindInternal)
	gt.Equal(t, result.Text, agent.MsgProcessingError+"gemini client exploded")
}

func TestProcessQueryConcurrent(t *testing.T) {
	covidSvc := newPredictionServer(t, http.StatusOK, `{"country_name": "Peru", "risk_level": "LOW", "confidence": 0.9}`)
	churnSvc := newPredictionServer(t, http.StatusOK, `{"customer_id": "CUST_001", "churn_probability": 0.2}`)

	mock := &mockGemini{
		generateFunc: func(_ context.Context, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if strings.Contains(contents[0].Parts[0].Text, "COVID-19 prediction parameters") {
				return textResponse(`{"country_name": "Peru"}`), nil
			}
			return textResponse(`{"customer_id": "CUST_001"}`), nil
		},
	}
	a := agent.New(mock,
		agent.WithCovidServiceURL(covidSvc.URL),
		agent.WithChurnServiceURL(churnSvc.URL),
	)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		query := covidQuery
		if i%2 == 1 {
			query = churnQuery
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := a.Handle(context.Background(), query)
			if result.Kind != agent.KindAnswered {
				t.Errorf("unexpected kind %s for %q", result.Kind, query)
			}
		}()
	}
	wg.Wait()

	gt.Equal(t, covidSvc.hits.Load(), int32(4))
	gt.Equal(t, churnSvc.hits.Load(), int32(4))
}
