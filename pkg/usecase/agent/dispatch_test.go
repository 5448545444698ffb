package agent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/usecase/agent"
)

func TestCallCovidService(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.Method, http.MethodPost)
		gt.Equal(t, r.URL.Path, "/predict/covid")
		gt.Equal(t, r.Header.Get("Content-Type"), "application/json")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"country_name": "Japan", "risk_level": "LOW", "confidence": 0.91}`))
	}))
	defer srv.Close()

	a := agent.New(&mockGemini{}, agent.WithCovidServiceURL(srv.URL+"/"))
	prediction := a.CallCovidService(context.Background(), model.Parameters{
		"country_name": "Japan",
		"deaths":       74000.0,
		"population":   nil,
	})

	gt.Equal(t, prediction["risk_level"], any("LOW"))
	gt.Equal(t, prediction["confidence"], any(0.91))
	gt.Equal(t, received["country_name"], any("Japan"))
	gt.Equal(t, received["deaths"], any(74000.0))
	_, hasPopulation := received["population"]
	gt.True(t, hasPopulation)
}

func TestCallChurnServiceRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/predict/churn")
		_, _ = w.Write([]byte(`{"customer_id": "C-1", "churn_probability": 0.4}`))
	}))
	defer srv.Close()

	a := agent.New(&mockGemini{}, agent.WithChurnServiceURL(srv.URL))
	prediction := a.CallService(context.Background(), model.IntentChurn, model.Parameters{"customer_id": "C-1"})
	gt.Equal(t, prediction["customer_id"], any("C-1"))
}

func TestCallServiceFailures(t *testing.T) {
	t.Run("non 2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"detail": "model not loaded"}`))
		}))
		defer srv.Close()

		a := agent.New(&mockGemini{}, agent.WithCovidServiceURL(srv.URL))
		msg, ok := a.CallCovidService(context.Background(), model.Parameters{"country_name": "Peru"}).ErrorMessage()
		gt.True(t, ok)
		gt.S(t, msg).Contains("503")
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}))
		defer srv.Close()

		a := agent.New(&mockGemini{}, agent.WithCovidServiceURL(srv.URL))
		_, ok := a.CallCovidService(context.Background(), model.Parameters{"country_name": "Peru"}).ErrorMessage()
		gt.True(t, ok)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		a := agent.New(&mockGemini{}, agent.WithChurnServiceURL(url))
		_, ok := a.CallChurnService(context.Background(), model.Parameters{"customer_id": "C-1"}).ErrorMessage()
		gt.True(t, ok)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		a := agent.New(&mockGemini{},
			agent.WithChurnServiceURL(srv.URL),
			agent.WithTimeout(50*time.Millisecond),
		)
		_, ok := a.CallChurnService(context.Background(), model.Parameters{"customer_id": "C-1"}).ErrorMessage()
		gt.True(t, ok)
	})

	t.Run("timeout with custom client", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		a := agent.New(&mockGemini{},
			agent.WithCovidServiceURL(srv.URL),
			agent.WithHTTPClient(&http.Client{}),
			agent.WithTimeout(50*time.Millisecond),
		)

		done := make(chan bool, 1)
		go func() {
			_, ok := a.CallCovidService(context.Background(), model.Parameters{"country_name": "Peru"}).ErrorMessage()
			done <- ok
		}()

		select {
		case ok := <-done:
			gt.True(t, ok)
		case <-time.After(5 * time.Second):
			t.Fatal("prediction call was not bounded by the agent timeout")
		}
	})

	t.Run("unknown intent", func(t *testing.T) {
		a := agent.New(&mockGemini{})
		_, ok := a.CallService(context.Background(), model.Intent("weather"), model.Parameters{}).ErrorMessage()
		gt.True(t, ok)
	})
}
