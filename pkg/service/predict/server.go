package predict

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/repository"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

// Server is one prediction service. Its routes depend on the task it was built for.
type Server struct {
	name     string
	title    string
	endpoint string
	covid    CovidPredictor
	churn    ChurnPredictor
	store    repository.OnlineStore
	now      func() time.Time
	newID    func() model.RequestID
	router   chi.Router
}

type Option func(*Server)

// WithOnlineStore lets requests fall back to online features for missing fields
func WithOnlineStore(store repository.OnlineStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func WithRequestIDGenerator(fn func() model.RequestID) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewCovidServer creates the COVID-19 risk prediction service
func NewCovidServer(predictor CovidPredictor, opts ...Option) *Server {
	s := newServer("covid-prediction", "COVID-19 Prediction Service", "/predict/covid", opts...)
	s.covid = predictor

	s.router.Post("/predict/covid", s.handleCovid)
	return s
}

// NewChurnServer creates the telco churn prediction service
func NewChurnServer(predictor ChurnPredictor, opts ...Option) *Server {
	s := newServer("churn-prediction", "Telco Churn Prediction Service", "/predict/churn", opts...)
	s.churn = predictor

	s.router.Post("/predict/churn", s.handleChurn)
	s.router.Post("/predict/churn/batch", s.handleChurnBatch)
	return s
}

func newServer(name, title, endpoint string, opts ...Option) *Server {
	s := &Server{
		name:     name,
		title:    title,
		endpoint: endpoint,
		now:      time.Now,
		newID:    model.NewRequestID,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.withRequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)
	r.Handle("/metrics", promhttp.Handler())
	s.router = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.From(ctx).Info("starting prediction service", "service", s.name, "addr", addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return goerr.Wrap(err, "prediction service stopped", goerr.V("addr", addr))

	case <-ctx.Done():
		logging.From(ctx).Info("shutting down prediction service", "service", s.name)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return goerr.Wrap(err, "graceful shutdown failed")
		}
		return nil
	}
}
