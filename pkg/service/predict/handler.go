package predict

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(r.Context()).Error("failed to write response", "error", err)
	}
}

func (s *Server) writeInvalid(w http.ResponseWriter, r *http.Request, err error) {
	predictionsTotal.WithLabelValues(s.name, "invalid").Inc()
	logging.From(r.Context()).Warn("invalid prediction request", "error", err)
	writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
}

func (s *Server) writeFailed(w http.ResponseWriter, r *http.Request, err error) {
	predictionsTotal.WithLabelValues(s.name, "failed").Inc()
	logging.From(r.Context()).Error("prediction failed", "error", err)
	writeJSON(w, r, http.StatusInternalServerError, errorResponse{Detail: "Prediction failed: " + err.Error()})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"service": s.title,
		"version": s.version(),
		"status":  "running",
		"endpoints": map[string]string{
			"health":  "/health",
			"info":    "/info",
			"metrics": "/metrics",
			"predict": s.endpoint,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":       "healthy",
		"service":      s.name,
		"model_loaded": s.covid != nil || s.churn != nil,
		"online_store": s.store != nil,
		"timestamp":    s.now(),
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	view := CovidFeatureView
	if s.churn != nil {
		view = ChurnFeatureView
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"service":       s.name,
		"model_version": s.version(),
		"feature_view":  view,
		"online_store":  s.store != nil,
	})
}

func (s *Server) version() string {
	switch {
	case s.covid != nil:
		return s.covid.Version()
	case s.churn != nil:
		return s.churn.Version()
	default:
		return "unknown"
	}
}

func (s *Server) handleCovid(w http.ResponseWriter, r *http.Request) {
	defer func(started time.Time) {
		predictionDuration.WithLabelValues(s.name).Observe(time.Since(started).Seconds())
	}(time.Now())

	var req model.CovidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeInvalid(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeInvalid(w, r, err)
		return
	}

	ctx := r.Context()
	source := s.applyCovidFeatures(ctx, &req)

	features := CovidFeatures{
		CountryName:     req.CountryName.Value,
		ConfirmedCases:  req.ConfirmedCases.Or(0),
		Deaths:          req.Deaths.Or(0),
		Recovered:       req.Recovered.Or(0),
		VaccinationRate: req.VaccinationRate.Or(0),
	}

	prediction, err := s.covid.PredictCovid(ctx, features)
	if err != nil {
		s.writeFailed(w, r, err)
		return
	}

	usedDefaults := !req.ConfirmedCases.Valid && source != model.FeatureSourceOnlineStore
	resp := model.CovidResponse{
		CountryName:   features.CountryName,
		Prediction:    prediction.Score,
		RiskLevel:     prediction.RiskLevel,
		Confidence:    prediction.Confidence,
		Timestamp:     s.now(),
		ModelVersion:  s.covid.Version(),
		Explanation:   explainCovid(features, prediction.RiskLevel, usedDefaults),
		FeatureSource: source,
		RequestID:     requestIDFrom(ctx),
	}

	predictionsTotal.WithLabelValues(s.name, "success").Inc()
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleChurn(w http.ResponseWriter, r *http.Request) {
	defer func(started time.Time) {
		predictionDuration.WithLabelValues(s.name).Observe(time.Since(started).Seconds())
	}(time.Now())

	var req model.ChurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeInvalid(w, r, err)
		return
	}

	resp, err := s.predictChurn(r, &req)
	if err != nil {
		s.writeFailed(w, r, err)
		return
	}

	predictionsTotal.WithLabelValues(s.name, "success").Inc()
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleChurnBatch(w http.ResponseWriter, r *http.Request) {
	defer func(started time.Time) {
		predictionDuration.WithLabelValues(s.name).Observe(time.Since(started).Seconds())
	}(time.Now())

	var reqs []model.ChurnRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.writeInvalid(w, r, err)
		return
	}

	resps := make([]*model.ChurnResponse, 0, len(reqs))
	for i := range reqs {
		resp, err := s.predictChurn(r, &reqs[i])
		if err != nil {
			s.writeFailed(w, r, err)
			return
		}
		resps = append(resps, resp)
	}

	predictionsTotal.WithLabelValues(s.name, "success").Add(float64(len(resps)))
	writeJSON(w, r, http.StatusOK, resps)
}

func (s *Server) predictChurn(r *http.Request, req *model.ChurnRequest) (*model.ChurnResponse, error) {
	ctx := r.Context()
	source := s.applyChurnFeatures(ctx, req)

	customerID := req.CustomerID.Or("CUSTOMER_" + s.now().Format("20060102150405"))
	features := ChurnFeatures{
		TenureMonths:   req.TenureMonths.Or(12),
		MonthlyCharges: req.MonthlyCharges.Or(50),
		ContractType:   req.ContractType.Or("Month-to-month"),
		TechSupport:    req.TechSupport.Value,
		OnlineSecurity: req.OnlineSecurity.Value,
		SupportTickets: req.SupportTicketsCount.Or(0),
	}

	prediction, err := s.churn.PredictChurn(ctx, features)
	if err != nil {
		return nil, err
	}

	usedDefaults := !req.TenureMonths.Valid && source != model.FeatureSourceOnlineStore
	return &model.ChurnResponse{
		CustomerID:       customerID,
		ChurnProbability: prediction.Probability,
		ChurnPrediction:  prediction.WillChurn,
		ChurnRisk:        prediction.Risk,
		Confidence:       prediction.Confidence,
		RiskFactors:      prediction.RiskFactors,
		RetentionScore:   prediction.Retention,
		Timestamp:        s.now(),
		ModelVersion:     s.churn.Version(),
		Explanation:      explainChurn(customerID, features, prediction, usedDefaults),
		FeatureSource:    source,
		RequestID:        requestIDFrom(ctx),
	}, nil
}
