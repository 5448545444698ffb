package predict

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
)

const ModelVersion = "1.0.0-heuristic"

// CovidFeatures are the inputs of a COVID-19 risk prediction after defaults and online features are applied
type CovidFeatures struct {
	CountryName     string
	ConfirmedCases  float64
	Deaths          float64
	Recovered       float64
	VaccinationRate float64
}

type CovidPrediction struct {
	Score      float64
	RiskLevel  model.RiskLevel
	Confidence float64
}

// ChurnFeatures are the inputs of a churn prediction after defaults and online features are applied
type ChurnFeatures struct {
	TenureMonths   float64
	MonthlyCharges float64
	ContractType   string
	TechSupport    bool
	OnlineSecurity bool
	SupportTickets float64
}

type ChurnPrediction struct {
	Probability float64
	WillChurn   bool
	Risk        model.RiskLevel
	Confidence  float64
	RiskFactors []string
	Retention   float64
}

type CovidPredictor interface {
	PredictCovid(ctx context.Context, features CovidFeatures) (*CovidPrediction, error)
	Version() string
}

type ChurnPredictor interface {
	PredictChurn(ctx context.Context, features ChurnFeatures) (*ChurnPrediction, error)
	Version() string
}

// Heuristic scores both tasks with fixed rules plus bounded random noise
type Heuristic struct {
	mu      sync.Mutex
	rng     *rand.Rand
	noise   bool
	version string
}

var (
	_ CovidPredictor = (*Heuristic)(nil)
	_ ChurnPredictor = (*Heuristic)(nil)
)

type HeuristicOption func(*Heuristic)

// WithSeed makes noise and confidence reproducible
func WithSeed(seed uint64) HeuristicOption {
	return func(h *Heuristic) {
		h.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithoutNoise disables score noise. Confidence stays random.
func WithoutNoise() HeuristicOption {
	return func(h *Heuristic) {
		h.noise = false
	}
}

func NewHeuristic(opts ...HeuristicOption) *Heuristic {
	h := &Heuristic{
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		noise:   true,
		version: ModelVersion,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Heuristic) Version() string {
	return h.version
}

func (h *Heuristic) uniform(lo, hi float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return lo + (hi-lo)*h.rng.Float64()
}

func (h *Heuristic) jitter(amplitude float64) float64 {
	if !h.noise {
		return 0
	}
	return h.uniform(-amplitude, amplitude)
}

func (h *Heuristic) PredictCovid(_ context.Context, f CovidFeatures) (*CovidPrediction, error) {
	deathRate := 0.0
	if f.ConfirmedCases > 0 {
		deathRate = f.Deaths / f.ConfirmedCases
	}

	score := clamp(deathRate*10 + (1-f.VaccinationRate)*0.5 + h.jitter(0.1))
	if math.IsNaN(score) {
		return nil, goerr.New("risk score is not a number", goerr.V("features", f))
	}

	return &CovidPrediction{
		Score:      round2(score),
		RiskLevel:  model.RiskLevelOf(score),
		Confidence: round2(h.uniform(0.85, 0.95)),
	}, nil
}

func (h *Heuristic) PredictChurn(_ context.Context, f ChurnFeatures) (*ChurnPrediction, error) {
	p := 0.5
	var factors []string

	switch {
	case f.TenureMonths < 12:
		p += 0.2
		factors = append(factors, "Low tenure (less than 1 year)")
	case f.TenureMonths > 36:
		p -= 0.15
	}

	if f.MonthlyCharges > 80 {
		p += 0.15
		factors = append(factors, "High monthly charges")
	}

	contract := strings.ToLower(strings.TrimSpace(f.ContractType))
	switch {
	case contract == "month-to-month":
		p += 0.1
		factors = append(factors, "Month-to-month contract")
	case strings.Contains(contract, "two year"):
		p -= 0.2
	}

	if !f.TechSupport {
		p += 0.05
		factors = append(factors, "No tech support")
	}
	if !f.OnlineSecurity {
		p += 0.05
		factors = append(factors, "No online security")
	}
	if f.SupportTickets > 3 {
		p += 0.1
		factors = append(factors, "High support ticket count ("+formatNumber(f.SupportTickets)+")")
	}

	p = clamp(p + h.jitter(0.05))
	if math.IsNaN(p) {
		return nil, goerr.New("churn probability is not a number", goerr.V("features", f))
	}

	if len(factors) == 0 {
		factors = append(factors, "No significant risk factors identified")
	}

	return &ChurnPrediction{
		Probability: round2(p),
		WillChurn:   p > 0.5,
		Risk:        model.RiskLevelOf(p),
		Confidence:  round2(h.uniform(0.82, 0.93)),
		RiskFactors: factors,
		Retention:   round2(1 - p),
	}, nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
