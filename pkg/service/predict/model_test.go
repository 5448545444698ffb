package predict_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/service/predict"
)

func TestPredictCovid(t *testing.T) {
	testCases := []struct {
		name     string
		features predict.CovidFeatures
		risk     model.RiskLevel
	}{
		{
			name:     "low death rate, high vaccination",
			features: predict.CovidFeatures{CountryName: "Chile", ConfirmedCases: 100000, Deaths: 0, VaccinationRate: 0.9},
			risk:     model.RiskLevelLow,
		},
		{
			name:     "no data",
			features: predict.CovidFeatures{CountryName: "Peru"},
			risk:     model.RiskLevelMedium,
		},
		{
			name:     "moderate",
			features: predict.CovidFeatures{CountryName: "United States", ConfirmedCases: 100000, Deaths: 2000, VaccinationRate: 0.6},
			risk:     model.RiskLevelMedium,
		},
		{
			name:     "severe is clamped",
			features: predict.CovidFeatures{CountryName: "Yemen", ConfirmedCases: 100000, Deaths: 10000, VaccinationRate: 0.1},
			risk:     model.RiskLevelHigh,
		},
	}

	h := predict.NewHeuristic(predict.WithoutNoise(), predict.WithSeed(1))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := h.PredictCovid(context.Background(), tc.features)
			gt.NoError(t, err)
			gt.Equal(t, p.RiskLevel, tc.risk)
			gt.True(t, p.Score >= 0 && p.Score <= 1)
			gt.True(t, p.Confidence >= 0.85 && p.Confidence <= 0.95)
		})
	}
}

func TestPredictCovidNoiseStaysInRange(t *testing.T) {
	h := predict.NewHeuristic(predict.WithSeed(42))
	for i := 0; i < 200; i++ {
		p, err := h.PredictCovid(context.Background(), predict.CovidFeatures{
			CountryName: "Mali", ConfirmedCases: 1000, Deaths: 100,
		})
		gt.NoError(t, err)
		gt.Equal(t, p.Score, 1.0)
		gt.Equal(t, p.RiskLevel, model.RiskLevelHigh)
	}
}

func TestPredictChurn(t *testing.T) {
	h := predict.NewHeuristic(predict.WithoutNoise())
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		p, err := h.PredictChurn(ctx, predict.ChurnFeatures{
			TenureMonths:   12,
			MonthlyCharges: 50,
			ContractType:   "Month-to-month",
		})
		gt.NoError(t, err)
		gt.Equal(t, p.Probability, 0.7)
		gt.Equal(t, p.Retention, 0.3)
		gt.True(t, p.WillChurn)
		gt.Equal(t, p.Risk, model.RiskLevelHigh)
		gt.Equal(t, p.RiskFactors, []string{
			"Month-to-month contract",
			"No tech support",
			"No online security",
		})
	})

	t.Run("loyal customer", func(t *testing.T) {
		p, err := h.PredictChurn(ctx, predict.ChurnFeatures{
			TenureMonths:   48,
			MonthlyCharges: 40,
			ContractType:   "Two year",
			TechSupport:    true,
			OnlineSecurity: true,
		})
		gt.NoError(t, err)
		gt.Equal(t, p.Probability, 0.15)
		gt.Equal(t, p.Retention, 0.85)
		gt.False(t, p.WillChurn)
		gt.Equal(t, p.Risk, model.RiskLevelLow)
		gt.Equal(t, p.RiskFactors, []string{"No significant risk factors identified"})
	})

	t.Run("every factor", func(t *testing.T) {
		p, err := h.PredictChurn(ctx, predict.ChurnFeatures{
			TenureMonths:   3,
			MonthlyCharges: 95.5,
			ContractType:   "month-to-month",
			SupportTickets: 5,
		})
		gt.NoError(t, err)
		gt.Equal(t, p.Probability, 1.0)
		gt.Equal(t, p.Retention, 0.0)
		gt.A(t, p.RiskFactors).Length(6)
		gt.Equal(t, p.RiskFactors[0], "Low tenure (less than 1 year)")
		gt.Equal(t, p.RiskFactors[1], "High monthly charges")
		gt.Equal(t, p.RiskFactors[5], "High support ticket count (5)")
		gt.True(t, p.Confidence >= 0.82 && p.Confidence <= 0.93)
	})
}

func TestHeuristicSeedIsReproducible(t *testing.T) {
	features := predict.ChurnFeatures{TenureMonths: 24, MonthlyCharges: 70, ContractType: "One year"}

	a, err := predict.NewHeuristic(predict.WithSeed(7)).PredictChurn(context.Background(), features)
	gt.NoError(t, err)
	b, err := predict.NewHeuristic(predict.WithSeed(7)).PredictChurn(context.Background(), features)
	gt.NoError(t, err)

	gt.Equal(t, *a, *b)
}
