package predict

import (
	"strconv"

	"github.com/tandem-mlops/tandem/pkg/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

const defaultsNote = "(Note: Using estimated default values for missing data.)"

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func explainCovid(f CovidFeatures, risk model.RiskLevel, usedDefaults bool) string {
	text := printer.Sprintf("Based on %d confirmed cases, %d deaths, and %.1f%% vaccination rate in %s, the predicted risk level is %s. ",
		int64(f.ConfirmedCases), int64(f.Deaths), f.VaccinationRate*100, f.CountryName, risk)

	switch {
	case f.VaccinationRate > 0.7:
		text += "High vaccination rate is helping to reduce risk. "
	case f.VaccinationRate < 0.3:
		text += "Low vaccination rate increases risk. "
	}

	if usedDefaults {
		text += defaultsNote
	}
	return text
}

func explainChurn(customerID string, f ChurnFeatures, p *ChurnPrediction, usedDefaults bool) string {
	text := printer.Sprintf("Customer %s has a %.1f%% probability of churning. Risk level: %s. Key factors: %s months tenure, $%.2f monthly charges",
		customerID, p.Probability*100, p.Risk, formatNumber(f.TenureMonths), f.MonthlyCharges)

	switch {
	case p.Probability > 0.6:
		text += ". Recommend immediate retention action."
	case p.Probability > 0.3:
		text += ". Monitor and consider retention offers."
	default:
		text += ". Customer appears stable."
	}

	if usedDefaults {
		text += " (Note: Using estimated default values for missing customer data.)"
	}
	return text
}
