package agent

import (
	"context"
	"math"
	"strings"

	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

var (
	covidKeywords = []string{
		"covid", "coronavirus", "pandemic", "virus", "infection",
		"cases", "deaths", "vaccination", "testing", "outbreak",
		"epidemic", "disease", "health", "country", "spread",
	}

	churnKeywords = []string{
		"churn", "customer", "leave", "cancel", "subscription",
		"billing", "service", "complaint", "support", "contract",
		"retention", "loyalty", "telecom", "internet", "phone",
	}
)

// countKeywords counts the keywords occurring anywhere in query. Each keyword counts at most once.
func countKeywords(query string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			n++
		}
	}
	return n
}

// ClassifyIntent scores query against both keyword sets. Ties go to churn.
func (a *Agent) ClassifyIntent(ctx context.Context, query string) model.IntentResult {
	q := strings.ToLower(query)
	covid := countKeywords(q, covidKeywords)
	churn := countKeywords(q, churnKeywords)

	result := model.IntentResult{
		Intent:     model.IntentChurn,
		CovidScore: covid,
		ChurnScore: churn,
	}
	winner := churn
	if covid > churn {
		result.Intent = model.IntentCovid
		winner = covid
	}
	result.Confidence = math.Min(float64(winner)/float64(covid+churn+1), 1.0)

	logging.From(ctx).Debug("classified intent",
		"intent", result.Intent,
		"confidence", result.Confidence,
		"covid_score", covid,
		"churn_score", churn,
	)

	return result
}
