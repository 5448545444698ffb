package predict

import (
	"context"
	"errors"

	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

const (
	CovidFeatureView = "covid_features"
	ChurnFeatureView = "churn_features"
)

// lookupFeatures returns the online features of entity, or nil when the
// store is absent, has no entry, or fails. Failures only degrade to request data.
func (s *Server) lookupFeatures(ctx context.Context, view, entity string) map[string]string {
	if s.store == nil || entity == "" {
		return nil
	}

	values, err := s.store.GetFeatures(ctx, view, entity)
	if err != nil {
		if errors.Is(err, model.ErrFeatureNotFound) {
			logging.From(ctx).Debug("no online features", "view", view, "entity", entity)
		} else {
			logging.From(ctx).Warn("online feature lookup failed, using request data", "error", err)
		}
		featureLookups.WithLabelValues(view, "miss").Inc()
		return nil
	}

	featureLookups.WithLabelValues(view, "hit").Inc()
	return values
}

// fillNumber sets dst from values[key] when dst is missing
func fillNumber(ctx context.Context, dst *model.Number, values map[string]string, key string) {
	raw, ok := values[key]
	if dst.Valid || !ok {
		return
	}
	n, err := model.ParseNumber(raw)
	if err != nil {
		logging.From(ctx).Warn("ignoring malformed online feature", "field", key, "error", err)
		return
	}
	*dst = n
}

func fillFlag(ctx context.Context, dst *model.Flag, values map[string]string, key string) {
	raw, ok := values[key]
	if dst.Valid || !ok {
		return
	}
	f, err := model.ParseFlag(raw)
	if err != nil {
		logging.From(ctx).Warn("ignoring malformed online feature", "field", key, "error", err)
		return
	}
	*dst = f
}

func fillText(dst *model.Text, values map[string]string, key string) {
	raw, ok := values[key]
	if dst.Valid || !ok || raw == "" {
		return
	}
	*dst = model.NewText(raw)
}

// applyCovidFeatures fills missing request fields from the country's online features
func (s *Server) applyCovidFeatures(ctx context.Context, req *model.CovidRequest) model.FeatureSource {
	if !req.WantsFeatureStore() {
		return model.FeatureSourceRequest
	}
	values := s.lookupFeatures(ctx, CovidFeatureView, req.CountryName.Value)
	if values == nil {
		return model.FeatureSourceRequest
	}

	fillNumber(ctx, &req.ConfirmedCases, values, model.FieldConfirmedCases)
	fillNumber(ctx, &req.Deaths, values, model.FieldDeaths)
	fillNumber(ctx, &req.Recovered, values, model.FieldRecovered)
	fillNumber(ctx, &req.Population, values, model.FieldPopulation)
	fillNumber(ctx, &req.VaccinationRate, values, model.FieldVaccinationRate)
	return model.FeatureSourceOnlineStore
}

// applyChurnFeatures fills missing request fields from the customer's online features
func (s *Server) applyChurnFeatures(ctx context.Context, req *model.ChurnRequest) model.FeatureSource {
	if !req.WantsFeatureStore() || !req.CustomerID.Valid {
		return model.FeatureSourceRequest
	}
	values := s.lookupFeatures(ctx, ChurnFeatureView, req.CustomerID.Value)
	if values == nil {
		return model.FeatureSourceRequest
	}

	fillNumber(ctx, &req.TenureMonths, values, model.FieldTenureMonths)
	fillNumber(ctx, &req.MonthlyCharges, values, model.FieldMonthlyCharges)
	fillNumber(ctx, &req.TotalCharges, values, model.FieldTotalCharges)
	fillText(&req.ContractType, values, model.FieldContractType)
	fillText(&req.InternetServiceType, values, model.FieldInternetServiceType)
	fillFlag(ctx, &req.TechSupport, values, model.FieldTechSupport)
	fillFlag(ctx, &req.OnlineSecurity, values, model.FieldOnlineSecurity)
	return model.FeatureSourceOnlineStore
}
