package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type RequestID string

// NewRequestID generates a new unique RequestID
func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// RiskLevelOf bins a score in [0, 1] at 0.3 and 0.6
func RiskLevelOf(score float64) RiskLevel {
	switch {
	case score < 0.3:
		return RiskLevelLow
	case score < 0.6:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

type FeatureSource string

const (
	FeatureSourceOnlineStore FeatureSource = "online_store"
	FeatureSourceRequest     FeatureSource = "request"
)

type CovidRequest struct {
	CountryName     Text   `json:"country_name"`
	ConfirmedCases  Number `json:"confirmed_cases"`
	Deaths          Number `json:"deaths"`
	Recovered       Number `json:"recovered"`
	Population      Number `json:"population"`
	VaccinationRate Number `json:"vaccination_rate"`
	TestingRate     Number `json:"testing_rate"`
	UseFeatureStore Flag   `json:"use_feature_store"`
}

func (r *CovidRequest) Validate() error {
	if strings.TrimSpace(r.CountryName.Value) == "" {
		return goerr.New("country_name is required")
	}
	return nil
}

// WantsFeatureStore reports whether online features may fill missing fields. Unset means yes.
func (r *CovidRequest) WantsFeatureStore() bool {
	return !r.UseFeatureStore.Valid || r.UseFeatureStore.Value
}

type CovidResponse struct {
	CountryName   string        `json:"country_name"`
	Prediction    float64       `json:"prediction"`
	RiskLevel     RiskLevel     `json:"risk_level"`
	Confidence    float64       `json:"confidence"`
	Timestamp     time.Time     `json:"timestamp"`
	ModelVersion  string        `json:"model_version"`
	Explanation   string        `json:"explanation"`
	FeatureSource FeatureSource `json:"feature_source"`
	RequestID     RequestID     `json:"request_id"`
}

type ChurnRequest struct {
	CustomerID          Text   `json:"customer_id"`
	Age                 Number `json:"age"`
	TenureMonths        Number `json:"tenure_months"`
	MonthlyCharges      Number `json:"monthly_charges"`
	TotalCharges        Number `json:"total_charges"`
	ContractType        Text   `json:"contract_type"`
	InternetServiceType Text   `json:"internet_service_type"`
	TechSupport         Flag   `json:"tech_support"`
	OnlineSecurity      Flag   `json:"online_security"`
	SupportTicketsCount Number `json:"support_tickets_count"`
	UseFeatureStore     Flag   `json:"use_feature_store"`
}

type ChurnResponse struct {
	CustomerID       string        `json:"customer_id"`
	ChurnProbability float64       `json:"churn_probability"`
	ChurnPrediction  bool          `json:"churn_prediction"`
	ChurnRisk        RiskLevel     `json:"churn_risk"`
	Confidence       float64       `json:"confidence"`
	RiskFactors      []string      `json:"risk_factors"`
	RetentionScore   float64       `json:"retention_score"`
	Timestamp        time.Time     `json:"timestamp"`
	ModelVersion     string        `json:"model_version"`
	Explanation      string        `json:"explanation"`
	FeatureSource    FeatureSource `json:"feature_source"`
	RequestID        RequestID     `json:"request_id"`
}

// WantsFeatureStore reports whether online features may fill missing fields. Unset means yes.
func (r *ChurnRequest) WantsFeatureStore() bool {
	return !r.UseFeatureStore.Valid || r.UseFeatureStore.Value
}
