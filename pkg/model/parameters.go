package model

const (
	FieldCountryName     = "country_name"
	FieldConfirmedCases  = "confirmed_cases"
	FieldDeaths          = "deaths"
	FieldRecovered       = "recovered"
	FieldPopulation      = "population"
	FieldVaccinationRate = "vaccination_rate"
	FieldTestingRate     = "testing_rate"

	FieldCustomerID          = "customer_id"
	FieldAge                 = "age"
	FieldTenureMonths        = "tenure_months"
	FieldMonthlyCharges      = "monthly_charges"
	FieldTotalCharges        = "total_charges"
	FieldContractType        = "contract_type"
	FieldInternetServiceType = "internet_service_type"
	FieldTechSupport         = "tech_support"
	FieldOnlineSecurity      = "online_security"
	FieldSupportTickets      = "support_tickets_count"
)

// Parameters is the loosely typed field mapping produced by the language model.
// Values are whatever JSON decoding yields and are not validated.
type Parameters map[string]any

// Has reports whether key is present with a non-null value
func (p Parameters) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}
