package feature

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

// table is a derived feature table ready to be written to the offline store
type table struct {
	name    string
	schema  string
	columns []string
	rows    [][]any
}

// Load parses a raw dataset CSV for intent, derives its features and
// replaces the matching rows of the offline table. It returns the number of rows loaded.
func (uc *UseCase) Load(ctx context.Context, intent model.Intent, r io.Reader) (int, error) {
	if uc.db == nil {
		return 0, ErrNoDatabase
	}
	if err := intent.Validate(); err != nil {
		return 0, err
	}

	records, err := readCSV(r)
	if err != nil {
		return 0, err
	}

	var t *table
	switch intent {
	case model.IntentCovid:
		t, err = covidTable(records)
	case model.IntentChurn:
		t, err = churnTable(records)
	}
	if err != nil {
		return 0, err
	}

	if err := uc.writeTable(ctx, t); err != nil {
		return 0, err
	}

	logging.From(ctx).Info("loaded dataset", "intent", intent, "table", t.name, "rows", len(t.rows))
	return len(t.rows), nil
}

// LoadObject loads a raw dataset previously uploaded to object storage
func (uc *UseCase) LoadObject(ctx context.Context, intent model.Intent, key string) (int, error) {
	if uc.storage == nil {
		return 0, ErrNoStorage
	}

	reader, err := uc.storage.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	return uc.Load(ctx, intent, reader)
}

func (uc *UseCase) writeTable(ctx context.Context, t *table) (err error) {
	if _, err := uc.db.ExecContext(ctx, t.schema); err != nil {
		return goerr.Wrap(err, "failed to create feature table", goerr.V("table", t.name))
	}

	tx, err := uc.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		"REPLACE INTO `"+t.name+"` ("+quoteColumns(t.columns)+") VALUES ("+placeholders+")")
	if err != nil {
		return goerr.Wrap(err, "failed to prepare insert", goerr.V("table", t.name))
	}
	defer stmt.Close()

	for i, row := range t.rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return goerr.Wrap(err, "failed to insert row", goerr.V("table", t.name), goerr.V("row", i+1))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit rows", goerr.V("table", t.name))
	}
	return nil
}

// csvRecords is a parsed CSV body addressed by normalized header name
type csvRecords struct {
	index map[string]int
	rows  [][]string
}

func (c *csvRecords) has(col string) bool {
	_, ok := c.index[col]
	return ok
}

func (c *csvRecords) get(row []string, col string) string {
	i, ok := c.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c *csvRecords) require(cols ...string) error {
	for _, col := range cols {
		if !c.has(col) {
			return goerr.New("required column is missing", goerr.V("column", col))
		}
	}
	return nil
}

// headerAliases maps raw Kaggle column names to feature names
var headerAliases = map[string]string{
	"country/region":  model.FieldCountryName,
	"country":         model.FieldCountryName,
	"confirmed":       model.FieldConfirmedCases,
	"deaths":          model.FieldDeaths,
	"recovered":       model.FieldRecovered,
	"active":          "active_cases",
	"customerid":      model.FieldCustomerID,
	"tenure":          model.FieldTenureMonths,
	"monthlycharges":  model.FieldMonthlyCharges,
	"totalcharges":    model.FieldTotalCharges,
	"contract":        model.FieldContractType,
	"internetservice": model.FieldInternetServiceType,
	"techsupport":     model.FieldTechSupport,
	"onlinesecurity":  model.FieldOnlineSecurity,
	"churn":           "churn",
}

func readCSV(r io.Reader) (*csvRecords, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, goerr.New("dataset is empty")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read dataset header")
	}

	records := &csvRecords{index: make(map[string]int, len(header))}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, dup := records.index[name]; !dup {
			records.index[name] = i
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read dataset")
		}
		records.rows = append(records.rows, row)
	}

	return records, nil
}

func parseCount(c *csvRecords, row []string, col string, line int) (float64, error) {
	n, err := model.ParseNumber(c.get(row, col))
	if err != nil {
		return 0, goerr.Wrap(err, "invalid numeric value", goerr.V("column", col), goerr.V("line", line))
	}
	return n.Value, nil
}

// riskLevel bins a dataset risk score. Scores at a bin edge belong to the lower bin.
func riskLevel(score float64) model.RiskLevel {
	switch {
	case score <= 0.3:
		return model.RiskLevelLow
	case score <= 0.6:
		return model.RiskLevelMedium
	default:
		return model.RiskLevelHigh
	}
}

func covidTable(c *csvRecords) (*table, error) {
	if err := c.require(model.FieldCountryName, model.FieldConfirmedCases, model.FieldDeaths); err != nil {
		return nil, err
	}

	type covidRow struct {
		country                              string
		confirmed, deaths, recovered, active float64
	}

	parsed := make([]covidRow, 0, len(c.rows))
	maxActive := 0.0
	for i, row := range c.rows {
		line := i + 2
		r := covidRow{country: c.get(row, model.FieldCountryName)}
		if r.country == "" {
			continue
		}

		var err error
		if r.confirmed, err = parseCount(c, row, model.FieldConfirmedCases, line); err != nil {
			return nil, err
		}
		if r.deaths, err = parseCount(c, row, model.FieldDeaths, line); err != nil {
			return nil, err
		}
		if r.recovered, err = parseCount(c, row, model.FieldRecovered, line); err != nil {
			return nil, err
		}
		if c.has("active_cases") {
			if r.active, err = parseCount(c, row, "active_cases", line); err != nil {
				return nil, err
			}
		} else {
			r.active = r.confirmed - r.recovered - r.deaths
		}

		maxActive = max(maxActive, r.active)
		parsed = append(parsed, r)
	}

	t := &table{
		name: "covid_features",
		schema: "CREATE TABLE IF NOT EXISTS `covid_features` (" +
			"`country_name` VARCHAR(128) NOT NULL PRIMARY KEY, " +
			"`confirmed_cases` BIGINT, `deaths` BIGINT, `recovered` BIGINT, `active_cases` BIGINT, " +
			"`death_rate` DOUBLE, `recovery_rate` DOUBLE, `risk_score` DOUBLE, `risk_level` VARCHAR(16), " +
			"`updated_at` TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP)",
		columns: []string{
			model.FieldCountryName, model.FieldConfirmedCases, model.FieldDeaths, model.FieldRecovered,
			"active_cases", "death_rate", "recovery_rate", "risk_score", "risk_level",
		},
	}

	for _, r := range parsed {
		var deathRate, recoveryRate float64
		if r.confirmed > 0 {
			deathRate = r.deaths / r.confirmed * 100
			recoveryRate = r.recovered / r.confirmed * 100
		}

		score := deathRate / 10 * 0.5
		if maxActive > 0 {
			score += r.active / maxActive * 0.5
		}

		t.rows = append(t.rows, []any{
			r.country, int64(r.confirmed), int64(r.deaths), int64(r.recovered), int64(r.active),
			deathRate, recoveryRate, score, string(riskLevel(score)),
		})
	}

	return t, nil
}

func parseFlag(c *csvRecords, row []string, col string, line int) (bool, error) {
	f, err := model.ParseFlag(c.get(row, col))
	if err != nil {
		return false, goerr.Wrap(err, "invalid yes/no value", goerr.V("column", col), goerr.V("line", line))
	}
	return f.Value, nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func churnTable(c *csvRecords) (*table, error) {
	if err := c.require(model.FieldCustomerID, model.FieldTenureMonths, model.FieldMonthlyCharges); err != nil {
		return nil, err
	}

	type churnRow struct {
		id                    string
		tenure, monthly       float64
		total                 sql.NullFloat64
		contract, internet    string
		tech, security, churn bool
	}

	parsed := make([]churnRow, 0, len(c.rows))
	var totals []float64
	for i, row := range c.rows {
		line := i + 2
		r := churnRow{
			id:       c.get(row, model.FieldCustomerID),
			contract: c.get(row, model.FieldContractType),
			internet: c.get(row, model.FieldInternetServiceType),
		}
		if r.id == "" {
			continue
		}

		var err error
		if r.tenure, err = parseCount(c, row, model.FieldTenureMonths, line); err != nil {
			return nil, err
		}
		if r.monthly, err = parseCount(c, row, model.FieldMonthlyCharges, line); err != nil {
			return nil, err
		}
		if r.tech, err = parseFlag(c, row, model.FieldTechSupport, line); err != nil {
			return nil, err
		}
		if r.security, err = parseFlag(c, row, model.FieldOnlineSecurity, line); err != nil {
			return nil, err
		}
		if r.churn, err = parseFlag(c, row, "churn", line); err != nil {
			return nil, err
		}

		// Blank or malformed total charges are filled with the dataset median
		if total, err := model.ParseNumber(c.get(row, model.FieldTotalCharges)); err == nil && total.Valid {
			r.total = sql.NullFloat64{Float64: total.Value, Valid: true}
			totals = append(totals, total.Value)
		}

		parsed = append(parsed, r)
	}

	fill := median(totals)
	t := &table{
		name: "churn_features",
		schema: "CREATE TABLE IF NOT EXISTS `churn_features` (" +
			"`customer_id` VARCHAR(64) NOT NULL PRIMARY KEY, " +
			"`tenure_months` INT, `monthly_charges` DOUBLE, `total_charges` DOUBLE, " +
			"`contract_type` VARCHAR(32), `internet_service_type` VARCHAR(32), " +
			"`tech_support` BOOLEAN, `online_security` BOOLEAN, `churn` BOOLEAN, " +
			"`updated_at` TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP)",
		columns: []string{
			model.FieldCustomerID, model.FieldTenureMonths, model.FieldMonthlyCharges, model.FieldTotalCharges,
			model.FieldContractType, model.FieldInternetServiceType,
			model.FieldTechSupport, model.FieldOnlineSecurity, "churn",
		},
	}

	for _, r := range parsed {
		total := fill
		if r.total.Valid {
			total = r.total.Float64
		}
		t.rows = append(t.rows, []any{
			r.id, int64(r.tenure), r.monthly, total,
			r.contract, r.internet, r.tech, r.security, r.churn,
		})
	}

	return t, nil
}
