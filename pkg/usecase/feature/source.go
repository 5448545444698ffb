package feature

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/adapter"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

// OfflineSource reads the current feature rows of a view from offline storage
type OfflineSource interface {
	ReadFeatures(ctx context.Context, view model.FeatureView) ([]model.FeatureRow, error)
}

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	bqTablePattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+){0,2}$`)
)

// columns returns the entity column followed by the view fields
func columns(view model.FeatureView) ([]string, error) {
	cols := append([]string{view.Entity}, view.Fields...)
	for _, c := range cols {
		if !identifierPattern.MatchString(c) {
			return nil, goerr.New("invalid column name", goerr.V("view", view.Name), goerr.V("column", c))
		}
	}
	return cols, nil
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "`" + c + "`"
	}
	return strings.Join(quoted, ", ")
}

type MySQLSource struct {
	db *sql.DB
}

func NewMySQLSource(db *sql.DB) *MySQLSource {
	return &MySQLSource{db: db}
}

func (s *MySQLSource) ReadFeatures(ctx context.Context, view model.FeatureView) ([]model.FeatureRow, error) {
	cols, err := columns(view)
	if err != nil {
		return nil, err
	}
	if !identifierPattern.MatchString(view.Table) {
		return nil, goerr.New("invalid table name", goerr.V("view", view.Name), goerr.V("table", view.Table))
	}

	query := fmt.Sprintf("SELECT %s FROM `%s`", quoteColumns(cols), view.Table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query offline features", goerr.V("view", view.Name))
	}
	defer rows.Close()

	var result []model.FeatureRow
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, goerr.Wrap(err, "failed to scan offline features", goerr.V("view", view.Name))
		}

		row := model.FeatureRow{Entity: values[0].String, Values: make(map[string]string, len(view.Fields))}
		for i, field := range view.Fields {
			if v := values[i+1]; v.Valid {
				row.Values[field] = v.String
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read offline features", goerr.V("view", view.Name))
	}

	return result, nil
}

// BigQuerySource reads views whose table is a BigQuery dataset.table reference
type BigQuerySource struct {
	client adapter.BigQuery
}

func NewBigQuerySource(client adapter.BigQuery) *BigQuerySource {
	return &BigQuerySource{client: client}
}

func (s *BigQuerySource) ReadFeatures(ctx context.Context, view model.FeatureView) ([]model.FeatureRow, error) {
	cols, err := columns(view)
	if err != nil {
		return nil, err
	}
	if !bqTablePattern.MatchString(view.Table) {
		return nil, goerr.New("invalid table name", goerr.V("view", view.Name), goerr.V("table", view.Table))
	}

	query := fmt.Sprintf("SELECT %s FROM `%s`", quoteColumns(cols), view.Table)
	records, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query offline features", goerr.V("view", view.Name))
	}

	result := make([]model.FeatureRow, 0, len(records))
	for _, rec := range records {
		entity, ok := formatValue(rec[view.Entity])
		if !ok {
			logging.From(ctx).Warn("skip row without entity", "view", view.Name)
			continue
		}

		row := model.FeatureRow{Entity: entity, Values: make(map[string]string, len(view.Fields))}
		for _, field := range view.Fields {
			if v, ok := formatValue(rec[field]); ok {
				row.Values[field] = v
			}
		}
		result = append(result, row)
	}

	return result, nil
}

func formatValue(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		return v.Format(time.RFC3339), true
	default:
		return fmt.Sprint(v), true
	}
}
