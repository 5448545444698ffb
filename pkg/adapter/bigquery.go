package adapter

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// BigQuery runs read queries against the offline feature dataset
type BigQuery interface {
	// Query runs query to completion and returns every row
	Query(ctx context.Context, query string) ([]map[string]any, error)
	Close() error
}

type bigqueryClient struct {
	client   *bigquery.Client
	location string
}

type BigQueryOption func(*bigqueryClient)

// WithLocation sets the location query jobs run in
func WithLocation(location string) BigQueryOption {
	return func(bq *bigqueryClient) {
		bq.location = location
	}
}

func NewBigQuery(ctx context.Context, projectID string, opts ...BigQueryOption) (BigQuery, error) {
	if projectID == "" {
		return nil, goerr.New("bigquery project is required")
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	bq := &bigqueryClient{
		client: client,
	}
	for _, opt := range opts {
		opt(bq)
	}
	if bq.location != "" {
		client.Location = bq.location
	}

	return bq, nil
}

func (bq *bigqueryClient) Query(ctx context.Context, query string) ([]map[string]any, error) {
	job, err := bq.client.Query(query).Run(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run query")
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to wait for query completion", goerr.V("job_id", job.ID()))
	}
	if status.Err() != nil {
		return nil, goerr.Wrap(status.Err(), "query execution failed", goerr.V("job_id", job.ID()))
	}

	it, err := job.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read query result", goerr.V("job_id", job.ID()))
	}

	var results []map[string]any
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate query result")
		}

		rowMap := make(map[string]any, len(row))
		for k, v := range row {
			rowMap[k] = v
		}
		results = append(results, rowMap)
	}

	return results, nil
}

func (bq *bigqueryClient) Close() error {
	if err := bq.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close BigQuery client")
	}
	return nil
}
