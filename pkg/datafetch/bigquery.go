package datafetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/zpiroux/dsutils/entity"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// The BigQuery Go client is decoupled here for full unit test capabilities, since query results
// can only be created by the client itself.

type BigQueryClient interface {
	Read(ctx context.Context, query string) (BigQueryRows, error)
	Close() error
}

// BigQueryRows iterates over a query result.
type BigQueryRows interface {
	// Next loads the next row into dst, returning iterator.Done when there are no more rows.
	Next(dst *[]bigquery.Value) error

	// Names returns the result column names. It is only valid after the first call to Next.
	Names() []string
}

// Concrete bq wrapper client as returned by NewBigQueryClient
type defaultBigQueryClient struct {
	client *bigquery.Client
}

// NewBigQueryClient creates a BigQuery client for the project. If credentialsFile is empty,
// application default credentials are used.
func NewBigQueryClient(ctx context.Context, projectId, credentialsFile string) (BigQueryClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := bigquery.NewClient(ctx, projectId, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create BigQuery client for project %s: %w", projectId, err)
	}
	return &defaultBigQueryClient{client: client}, nil
}

func (b *defaultBigQueryClient) Read(ctx context.Context, query string) (BigQueryRows, error) {
	it, err := b.client.Query(query).Read(ctx)
	if err != nil {
		return nil, err
	}
	return &defaultBigQueryRows{it: it}, nil
}

func (b *defaultBigQueryClient) Close() error {
	return b.client.Close()
}

type defaultBigQueryRows struct {
	it *bigquery.RowIterator
}

func (r *defaultBigQueryRows) Next(dst *[]bigquery.Value) error {
	return r.it.Next(dst)
}

func (r *defaultBigQueryRows) Names() []string {
	names := make([]string, len(r.it.Schema))
	for i, field := range r.it.Schema {
		names[i] = field.Name
	}
	return names
}

// FromBigQuery runs the query with the client and returns the result as a frame.
func FromBigQuery(ctx context.Context, client BigQueryClient, query string) (*entity.Frame, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoQuery
	}
	rows, err := client.Read(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("BigQuery query failed: %s", bqErrorDetails(err))
	}

	var b *frameBuilder
	for {
		var row []bigquery.Value
		err = rows.Next(&row)
		if b == nil {
			b = newFrameBuilder(rows.Names())
		}
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading BigQuery result failed: %s", bqErrorDetails(err))
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		b.add(values)
	}

	log.Debugf("fetched %d rows from BigQuery", len(b.rows))
	return b.frame()
}

func bqErrorDetails(err error) string {
	var e *googleapi.Error
	if errors.As(err, &e) {
		return fmt.Sprintf("googleapi code: %d, message: %s, details: %#v, errors: %+v", e.Code, e.Message, e.Details, e.Errors)
	}
	return err.Error()
}
