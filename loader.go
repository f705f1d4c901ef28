package garexport

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"golang.org/x/xerrors"
)

// BigQueryTable identifies the optional warehouse destination a task
// loads its uploaded object into.
type BigQueryTable struct {
	Project string
	Dataset string
	Table   string
}

// Loader loads an uploaded object into a warehouse destination.
type Loader interface {
	Load(ctx context.Context, bucket, object string) error
}

type bigQueryLoader struct {
	table *bigquery.Table
}

func newDefaultLoader(ctx context.Context, t BigQueryTable) (Loader, error) {
	bq, err := bigquery.NewClient(ctx, t.Project)
	if err != nil {
		return nil, xerrors.Errorf("failed to build bigquery client for %s: %w", t.Project, err)
	}

	return &bigQueryLoader{table: bq.Dataset(t.Dataset).Table(t.Table)}, nil
}

func (l *bigQueryLoader) Load(ctx context.Context, bucket, object string) error {
	ref := bigquery.NewGCSReference(fmt.Sprintf("gs://%s/%s", bucket, object))
	ref.SourceFormat = bigquery.JSON
	ref.AutoDetect = true

	job, err := l.table.LoaderFrom(ref).Run(ctx)
	if err != nil {
		return xerrors.Errorf("failed to run bigquery load job: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return xerrors.Errorf("failed to wait for bigquery load job: %w", err)
	}

	if err := status.Err(); err != nil {
		return xerrors.Errorf("bigquery load job failed: %w", err)
	}

	return nil
}
