package garexport

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

const (
	defaultPageSize = 1000
	maxPageSize     = 10000
)

// Task describes one report export: which report to pull and where the
// flattened records land.
type Task struct {
	// Name identifies the task in logs and notifications.
	Name string

	// ViewID is the Analytics view to report on.
	ViewID string

	// Since and Until bound the report date range. Accepted as either
	// "2006-01-02 15:04:05" or "2006-01-02"; both are sent to the API
	// as "2006-01-02".
	Since string
	Until string

	// SamplingLevel optionally requests a report sampling level such
	// as "LARGE".
	SamplingLevel string

	Dimensions []string
	Metrics    []string

	// PageSize caps rows per API page. Defaults to 1000 and must not
	// exceed 10000.
	PageSize int

	// IncludeEmptyRows asks the API to return rows whose metrics are
	// all zero. Defaults to true.
	IncludeEmptyRows *bool

	// Bucket and Object name the destination Cloud Storage object.
	Bucket string
	Object string

	// BigQuery optionally loads the uploaded object into a table.
	BigQuery *BigQueryTable

	// Notifier is notified with the result of each run.
	Notifier Notifier

	// Fetcher, Uploader and Loader default to the Analytics Reporting,
	// Cloud Storage and BigQuery clients when the task is added to an
	// exporter. Exported to allow injection.
	Fetcher  Fetcher
	Uploader Uploader
	Loader   Loader
}

func (t *Task) validate() error {
	if t.Name == "" {
		return xerrors.New("name is required")
	}

	if t.ViewID == "" {
		return xerrors.New("view id is required")
	}

	if t.Since == "" || t.Until == "" {
		return xerrors.New("since and until are required")
	}

	if t.Bucket == "" || t.Object == "" {
		return xerrors.New("destination bucket and object are required")
	}

	if t.PageSize > maxPageSize {
		return xerrors.Errorf("page size must be %d or lower, got %d", maxPageSize, t.PageSize)
	}

	if t.PageSize < 0 {
		return xerrors.Errorf("page size must not be negative, got %d", t.PageSize)
	}

	return nil
}

func (t *Task) pageSize() int {
	if t.PageSize == 0 {
		return defaultPageSize
	}

	return t.PageSize
}

func (t *Task) includeEmptyRows() bool {
	if t.IncludeEmptyRows == nil {
		return true
	}

	return *t.IncludeEmptyRows
}

func (t *Task) run(ctx context.Context) error {
	l := log.Ctx(ctx)

	req := &ReportRequest{
		ViewID:           t.ViewID,
		Since:            ReportDate(t.Since),
		Until:            ReportDate(t.Until),
		SamplingLevel:    t.SamplingLevel,
		Dimensions:       t.Dimensions,
		Metrics:          t.Metrics,
		PageSize:         t.pageSize(),
		IncludeEmptyRows: t.includeEmptyRows(),
	}

	report, err := t.Fetcher.Fetch(ctx, req)
	if err != nil {
		return xerrors.Errorf("failed to fetch report for view %s (%s..%s): %w",
			t.ViewID, req.Since, req.Until, err)
	}

	records, err := flattenReport(report, t.ViewID, t.Since)
	if err != nil {
		return xerrors.Errorf("failed to flatten report for view %s: %w", t.ViewID, err)
	}

	l.Info().Int("records", len(records)).Msg("report flattened")

	r, closer, err := stageRecords(records)
	if err != nil {
		return err
	}
	defer closer()

	if err := t.Uploader.Upload(ctx, t.Bucket, t.Object, r); err != nil {
		return xerrors.Errorf("failed to upload report for view %s to gs://%s/%s: %w",
			t.ViewID, t.Bucket, t.Object, err)
	}

	if t.Loader != nil {
		if err := t.Loader.Load(ctx, t.Bucket, t.Object); err != nil {
			return xerrors.Errorf("failed to load gs://%s/%s into bigquery: %w", t.Bucket, t.Object, err)
		}
	}

	return nil
}

func (t *Task) notify(ctx context.Context, err error) {
	if t.Notifier == nil {
		return
	}

	if nerr := t.Notifier.Notify(ctx, &Result{Task: t, Error: err}); nerr != nil {
		log.Ctx(ctx).Error().Msgf("failed to notify result of %s: %v", t.Name, nerr)
	}
}
