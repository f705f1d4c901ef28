package garexport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/xerrors"
)

// AnalyticsReadOnlyScope is the OAuth2 scope required to read reports.
const AnalyticsReadOnlyScope = "https://www.googleapis.com/auth/analytics.readonly"

const defaultReportingBaseURL = "https://analyticsreporting.googleapis.com/v4"

// ReportRequest is a normalized request for one report. Since and Until
// are already in YYYY-MM-DD form.
type ReportRequest struct {
	ViewID           string
	Since            string
	Until            string
	SamplingLevel    string
	Dimensions       []string
	Metrics          []string
	PageSize         int
	IncludeEmptyRows bool
}

// Fetcher materializes a full report for a request. Implementations own
// authentication, pagination and sampling negotiation.
type Fetcher interface {
	Fetch(context.Context, *ReportRequest) (*Report, error)
}

// ReportingFetcher fetches reports from the Analytics Reporting API,
// following nextPageToken until the report is complete.
type ReportingFetcher struct {
	// HTTPClient must carry credentials for the Reporting API. Built
	// from application default credentials when constructed through
	// the exporter.
	HTTPClient *http.Client

	// BaseURL overrides the production endpoint. For tests.
	BaseURL string
}

func newDefaultFetcher(ctx context.Context) (Fetcher, error) {
	ts, err := google.DefaultTokenSource(ctx, AnalyticsReadOnlyScope)
	if err != nil {
		return nil, xerrors.Errorf("failed to build analytics token source: %w", err)
	}

	return &ReportingFetcher{HTTPClient: oauth2.NewClient(ctx, ts)}, nil
}

// Wire types for reports:batchGet.
type batchGetRequest struct {
	ReportRequests []apiReportRequest `json:"reportRequests"`
}

type apiReportRequest struct {
	ViewID           string         `json:"viewId"`
	DateRanges       []apiDateRange `json:"dateRanges"`
	SamplingLevel    string         `json:"samplingLevel,omitempty"`
	Dimensions       []apiDimension `json:"dimensions,omitempty"`
	Metrics          []apiMetric    `json:"metrics,omitempty"`
	PageSize         int            `json:"pageSize,omitempty"`
	PageToken        string         `json:"pageToken,omitempty"`
	IncludeEmptyRows bool           `json:"includeEmptyRows"`
}

type apiDateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type apiDimension struct {
	Name string `json:"name"`
}

type apiMetric struct {
	Expression string `json:"expression"`
}

type batchGetResponse struct {
	Reports []Report `json:"reports"`
}

// Fetch requests pages of the report until the API stops returning a
// next page token and returns the merged result.
func (f *ReportingFetcher) Fetch(ctx context.Context, req *ReportRequest) (*Report, error) {
	l := log.Ctx(ctx)

	var merged *Report
	pageToken := ""

	for {
		page, err := f.fetchPage(ctx, req, pageToken)
		if err != nil {
			return nil, err
		}

		if merged == nil {
			merged = page
		} else {
			merged.Data.Rows = append(merged.Data.Rows, page.Data.Rows...)
		}

		if page.NextPageToken == "" {
			break
		}

		pageToken = page.NextPageToken
		l.Debug().Str("page_token", pageToken).Msg("fetching next report page")
	}

	merged.NextPageToken = ""

	l.Debug().Int("rows", len(merged.Data.Rows)).Msg("report materialized")

	return merged, nil
}

func (f *ReportingFetcher) fetchPage(ctx context.Context, req *ReportRequest, pageToken string) (*Report, error) {
	api := apiReportRequest{
		ViewID:           req.ViewID,
		DateRanges:       []apiDateRange{{StartDate: req.Since, EndDate: req.Until}},
		SamplingLevel:    req.SamplingLevel,
		PageSize:         req.PageSize,
		PageToken:        pageToken,
		IncludeEmptyRows: req.IncludeEmptyRows,
	}
	for _, d := range req.Dimensions {
		api.Dimensions = append(api.Dimensions, apiDimension{Name: d})
	}
	for _, m := range req.Metrics {
		api.Metrics = append(api.Metrics, apiMetric{Expression: m})
	}

	body, err := json.Marshal(&batchGetRequest{ReportRequests: []apiReportRequest{api}})
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal report request: %w", err)
	}

	base := f.BaseURL
	if base == "" {
		base = defaultReportingBaseURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/reports:batchGet", bytes.NewReader(body))
	if err != nil {
		return nil, xerrors.Errorf("failed to build report request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c := f.HTTPClient
	if c == nil {
		c = http.DefaultClient
	}

	resp, err := c.Do(httpReq)
	if err != nil {
		return nil, xerrors.Errorf("report request for view %s failed: %w", req.ViewID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return nil, xerrors.Errorf(
			"report request for view %s failed with status %d (%s)", req.ViewID, resp.StatusCode, b)
	}

	var bg batchGetResponse
	if err := json.NewDecoder(resp.Body).Decode(&bg); err != nil {
		return nil, xerrors.Errorf("failed to decode report response for view %s: %w", req.ViewID, err)
	}

	if len(bg.Reports) == 0 {
		return nil, xerrors.Errorf("report response for view %s contains no reports", req.ViewID)
	}

	return &bg.Reports[0], nil
}
