package garexport

import (
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// Record is one flattened report row, keyed by lower-cased column name.
// Every record carries "viewid" and "timestamp" in addition to the
// report's dimension and metric columns.
type Record map[string]string

const (
	reportDateFormat = "2006-01-02"
	dateTimeFormat   = "2006-01-02 15:04:05"
)

// typeString is the storage type hint for dimensions and for metric
// types the API does not declare.
const typeString = "varchar(255)"

// metricTypes maps Analytics metric types to storage type hints.
var metricTypes = map[string]string{
	"METRIC_TYPE_UNSPECIFIED": typeString,
	"CURRENCY":                "decimal(20,5)",
	"INTEGER":                 "int(11)",
	"FLOAT":                   "decimal(20,5)",
	"PERCENT":                 "decimal(20,5)",
	"TIME":                    "time",
}

// Report is a fully materialized report as returned by the Analytics
// Reporting API, all pages merged.
type Report struct {
	ColumnHeader  ColumnHeader `json:"columnHeader"`
	Data          ReportData   `json:"data"`
	NextPageToken string       `json:"nextPageToken"`
}

// ColumnHeader describes the columns of a report.
type ColumnHeader struct {
	Dimensions   []string     `json:"dimensions"`
	MetricHeader MetricHeader `json:"metricHeader"`
}

// MetricHeader holds the typed metric column headers.
type MetricHeader struct {
	MetricHeaderEntries []MetricHeaderEntry `json:"metricHeaderEntries"`
}

// MetricHeaderEntry names one metric column and its API type.
type MetricHeaderEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ReportData holds the report rows.
type ReportData struct {
	Rows         []ReportRow `json:"rows"`
	RowCount     int         `json:"rowCount"`
	IsDataGolden bool        `json:"isDataGolden"`
}

// ReportRow carries dimension values aligned with ColumnHeader.Dimensions
// and metric value groups aligned with the metric header entries.
type ReportRow struct {
	Dimensions []string       `json:"dimensions"`
	Metrics    []MetricValues `json:"metrics"`
}

// MetricValues is one group of metric values for a row, one value per
// metric header entry.
type MetricValues struct {
	Values []string `json:"values"`
}

// column is one output column with its storage type hint. Dimensions are
// always typeString; the API only declares types for metrics.
type column struct {
	name string
	typ  string
}

// stripNamespace drops the API namespace prefix from a header name,
// e.g. "ga:sessions" becomes "sessions".
func stripNamespace(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}

	return name
}

func metricType(apiType string) string {
	if t, ok := metricTypes[apiType]; ok {
		return t
	}

	return typeString
}

func dimensionColumns(h ColumnHeader) []column {
	cols := make([]column, len(h.Dimensions))
	for i, name := range h.Dimensions {
		cols[i] = column{name: strings.ToLower(stripNamespace(name)), typ: typeString}
	}

	return cols
}

func metricColumns(h ColumnHeader) []column {
	entries := h.MetricHeader.MetricHeaderEntries

	cols := make([]column, len(entries))
	for i, e := range entries {
		cols[i] = column{name: strings.ToLower(stripNamespace(e.Name)), typ: metricType(e.Type)}
	}

	return cols
}

// ReportDate converts config dates carrying a time of day into the
// API's YYYY-MM-DD form. Values the datetime format cannot parse pass
// through unchanged.
func ReportDate(s string) string {
	t, err := time.Parse(dateTimeFormat, s)
	if err != nil {
		return s
	}

	return t.Format(reportDateFormat)
}

// flattenReport pivots a report into one Record per (row, metric value
// group) pair. viewID and since are copied into every record verbatim.
// Rows whose value counts disagree with the column headers are rejected.
func flattenReport(r *Report, viewID, since string) ([]Record, error) {
	dims := dimensionColumns(r.ColumnHeader)
	mets := metricColumns(r.ColumnHeader)

	records := make([]Record, 0, len(r.Data.Rows))

	for i, row := range r.Data.Rows {
		if len(row.Dimensions) != len(dims) {
			return nil, xerrors.Errorf(
				"row %d has %d dimension values for %d dimension headers", i, len(row.Dimensions), len(dims))
		}

		base := make(Record, len(dims))
		for j, v := range row.Dimensions {
			base[dims[j].name] = v
		}

		for _, group := range row.Metrics {
			if len(group.Values) != len(mets) {
				return nil, xerrors.Errorf(
					"row %d has %d metric values for %d metric headers", i, len(group.Values), len(mets))
			}

			rec := make(Record, len(dims)+len(mets)+2)
			for k, v := range base {
				rec[k] = v
			}
			for j, v := range group.Values {
				rec[mets[j].name] = v
			}

			rec["viewid"] = viewID
			rec["timestamp"] = since

			records = append(records, rec)
		}
	}

	return records, nil
}
