package garexport

import (
	"fmt"
	"strings"
	"testing"
)

func Test_ReportDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     string
		expect string
	}{
		{in: "2020-01-02 03:04:05", expect: "2020-01-02"},
		{in: "2020-01-02", expect: "2020-01-02"},
		{in: "yesterday", expect: "yesterday"},
		{in: "", expect: ""},
	}

	for _, c := range cases {
		c := c
		t.Run(fmt.Sprintf("%q", c.in), func(t *testing.T) {
			t.Parallel()

			if got := ReportDate(c.in); got != c.expect {
				t.Errorf("ReportDate(%q) should be %q, but %q", c.in, c.expect, got)
			}
		})
	}
}

func Test_metricType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     string
		expect string
	}{
		{in: "INTEGER", expect: "int(11)"},
		{in: "CURRENCY", expect: "decimal(20,5)"},
		{in: "FLOAT", expect: "decimal(20,5)"},
		{in: "PERCENT", expect: "decimal(20,5)"},
		{in: "TIME", expect: "time"},
		{in: "METRIC_TYPE_UNSPECIFIED", expect: "varchar(255)"},
		{in: "SOMETHING_NEW", expect: "varchar(255)"},
		{in: "", expect: "varchar(255)"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			if got := metricType(c.in); got != c.expect {
				t.Errorf("metricType(%q) should be %q, but %q", c.in, c.expect, got)
			}
		})
	}
}

func Test_stripNamespace(t *testing.T) {
	t.Parallel()

	if got := stripNamespace("ga:sessions"); got != "sessions" {
		t.Errorf(`stripNamespace("ga:sessions") should be "sessions", but %q`, got)
	}

	if got := stripNamespace("sessions"); got != "sessions" {
		t.Errorf(`stripNamespace("sessions") should be "sessions", but %q`, got)
	}
}

func testReport() *Report {
	return &Report{
		ColumnHeader: ColumnHeader{
			Dimensions: []string{"ga:country"},
			MetricHeader: MetricHeader{
				MetricHeaderEntries: []MetricHeaderEntry{
					{Name: "ga:sessions", Type: "INTEGER"},
				},
			},
		},
		Data: ReportData{
			Rows: []ReportRow{
				{Dimensions: []string{"US"}, Metrics: []MetricValues{{Values: []string{"42"}}}},
			},
		},
	}
}

func Test_flattenReport(t *testing.T) {
	t.Parallel()

	records, err := flattenReport(testReport(), "123", "2021-05-01")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Size of records should be 1, but %d", len(records))
	}

	expect := Record{
		"country":   "US",
		"sessions":  "42",
		"viewid":    "123",
		"timestamp": "2021-05-01",
	}

	if len(records[0]) != len(expect) {
		t.Fatalf("Size of record should be %d, but %d: %v", len(expect), len(records[0]), records[0])
	}

	for k, v := range expect {
		if records[0][k] != v {
			t.Errorf("records[0][%q] should be %q, but %q", k, v, records[0][k])
		}
	}
}

func Test_flattenReport_RawSinceSurvives(t *testing.T) {
	t.Parallel()

	// timestamp carries the configured start date verbatim even when
	// the API was queried with the normalized form.
	records, err := flattenReport(testReport(), "123", "2021-05-01 10:20:30")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if records[0]["timestamp"] != "2021-05-01 10:20:30" {
		t.Errorf(`timestamp should be "2021-05-01 10:20:30", but %q`, records[0]["timestamp"])
	}
}

func Test_flattenReport_FanOut(t *testing.T) {
	t.Parallel()

	r := &Report{
		ColumnHeader: ColumnHeader{
			Dimensions: []string{"ga:country", "ga:deviceCategory"},
			MetricHeader: MetricHeader{
				MetricHeaderEntries: []MetricHeaderEntry{
					{Name: "ga:sessions", Type: "INTEGER"},
					{Name: "ga:transactionRevenue", Type: "CURRENCY"},
				},
			},
		},
		Data: ReportData{
			Rows: []ReportRow{
				{
					Dimensions: []string{"US", "mobile"},
					Metrics: []MetricValues{
						{Values: []string{"42", "10.5"}},
						{Values: []string{"7", "3.25"}},
					},
				},
			},
		},
	}

	records, err := flattenReport(r, "123", "2021-05-01")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Size of records should be 2, but %d", len(records))
	}

	for i, rec := range records {
		if rec["country"] != "US" {
			t.Errorf(`records[%d]["country"] should be "US", but %q`, i, rec["country"])
		}
		if rec["devicecategory"] != "mobile" {
			t.Errorf(`records[%d]["devicecategory"] should be "mobile", but %q`, i, rec["devicecategory"])
		}
	}

	if records[0]["sessions"] != "42" || records[0]["transactionrevenue"] != "10.5" {
		t.Errorf("records[0] metrics wrong: %v", records[0])
	}

	if records[1]["sessions"] != "7" || records[1]["transactionrevenue"] != "3.25" {
		t.Errorf("records[1] metrics wrong: %v", records[1])
	}
}

func Test_flattenReport_Mismatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		row    ReportRow
		expect string
	}{
		{
			name:   "dimension count",
			row:    ReportRow{Dimensions: []string{"US", "mobile"}, Metrics: []MetricValues{{Values: []string{"42"}}}},
			expect: "dimension",
		},
		{
			name:   "metric count",
			row:    ReportRow{Dimensions: []string{"US"}, Metrics: []MetricValues{{Values: []string{"42", "7"}}}},
			expect: "metric",
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			r := testReport()
			r.Data.Rows = []ReportRow{c.row}

			_, err := flattenReport(r, "123", "2021-05-01")
			if err == nil {
				t.Fatal("expected error but no error occurred")
			}

			if !strings.Contains(err.Error(), c.expect) {
				t.Errorf("error should mention %q, but: %v", c.expect, err)
			}
		})
	}
}

func Test_flattenReport_EmptyReport(t *testing.T) {
	t.Parallel()

	r := testReport()
	r.Data.Rows = nil

	records, err := flattenReport(r, "123", "2021-05-01")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(records) != 0 {
		t.Errorf("Size of records should be 0, but %d", len(records))
	}
}
