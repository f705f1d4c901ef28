// Package tasks provides pre-configured export tasks for common report
// shapes.
package tasks

import (
	"fmt"

	"go.dataden.dev/garexport"
)

// Destination names where a pre-configured task lands its records. The
// object name is derived from the task name and start date.
type Destination struct {
	Bucket string
	Prefix string
}

func (d Destination) object(name, since string) string {
	return fmt.Sprintf("%s%s/%s.json", d.Prefix, name, garexport.ReportDate(since))
}

// DailyTraffic builds a task exporting per-country session and user
// counts for the date range.
func DailyTraffic(name, viewID, since, until string, dest Destination, notifier garexport.Notifier) *garexport.Task {
	return &garexport.Task{
		Name:       name,
		ViewID:     viewID,
		Since:      since,
		Until:      until,
		Dimensions: []string{"ga:date", "ga:country"},
		Metrics:    []string{"ga:sessions", "ga:users"},
		Bucket:     dest.Bucket,
		Object:     dest.object(name, since),
		Notifier:   notifier,
	}
}

// EcommerceOverview builds a task exporting daily transaction counts
// and revenue.
func EcommerceOverview(name, viewID, since, until string, dest Destination, notifier garexport.Notifier) *garexport.Task {
	return &garexport.Task{
		Name:       name,
		ViewID:     viewID,
		Since:      since,
		Until:      until,
		Dimensions: []string{"ga:date"},
		Metrics:    []string{"ga:transactions", "ga:transactionRevenue"},
		Bucket:     dest.Bucket,
		Object:     dest.object(name, since),
		Notifier:   notifier,
	}
}

// PagePerformance builds a task exporting pageview counts and time on
// page per path.
func PagePerformance(name, viewID, since, until string, dest Destination, notifier garexport.Notifier) *garexport.Task {
	return &garexport.Task{
		Name:       name,
		ViewID:     viewID,
		Since:      since,
		Until:      until,
		Dimensions: []string{"ga:date", "ga:pagePath"},
		Metrics:    []string{"ga:pageviews", "ga:avgTimeOnPage"},
		Bucket:     dest.Bucket,
		Object:     dest.object(name, since),
		Notifier:   notifier,
	}
}
