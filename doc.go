/*

Package garexport exports Google Analytics reports to Cloud Storage as
newline-delimited JSON, optionally loading the landed objects into
BigQuery. It is meant to run as one step inside a workflow orchestrator;
scheduling and task-level retries belong to the surrounding system.

Getting started

See the quickstart example for a full instruction.
https://go.dataden.dev/garexport/tree/main/examples/quickstart

Define one task per report and run them through an Exporter:

	package main

	import (
		"context"
		"os"

		"go.dataden.dev/garexport"
	)

	func main() {
		ctx := context.Background()

		exporter, err := garexport.New(
			garexport.WithPrettyLogging(),
			garexport.WithConcurrency(2),
		)
		if err != nil {
			panic(err)
		}

		exporter.MustAddTask(ctx, &garexport.Task{
			Name:       "daily-traffic",
			ViewID:     "123456",
			Since:      "2021-05-01",
			Until:      "2021-05-01",
			Dimensions: []string{"ga:date", "ga:country"},
			Metrics:    []string{"ga:sessions", "ga:users"},

			// Destination.
			Bucket: os.Getenv("EXPORT_BUCKET"),
			Object: "analytics/daily_traffic/2021-05-01.json",

			Notifier: &garexport.SlackNotifier{
				Token:   os.Getenv("SLACK_TOKEN"),
				Channel: os.Getenv("SLACK_CHANNEL"),
			},
		})

		if err := exporter.Run(ctx); err != nil {
			os.Exit(1)
		}
	}

Each task fetches its report through the Analytics Reporting API
(pagination included), pivots every row into one flat JSON object per
metric value group, stages the records in a temporary file and uploads
them to the configured bucket and object. Record keys are lower-cased
column names with the API namespace prefix stripped; "viewid" and
"timestamp" are always present.

*/
package garexport
