package main

import (
	"os"

	"github.com/spf13/cobra"

	"go.dataden.dev/garexport"
)

var (
	version = "0.1.0"

	rootCmd = &cobra.Command{
		Use:   "garexport",
		Short: "Export Google Analytics reports to Cloud Storage",
		Long: `garexport pulls reports from the Analytics Reporting API, flattens
them into newline-delimited JSON and uploads the result to Cloud
Storage, optionally loading the landed objects into BigQuery.

Examples:
  garexport run --config tasks.yaml
  garexport run --config tasks.yaml --concurrency 4 --log-level debug`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the export tasks defined in a task file",
		Long:  "Load a YAML task file, validate every task and run them all",
		RunE:  runCmdHandler,
	}
)

func init() {
	runCmd.Flags().StringP("config", "c", "tasks.yaml", "Path to the YAML task file")
	runCmd.Flags().Int("concurrency", 0, "Tasks to run at once (overrides the task file)")
	runCmd.Flags().String("log-level", "", "Log level (overrides the task file)")
	runCmd.Flags().Bool("pretty", false, "Print human friendly logs")

	rootCmd.AddCommand(runCmd)
}

func runCmdHandler(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	tf, err := loadTaskFile(path)
	if err != nil {
		return err
	}

	var opts []garexport.Option

	level := tf.LogLevel
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	if level != "" {
		opts = append(opts, garexport.WithLogLevel(level))
	}

	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		opts = append(opts, garexport.WithPrettyLogging())
	}

	concurrency := tf.Concurrency
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		concurrency = v
	}
	if concurrency > 0 {
		opts = append(opts, garexport.WithConcurrency(concurrency))
	}

	exporter, err := garexport.New(opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	slackToken := os.Getenv("SLACK_TOKEN")

	for i := range tf.Tasks {
		if err := exporter.AddTask(ctx, tf.Tasks[i].task(tf.Slack, slackToken)); err != nil {
			return err
		}
	}

	return exporter.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("garexport: " + err.Error() + "\n")
		os.Exit(1)
	}
}
