package main

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"go.dataden.dev/garexport"
)

// taskFile is the YAML document passed to `garexport run`.
type taskFile struct {
	Concurrency int          `yaml:"concurrency"`
	LogLevel    string       `yaml:"log_level"`
	Slack       *slackConfig `yaml:"slack"`
	Tasks       []taskConfig `yaml:"tasks"`
}

type slackConfig struct {
	Channel   string `yaml:"channel"`
	IconEmoji string `yaml:"icon_emoji"`
	Username  string `yaml:"username"`
}

type taskConfig struct {
	Name             string          `yaml:"name"`
	ViewID           string          `yaml:"view_id"`
	Since            string          `yaml:"since"`
	Until            string          `yaml:"until"`
	SamplingLevel    string          `yaml:"sampling_level"`
	Dimensions       []string        `yaml:"dimensions"`
	Metrics          []string        `yaml:"metrics"`
	PageSize         int             `yaml:"page_size"`
	IncludeEmptyRows *bool           `yaml:"include_empty_rows"`
	Bucket           string          `yaml:"bucket"`
	Object           string          `yaml:"object"`
	BigQuery         *bigQueryConfig `yaml:"bigquery"`
}

type bigQueryConfig struct {
	Project string `yaml:"project"`
	Dataset string `yaml:"dataset"`
	Table   string `yaml:"table"`
}

func loadTaskFile(path string) (*taskFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read task file %s: %w", path, err)
	}

	tf, err := parseTaskFile(bytes.NewReader(b))
	if err != nil {
		return nil, xerrors.Errorf("failed to parse task file %s: %w", path, err)
	}

	return tf, nil
}

func parseTaskFile(r io.Reader) (*taskFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var tf taskFile
	if err := dec.Decode(&tf); err != nil {
		return nil, err
	}

	if len(tf.Tasks) == 0 {
		return nil, xerrors.New("no tasks defined")
	}

	return &tf, nil
}

func (c *taskConfig) task(slack *slackConfig, slackToken string) *garexport.Task {
	t := &garexport.Task{
		Name:             c.Name,
		ViewID:           c.ViewID,
		Since:            c.Since,
		Until:            c.Until,
		SamplingLevel:    c.SamplingLevel,
		Dimensions:       c.Dimensions,
		Metrics:          c.Metrics,
		PageSize:         c.PageSize,
		IncludeEmptyRows: c.IncludeEmptyRows,
		Bucket:           c.Bucket,
		Object:           c.Object,
	}

	if c.BigQuery != nil {
		t.BigQuery = &garexport.BigQueryTable{
			Project: c.BigQuery.Project,
			Dataset: c.BigQuery.Dataset,
			Table:   c.BigQuery.Table,
		}
	}

	if slack != nil && slackToken != "" {
		t.Notifier = &garexport.SlackNotifier{
			Channel:   slack.Channel,
			IconEmoji: slack.IconEmoji,
			Username:  slack.Username,
			Token:     slackToken,
		}
	}

	return t
}
