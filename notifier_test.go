package garexport_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.dataden.dev/garexport"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(f roundTripperFunc) *http.Client {
	return &http.Client{Transport: f}
}

func testResult(err error) *garexport.Result {
	return &garexport.Result{
		Task: &garexport.Task{
			Name:   "daily-traffic",
			ViewID: "123",
			Bucket: "bucket",
			Object: "path/report.json",
		},
		Error: err,
	}
}

func TestSlackNotifier(t *testing.T) {
	var posted string

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		posted = string(b)

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(`{"ok":true}`)),
			Header:     http.Header{},
		}, nil
	})

	n := &garexport.SlackNotifier{
		Channel:    "#channel",
		Token:      "token",
		IconEmoji:  ":emoji:",
		Username:   "username",
		HTTPClient: client,
	}

	if err := n.Notify(context.Background(), testResult(nil)); err != nil {
		t.Errorf("unexpected slack.Notify error: %s", err)
	}

	if !strings.Contains(posted, "daily-traffic") || !strings.Contains(posted, "gs://bucket/path/report.json") {
		t.Errorf("message should name the task and destination: %s", posted)
	}
}

func TestSlackNotifier_APIError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(`{"ok":false,"error":"channel_not_found"}`)),
			Header:     http.Header{},
		}, nil
	})

	n := &garexport.SlackNotifier{Channel: "#nope", Token: "token", HTTPClient: client}

	err := n.Notify(context.Background(), testResult(nil))
	if err == nil {
		t.Fatal("expected error but no error occurred")
	}

	if !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("error should carry the slack error: %v", err)
	}
}
