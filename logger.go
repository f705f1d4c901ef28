package garexport

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type contextKey string

const startedTimeKey contextKey = "startedTime"

func withStartedTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, startedTimeKey, time.Now())
}

func startedTimeFrom(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startedTimeKey).(time.Time)
	return t, ok
}

func newLogger(level zerolog.Level, pretty bool) zerolog.Logger {
	if pretty {
		w := zerolog.ConsoleWriter{Out: os.Stderr}
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
