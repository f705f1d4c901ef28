package garexport

import (
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Option configures Exporter.
type Option interface {
	apply(*exporter) error
}

type optionFunc func(*exporter) error

func (f optionFunc) apply(e *exporter) error {
	return f(e)
}

// WithPrettyLogging configures Exporter to print human friendly logs.
func WithPrettyLogging() Option {
	return optionFunc(func(e *exporter) error {
		e.prettyLogging = true
		return nil
	})
}

// WithLogLevel sets the log level. level must be a zerolog level name
// such as "debug" or "info".
func WithLogLevel(level string) Option {
	return optionFunc(func(e *exporter) error {
		l, err := zerolog.ParseLevel(level)
		if err != nil {
			return xerrors.Errorf("failed to parse log level %q: %w", level, err)
		}
		e.logLevel = l
		return nil
	})
}

// WithConcurrency caps how many tasks run at once. Defaults to 1.
func WithConcurrency(n int) Option {
	return optionFunc(func(e *exporter) error {
		if n < 1 {
			return xerrors.Errorf("concurrency must be positive, got %d", n)
		}
		e.concurrency = n
		return nil
	})
}
