package garexport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Exporter runs report export tasks.
type Exporter interface {
	AddTask(context.Context, *Task) error
	MustAddTask(context.Context, *Task)
	Run(context.Context) error
}

// New builds a new Exporter.
func New(opts ...Option) (Exporter, error) {
	e := &exporter{
		tasks:       []*Task{},
		mu:          sync.RWMutex{},
		concurrency: 1,
		logLevel:    zerolog.InfoLevel,
	}

	for _, o := range opts {
		if err := o.apply(e); err != nil {
			return nil, err
		}
	}

	e.logger = newLogger(e.logLevel, e.prettyLogging)

	return e, nil
}

type exporter struct {
	tasks []*Task
	mu    sync.RWMutex

	concurrency   int
	prettyLogging bool
	logLevel      zerolog.Level
	logger        zerolog.Logger
}

// AddTask validates the task and wires default collaborators for any
// left unset. Validation happens before any client is built, so a bad
// configuration never touches the network.
func (e *exporter) AddTask(ctx context.Context, t *Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := t.validate(); err != nil {
		return xerrors.Errorf("invalid task %q: %w", t.Name, err)
	}

	if t.Fetcher == nil {
		f, err := newDefaultFetcher(ctx)
		if err != nil {
			return err
		}
		t.Fetcher = f
	}

	if t.Uploader == nil {
		u, err := newDefaultUploader(ctx)
		if err != nil {
			return err
		}
		t.Uploader = u
	}

	if t.BigQuery != nil && t.Loader == nil {
		l, err := newDefaultLoader(ctx, *t.BigQuery)
		if err != nil {
			return err
		}
		t.Loader = l
	}

	e.tasks = append(e.tasks, t)

	return nil
}

func (e *exporter) MustAddTask(ctx context.Context, t *Task) {
	if err := e.AddTask(ctx, t); err != nil {
		panic(err)
	}
}

// Run executes all tasks. Tasks run with bounded concurrency; each task
// itself is strictly sequential (fetch, flatten, stage, upload, load).
func (e *exporter) Run(ctx context.Context) error {
	e.mu.RLock()
	tasks := make([]*Task, len(e.tasks))
	copy(tasks, e.tasks)
	e.mu.RUnlock()

	logger := e.logger.With().Str("run_id", uuid.NewString()).Logger()
	logger.Info().Int("tasks", len(tasks)).Msg("export started")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, t := range tasks {
		t := t

		g.Go(func() error {
			l := logger.With().Str("task", t.Name).Str("view_id", t.ViewID).Logger()
			tctx := withStartedTime(l.WithContext(gctx))

			err := t.run(tctx)
			if err != nil {
				l.Error().Msg(err.Error())
			} else if started, ok := startedTimeFrom(tctx); ok {
				l.Info().Dur("elapsed", time.Since(started)).Msg("task finished")
			}

			t.notify(tctx, err)

			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Msg("export finished with errors")
		return err
	}

	logger.Info().Msg("export finished")

	return nil
}
