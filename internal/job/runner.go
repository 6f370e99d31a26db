package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/sweepmesh/internal/logger"
	"github.com/Faultbox/sweepmesh/pkg/mesh"
)

// Result is the outcome of one job.
type Result struct {
	Job      *Job
	Mesh     *mesh.Mesh
	Cached   bool
	Duration time.Duration
	Err      error
}

// OutputFunc receives every successfully built mesh, for example to write
// it to disk. It may be called concurrently.
type OutputFunc func(ctx context.Context, res Result) error

// Runner builds jobs on a bounded pool of goroutines.
type Runner struct {
	Env     Env
	Cache   Cache // optional
	Workers int
	Output  OutputFunc // optional
}

// NewRunner returns a runner with the given environment and cache.
func NewRunner(env Env, cache Cache, workers int) *Runner {
	return &Runner{Env: env, Cache: cache, Workers: workers}
}

// Run builds every job. A failing job does not stop the others; all
// failures are combined into the returned error. Results are in job order.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	runID := uuid.NewString()
	log := logger.Log.With(zap.String("run", runID))
	log.Info("job run started", zap.Int("jobs", len(jobs)), zap.Int("workers", r.workers()))

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := range jobs {
		j := &jobs[i]
		results[i].Job = j
		g.Go(func() error {
			results[i] = r.runOne(ctx, j, log)
			return nil
		})
	}
	// Workers never return errors; failures live in the results.
	_ = g.Wait()

	var err error
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			err = multierr.Append(err, fmt.Errorf("job %q: %w", res.Job.Name, res.Err))
		}
	}
	log.Info("job run finished", zap.Int("jobs", len(jobs)), zap.Int("failed", failed))
	return results, err
}

func (r *Runner) workers() int {
	if r.Workers < 1 {
		return 1
	}
	return r.Workers
}

func (r *Runner) runOne(ctx context.Context, j *Job, log *zap.Logger) Result {
	res := Result{Job: j}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	start := time.Now()

	var key string
	if r.Cache != nil {
		k, err := j.Key(r.Env)
		if err != nil {
			res.Err = err
			return res
		}
		key = k
		if m, ok := r.Cache.Get(key); ok {
			res.Mesh, res.Cached = m, true
		}
	}
	if res.Mesh == nil {
		m, err := j.Build(r.Env)
		if err != nil {
			res.Err = err
			log.Warn("job failed", zap.String("job", j.Name), zap.Error(err))
			return res
		}
		res.Mesh = m
		if r.Cache != nil {
			r.Cache.Put(key, m)
		}
	}
	res.Duration = time.Since(start)

	log.Debug("job built",
		zap.String("job", j.Name),
		zap.String("kind", j.Kind),
		zap.Bool("cached", res.Cached),
		zap.Int("triangles", res.Mesh.TriangleCount()),
		zap.Int("diagnostics", len(res.Mesh.Diagnostics)),
		zap.Duration("took", res.Duration),
	)

	if r.Output != nil {
		if err := r.Output(ctx, res); err != nil {
			res.Err = fmt.Errorf("output: %w", err)
		}
	}
	return res
}
