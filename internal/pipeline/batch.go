package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Summary aggregates the results of a batch.
type Summary struct {
	RunID     string
	Results   []Result
	Processed int
	Skipped   int
	Failed    int
}

// Batch discovers the jobs under input and runs them on a bounded worker
// pool. A failing job does not stop the others; all job errors are combined
// into the returned error. Cancelling ctx stops handing out new jobs.
func (r *Runner) Batch(ctx context.Context, input, output string) (*Summary, error) {
	jobs, err := r.Discover(input, output)
	if err != nil {
		return nil, err
	}
	return r.RunJobs(ctx, jobs, r.cfg.Batch.SkipExisting)
}

// RunJobs runs jobs concurrently. Results keep the order of jobs.
func (r *Runner) RunJobs(ctx context.Context, jobs []Job, skipExisting bool) (*Summary, error) {
	sum := &Summary{
		RunID:   uuid.NewString(),
		Results: make([]Result, len(jobs)),
	}
	log := r.log.With(zap.String("run", sum.RunID))
	log.Info("batch started", zap.Int("jobs", len(jobs)), zap.Int("workers", r.workers(len(jobs))))

	queue := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers(len(jobs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				job := jobs[i]
				if skipExisting && exists(job.Output) {
					sum.Results[i] = Result{Job: job, Skipped: true}
					log.Debug("output exists, skipping", zap.String("output", job.Output))
					continue
				}
				res := r.Run(ctx, job)
				if res.Err != nil {
					log.Error("job failed", zap.String("output", job.Output), zap.Error(res.Err))
				} else {
					log.Info("job done",
						zap.String("output", job.Output),
						zap.Int("faces", res.Stats.Faces),
					)
				}
				sum.Results[i] = res
			}
		}()
	}

	dispatched := len(jobs)
feed:
	for i := range jobs {
		select {
		case queue <- i:
		case <-ctx.Done():
			dispatched = i
			break feed
		}
	}
	close(queue)
	wg.Wait()

	var errs error
	for i := range sum.Results[:dispatched] {
		res := sum.Results[i]
		switch {
		case res.Skipped:
			sum.Skipped++
		case res.Err != nil:
			sum.Failed++
			errs = multierr.Append(errs, res.Err)
		default:
			sum.Processed++
		}
	}
	sum.Results = sum.Results[:dispatched]
	if dispatched < len(jobs) {
		errs = multierr.Append(errs, ctx.Err())
	}

	log.Info("batch finished",
		zap.Int("processed", sum.Processed),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
	)
	return sum, errs
}

func (r *Runner) workers(jobs int) int {
	n := r.cfg.Batch.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > jobs {
		n = jobs
	}
	return n
}
