// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is a unit of work run by a WorkerPool. It receives the context the pool
// was started with, or the group context for Run.
type Job func(ctx context.Context) error

// WorkerPool runs jobs with a bounded number of goroutines.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// Workers returns the concurrency limit of the pool.
func (wp *WorkerPool) Workers() int {
	return wp.workerCount
}

// Run executes the jobs and returns the first error. The first failure
// cancels the context passed to the remaining jobs, and jobs that have not
// started yet are skipped.
func (wp *WorkerPool) Run(ctx context.Context, jobs ...Job) error {
	if len(jobs) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, job := range jobs {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return job(groupCtx)
		})
	}
	return g.Wait()
}

// RunAll executes every job regardless of failures. The returned slice has
// one entry per job, in job order; entry i is nil when job i succeeded. A job
// that had not started when ctx was cancelled reports ctx.Err().
func (wp *WorkerPool) RunAll(ctx context.Context, jobs ...Job) []error {
	if len(jobs) == 0 {
		return nil
	}

	errs := make([]error, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = job(ctx)
			return nil
		})
	}

	// Jobs never return errors to the group.
	_ = g.Wait()
	return errs
}

// Result pairs the output of one Map call with its error.
type Result[R any] struct {
	Value R
	Err   error
}

// Map applies fn to every input on the pool and returns the results in input order.
func Map[T, R any](ctx context.Context, wp *WorkerPool, inputs []T, fn func(ctx context.Context, input T) (R, error)) []Result[R] {
	results := make([]Result[R], len(inputs))
	jobs := make([]Job, len(inputs))
	for i, input := range inputs {
		jobs[i] = func(ctx context.Context) error {
			value, err := fn(ctx, input)
			results[i].Value = value
			return err
		}
	}

	for i, err := range wp.RunAll(ctx, jobs...) {
		results[i].Err = err
	}
	return results
}

// Errors returns the non-nil errors of errs.
func Errors(errs []error) []error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
