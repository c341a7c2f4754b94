// Package pool provides a bounded-concurrency executor for keyed tasks, with retries.
//
// A pool is driven through submit/wait/reset cycles by a single orchestrating goroutine:
//
//	p := pool.New(pool.Concurrency(10), pool.Retry(2))
//	for _, key := range batch {
//		p.Submit(ctx, key, upload)
//	}
//	results := p.Wait()
//	p.Reset()
package pool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultConcurrency is the default number of tasks in flight
	DefaultConcurrency = 10

	// DefaultRetry is the default number of additional attempts of a failed task
	DefaultRetry = 2
)

// Task is some work on a key
type Task func(ctx context.Context, key string) error

// Result of a task, once all its attempts are done
type Result struct {
	Key      string
	Err      error
	Attempts int
}

// Results of a batch of tasks
type Results []Result

// Failed results
func (r Results) Failed() Results {
	var failed Results
	for _, res := range r {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Keys of the results
func (r Results) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, res := range r {
		keys = append(keys, res.Key)
	}
	return keys
}

// Err combines all failures
func (r Results) Err() error {
	var err error
	for _, res := range r {
		err = multierr.Append(err, res.Err)
	}
	return err
}

// Pool is a bounded-concurrency executor. Every submitted task eventually reaches a terminal state
// reported by Wait. There is no ordering between tasks.
type Pool struct {
	name        string
	concurrency int
	retry       int
	backoff     time.Duration
	limiter     *rate.Limiter
	l           *zap.Logger

	group   *errgroup.Group
	mx      sync.Mutex
	results Results

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
}

// New worker pool
func New(opts ...Option) *Pool {
	p := &Pool{
		name:        "pool",
		concurrency: DefaultConcurrency,
		retry:       DefaultRetry,
		l:           zap.NewNop(),
	}
	for _, apply := range opts {
		apply(p)
	}
	p.Reset()
	return p
}

// Submit a task on a key. Submit blocks while the maximum number of tasks is in flight.
func (p *Pool) Submit(ctx context.Context, key string, task Task) {
	p.submitted.Inc()
	p.group.Go(func() error {
		res := p.run(ctx, key, task)

		p.mx.Lock()
		p.results = append(p.results, res)
		p.mx.Unlock()
		return nil
	})
}

func (p *Pool) run(ctx context.Context, key string, task Task) Result {
	res := Result{Key: key}
	for attempt := 0; attempt <= p.retry; attempt++ {
		if attempt > 0 {
			p.retried.Inc()
			p.l.Debug("retrying task", zap.String("pool", p.name), zap.String("key", key), zap.Int("attempt", attempt+1), zap.Error(res.Err))
			if !p.pause(ctx) {
				break
			}
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				if res.Err == nil {
					res.Err = err
				}
				break
			}
		}
		res.Attempts++
		res.Err = task(ctx, key)
		if res.Err == nil {
			p.succeeded.Inc()
			return res
		}
		if ctx.Err() != nil {
			break
		}
	}
	p.failed.Inc()
	return res
}

func (p *Pool) pause(ctx context.Context) bool {
	if p.backoff <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(p.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Wait blocks until all submitted tasks are done and returns their results
func (p *Pool) Wait() Results {
	_ = p.group.Wait()

	p.mx.Lock()
	defer p.mx.Unlock()
	res := make(Results, len(p.results))
	copy(res, p.results)
	return res
}

// Reset clears the results of completed tasks, so the pool may run another batch.
// It must not be called while tasks are in flight.
func (p *Pool) Reset() {
	group := new(errgroup.Group)
	group.SetLimit(p.concurrency)

	p.mx.Lock()
	p.group = group
	p.results = nil
	p.mx.Unlock()
}

// Stats of all tasks run by this pool since its creation
type Stats struct {
	Submitted int64
	Succeeded int64
	Failed    int64
	Retried   int64
}

// MarshalLogObject renders the counters as a structured log field
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("submitted", s.Submitted)
	enc.AddInt64("succeeded", s.Succeeded)
	enc.AddInt64("failed", s.Failed)
	enc.AddInt64("retried", s.Retried)
	return nil
}

// Stats of the pool
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
		Retried:   p.retried.Load(),
	}
}
