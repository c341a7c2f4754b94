package pool

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Option for the worker pool
type Option func(*Pool)

// Concurrency sets the maximum number of tasks in flight
func Concurrency(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// Retry sets how many times a failed task is attempted again
func Retry(r int) Option {
	return func(p *Pool) {
		if r >= 0 {
			p.retry = r
		}
	}
}

// Backoff sets the pause between two attempts of a task
func Backoff(d time.Duration) Option {
	return func(p *Pool) {
		p.backoff = d
	}
}

// RateLimit caps the number of attempts started per second, across all tasks.
// A non-positive limit means no limit.
func RateLimit(perSecond float64) Option {
	return func(p *Pool) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// Name the pool in logs
func Name(name string) Option {
	return func(p *Pool) {
		p.name = name
	}
}

// Logger sets a logger for this pool
func Logger(l *zap.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.l = l
		}
	}
}
