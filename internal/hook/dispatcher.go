package hook

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Job is a queued hook invocation.
type Job struct {
	Hook    string
	Request Request
}

// Result reports the outcome of a job.
type Result struct {
	Job      Job
	Response *Response
	Err      error
}

// Dispatcher runs jobs on a single worker fed by a bounded queue, so the
// frame loop can submit without waiting on external processes.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan Job
	logger   zerolog.Logger

	mu       sync.Mutex
	dropped  int
	onResult func(Result)
}

// NewDispatcher creates a dispatcher with room for size pending jobs.
func NewDispatcher(m *Manager, e *Executor, size int, logger zerolog.Logger) *Dispatcher {
	if size < 1 {
		size = 1
	}
	return &Dispatcher{
		manager:  m,
		executor: e,
		queue:    make(chan Job, size),
		logger:   logger,
	}
}

// OnResult registers a callback invoked on the worker after every job.
func (d *Dispatcher) OnResult(fn func(Result)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onResult = fn
}

// Submit queues a job. It never blocks: when the queue is full the job is
// dropped and false is returned.
func (d *Dispatcher) Submit(job Job) bool {
	select {
	case d.queue <- job:
		return true
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		d.logger.Warn().Str("hook", job.Hook).Str("event", job.Request.Event).Msg("hook queue full, dropping job")
		return false
	}
}

// Dropped returns the number of jobs rejected because the queue was full.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Run executes queued jobs until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.queue:
			res := d.run(ctx, job)

			d.mu.Lock()
			fn := d.onResult
			d.mu.Unlock()
			if fn != nil {
				fn(res)
			}
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, job Job) Result {
	res := Result{Job: job}

	h, err := d.manager.Get(job.Hook)
	if err != nil {
		res.Err = err
		d.logger.Warn().Err(err).Str("hook", job.Hook).Msg("hook unavailable")
		return res
	}

	res.Response, res.Err = d.executor.Execute(ctx, h, &job.Request)
	switch {
	case res.Err != nil:
		d.logger.Warn().Err(res.Err).Str("hook", job.Hook).Str("action", job.Request.Action).Msg("hook failed")
	case !res.Response.Success:
		d.logger.Warn().Str("hook", job.Hook).Str("error", res.Response.Error).Msg("hook reported failure")
	default:
		d.logger.Debug().Str("hook", job.Hook).Str("action", job.Request.Action).Msg("hook ran")
	}

	return res
}
