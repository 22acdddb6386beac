package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job
type Result interface {
	GetError() error
}

// JobFunc adapts a function to the Job interface
type JobFunc func(ctx context.Context) Result

// Execute calls f
func (f JobFunc) Execute(ctx context.Context) Result {
	return f(ctx)
}

type queued struct {
	index int
	job   Job
}

type completed struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of workers.
// Wait returns results in submission order.
type Pool struct {
	workers    int
	jobQueue   chan queued
	results    chan completed
	submitted  int
	collected  map[int]Result
	collectWG  sync.WaitGroup
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool bound to ctx with the given number of workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan queued, workers*2),
		results:    make(chan completed, workers*2),
		collected:  make(map[int]Result),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go func() {
		defer p.collectWG.Done()
		for c := range p.results {
			p.collected[c.index] = c.result
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := q.job.Execute(p.ctx)
			select {
			case p.results <- completed{index: q.index, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It must not be called concurrently with Wait.
// Jobs submitted after cancellation are dropped and yield a nil result.
func (p *Pool) Submit(job Job) {
	q := queued{index: p.submitted, job: job}
	p.submitted++

	select {
	case <-p.ctx.Done():
	case p.jobQueue <- q:
	}
}

// Wait closes the queue, waits for the workers and returns one result per
// submitted job, ordered by submission. Jobs that never ran yield nil.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)

	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
	p.cancelFunc()

	ordered := make([]Result, p.submitted)
	for i, r := range p.collected {
		ordered[i] = r
	}
	return ordered
}

// Shutdown cancels outstanding jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// Run executes fn for every item on a pool of workers and returns the
// results in input order.
func Run[T any, R Result](ctx context.Context, workers int, items []T, fn func(context.Context, T) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}

	if workers > len(items) {
		workers = len(items)
	}

	pool := NewPool(ctx, workers)
	pool.Start()

	for _, item := range items {
		pool.Submit(JobFunc(func(ctx context.Context) Result {
			return fn(ctx, item)
		}))
	}

	for i, r := range pool.Wait() {
		if typed, ok := r.(R); ok {
			out[i] = typed
		}
	}

	return out
}
