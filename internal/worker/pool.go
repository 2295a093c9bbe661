package worker

import (
	"context"
	"sync"
)

// Job is a unit of work submitted to a Pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces. GetError lets callers count failures
// without knowing the concrete outcome type.
type Result interface {
	GetError() error
}

// Pool runs submitted jobs across a fixed number of goroutines and hands
// every result to a single collector, so Wait returns them without the
// caller doing any synchronization. A pool is single-use: Start, Submit
// any number of jobs, then either Wait or Shutdown.
type Pool struct {
	size      int
	jobs      chan Job
	collected []Result

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	done    chan struct{}
	results chan Result
}

// NewPool creates a pool with size workers. Sizes below one are rounded
// up to one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		size:    size,
		jobs:    make(chan Job),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		results: make(chan Result),
	}
}

// Start launches the workers and the result collector.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.workers.Add(1)
		go p.run()
	}
	go func() {
		defer close(p.done)
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()
}

func (p *Pool) run() {
	defer p.workers.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			select {
			case p.results <- job.Execute(p.ctx):
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit hands a job to the pool. After Shutdown it returns immediately
// and the job is discarded.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the job stream, waits for all in-flight work, and returns
// the collected results in completion order.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.workers.Wait()
	close(p.results)
	<-p.done
	return p.collected
}

// Shutdown cancels in-flight jobs and discards anything still queued.
// Results collected before the cancellation remain available via the
// returned slice.
func (p *Pool) Shutdown() []Result {
	p.cancel()
	p.workers.Wait()
	close(p.results)
	<-p.done
	return p.collected
}
