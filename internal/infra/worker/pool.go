// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// A small fixed-size worker pool. Batch lookups submit one task per id and
// wait for all of them.

type Task func(ctx context.Context) error

var ErrStopped = errors.New("worker pool stopped")

type Pool struct {
	wg     sync.WaitGroup
	jobs   chan Task
	quit   chan struct{}
	once   sync.Once
	n      int
	logger *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Pool{jobs: make(chan Task, workers*4), quit: make(chan struct{}), n: workers, logger: logger}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						p.logger.Debug().Int("worker", id).Err(err).Msg("task error")
					}
				}
			}
		}(i)
	}
}

// Stop signals the workers and waits for running tasks. Queued tasks that
// have not started are dropped. Safe to call more than once.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// Submit queues task, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case p.jobs <- task:
		return nil
	case <-p.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes fn for every index in [0, n) on a fresh pool of the given
// size and waits for completion. fn reports its own results; Run returns
// only submission errors such as cancellation.
func Run(ctx context.Context, workers, n int, logger *zerolog.Logger, fn func(ctx context.Context, i int)) error {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	p := NewPool(workers, logger)
	p.Start(ctx)
	defer p.Stop()

	var (
		done      sync.WaitGroup
		submitErr error
	)
	for i := 0; i < n && submitErr == nil; i++ {
		i := i
		done.Add(1)
		submitErr = p.Submit(ctx, func(ctx context.Context) error {
			defer done.Done()
			fn(ctx, i)
			return nil
		})
		if submitErr != nil {
			done.Done()
		}
	}

	finished := make(chan struct{})
	go func() {
		done.Wait()
		close(finished)
	}()
	if submitErr == nil {
		select {
		case <-finished:
			return nil
		case <-ctx.Done():
			submitErr = ctx.Err()
		}
	}

	// Workers are gone after Stop; release tasks that never started.
	p.Stop()
	for drained := false; !drained; {
		select {
		case <-p.jobs:
			done.Done()
		default:
			drained = true
		}
	}
	<-finished
	return submitErr
}
