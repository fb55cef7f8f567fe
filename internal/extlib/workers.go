//
// workers.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

package extlib

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

const (
	numWorkers  = 4
	queueLength = 64
)

// workerPool runs background jobs (initial subscription checks, scheduled
// polls) on a fixed set of goroutines. Jobs are best-effort: a full queue
// drops the job with a warning, and Close abandons whatever is still queued.
type workerPool struct {
	queue  chan func(context.Context)
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newWorkerPool(ctx context.Context) *workerPool {
	ctx, cancel := context.WithCancel(ctx)

	pool := &workerPool{
		queue:  make(chan func(context.Context), queueLength),
		ctx:    ctx,
		cancel: cancel,
	}

	pool.wg.Add(numWorkers)

	for range numWorkers {
		go pool.run()
	}

	return pool
}

// Submit enqueue job for execution; never blocks.
func (p *workerPool) Submit(job func(context.Context)) {
	select {
	case p.queue <- job:
	case <-p.ctx.Done():
	default:
		zerolog.Ctx(p.ctx).Warn().Msg("worker queue full, job dropped")
	}
}

// Close stops the workers; running jobs see a cancelled context, queued jobs
// are abandoned.
func (p *workerPool) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *workerPool) run() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.queue:
			job(p.ctx)
		case <-p.ctx.Done():
			return
		}
	}
}
