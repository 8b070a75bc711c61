package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lumahq/dispatch/internal/dispatcher"
)

// Runner drives one dispatch loop. Each tick processes at most one job;
// when the queue is empty the delay doubles up to maxDelay and resets as
// soon as a job is processed.
type Runner struct {
	ID        int
	processor dispatcher.Processor
	delay     time.Duration
	maxDelay  time.Duration
	quit      chan struct{}
}

func NewRunner(id int, p dispatcher.Processor, delay, maxDelay time.Duration) *Runner {
	return &Runner{ID: id, processor: p, delay: delay, maxDelay: maxDelay, quit: make(chan struct{})}
}

func (r *Runner) Start(ctx context.Context) {
	go func() {
		currentDelay := r.delay

		for {
			outcome, err := r.processor.ProcessOne(ctx)
			if err != nil {
				log.Printf("[worker %d][WARN] dispatch failed: %v", r.ID, err)
				currentDelay = min(currentDelay*2, r.maxDelay)
			} else if outcome.Processed || outcome.AlreadyProcessed {
				currentDelay = r.delay
			} else {
				currentDelay = min(currentDelay*2, r.maxDelay)
			}

			select {
			case <-time.After(currentDelay):
			case <-r.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Runner) Stop() { close(r.quit) }

// Pool runs a fixed set of runners plus a monitor goroutine that logs
// queue depth. Throughput scales with the runner count; each runner still
// processes one job at a time end-to-end.
type Pool struct {
	runners   []*Runner
	processor dispatcher.Processor
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewPool(count int, p dispatcher.Processor, cfg *Config) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	pool := &Pool{processor: p, ctx: ctx, cancel: cancel}

	for i := 1; i <= count; i++ {
		pool.runners = append(pool.runners, NewRunner(i, p, cfg.IdleDelay, cfg.MaxIdleDelay))
	}
	return pool
}

func (p *Pool) Start() {
	for _, r := range p.runners {
		r.Start(p.ctx)
	}

	p.wg.Add(1)
	go p.monitor()
}

func (p *Pool) monitor() {
	defer p.wg.Done()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			stats, err := p.processor.QueueStats(p.ctx)
			if err != nil {
				log.Printf("[worker][WARN] queue stats: %v", err)
				continue
			}
			log.Printf("[worker] queue depth: pending=%d processing=%d", stats.Pending, stats.Processing)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) Stop() {
	p.cancel()
	for _, r := range p.runners {
		r.Stop()
	}
	p.wg.Wait()
}
