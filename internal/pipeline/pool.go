package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var (
	ErrQueueFull  = errors.New("pipeline queue full")
	ErrPoolClosed = errors.New("pipeline pool closed")
)

type Task func(ctx context.Context)

// Pool runs submitted tasks on a fixed number of workers with a bounded
// queue. Submissions beyond queue capacity are rejected instead of
// spawning unbounded goroutines.
type Pool struct {
	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:  make(chan Task, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logutil.GetLogger(p.ctx).Error("pipeline task panic",
						zap.Int("worker", id), zap.Any("panic", r))
				}
			}()
			task(p.ctx)
		}()
	}
}

// Submit queues a task for execution. It never blocks: a saturated
// queue yields ErrQueueFull.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		p.mu.Unlock()
		return nil
	default:
		p.mu.Unlock()
		return ErrQueueFull
	}
}

// Close stops accepting tasks, cancels the context passed to running
// tasks, and waits for workers to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.cancel()
	p.wg.Wait()
}
