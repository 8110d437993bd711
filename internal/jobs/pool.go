package jobs

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrPoolSaturated is returned when the queue is full; the submission is
// rejected rather than queued without bound.
var ErrPoolSaturated = errors.New("background worker pool is saturated")

// Pool is a bounded worker pool consuming queued analysis tasks. Dispatch is
// explicit, never fire-and-forget: saturation pushes back on the caller.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	once   sync.Once
	logger *logrus.Logger
}

// NewPool starts workers consuming a queue of the given depth.
func NewPool(workers, depth int, logger *logrus.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if depth < 1 {
		depth = 1
	}
	if logger == nil {
		logger = logrus.New()
	}

	p := &Pool{
		tasks:  make(chan func(), depth),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit queues a task, failing fast when the queue is full.
func (p *Pool) Submit(task func()) error {
	select {
	case p.tasks <- task:
		return nil
	default:
		p.logger.Warn("rejecting submission, worker queue full")
		return ErrPoolSaturated
	}
}

// Close stops accepting tasks and waits for in-flight work to finish.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
