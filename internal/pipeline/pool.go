package pipeline

import "sync"

// Pool runs repo-processing jobs on a fixed set of workers. Submit blocks
// once the queue fills, which throttles a large trending feed instead of
// buffering it all at once.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
	once sync.Once
	done chan struct{}
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		jobs: make(chan func(), 4*workers),
		done: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
		case <-p.done:
			return
		}
	}
}

// Submit queues a job, blocking while the queue is full.
func (p *Pool) Submit(job func()) {
	p.jobs <- job
}

// Pending reports jobs queued but not yet picked up by a worker.
func (p *Pool) Pending() int { return len(p.jobs) }

// Shutdown stops the workers after their current job and waits for them.
// Jobs still queued are dropped.
func (p *Pool) Shutdown() {
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
}
