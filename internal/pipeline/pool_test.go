package pipeline

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsAllSubmittedJobs(t *testing.T) {
	p := NewPool(3)
	defer p.Shutdown()

	var ran int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&ran, 1)
		})
	}
	wg.Wait()
	assert.EqualValues(t, 20, atomic.LoadInt64(&ran))
}

func TestPool_ShutdownWaitsForRunningJob(t *testing.T) {
	p := NewPool(1)

	var finished int32
	started := make(chan struct{})
	p.Submit(func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
	})
	<-started
	p.Shutdown()
	assert.EqualValues(t, 1, atomic.LoadInt32(&finished))
}

func TestPool_ZeroWorkersGetsOne(t *testing.T) {
	p := NewPool(0)
	defer p.Shutdown()

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}
}
