package lib2qn

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/qbit-systems/go2qn/go2qn"
)

// Task is one unit of CPU-bound enumeration work.
//
// A Task writes only to state its submitter handed it, so the submitter can
// read that state back once the pool joins.
type Task func() error

// TaskPool dispatches Tasks on behalf of EnumerateNets.
//
// Chunk partitioning and result merging stay with the caller (join before
// merge), so an implementation never affects what an enumeration outputs,
// only how fast it runs.
type TaskPool interface {

	// NumWorkers returns how many tasks can make progress at once.
	NumWorkers() int

	// Submit hands a task to the pool, blocking while all workers are busy.
	Submit(task Task)

	// Join blocks until every submitted task has returned, yielding the first
	// task error (nil when all succeeded).  A task that panics surfaces as
	// ErrWorkerFailure.
	Join() error

	// Close releases the pool's workers.  No Submit may follow Close.
	Close()
}

// NewWorkerPool returns a TaskPool backed by workerCount goroutines.
// workerCount <= 0 selects the available CPU count.
func NewWorkerPool(workerCount int) TaskPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	pool := &workerPool{
		numWorkers: workerCount,
		tasks:      make(chan Task, workerCount),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers.Add(1)
		go pool.runWorker()
	}
	return pool
}

type workerPool struct {
	numWorkers int
	tasks      chan Task
	inFlight   sync.WaitGroup
	workers    sync.WaitGroup
	mu         sync.Mutex
	firstErr   error
}

func (pool *workerPool) NumWorkers() int {
	return pool.numWorkers
}

func (pool *workerPool) Submit(task Task) {
	pool.inFlight.Add(1)
	pool.tasks <- task
}

func (pool *workerPool) Join() error {
	pool.inFlight.Wait()
	pool.mu.Lock()
	err := pool.firstErr
	pool.firstErr = nil
	pool.mu.Unlock()
	return err
}

func (pool *workerPool) Close() {
	close(pool.tasks)
	pool.workers.Wait()
}

func (pool *workerPool) runWorker() {
	defer pool.workers.Done()
	for task := range pool.tasks {
		pool.runTask(task)
	}
}

func (pool *workerPool) runTask(task Task) {
	defer pool.inFlight.Done()
	defer func() {
		if r := recover(); r != nil {
			pool.pushErr(errors.Wrapf(go2qn.ErrWorkerFailure, "worker panic: %v", r))
		}
	}()

	if err := task(); err != nil {
		pool.pushErr(err)
	}
}

func (pool *workerPool) pushErr(err error) {
	pool.mu.Lock()
	if pool.firstErr == nil {
		pool.firstErr = err
	}
	pool.mu.Unlock()
}

// chunkNets splits members into up to numChunks contiguous runs, preserving order.
func chunkNets(members []*Net, numChunks int) [][]*Net {
	total := len(members)
	if total == 0 {
		return nil
	}
	if numChunks < 1 {
		numChunks = 1
	}
	if numChunks > total {
		numChunks = total
	}

	chunks := make([][]*Net, 0, numChunks)
	for ci := 0; ci < numChunks; ci++ {
		lo := ci * total / numChunks
		hi := (ci + 1) * total / numChunks
		if lo < hi {
			chunks = append(chunks, members[lo:hi])
		}
	}
	return chunks
}
