package lib2qn

import (
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"

	"github.com/qbit-systems/go2qn/go2qn"
)

func TestWorkerPool(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Fatal("nope")
	}

	total := int64(0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() error {
			atomic.AddInt64(&total, 1)
			return nil
		})
	}
	if err := pool.Join(); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt64(&total) != 100 {
		t.Fatalf("ran %d tasks, want 100", total)
	}

	// A pool stays usable after a join
	pool.Submit(func() error {
		atomic.AddInt64(&total, 1)
		return nil
	})
	if err := pool.Join(); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt64(&total) != 101 {
		t.Fatal("nope")
	}
}

func TestWorkerErrors(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	boom := errors.New("boom")
	pool.Submit(func() error { return boom })
	if err := pool.Join(); !errors.Is(err, boom) {
		t.Fatal("task error lost")
	}

	// A panicking task surfaces as a worker failure without killing the pool
	pool.Submit(func() error { panic("blown gasket") })
	if err := pool.Join(); !errors.Is(err, go2qn.ErrWorkerFailure) {
		t.Fatal("panic not surfaced")
	}

	// A joined error does not stick to the next join
	pool.Submit(func() error { return nil })
	if err := pool.Join(); err != nil {
		t.Fatal(err)
	}
}

func TestChunkNets(t *testing.T) {
	nets := make([]*Net, 10)
	for i := range nets {
		nets[i] = NewNet(nil)
	}
	defer func() {
		for _, X := range nets {
			X.Reclaim()
		}
	}()

	for _, numChunks := range []int{1, 2, 3, 7, 10, 50} {
		chunks := chunkNets(nets, numChunks)
		if len(chunks) > numChunks {
			t.Fatal("nope")
		}
		total := 0
		for _, chunk := range chunks {
			if len(chunk) == 0 {
				t.Fatal("empty chunk")
			}
			for i, X := range chunk {
				if X != nets[total+i] {
					t.Fatalf("%d chunks reordered the members", numChunks)
				}
			}
			total += len(chunk)
		}
		if total != len(nets) {
			t.Fatalf("%d chunks cover %d members", numChunks, total)
		}
	}

	if chunkNets(nil, 3) != nil {
		t.Fatal("nope")
	}
}

// trippedCanonizer panics once networks reach a given depth.
type trippedCanonizer struct {
	inner Canonizer
	depth int
}

func (cn trippedCanonizer) Canonize(X *Net) error {
	if X.GateCount() >= cn.depth {
		panic("tripped")
	}
	return cn.inner.Canonize(X)
}

func TestEnumerateAborts(t *testing.T) {
	SetCanonizer(trippedCanonizer{inner: NewBruteCanonizer(), depth: 3})
	defer SetCanonizer(NewBruteCanonizer())

	set, err := EnumerateNets(EnumOpts{
		QubitCount: 3,
		Depth:      3,
		Criteria:   DefaultCriteria,
	})
	if !errors.Is(err, go2qn.ErrWorkerFailure) {
		t.Fatalf("run must abort on worker failure, got %v", err)
	}
	if set != nil {
		t.Fatal("nope")
	}
}
