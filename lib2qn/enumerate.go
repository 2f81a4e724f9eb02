package lib2qn

import (
	"github.com/pkg/errors"

	"github.com/qbit-systems/go2qn/go2qn"
)

// EnumOpts configures one EnumerateNets run.
type EnumOpts struct {
	QubitCount int      // number of qubit lines (2..MaxQubits)
	Depth      int      // target gate count (1..MaxDepth)
	Criteria   Criteria // reductions folded in at every depth
	Workers    int      // worker goroutines (0 denotes the CPU count)
	Pool       TaskPool // if set, overrides Workers; lifecycle stays with the caller
	Seed       *Seed    // optional starting set replacing depth-1 generation

	// OnDepthDone, if set, fires after each depth's set is fully reduced.
	// The set is owned by the enumeration; don't retain it past the callback.
	OnDepthDone func(depth int, set *NetSet)
}

// EnumerateNets produces the set of structurally distinct gate networks at the
// requested qubit count and depth, folding the enabled criteria at each depth.
//
// The depth-1 starting set is the C(n,2) single-gate networks.  Each following
// depth extends every network in the previous set by one gate, dedupes the
// candidates by canonic signature, and reduces the survivors under the
// criteria before the next extension.  A Seed skips straight to its declared
// depth instead of starting from depth 1.
func EnumerateNets(opts EnumOpts) (*NetSet, error) {
	n := opts.QubitCount
	if n < 2 || n > go2qn.MaxQubits {
		return nil, errors.Wrapf(go2qn.ErrQubitCountMismatch, "qubit count %d outside 2..%d", n, go2qn.MaxQubits)
	}
	if opts.Depth < 1 || opts.Depth > go2qn.MaxDepth {
		return nil, errors.Wrapf(go2qn.ErrDepthMismatch, "depth %d outside 1..%d", opts.Depth, go2qn.MaxDepth)
	}

	// Validate the seed and build the starting set before any generation work.
	startDepth := 1
	var set *NetSet
	var err error
	if opts.Seed != nil {
		if opts.Seed.QubitCount != n {
			return nil, errors.Wrapf(go2qn.ErrQubitCountMismatch, "seed declares %d qubits, run wants %d", opts.Seed.QubitCount, n)
		}
		if opts.Seed.Depth < 1 || opts.Seed.Depth > opts.Depth {
			return nil, errors.Wrapf(go2qn.ErrDepthMismatch, "seed depth %d outside 1..%d", opts.Seed.Depth, opts.Depth)
		}
		startDepth = opts.Seed.Depth
		set, err = SetFromSeed(opts.Seed)
	} else {
		set, err = BaseSet(n)
	}
	if err != nil {
		return nil, err
	}

	pool := opts.Pool
	if pool == nil {
		pool = NewWorkerPool(opts.Workers)
		defer pool.Close()
	}

	// A fresh base set presents its gates verbatim and has nothing to fold.
	// A seed lands in canonic form and may carry networks a stronger criteria
	// set would have folded, so it reduces before the first extension.
	if opts.Seed != nil {
		if err := ReduceSet(set, opts.Criteria, pool); err != nil {
			set.Reclaim()
			return nil, err
		}
	}
	if opts.OnDepthDone != nil {
		opts.OnDepthDone(startDepth, set)
	}

	for d := startDepth; d < opts.Depth; d++ {
		next, err := ExtendSet(set, opts.Criteria, pool)
		set.Reclaim()
		if err != nil {
			return nil, err
		}
		if err := ReduceSet(next, opts.Criteria, pool); err != nil {
			next.Reclaim()
			return nil, err
		}
		set = next
		if opts.OnDepthDone != nil {
			opts.OnDepthDone(d+1, set)
		}
	}
	return set, nil
}

// BaseSet returns the depth-1 starting set: every single-gate network on
// qubitCount lines, one per unordered qubit pair.
func BaseSet(qubitCount int) (*NetSet, error) {
	gates := go2qn.AllGates(qubitCount)
	if gates == nil {
		return nil, errors.Wrapf(go2qn.ErrQubitCountMismatch, "qubit count %d outside 2..%d", qubitCount, go2qn.MaxQubits)
	}

	set := NewNetSet(qubitCount)
	X := NewNet(nil)
	defer X.Reclaim()

	for _, g := range gates {
		if err := X.InitFromGates(qubitCount, []go2qn.Gate{g}); err != nil {
			set.Reclaim()
			return nil, err
		}
		set.TryAddNet(X)
	}
	return set, nil
}

// ExtendSet appends every possible gate to every member of src, canonizes each
// candidate, and returns the deduplicated next-depth set.  Candidates whose
// signature is already present fold into the existing member: since candidates
// are canonized before insertion, the surviving representative is the class's
// canonic form no matter which worker or insertion order produced it.
func ExtendSet(src *NetSet, crit Criteria, pool TaskPool) (*NetSet, error) {
	n := src.QubitCount()
	gates := go2qn.AllGates(n)
	if gates == nil {
		return nil, errors.Wrapf(go2qn.ErrQubitCountMismatch, "qubit count %d outside 2..%d", n, go2qn.MaxQubits)
	}
	if pool == nil {
		pool = NewWorkerPool(1)
		defer pool.Close()
	}

	chunks := chunkNets(src.SelectAll(), pool.NumWorkers())
	locals := make([]*NetSet, len(chunks))

	for ci := range chunks {
		ci := ci
		chunk := chunks[ci]
		locals[ci] = NewNetSet(n)
		pool.Submit(func() error {
			return extendChunk(locals[ci], chunk, gates, crit)
		})
	}
	if err := pool.Join(); err != nil {
		for _, local := range locals {
			if local != nil {
				local.Reclaim()
			}
		}
		return nil, err
	}

	// Join before merge: workers only ever touch their own local set.
	dst := NewNetSet(n)
	for _, local := range locals {
		local.ForEach(func(X *Net) bool {
			dst.TryAddNet(X)
			return true
		})
		local.Reclaim()
	}
	return dst, nil
}

func extendChunk(local *NetSet, chunk []*Net, gates []go2qn.Gate, crit Criteria) error {
	scratch := NewNet(nil)
	defer scratch.Reclaim()

	for _, Xd := range chunk {
		for _, g := range gates {
			if crit.LimitRepeats && runWouldExceed(Xd, g) {
				continue
			}
			scratch.Init(Xd)
			if err := scratch.AppendGate(g); err != nil {
				return err
			}
			if err := scratch.Canonize(); err != nil {
				return err
			}
			local.TryAddNet(scratch)
		}
	}
	return nil
}

// runWouldExceed reports whether appending g to X closes a run longer than MaxGateRun.
func runWouldExceed(X *Net, g go2qn.Gate) bool {
	gates := X.Gates()
	run := 1
	for i := len(gates) - 1; i >= 0 && gates[i] == g; i-- {
		run++
	}
	return run > MaxGateRun
}
