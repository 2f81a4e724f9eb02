package lib2qn

import (
	"bytes"
)

// Criteria selects which reductions fold the result set beyond the always-on
// qubit relabeling dedup.
type Criteria struct {
	TimeReversal  bool // fold a network with its time-reversed images
	SwapConjugate bool // fold a network with its sandwich swap-conjugation images
	LimitRepeats  bool // drop networks repeating one gate more than MaxGateRun times in a row
}

// DefaultCriteria enables every reduction.
var DefaultCriteria = Criteria{
	TimeReversal:  true,
	SwapConjugate: true,
	LimitRepeats:  true,
}

// MaxGateRun is the longest run of one repeated gate that LimitRepeats lets through.
const MaxGateRun = 3

// ReduceSet folds set in place so that each orbit under the enabled transforms
// keeps exactly one member: the one with the smallest signature.
//
// Every orbit walk runs against the unreduced set and orbits never overlap, so
// the surviving members are the same for any worker count and any chunking.
func ReduceSet(set *NetSet, crit Criteria, pool TaskPool) error {
	if crit.LimitRepeats {
		dropLongRuns(set)
	}
	if !crit.TimeReversal && !crit.SwapConjugate {
		return nil
	}
	if set.Len() < 2 {
		return nil
	}
	if pool == nil {
		pool = NewWorkerPool(1)
		defer pool.Close()
	}

	members := set.SelectAll()
	chunks := chunkNets(members, pool.NumWorkers())
	folds := make([][]orbitFold, len(chunks))

	for ci := range chunks {
		ci := ci
		chunk := chunks[ci]
		pool.Submit(func() error {
			chunkFolds, err := foldChunk(set, chunk, crit)
			folds[ci] = chunkFolds
			return err
		})
	}
	if err := pool.Join(); err != nil {
		return err
	}

	// Join before merge: the single-threaded fold application below is the
	// only writer the set ever sees.
	var dropped []*Net
	for _, chunkFolds := range folds {
		for _, fold := range chunkFolds {
			for _, sig := range fold.drops {
				if removed := set.RemoveSig(sig); removed != nil {
					dropped = append(dropped, removed)
				}
			}
		}
	}
	for _, X := range dropped {
		X.Reclaim()
	}
	return nil
}

func dropLongRuns(set *NetSet) {
	var dropped []*Net
	for _, X := range set.SelectAll() {
		if X.MaxRun() > MaxGateRun {
			if removed := set.RemoveSig(X.Sig()); removed != nil {
				dropped = append(dropped, removed)
			}
		}
	}
	for _, X := range dropped {
		X.Reclaim()
	}
}

// orbitFold records one orbit's outcome: the member kept and the members folded away.
type orbitFold struct {
	keep  []byte
	drops [][]byte
}

func foldChunk(set *NetSet, chunk []*Net, crit Criteria) ([]orbitFold, error) {
	var folds []orbitFold
	seen := make(map[string]bool, len(chunk))

	for _, X := range chunk {
		if seen[string(X.Sig())] {
			continue
		}
		fold, err := foldOrbit(set, X, crit)
		if err != nil {
			return nil, err
		}
		if fold.keep == nil {
			continue
		}
		seen[string(fold.keep)] = true
		for _, sig := range fold.drops {
			seen[string(sig)] = true
		}
		folds = append(folds, fold)
	}
	return folds, nil
}

// foldOrbit walks the orbit of X under the enabled transforms, canonizing at
// every hop, and reports which set members the orbit spans.  Hops may pass
// through networks absent from the set: the group closes over compositions,
// not just single transform applications.
func foldOrbit(set *NetSet, X *Net, crit Criteria) (orbitFold, error) {
	var fold orbitFold

	visited := make(map[string]bool, 8)
	queue := make([]*Net, 0, 8)
	defer func() {
		for _, qn := range queue {
			qn.Reclaim()
		}
	}()

	start := NewNet(X)
	visited[string(start.Sig())] = true
	queue = append(queue, start)

	present := [][]byte{
		append([]byte(nil), start.Sig()...),
	}

	var walkErr error
	absorb := func(img *Net) {
		if walkErr != nil {
			img.Reclaim()
			return
		}
		if err := img.Canonize(); err != nil {
			walkErr = err
			img.Reclaim()
			return
		}
		sig := img.Sig()
		if visited[string(sig)] {
			img.Reclaim()
			return
		}
		visited[string(sig)] = true
		if set.ContainsSig(sig) {
			present = append(present, append([]byte(nil), sig...))
		}
		queue = append(queue, img)
	}

	for qi := 0; qi < len(queue) && walkErr == nil; qi++ {
		cur := queue[qi]

		if crit.TimeReversal {
			img := NewNet(cur)
			img.Reverse()
			absorb(img)
		}
		if crit.SwapConjugate {
			cur.appendSandwichImages(absorb)
		}
	}
	if walkErr != nil {
		return orbitFold{}, walkErr
	}

	if len(present) < 2 {
		return fold, nil
	}

	keep := present[0]
	for _, sig := range present[1:] {
		if bytes.Compare(sig, keep) < 0 {
			keep = sig
		}
	}
	fold.keep = keep
	for _, sig := range present {
		if !bytes.Equal(sig, keep) {
			fold.drops = append(fold.drops, sig)
		}
	}
	return fold, nil
}

// appendSandwichImages emits every swap-conjugation image of X: wherever one
// gate sits at both ends of a three gate window, the middle gate has its bits
// swapped at that gate's two lines.
func (X *Net) appendSandwichImages(emit func(img *Net)) {
	gates := X.Gates()
	for j := 0; j+2 < len(gates); j++ {
		if gates[j] != gates[j+2] {
			continue
		}
		a, b := gates[j].Qubits()
		swapped := gates[j+1].Swap(a, b)
		if swapped == gates[j+1] {
			continue
		}
		img := NewNet(X)
		img.gates[j+1] = swapped
		img.onNetChanged()
		emit(img)
	}
}
