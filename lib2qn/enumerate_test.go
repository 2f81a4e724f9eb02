package lib2qn_test

import (
	"errors"
	"testing"

	"github.com/qbit-systems/go2qn/go2qn"
	"github.com/qbit-systems/go2qn/lib2qn"
)

// Structurally distinct 3 qubit networks by depth, all reductions enabled.
// Worked out by hand from the relabeling, time reversal, and swap conjugation
// folds, so any change here is a change in enumeration semantics.
var q3Unique = [][]string{
	{
		"0-1",
		"0-2",
		"1-2",
	},
	{
		"0-1, 0-1",
		"0-1, 0-2",
	},
	{
		"0-1, 0-1, 0-1",
		"0-1, 0-1, 0-2",
		"0-1, 0-2, 0-1",
		"0-1, 0-2, 1-2",
	},
	{
		"0-1, 0-1, 0-1, 0-2",
		"0-1, 0-1, 0-2, 0-1",
		"0-1, 0-1, 0-2, 0-2",
		"0-1, 0-1, 0-2, 1-2",
		"0-1, 0-2, 0-1, 0-2",
		"0-1, 0-2, 1-2, 0-1",
	},
}

func enumerate(qubits, depth int, crit lib2qn.Criteria) *lib2qn.NetSet {
	set, err := lib2qn.EnumerateNets(lib2qn.EnumOpts{
		QubitCount: qubits,
		Depth:      depth,
		Criteria:   crit,
	})
	if err != nil {
		gT.Fatal(err)
	}
	return set
}

func TestBaseSet(t *testing.T) {
	gT = t

	set, err := lib2qn.BaseSet(3)
	if err != nil {
		gT.Fatal(err)
	}
	checkSetExprs(set, q3Unique[0])
	set.Reclaim()

	for n := 2; n <= 6; n++ {
		set, err := lib2qn.BaseSet(n)
		if err != nil {
			gT.Fatal(err)
		}
		if set.Len() != n*(n-1)/2 {
			gT.Fatalf("%d qubit base set holds %d nets", n, set.Len())
		}
		set.Reclaim()
	}

	if _, err := lib2qn.BaseSet(1); !errors.Is(err, go2qn.ErrQubitCountMismatch) {
		gT.Fatal("nope")
	}
	if _, err := lib2qn.BaseSet(go2qn.MaxQubits + 1); !errors.Is(err, go2qn.ErrQubitCountMismatch) {
		gT.Fatal("nope")
	}
}

func TestEnumerate3Qubits(t *testing.T) {
	gT = t

	depthLens := map[int]int{}
	set, err := lib2qn.EnumerateNets(lib2qn.EnumOpts{
		QubitCount: 3,
		Depth:      len(q3Unique),
		Criteria:   lib2qn.DefaultCriteria,
		OnDepthDone: func(depth int, set *lib2qn.NetSet) {
			depthLens[depth] = set.Len()
		},
	})
	if err != nil {
		gT.Fatal(err)
	}
	defer set.Reclaim()

	for d, want := range q3Unique {
		if depthLens[d+1] != len(want) {
			gT.Fatalf("depth %d: got %d networks, want %d", d+1, depthLens[d+1], len(want))
		}
	}
	checkSetExprs(set, q3Unique[len(q3Unique)-1])

	// Each target depth reproduces the same sets
	for d, want := range q3Unique {
		byDepth := enumerate(3, d+1, lib2qn.DefaultCriteria)
		checkSetExprs(byDepth, want)
		byDepth.Reclaim()
	}
}

func TestEnumerateNoCriteria(t *testing.T) {
	gT = t

	// With every reduction off, only relabeling dedup folds the candidates
	set := enumerate(3, 2, lib2qn.Criteria{})
	checkSetExprs(set, []string{
		"0-1, 0-1",
		"0-1, 0-2",
	})
	set.Reclaim()

	set = enumerate(3, 3, lib2qn.Criteria{})
	checkSetExprs(set, []string{
		"0-1, 0-1, 0-1",
		"0-1, 0-1, 0-2",
		"0-1, 0-2, 0-1",
		"0-1, 0-2, 0-2",
		"0-1, 0-2, 1-2",
	})
	set.Reclaim()
}

func TestEnumerate2Qubits(t *testing.T) {
	gT = t

	// One gate, so each depth has a single survivor until the repeat
	// limit leaves nothing to extend
	for depth, wantLen := range map[int]int{1: 1, 2: 1, 3: 1, 4: 0, 5: 0} {
		set := enumerate(2, depth, lib2qn.DefaultCriteria)
		if set.Len() != wantLen {
			gT.Fatalf("depth %d: got %d networks, want %d", depth, set.Len(), wantLen)
		}
		set.Reclaim()
	}

	set := enumerate(2, 4, lib2qn.Criteria{})
	checkSetExprs(set, []string{"0-1, 0-1, 0-1, 0-1"})
	set.Reclaim()
}

func TestEnumerateWorkers(t *testing.T) {
	gT = t

	base := enumerate(3, 4, lib2qn.DefaultCriteria)
	defer base.Reclaim()

	for _, workers := range []int{1, 2, 3, 8} {
		alt, err := lib2qn.EnumerateNets(lib2qn.EnumOpts{
			QubitCount: 3,
			Depth:      4,
			Criteria:   lib2qn.DefaultCriteria,
			Workers:    workers,
		})
		if err != nil {
			gT.Fatal(err)
		}
		if !alt.IsEqual(base) {
			gT.Fatalf("%d workers changed the result set", workers)
		}
		alt.Reclaim()
	}

	// A caller-owned pool serves repeated runs
	pool := lib2qn.NewWorkerPool(3)
	defer pool.Close()
	for i := 0; i < 2; i++ {
		alt, err := lib2qn.EnumerateNets(lib2qn.EnumOpts{
			QubitCount: 3,
			Depth:      4,
			Criteria:   lib2qn.DefaultCriteria,
			Pool:       pool,
		})
		if err != nil {
			gT.Fatal(err)
		}
		if !alt.IsEqual(base) {
			gT.Fatal("pooled run changed the result set")
		}
		alt.Reclaim()
	}
}

func TestEnumerateValidation(t *testing.T) {
	gT = t

	fails := []struct {
		opts lib2qn.EnumOpts
		want error
	}{
		{lib2qn.EnumOpts{QubitCount: 1, Depth: 2}, go2qn.ErrQubitCountMismatch},
		{lib2qn.EnumOpts{QubitCount: 17, Depth: 2}, go2qn.ErrQubitCountMismatch},
		{lib2qn.EnumOpts{QubitCount: 3, Depth: 0}, go2qn.ErrDepthMismatch},
		{lib2qn.EnumOpts{QubitCount: 3, Depth: 33}, go2qn.ErrDepthMismatch},
		{
			lib2qn.EnumOpts{
				QubitCount: 3,
				Depth:      3,
				Seed:       &lib2qn.Seed{QubitCount: 4, Depth: 2},
			},
			go2qn.ErrQubitCountMismatch,
		},
		{
			lib2qn.EnumOpts{
				QubitCount: 3,
				Depth:      3,
				Seed:       &lib2qn.Seed{QubitCount: 3, Depth: 5},
			},
			go2qn.ErrDepthMismatch,
		},
		{
			lib2qn.EnumOpts{
				QubitCount: 3,
				Depth:      3,
				Seed: &lib2qn.Seed{
					QubitCount: 3,
					Depth:      2,
					Networks:   [][]uint16{{3, 7}},
				},
			},
			go2qn.ErrInvalidGate,
		},
	}
	for i, tc := range fails {
		set, err := lib2qn.EnumerateNets(tc.opts)
		if !errors.Is(err, tc.want) {
			gT.Fatalf("case #%d: got %v, want %v", i+1, err, tc.want)
		}
		if set != nil {
			gT.Fatalf("case #%d: got a set back", i+1)
		}
	}
}

func TestEnumerateSeeded(t *testing.T) {
	gT = t

	scratch3 := enumerate(3, 3, lib2qn.DefaultCriteria)
	scratch4 := enumerate(3, 4, lib2qn.DefaultCriteria)
	defer scratch3.Reclaim()
	defer scratch4.Reclaim()

	seed := lib2qn.SeedFromSet(scratch3, 3)

	// Resuming from a depth 3 seed matches the from-scratch run
	resumed, err := lib2qn.EnumerateNets(lib2qn.EnumOpts{
		QubitCount: 3,
		Depth:      4,
		Criteria:   lib2qn.DefaultCriteria,
		Seed:       seed,
	})
	if err != nil {
		gT.Fatal(err)
	}
	if !resumed.IsEqual(scratch4) {
		gT.Fatal("seeded run diverged from scratch run")
	}
	resumed.Reclaim()

	// A seed already at the target depth echoes back
	echoed, err := lib2qn.EnumerateNets(lib2qn.EnumOpts{
		QubitCount: 3,
		Depth:      3,
		Criteria:   lib2qn.DefaultCriteria,
		Seed:       seed,
	})
	if err != nil {
		gT.Fatal(err)
	}
	if !echoed.IsEqual(scratch3) {
		gT.Fatal("seed echo diverged")
	}
	echoed.Reclaim()
}
