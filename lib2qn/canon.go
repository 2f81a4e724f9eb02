package lib2qn

import (
	"sort"

	"github.com/qbit-systems/go2qn/go2qn"
)

// Canonizer rewrites a Net in place to the canonic representative of its relabeling class.
//
// Two networks are in the same relabeling class when some permutation of qubit
// line labels maps one gate sequence onto the other.  The canonic representative
// is the class member whose gate sequence is lexicographically smallest, so a
// canonized Net's Sig() is the identity of its class.
type Canonizer interface {
	Canonize(X *Net) error
}

// NewBruteCanonizer returns the reference Canonizer.
//
// It tries every ordering of the qubit lines the network actually uses, mapping
// them into the low index slots, and keeps the smallest resulting sequence.
// Lines that appear in no gate can only raise gate values, so orderings that
// interleave them are never candidates and the search space is k! for k lines
// in use, not qubitCount!.
func NewBruteCanonizer() Canonizer {
	return bruteCanonizer{}
}

var gCanonizer = NewBruteCanonizer()

// SetCanonizer replaces the Canonizer used by Net.Canonize().
// Not safe to call while an enumeration is in flight.
func SetCanonizer(cn Canonizer) {
	if cn != nil {
		gCanonizer = cn
	}
}

type bruteCanonizer struct{}

func (bruteCanonizer) Canonize(X *Net) error {
	n := X.QubitCount()
	if n < 2 || n > go2qn.MaxQubits {
		return go2qn.ErrQubitCountMismatch
	}

	gates := X.Gates()
	used := uint32(0)
	for _, g := range gates {
		if !g.IsValidFor(n) {
			return go2qn.ErrInvalidGate
		}
		used |= uint32(g)
	}
	if len(gates) == 0 {
		return nil
	}

	// perm[i] is the old line relabeled to line i.  Lines in use occupy
	// slots 0..k-1 (in every order), unused lines fill the rest ascending.
	var perm [go2qn.MaxQubits]go2qn.QubitID
	k := 0
	for q := 0; q < n; q++ {
		if used&(1<<q) != 0 {
			perm[k] = go2qn.QubitID(q)
			k++
		}
	}
	unused := k
	for q := 0; q < n; q++ {
		if used&(1<<q) == 0 {
			perm[unused] = go2qn.QubitID(q)
			unused++
		}
	}

	var best, cand [go2qn.MaxDepth]go2qn.Gate
	first := true

	for {
		improved := false
		worse := false
		for i, g := range gates {
			cg := g.Permute(perm[:n])
			if !first && !improved {
				if cg > best[i] {
					worse = true
					break
				}
				if cg < best[i] {
					improved = true
				}
			}
			cand[i] = cg
		}
		if !worse && (first || improved) {
			copy(best[:len(gates)], cand[:len(gates)])
			first = false
		}
		if !nextPermutation(perm[:k]) {
			break
		}
	}

	copy(gates, best[:len(gates)])
	X.onNetChanged()
	return nil
}

// nextPermutation steps p to its next lexicographic ordering, returning false after the last one.
func nextPermutation(p []go2qn.QubitID) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// AppendSigUnordered appends the order-blind signature of X: its gate multiset, sorted.
// Two networks that differ only in gate time order share an unordered signature.
func (X *Net) AppendSigUnordered(in []byte) []byte {
	var scrap [go2qn.MaxDepth]go2qn.Gate
	sorted := scrap[:X.gateCount]
	copy(sorted, X.Gates())
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, g := range sorted {
		in = g.Marshal(in)
	}
	return in
}
