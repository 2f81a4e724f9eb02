package lib2qn

import (
	"bytes"

	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/qbit-systems/go2qn/go2qn"
)

// NetSet is an ordered set of canonized Nets, keyed and sorted by signature.
//
// A NetSet owns its member Nets.  All iteration runs in ascending signature
// order, so two NetSets holding the same members always walk identically
// regardless of insertion order.
type NetSet struct {
	qubitCount int
	tree       redblacktree.Tree
}

// NewNetSet returns an empty NetSet over qubitCount lines.
func NewNetSet(qubitCount int) *NetSet {
	return &NetSet{
		qubitCount: qubitCount,
		tree: redblacktree.Tree{
			Comparator: sigComparator,
		},
	}
}

func sigComparator(A, B interface{}) int {
	return bytes.Compare(A.([]byte), B.([]byte))
}

func (set *NetSet) QubitCount() int {
	return set.qubitCount
}

// Len returns the number of member Nets.
func (set *NetSet) Len() int {
	return set.tree.Size()
}

// ContainsSig returns true if a member Net carries the given signature.
func (set *NetSet) ContainsSig(sig []byte) bool {
	_, found := set.tree.Get(sig)
	return found
}

// TryAddNet adds a copy of X if no member carries X's signature.
// X is expected to be canonized; ownership of X stays with the caller.
func (set *NetSet) TryAddNet(X go2qn.NetState) bool {
	if X.QubitCount() != set.qubitCount {
		return false
	}

	sig := X.Sig()
	if _, found := set.tree.Get([]byte(sig)); found {
		return false
	}

	kept := NewNet(nil)
	if Xn, ok := X.(*Net); ok {
		kept.Init(Xn)
	} else if err := kept.InitFromSig(X.QubitCount(), sig); err != nil {
		kept.Reclaim()
		return false
	}

	set.tree.Put([]byte(kept.Sig()), kept)
	return true
}

// RemoveSig removes and returns the member Net carrying the given signature (nil if absent).
// The caller takes ownership of the returned Net.
func (set *NetSet) RemoveSig(sig []byte) *Net {
	val, found := set.tree.Get(sig)
	if !found {
		return nil
	}
	set.tree.Remove(sig)
	return val.(*Net)
}

// ForEach visits each member in ascending signature order until fn returns false.
// Members must not be mutated or removed during the walk.
func (set *NetSet) ForEach(fn func(X *Net) bool) {
	itr := set.tree.Iterator()
	for itr.Next() {
		if !fn(itr.Value().(*Net)) {
			break
		}
	}
}

// SelectAll returns the member Nets in ascending signature order.
// The returned Nets remain owned by this NetSet.
func (set *NetSet) SelectAll() []*Net {
	all := make([]*Net, 0, set.tree.Size())
	itr := set.tree.Iterator()
	for itr.Next() {
		all = append(all, itr.Value().(*Net))
	}
	return all
}

// StreamAll emits a copy of each member in ascending signature order.
// The set must not be mutated until the stream is drained.
func (set *NetSet) StreamAll() *go2qn.NetStream {
	next := go2qn.NewNetStream()

	go func() {
		itr := set.tree.Iterator()
		for itr.Next() {
			next.Outlet <- itr.Value().(*Net).MakeCopy()
		}
		next.Close()
	}()

	return next
}

// IsEqual returns true if both sets span the same qubit count and hold identical signatures.
func (set *NetSet) IsEqual(other *NetSet) bool {
	if set.qubitCount != other.qubitCount || set.Len() != other.Len() {
		return false
	}
	a := set.tree.Iterator()
	b := other.tree.Iterator()
	for a.Next() && b.Next() {
		if !bytes.Equal(a.Key().([]byte), b.Key().([]byte)) {
			return false
		}
	}
	return true
}

// Reclaim returns every member Net to the pool and empties the set.
func (set *NetSet) Reclaim() {
	itr := set.tree.Iterator()
	for itr.Next() {
		itr.Value().(*Net).Reclaim()
	}
	set.tree.Clear()
}
