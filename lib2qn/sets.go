package lib2qn

import (
	"github.com/dgraph-io/badger/v3"

	"github.com/qbit-systems/go2qn/go2qn"
)

// NewSigSet returns an empty go2qn.CanonicSet keyed directly by signature, so
// membership never rides on a hash.  The backing store lives in memory and is
// released by Close().
func NewSigSet() go2qn.CanonicSet {
	return &sigSet{}
}

type sigSet struct {
	lsmSet
}

// TryAddNet adds X's signature if it is not already present.
//
// If X's signature is already in this set, this call has no effect and returns false.
// If it isn't, the signature is added and TryAddNet() returns true.
//
// After one or more calls to TryAddNet(), call Close() for cleanup.
func (set *sigSet) TryAddNet(X go2qn.NetState) bool {
	return set.tryAdd(X.Sig())
}

type lsmSet struct {
	db *badger.DB
}

func (set *lsmSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

func (set *lsmSet) tryAdd(key []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Commit()

	added := false
	_, err := txn.Get(key)
	if err == nil {
		// no-op since the key is already in the db
	} else if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}

	if err != nil {
		panic(err)
	}

	return added
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
