package catalog

import (
	"runtime"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/qbit-systems/go2qn/go2qn"
	"github.com/qbit-systems/go2qn/lib2qn"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState

	[gate count byte], [net signature] => nil
	...

Net keys order first by gate count, then by canonical signature, so a
single prefix seek enumerates every net of a given depth in signature
order.  Values are empty since the key alone reconstructs the net.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

// catalog is a db wrapper for a gate net catalog
type catalog struct {
	ctx        go2qn.CatalogContext
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

func OpenCatalog(ctx go2qn.CatalogContext, opts go2qn.CatalogOpts) (go2qn.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(go2qn.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		if opts.ReadOnly {
			err = errors.Wrap(go2qn.ErrBadCatalogParam, "read-only catalog has no state entry")
		} else if opts.QubitCount < 2 || opts.QubitCount > go2qn.MaxQubits {
			err = errors.Wrapf(go2qn.ErrBadCatalogParam, "QubitCount must be 2..%d to create a catalog", go2qn.MaxQubits)
		} else {
			cat.stateDirty = true
			cat.state.MajorVers = kCatalogMajorVers
			cat.state.MinorVers = kCatalogMinorVers
			cat.state.QubitCount = opts.QubitCount
			cat.state.NumNets = make([]uint64, go2qn.MaxDepth+1)
		}
	}

	if err == nil {
		if cat.state.MajorVers != kCatalogMajorVers || cat.state.MinorVers != kCatalogMinorVers {
			err = errors.New("catalog version is incompatible")
		} else if opts.QubitCount != 0 && opts.QubitCount != cat.state.QubitCount {
			err = errors.Wrapf(go2qn.ErrQubitCountMismatch, "catalog is for %d qubits", cat.state.QubitCount)
		}
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *catalog) loadState() error {
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return cat.state.Unmarshal(val)
			})
		}
		return err
	})
	return err
}

func (cat *catalog) flushState() {
	if cat.stateDirty {
		err := cat.db.Update(func(txn *badger.Txn) error {
			stateBuf, err := cat.state.Marshal()
			if err != nil {
				return err
			}
			return txn.Set(gCatalogStateKey, stateBuf)
		})
		if err != nil {
			panic(err)
		}
		cat.stateDirty = false
	}
}

func (cat *catalog) Close() error {
	cat.flushState()
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

// QubitCount is the line count shared by every net in this catalog.
func (cat *catalog) QubitCount() byte {
	return cat.state.QubitCount
}

func (cat *catalog) NumNets(forDepth byte) int64 {
	if forDepth == 0 || int(forDepth) >= len(cat.state.NumNets) {
		return 0
	}
	return int64(cat.state.NumNets[forDepth])
}

// TryAddNet adds the given net if it isn't already present (in its current form).
//
// If true is returned, X was not present and was added.
//
// If false is returned, X already exists in the catalog (or the net
// does not belong in this catalog).
func (cat *catalog) TryAddNet(X go2qn.NetState) bool {
	if cat.readOnly {
		return false
	}

	info := X.GetInfo()
	if info.NumQubits != cat.state.QubitCount || info.NumGates == 0 {
		return false
	}
	if int(info.NumGates) >= len(cat.state.NumNets) {
		return false
	}

	var keyBuf [256]byte
	key := append(keyBuf[:0], info.NumGates)
	key = append(key, X.Sig()...)

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	_, err := txn.Get(key)
	if err == nil {
		return false
	}
	if err != badger.ErrKeyNotFound {
		panic(err)
	}

	if err = txn.Set(key, nil); err != nil {
		panic(err)
	}
	if err = txn.Commit(); err != nil {
		panic(err)
	}

	cat.state.NumNets[info.NumGates]++
	cat.stateDirty = true
	return true
}

// Select calls onHit() with all nets matching the given search criteria.
//
// Nets are emitted in ascending gate count order and in signature order
// within each gate count.
func (cat *catalog) Select(sel go2qn.NetSelector, onHit go2qn.OnNetHit) {
	q := cat.state.QubitCount
	if q < sel.Min.NumQubits || q > sel.Max.NumQubits {
		return
	}

	minDepth := sel.Min.NumGates
	if minDepth < 1 {
		minDepth = 1
	}
	maxDepth := sel.Max.NumGates
	if maxDepth > go2qn.MaxDepth {
		maxDepth = go2qn.MaxDepth
	}

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	for d := minDepth; d <= maxDepth; d++ {
		cat.readNetsAtDepth(txn, d, onHit)
	}
}

func (cat *catalog) readNetsAtDepth(txn *badger.Txn, depth byte, onHit go2qn.OnNetHit) {
	prefix := [1]byte{depth}

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: false,
		Prefix:         prefix[:1],
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		curKey := it.Item().Key()

		X := lib2qn.NewNet(nil)
		if err := X.InitFromSig(int(cat.state.QubitCount), curKey[1:]); err != nil {
			X.Reclaim()
			panic(err)
		}
		onHit <- X
	}
}
