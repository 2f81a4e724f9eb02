package catalog_test

import (
	"errors"
	"path"
	"testing"

	"github.com/qbit-systems/go2qn/go2qn"
	"github.com/qbit-systems/go2qn/lib2qn"
	"github.com/qbit-systems/go2qn/lib2qn/catalog"
)

// Canonic 3 qubit networks the tests seed catalogs with, by depth.
var q3Members = [][]string{
	{"0-1", "0-2", "1-2"},
	{"0-1, 0-1", "0-1, 0-2"},
	{"0-1, 0-1, 0-1", "0-1, 0-1, 0-2", "0-1, 0-2, 0-1", "0-1, 0-2, 1-2"},
}

var gT *testing.T

func mustNet(qubits int, netExpr string) *lib2qn.Net {
	X, err := lib2qn.NewNetFromExpr(qubits, netExpr)
	if err != nil {
		gT.Fatal(err)
	}
	return X
}

// drainSelect pulls every net cat emits for sel, reclaiming as it counts.
func drainSelect(cat go2qn.Catalog, sel go2qn.NetSelector) (exprs []string) {
	onHit := make(chan go2qn.NetState)
	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()
	for X := range onHit {
		Xn := X.(*lib2qn.Net)
		exprs = append(exprs, Xn.ExprString())
		X.Reclaim()
	}
	return
}

func TestCatalogBasics(t *testing.T) {
	gT = t

	ctx := go2qn.NewCatalogContext()
	dbPath := path.Join(t.TempDir(), "TestBasics")

	cat, err := catalog.OpenCatalog(ctx, go2qn.CatalogOpts{
		DbPathName: dbPath,
		QubitCount: 3,
	})
	if err != nil {
		gT.Fatal(err)
	}
	if cat.IsReadOnly() || cat.QubitCount() != 3 {
		gT.Fatal("nope")
	}

	total := 0
	for _, members := range q3Members {
		for _, expr := range members {
			X := mustNet(3, expr)
			if added := cat.TryAddNet(X); !added {
				gT.Fatal("nope")
			}
			if added := cat.TryAddNet(X); added {
				gT.Fatal("nope")
			}
			X.Reclaim()
			total++
		}
	}

	// Nets that don't belong in this catalog are refused
	W := mustNet(4, "0-3")
	if cat.TryAddNet(W) {
		gT.Fatal("nope")
	}
	W.Reclaim()
	empty := lib2qn.NewNet(nil)
	if cat.TryAddNet(empty) {
		gT.Fatal("nope")
	}
	empty.Reclaim()

	for d, members := range q3Members {
		if cat.NumNets(byte(d+1)) != int64(len(members)) {
			gT.Fatalf("depth %d: NumNets %d", d+1, cat.NumNets(byte(d+1)))
		}
	}
	if cat.NumNets(0) != 0 || cat.NumNets(4) != 0 || cat.NumNets(255) != 0 {
		gT.Fatal("nope")
	}

	// Select all, then select one depth
	if got := drainSelect(cat, go2qn.DefaultNetSelector); len(got) != total {
		gT.Fatalf("selected %d nets, want %d", len(got), total)
	}

	sel := go2qn.DefaultNetSelector
	sel.Min.NumGates = 2
	sel.Max.NumGates = 2
	got := drainSelect(cat, sel)
	if len(got) != len(q3Members[1]) {
		gT.Fatal("nope")
	}
	for i, expr := range got {
		if expr != q3Members[1][i] {
			gT.Fatalf("hit #%d: got %q, want %q", i+1, expr, q3Members[1][i])
		}
	}

	if err := cat.Close(); err != nil {
		gT.Fatal(err)
	}

	// Reopen: counts persist and dup adds still refuse
	cat, err = catalog.OpenCatalog(ctx, go2qn.CatalogOpts{DbPathName: dbPath})
	if err != nil {
		gT.Fatal(err)
	}
	if cat.QubitCount() != 3 || cat.NumNets(3) != 4 {
		gT.Fatal("reopen lost state")
	}
	X := mustNet(3, "0-1, 0-1")
	if cat.TryAddNet(X) {
		gT.Fatal("nope")
	}
	X.Reclaim()

	X = mustNet(3, "0-1, 0-1, 0-2, 1-2")
	if !cat.TryAddNet(X) {
		gT.Fatal("nope")
	}
	X.Reclaim()
	if cat.NumNets(4) != 1 {
		gT.Fatal("nope")
	}
	cat.Close()

	// Read-only reopen
	cat, err = catalog.OpenCatalog(ctx, go2qn.CatalogOpts{
		DbPathName: dbPath,
		ReadOnly:   true,
	})
	if err != nil {
		gT.Fatal(err)
	}
	if !cat.IsReadOnly() {
		gT.Fatal("nope")
	}
	X = mustNet(3, "0-1, 0-2, 0-1, 0-2")
	if cat.TryAddNet(X) {
		gT.Fatal("read-only catalog accepted a net")
	}
	X.Reclaim()
	if got := drainSelect(cat, go2qn.DefaultNetSelector); len(got) != total+1 {
		gT.Fatal("nope")
	}
	cat.Close()

	// Opening for a different line count refuses
	if _, err = catalog.OpenCatalog(ctx, go2qn.CatalogOpts{
		DbPathName: dbPath,
		QubitCount: 4,
	}); !errors.Is(err, go2qn.ErrQubitCountMismatch) {
		gT.Fatalf("got %v", err)
	}

	ctx.Close()
	<-ctx.Done()
}

func TestCatalogInMemory(t *testing.T) {
	gT = t

	ctx := go2qn.NewCatalogContext()

	// No db path selects an in-memory catalog
	cat, err := catalog.OpenCatalog(ctx, go2qn.CatalogOpts{QubitCount: 2})
	if err != nil {
		gT.Fatal(err)
	}
	X := mustNet(2, "0-1")
	if !cat.TryAddNet(X) {
		gT.Fatal("nope")
	}
	X.Reclaim()
	if cat.NumNets(1) != 1 {
		gT.Fatal("nope")
	}

	// The context close sweeps up the still-open catalog
	ctx.Close()
	<-ctx.Done()
}

func TestCatalogBadOpens(t *testing.T) {
	gT = t

	ctx := go2qn.NewCatalogContext()

	// Read-only without a path has nothing to read
	if _, err := catalog.OpenCatalog(ctx, go2qn.CatalogOpts{ReadOnly: true}); !errors.Is(err, go2qn.ErrBadCatalogParam) {
		gT.Fatal("nope")
	}

	// A fresh catalog needs a usable line count
	if _, err := catalog.OpenCatalog(ctx, go2qn.CatalogOpts{}); !errors.Is(err, go2qn.ErrBadCatalogParam) {
		gT.Fatal("nope")
	}
	if _, err := catalog.OpenCatalog(ctx, go2qn.CatalogOpts{QubitCount: 1}); !errors.Is(err, go2qn.ErrBadCatalogParam) {
		gT.Fatal("nope")
	}

	ctx.Close()
	<-ctx.Done()
}
