package lib2qn_test

import (
	"errors"
	"os"
	"path"
	"testing"

	"github.com/qbit-systems/go2qn/go2qn"
	"github.com/qbit-systems/go2qn/lib2qn"
	"github.com/qbit-systems/go2qn/lib2qn/catalog"
)

func TestSeedValidate(t *testing.T) {
	gT = t

	good := lib2qn.Seed{
		QubitCount: 3,
		Depth:      2,
		Networks:   [][]uint16{{3, 5}, {3, 3}},
	}
	if err := good.Validate(); err != nil {
		gT.Fatal(err)
	}

	bad := []struct {
		seed lib2qn.Seed
		want error
	}{
		{lib2qn.Seed{QubitCount: 1, Depth: 1}, go2qn.ErrQubitCountMismatch},
		{lib2qn.Seed{QubitCount: 17, Depth: 1}, go2qn.ErrQubitCountMismatch},
		{lib2qn.Seed{QubitCount: 3, Depth: 0}, go2qn.ErrDepthMismatch},
		{lib2qn.Seed{QubitCount: 3, Depth: 33}, go2qn.ErrDepthMismatch},
		{
			lib2qn.Seed{QubitCount: 3, Depth: 2, Networks: [][]uint16{{3}}},
			go2qn.ErrDepthMismatch,
		},
		{
			lib2qn.Seed{QubitCount: 3, Depth: 2, Networks: [][]uint16{{3, 7}}},
			go2qn.ErrInvalidGate,
		},
		{
			lib2qn.Seed{QubitCount: 3, Depth: 1, Networks: [][]uint16{{9}}},
			go2qn.ErrInvalidGate,
		},
	}
	for i, tc := range bad {
		if err := tc.seed.Validate(); !errors.Is(err, tc.want) {
			gT.Fatalf("case #%d: got %v, want %v", i+1, err, tc.want)
		}
	}
}

func TestSeedFile(t *testing.T) {
	gT = t

	src := enumerate(3, 3, lib2qn.DefaultCriteria)
	defer src.Reclaim()

	seed := lib2qn.SeedFromSet(src, 3)
	if seed.QubitCount != 3 || seed.Depth != 3 || len(seed.Networks) != src.Len() {
		gT.Fatal("nope")
	}

	dir := t.TempDir()
	pathname := path.Join(dir, "q3d3.json")
	if err := seed.WriteToFile(pathname); err != nil {
		gT.Fatal(err)
	}

	loaded, err := lib2qn.LoadSeed(pathname)
	if err != nil {
		gT.Fatal(err)
	}
	if err := loaded.Validate(); err != nil {
		gT.Fatal(err)
	}

	set, err := lib2qn.SetFromSeed(loaded)
	if err != nil {
		gT.Fatal(err)
	}
	if !set.IsEqual(src) {
		gT.Fatal("seed round trip")
	}
	set.Reclaim()

	if _, err := lib2qn.LoadSeed(path.Join(dir, "absent.json")); err == nil {
		gT.Fatal("nope")
	}

	mangled := path.Join(dir, "mangled.json")
	if err := os.WriteFile(mangled, []byte("{not json"), 0644); err != nil {
		gT.Fatal(err)
	}
	if _, err := lib2qn.LoadSeed(mangled); !errors.Is(err, go2qn.ErrBadSeed) {
		gT.Fatal("nope")
	}
}

func TestSetFromSeed(t *testing.T) {
	gT = t

	// Foreign seeds land in canonic form: all three single gates are one class
	seed := &lib2qn.Seed{
		QubitCount: 3,
		Depth:      1,
		Networks:   [][]uint16{{5}, {3}, {6}},
	}
	set, err := lib2qn.SetFromSeed(seed)
	if err != nil {
		gT.Fatal(err)
	}
	checkSetExprs(set, []string{"0-1"})
	set.Reclaim()

	seed.QubitCount = 1
	if _, err := lib2qn.SetFromSeed(seed); !errors.Is(err, go2qn.ErrQubitCountMismatch) {
		gT.Fatal("nope")
	}
}

func TestSeedFromCatalog(t *testing.T) {
	gT = t

	ctx := go2qn.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, go2qn.CatalogOpts{
		QubitCount: 3,
	})
	if err != nil {
		gT.Fatal(err)
	}

	d2 := enumerate(3, 2, lib2qn.DefaultCriteria)
	d3 := enumerate(3, 3, lib2qn.DefaultCriteria)
	for _, set := range []*lib2qn.NetSet{d2, d3} {
		set.ForEach(func(X *lib2qn.Net) bool {
			if !cat.TryAddNet(X) {
				gT.Fatal("nope")
			}
			return true
		})
	}

	seed, err := lib2qn.SeedFromCatalog(cat, 3)
	if err != nil {
		gT.Fatal(err)
	}
	if seed.QubitCount != 3 || seed.Depth != 3 || len(seed.Networks) != d3.Len() {
		gT.Fatalf("seed shape %d/%d/%d", seed.QubitCount, seed.Depth, len(seed.Networks))
	}

	// The round trip reproduces the depth-3 set, untouched by the depth-2 entries
	restored, err := lib2qn.SetFromSeed(seed)
	if err != nil {
		gT.Fatal(err)
	}
	if !restored.IsEqual(d3) {
		gT.Fatal("nope")
	}
	restored.Reclaim()

	if _, err = lib2qn.SeedFromCatalog(cat, 0); !errors.Is(err, go2qn.ErrDepthMismatch) {
		gT.Fatal("nope")
	}

	d2.Reclaim()
	d3.Reclaim()
	ctx.Close()
	<-ctx.Done()
}
