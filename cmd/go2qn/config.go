package main

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/qbit-systems/go2qn/go2qn"
	"github.com/qbit-systems/go2qn/lib2qn"
	"github.com/qbit-systems/go2qn/lib2qn/catalog"
)

// RunConfig is the TOML-expressible form of one enumeration run.
type RunConfig struct {
	Qubits  int `toml:"qubits"`
	Depth   int `toml:"depth"`
	Workers int `toml:"workers"`

	Reverse bool `toml:"reverse"`
	Swap    bool `toml:"swap"`
	Max3    bool `toml:"max3"`

	SeedPath string `toml:"seed"`
	OutPath  string `toml:"out"`
	DbPath   string `toml:"db"`
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Depth:   3,
		Reverse: true,
		Swap:    true,
		Max3:    true,
	}
}

func LoadRunConfig(pathname string, cfg *RunConfig) error {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return errors.Wrapf(err, "failed to read run config %q", pathname)
	}
	if err = toml.Unmarshal(buf, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse run config %q", pathname)
	}
	return nil
}

func runEnum(cfg RunConfig) error {
	opts := lib2qn.EnumOpts{
		QubitCount: cfg.Qubits,
		Depth:      cfg.Depth,
		Workers:    cfg.Workers,
		Criteria: lib2qn.Criteria{
			TimeReversal:  cfg.Reverse,
			SwapConjugate: cfg.Swap,
			LimitRepeats:  cfg.Max3,
		},
	}

	if cfg.SeedPath != "" {
		seed, err := lib2qn.LoadSeed(cfg.SeedPath)
		if err != nil {
			return err
		}
		opts.Seed = seed
		klog.Infof("resuming from %s at depth %d", cfg.SeedPath, seed.Depth)
	}

	var (
		cat    go2qn.Catalog
		catCtx go2qn.CatalogContext
	)
	if cfg.DbPath != "" {
		catCtx = go2qn.NewCatalogContext()
		var err error
		cat, err = catalog.OpenCatalog(catCtx, go2qn.CatalogOpts{
			DbPathName: cfg.DbPath,
			QubitCount: byte(cfg.Qubits),
		})
		if err != nil {
			return err
		}
	}

	opts.OnDepthDone = func(depth int, set *lib2qn.NetSet) {
		klog.Infof("depth %2d: %8d unique networks", depth, set.Len())
		if cat != nil {
			set.ForEach(func(X *lib2qn.Net) bool {
				cat.TryAddNet(X)
				return true
			})
		}
	}

	startTime := time.Now()
	set, err := lib2qn.EnumerateNets(opts)
	if err != nil {
		return err
	}
	klog.Infof("enumeration complete in %v", time.Since(startTime))

	if cfg.OutPath != "" {
		seed := lib2qn.SeedFromSet(set, cfg.Depth)
		if err = seed.WriteToFile(cfg.OutPath); err != nil {
			return err
		}
		klog.Infof("wrote %d networks to %s", len(seed.Networks), cfg.OutPath)
	}

	set.Reclaim()

	if cat != nil {
		catCtx.Close()
		<-catCtx.Done()
	}
	return nil
}
