package main

import (
	"flag"

	"github.com/plan-systems/klog"
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	configPath := flag.String("config", "", "TOML run config pathname")
	qubits := flag.Int("qubits", 0, "qubit line count (enables enumeration mode)")
	depth := flag.Int("depth", 0, "target gate count")
	workers := flag.Int("workers", 0, "worker goroutines (0 means one per CPU)")
	reverse := flag.Bool("reverse", true, "merge time-reversal images")
	swap := flag.Bool("swap", true, "merge sandwich swap images")
	max3 := flag.Bool("max3", true, "drop networks repeating a gate more than 3 times in a row")
	seedPath := flag.String("seed", "", "seed JSON pathname to resume from")
	outPath := flag.String("out", "", "pathname for the final depth as seed JSON")
	dbPath := flag.String("db", "", "catalog db to fill with each completed depth")

	flag.Parse()

	cfg := DefaultRunConfig()
	if *configPath != "" {
		if err := LoadRunConfig(*configPath, &cfg); err != nil {
			klog.Fatalf("%v", err)
		}
	}

	// Explicit flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "qubits":
			cfg.Qubits = *qubits
		case "depth":
			cfg.Depth = *depth
		case "workers":
			cfg.Workers = *workers
		case "reverse":
			cfg.Reverse = *reverse
		case "swap":
			cfg.Swap = *swap
		case "max3":
			cfg.Max3 = *max3
		case "seed":
			cfg.SeedPath = *seedPath
		case "out":
			cfg.OutPath = *outPath
		case "db":
			cfg.DbPath = *dbPath
		}
	})

	if cfg.Qubits > 0 {
		if err := runEnum(cfg); err != nil {
			klog.Fatalf("%v", err)
		}
	} else {
		pathname := flag.Arg(0)
		go_gpython(pathname)
	}

	klog.Flush()
}
